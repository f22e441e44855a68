package form

// Config is the canonical booking form configuration.
type Config struct {
	BasicInfo           BasicInfo        `json:"basic_info"`
	GenderSelection     Selection        `json:"gender_selection"`
	VisitCountSelection Selection        `json:"visit_count_selection"`
	CouponSelection     Selection        `json:"coupon_selection"`
	MenuStructure       MenuStructure    `json:"menu_structure"`
	CalendarSettings    CalendarSettings `json:"calendar_settings"`
	UISettings          UISettings       `json:"ui_settings"`
	ValidationRules     ValidationRules  `json:"validation_rules"`
	WebhookEndpoint     string           `json:"webhook_endpoint"`
}

// BasicInfo holds the form header and the optional identity SDK id.
type BasicInfo struct {
	Title      string `json:"title"`
	StoreName  string `json:"store_name"`
	ThemeColor string `json:"theme_color"`
	LogoURL    string `json:"logo_url"`
	LiffID     string `json:"liff_id"`
}

// Selection is an optional single-choice question such as gender,
// visit count or coupon usage. Required is kept even when the
// selection is disabled.
type Selection struct {
	Enabled  bool              `json:"enabled"`
	Required bool              `json:"required"`
	Options  []Choice          `json:"options"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Choice is one answer of a Selection.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// StructureType controls how menus are grouped on the form.
type StructureType string

const (
	StructureCategory StructureType = "category"
	StructureFlat     StructureType = "flat"
)

// MenuStructure is the menu catalogue of the form.
type MenuStructure struct {
	StructureType               StructureType  `json:"structure_type"`
	Categories                  []Category     `json:"categories"`
	AllowCrossCategorySelection bool           `json:"allow_cross_category_selection"`
	DisplayOptions              DisplayOptions `json:"display_options"`
}

// DisplayOptions toggles the menu card details.
type DisplayOptions struct {
	ShowPrice       bool `json:"show_price"`
	ShowDuration    bool `json:"show_duration"`
	ShowDescription bool `json:"show_description"`
}

// Category is an ordered group of menus.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Menus []Menu `json:"menus"`
}

// Menu is a bookable service. A menu refines either through SubMenuItems
// (when HasSubmenu is set) or through add-on Options.
type Menu struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Price        int           `json:"price"`
	Duration     int           `json:"duration"`
	HasSubmenu   bool          `json:"has_submenu"`
	SubMenuItems []SubMenuItem `json:"sub_menu_items"`
	Options      []Option      `json:"options"`
}

// SubMenuItem is a variant of a menu with its own price and duration.
type SubMenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Duration    int    `json:"duration"`
}

// Option is an add-on toggled on top of a menu.
type Option struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Duration  int    `json:"duration"`
	IsDefault bool   `json:"is_default"`
}

// BookingMode selects the date picker presentation.
type BookingMode string

const (
	BookingCalendar BookingMode = "calendar"
	BookingList     BookingMode = "list"
)

// CalendarSettings holds opening hours and the booking horizon.
type CalendarSettings struct {
	BusinessHours      BusinessHours     `json:"business_hours"`
	AdvanceBookingDays int               `json:"advance_booking_days"`
	CalendarID         string            `json:"calendar_id"`
	BookingMode        BookingMode       `json:"booking_mode"`
	MultiDateSettings  MultiDateSettings `json:"multi_date_settings"`
}

// MultiDateSettings lets a customer offer alternate slots.
type MultiDateSettings struct {
	Enabled  bool `json:"enabled"`
	MaxDates int  `json:"max_dates"`
}

// BusinessHours is the weekly opening schedule.
type BusinessHours struct {
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// DayHours is one weekday of BusinessHours.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// ButtonStyle is the shape of buttons and cards.
type ButtonStyle string

const (
	ButtonRounded ButtonStyle = "rounded"
	ButtonSquare  ButtonStyle = "square"
	ButtonPill    ButtonStyle = "pill"
)

// UISettings holds presentation flags.
type UISettings struct {
	ThemeColor        string      `json:"theme_color"`
	ButtonStyle       ButtonStyle `json:"button_style"`
	ShowRepeatBooking bool        `json:"show_repeat_booking"`
	ShowSideNav       bool        `json:"show_side_nav"`
}

// PhoneFormat is the dialect used to validate phone numbers.
type PhoneFormat string

const (
	PhoneJP            PhoneFormat = "jp"
	PhoneInternational PhoneFormat = "international"
	PhoneAny           PhoneFormat = "any"
)

// ValidationRules configures submission-time validation.
type ValidationRules struct {
	RequiredFields []string    `json:"required_fields"`
	PhoneFormat    PhoneFormat `json:"phone_format"`
	MaxNameLength  int         `json:"max_name_length"`
}

// Field names usable in ValidationRules.RequiredFields.
const (
	FieldName       = "name"
	FieldPhone      = "phone"
	FieldGender     = "gender"
	FieldVisitCount = "visit_count"
	FieldCoupon     = "coupon"
	FieldMenu       = "menu"
	FieldDateTime   = "datetime"
	FieldMessage    = "message"
)
