package normalize

// Field names a canonical leaf (or list) resolved through the source chain.
type Field string

const (
	FieldTitle      Field = "title"
	FieldStoreName  Field = "store_name"
	FieldThemeColor Field = "theme_color"
	FieldLogoURL    Field = "logo_url"
	FieldLiffID     Field = "liff_id"

	FieldStructureType   Field = "structure_type"
	FieldCategories      Field = "categories"
	FieldCrossCategory   Field = "allow_cross_category_selection"
	FieldShowPrice       Field = "show_price"
	FieldShowDuration    Field = "show_duration"
	FieldShowDescription Field = "show_description"

	FieldBusinessHours    Field = "business_hours"
	FieldOpenTime         Field = "open_time"
	FieldCloseTime        Field = "close_time"
	FieldAdvanceDays      Field = "advance_booking_days"
	FieldCalendarID       Field = "calendar_id"
	FieldBookingMode      Field = "booking_mode"
	FieldMultiDateEnabled Field = "multi_date_enabled"
	FieldMultiDateMax     Field = "multi_date_max_dates"

	FieldButtonStyle       Field = "button_style"
	FieldShowRepeatBooking Field = "show_repeat_booking"
	FieldShowSideNav       Field = "show_side_nav"

	FieldRequiredFields Field = "required_fields"
	FieldPhoneFormat    Field = "phone_format"
	FieldMaxNameLength  Field = "max_name_length"

	FieldWebhook Field = "webhook_endpoint"
)

// Selection kinds share one path layout per source.
const (
	SelectionGender     = "gender"
	SelectionVisitCount = "visit_count"
	SelectionCoupon     = "coupon"
)

// SelectionField names an attribute (enabled, required, options, metadata)
// of one optional selection.
func SelectionField(kind, attr string) Field {
	return Field(kind + "." + attr)
}

// Source is one historical record shape. Paths maps a field to the dotted
// paths where that shape stores it, tried in order.
type Source struct {
	Name  string
	Paths map[Field][]string
}

// Source names reported by Report.
const (
	SourceCanonical = "canonical"
	SourceNested    = "nested"
	SourceFlat      = "flat"
	SourceDefault   = "default"
)

var selectionAttrs = []string{"enabled", "required", "options", "metadata"}

func withSelections(paths map[Field][]string, layout func(kind, attr string) []string) map[Field][]string {
	for _, kind := range []string{SelectionGender, SelectionVisitCount, SelectionCoupon} {
		for _, attr := range selectionAttrs {
			if p := layout(kind, attr); len(p) > 0 {
				paths[SelectionField(kind, attr)] = p
			}
		}
	}
	return paths
}

// CanonicalSource reads the canonical shape.
var CanonicalSource = Source{
	Name: SourceCanonical,
	Paths: withSelections(map[Field][]string{
		FieldTitle:             {"basic_info.title"},
		FieldStoreName:         {"basic_info.store_name"},
		FieldThemeColor:        {"basic_info.theme_color", "ui_settings.theme_color"},
		FieldLogoURL:           {"basic_info.logo_url"},
		FieldLiffID:            {"basic_info.liff_id"},
		FieldStructureType:     {"menu_structure.structure_type"},
		FieldCategories:        {"menu_structure.categories"},
		FieldCrossCategory:     {"menu_structure.allow_cross_category_selection"},
		FieldShowPrice:         {"menu_structure.display_options.show_price"},
		FieldShowDuration:      {"menu_structure.display_options.show_duration"},
		FieldShowDescription:   {"menu_structure.display_options.show_description"},
		FieldBusinessHours:     {"calendar_settings.business_hours"},
		FieldAdvanceDays:       {"calendar_settings.advance_booking_days"},
		FieldCalendarID:        {"calendar_settings.calendar_id"},
		FieldBookingMode:       {"calendar_settings.booking_mode"},
		FieldMultiDateEnabled:  {"calendar_settings.multi_date_settings.enabled"},
		FieldMultiDateMax:      {"calendar_settings.multi_date_settings.max_dates"},
		FieldButtonStyle:       {"ui_settings.button_style"},
		FieldShowRepeatBooking: {"ui_settings.show_repeat_booking"},
		FieldShowSideNav:       {"ui_settings.show_side_nav"},
		FieldRequiredFields:    {"validation_rules.required_fields"},
		FieldPhoneFormat:       {"validation_rules.phone_format"},
		FieldMaxNameLength:     {"validation_rules.max_name_length"},
		FieldWebhook:           {"webhook_endpoint"},
	}, func(kind, attr string) []string {
		return []string{kind + "_selection." + attr}
	}),
}

// NestedSource reads the partially nested shape with alternate section keys.
var NestedSource = Source{
	Name: SourceNested,
	Paths: withSelections(map[Field][]string{
		FieldTitle:             {"form_settings.title"},
		FieldStoreName:         {"store_info.name"},
		FieldThemeColor:        {"theme.color"},
		FieldLogoURL:           {"store_info.logo"},
		FieldLiffID:            {"line.liff_id"},
		FieldStructureType:     {"menu_settings.type"},
		FieldCategories:        {"menu_settings.categories"},
		FieldCrossCategory:     {"menu_settings.allow_cross_category"},
		FieldShowPrice:         {"menu_settings.show_price"},
		FieldShowDuration:      {"menu_settings.show_duration"},
		FieldShowDescription:   {"menu_settings.show_description"},
		FieldBusinessHours:     {"calendar.business_hours"},
		FieldAdvanceDays:       {"calendar.advance_days"},
		FieldCalendarID:        {"calendar.google_calendar_id"},
		FieldBookingMode:       {"calendar.mode"},
		FieldMultiDateEnabled:  {"calendar.multi_date.enabled"},
		FieldMultiDateMax:      {"calendar.multi_date.max_dates"},
		FieldButtonStyle:       {"theme.button_style"},
		FieldShowRepeatBooking: {"theme.repeat_booking"},
		FieldShowSideNav:       {"theme.side_nav"},
		FieldRequiredFields:    {"validation.required"},
		FieldPhoneFormat:       {"validation.phone_format"},
		FieldMaxNameLength:     {"validation.name_max_length"},
		FieldWebhook:           {"webhook.url"},
	}, func(kind, attr string) []string {
		return []string{kind + "." + attr}
	}),
}

// FlatSource reads the flat "simple form" shape.
var FlatSource = Source{
	Name: SourceFlat,
	Paths: withSelections(map[Field][]string{
		FieldTitle:             {"title", "form_name"},
		FieldStoreName:         {"store_name"},
		FieldThemeColor:        {"theme_color"},
		FieldLogoURL:           {"logo_url"},
		FieldLiffID:            {"liff_id"},
		FieldCategories:        {"menus"},
		FieldShowPrice:         {"show_price"},
		FieldShowDuration:      {"show_duration"},
		FieldShowDescription:   {"show_description"},
		FieldBusinessHours:     {"business_hours"},
		FieldOpenTime:          {"open_time"},
		FieldCloseTime:         {"close_time"},
		FieldAdvanceDays:       {"advance_booking_days"},
		FieldCalendarID:        {"calendar_id"},
		FieldBookingMode:       {"booking_mode"},
		FieldButtonStyle:       {"button_style"},
		FieldShowRepeatBooking: {"repeat_booking_enabled"},
		FieldShowSideNav:       {"side_nav_enabled"},
		FieldRequiredFields:    {"required_fields"},
		FieldPhoneFormat:       {"phone_format"},
		FieldMaxNameLength:     {"max_name_length"},
		FieldWebhook:           {"webhook_url"},
	}, func(kind, attr string) []string {
		if attr == "metadata" {
			return nil
		}
		return []string{kind + "_" + attr}
	}),
}

// DefaultSources is the priority chain used by Normalize.
var DefaultSources = []Source{CanonicalSource, NestedSource, FlatSource}
