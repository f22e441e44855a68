package form

import "time"

// Default values applied when no source provides a field.
const (
	DefaultTitle              = "予約フォーム"
	DefaultThemeColor         = "#3B82F6"
	DefaultOpen               = "09:00"
	DefaultClose              = "18:00"
	DefaultAdvanceBookingDays = 30
	DefaultMaxDates           = 3
	DefaultMaxNameLength      = 50
	DefaultCategoryLabel      = "メニュー"
)

// DefaultDay is the opening window used for open weekdays.
func DefaultDay() DayHours {
	return DayHours{Open: DefaultOpen, Close: DefaultClose}
}

// DefaultWeek returns Monday to Saturday open with DefaultDay and Sunday closed.
// ExpandPair(DefaultOpen, DefaultClose) yields the same week.
func DefaultWeek() BusinessHours {
	return ExpandPair(DefaultOpen, DefaultClose)
}

// ExpandPair turns a single open/close pair into a full week with Sunday closed.
func ExpandPair(open, close string) BusinessHours {
	var week BusinessHours
	for _, d := range Weekdays {
		week.SetDay(d, DayHours{Open: open, Close: close, Closed: d == time.Sunday})
	}
	return week
}

// DefaultGenderOptions returns the stock gender answers.
func DefaultGenderOptions() []Choice {
	return []Choice{
		{Value: "male", Label: "男性"},
		{Value: "female", Label: "女性"},
		{Value: "other", Label: "その他"},
	}
}

// DefaultVisitCountOptions returns the stock visit count answers.
func DefaultVisitCountOptions() []Choice {
	return []Choice{
		{Value: "first", Label: "初めて"},
		{Value: "repeat", Label: "2回目以降"},
	}
}

// DefaultCouponOptions returns the stock coupon answers.
func DefaultCouponOptions() []Choice {
	return []Choice{
		{Value: "use", Label: "利用する"},
		{Value: "none", Label: "利用しない"},
	}
}

// DefaultRequiredFields returns the fields that are always required.
func DefaultRequiredFields() []string {
	return []string{FieldName, FieldPhone}
}

// Default returns a complete configuration built only from defaults.
// Each call returns fresh slices.
func Default() Config {
	return Config{
		BasicInfo: BasicInfo{
			Title:      DefaultTitle,
			ThemeColor: DefaultThemeColor,
		},
		GenderSelection:     Selection{Options: DefaultGenderOptions()},
		VisitCountSelection: Selection{Options: DefaultVisitCountOptions()},
		CouponSelection:     Selection{Options: DefaultCouponOptions()},
		MenuStructure: MenuStructure{
			StructureType: StructureCategory,
			Categories:    []Category{},
			DisplayOptions: DisplayOptions{
				ShowPrice:       true,
				ShowDuration:    true,
				ShowDescription: true,
			},
		},
		CalendarSettings: CalendarSettings{
			BusinessHours:      DefaultWeek(),
			AdvanceBookingDays: DefaultAdvanceBookingDays,
			BookingMode:        BookingCalendar,
			MultiDateSettings:  MultiDateSettings{MaxDates: DefaultMaxDates},
		},
		UISettings: UISettings{
			ThemeColor:  DefaultThemeColor,
			ButtonStyle: ButtonRounded,
		},
		ValidationRules: ValidationRules{
			RequiredFields: DefaultRequiredFields(),
			PhoneFormat:    PhoneJP,
			MaxNameLength:  DefaultMaxNameLength,
		},
	}
}
