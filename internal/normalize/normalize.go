package normalize

import (
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
)

// Normalizer resolves records against an ordered list of sources.
type Normalizer struct {
	sources []Source
}

// New returns a Normalizer using DefaultSources followed by extra, so a
// newly discovered record shape is added as one more source.
func New(extra ...Source) *Normalizer {
	sources := make([]Source, 0, len(DefaultSources)+len(extra))
	sources = append(sources, DefaultSources...)
	sources = append(sources, extra...)
	return &Normalizer{sources: sources}
}

// Normalize maps a record to its canonical configuration using DefaultSources.
func Normalize(record map[string]any) form.Config {
	cfg, _ := New().NormalizeWithReport(record)
	return cfg
}

// Normalize maps a record to its canonical configuration.
func (n *Normalizer) Normalize(record map[string]any) form.Config {
	cfg, _ := n.NormalizeWithReport(record)
	return cfg
}

// NormalizeWithReport also returns which source supplied each field.
func (n *Normalizer) NormalizeWithReport(record map[string]any) (form.Config, Report) {
	r := &resolver{record: record, sources: n.sources, report: Report{}}
	if r.record == nil {
		r.record = map[string]any{}
	}

	theme := orDefault(r, FieldThemeColor, form.DefaultThemeColor, color)

	cfg := form.Config{
		BasicInfo: form.BasicInfo{
			Title:      orDefault(r, FieldTitle, form.DefaultTitle, nonEmptyText),
			StoreName:  orDefault(r, FieldStoreName, "", text),
			ThemeColor: theme,
			LogoURL:    orDefault(r, FieldLogoURL, "", text),
			LiffID:     orDefault(r, FieldLiffID, "", text),
		},
		GenderSelection:     selection(r, SelectionGender, form.DefaultGenderOptions()),
		VisitCountSelection: selection(r, SelectionVisitCount, form.DefaultVisitCountOptions()),
		CouponSelection:     selection(r, SelectionCoupon, form.DefaultCouponOptions()),
		MenuStructure: form.MenuStructure{
			StructureType:               orDefault(r, FieldStructureType, form.StructureCategory, oneOf(form.StructureCategory, form.StructureFlat)),
			Categories:                  orDefault(r, FieldCategories, []form.Category{}, categories),
			AllowCrossCategorySelection: orDefault(r, FieldCrossCategory, false, boolean),
			DisplayOptions: form.DisplayOptions{
				ShowPrice:       orDefault(r, FieldShowPrice, true, boolean),
				ShowDuration:    orDefault(r, FieldShowDuration, true, boolean),
				ShowDescription: orDefault(r, FieldShowDescription, true, boolean),
			},
		},
		CalendarSettings: form.CalendarSettings{
			BusinessHours:      resolveHours(r),
			AdvanceBookingDays: orDefault(r, FieldAdvanceDays, form.DefaultAdvanceBookingDays, count),
			CalendarID:         orDefault(r, FieldCalendarID, "", text),
			BookingMode:        orDefault(r, FieldBookingMode, form.BookingCalendar, oneOf(form.BookingCalendar, form.BookingList)),
			MultiDateSettings: form.MultiDateSettings{
				Enabled:  orDefault(r, FieldMultiDateEnabled, false, boolean),
				MaxDates: orDefault(r, FieldMultiDateMax, form.DefaultMaxDates, positive),
			},
		},
		UISettings: form.UISettings{
			ThemeColor:        theme,
			ButtonStyle:       orDefault(r, FieldButtonStyle, form.ButtonRounded, oneOf(form.ButtonRounded, form.ButtonSquare, form.ButtonPill)),
			ShowRepeatBooking: orDefault(r, FieldShowRepeatBooking, false, boolean),
			ShowSideNav:       orDefault(r, FieldShowSideNav, false, boolean),
		},
		ValidationRules: form.ValidationRules{
			RequiredFields: orDefault(r, FieldRequiredFields, form.DefaultRequiredFields(), requiredFields),
			PhoneFormat:    orDefault(r, FieldPhoneFormat, form.PhoneJP, oneOf(form.PhoneJP, form.PhoneInternational, form.PhoneAny)),
			MaxNameLength:  orDefault(r, FieldMaxNameLength, form.DefaultMaxNameLength, positive),
		},
		WebhookEndpoint: orDefault(r, FieldWebhook, "", endpoint),
	}
	return cfg, r.report
}

// resolveHours walks the business hours chain, then the flat open/close
// pair, then the default week.
func resolveHours(r *resolver) form.BusinessHours {
	if week, ok := resolve(r, FieldBusinessHours, businessHours); ok {
		return week
	}
	open, okOpen := resolve(r, FieldOpenTime, nonEmptyText)
	close, okClose := resolve(r, FieldCloseTime, nonEmptyText)
	if okOpen && okClose {
		if week, ok := expandPair(open, close); ok {
			r.report[FieldBusinessHours] = SourceFlat
			return week
		}
	}
	r.report[FieldBusinessHours] = SourceDefault
	return form.DefaultWeek()
}

var knownFields = map[string]bool{
	form.FieldName:       true,
	form.FieldPhone:      true,
	form.FieldGender:     true,
	form.FieldVisitCount: true,
	form.FieldCoupon:     true,
	form.FieldMenu:       true,
	form.FieldDateTime:   true,
	form.FieldMessage:    true,
}

// requiredFields keeps known field names, deduplicated in order, and always
// starts with name and phone.
func requiredFields(c candidate) ([]string, bool) {
	list, ok := asList(c.value)
	if !ok {
		return nil, false
	}
	seen := map[string]bool{}
	var rest []string
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = cleanText(s)
		if !knownFields[s] || seen[s] {
			continue
		}
		seen[s] = true
		if s != form.FieldName && s != form.FieldPhone {
			rest = append(rest, s)
		}
	}
	return append(form.DefaultRequiredFields(), rest...), true
}
