package compiler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
)

// Contract violation codes (E200-E299)
const (
	// Basic info (E201-E203)
	ErrTitleMissing     = "E201" // title is required
	ErrInvalidColor     = "E202" // theme color must be #RGB or #RRGGBB
	ErrThemeOutOfSync   = "E203" // ui_settings.theme_color differs from basic_info
	ErrMalformedHours   = "E204" // open/close not HH:MM or open >= close
	ErrMixedRefinement  = "E205" // menu has both sub items and options
	ErrDuplicateID      = "E206" // id reused within the catalogue
	ErrInvalidEnum      = "E207" // enum value outside its set
	ErrNegativeQuantity = "E208" // negative price, duration or count
	ErrInvalidEndpoint  = "E209" // webhook endpoint is not an absolute http(s) URL
)

var hexColor = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Violation is one broken compiler precondition.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	return fmt.Sprintf("[%s] %s: %s", v.Code, v.Field, v.Message)
}

// ContractError reports a configuration the normalizer could not have
// produced. It signals a programming error upstream, not bad user input.
type ContractError struct {
	Violations []Violation
}

func (e *ContractError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Error()
	}
	return "compiler contract violated: " + strings.Join(parts, "; ")
}

// CheckContract returns every precondition cfg breaks (does not fail-fast).
// Structurally empty sections are not violations; they compile as disabled.
func CheckContract(cfg form.Config) []Violation {
	var errs []Violation
	add := func(code, field, format string, args ...any) {
		errs = append(errs, Violation{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	// E201: title
	if strings.TrimSpace(cfg.BasicInfo.Title) == "" {
		add(ErrTitleMissing, "basic_info.title", "title is required")
	}

	// E202/E203: theme color
	if !hexColor.MatchString(cfg.BasicInfo.ThemeColor) {
		add(ErrInvalidColor, "basic_info.theme_color", "invalid color %q", cfg.BasicInfo.ThemeColor)
	}
	if ui := cfg.UISettings.ThemeColor; ui != "" && !strings.EqualFold(ui, cfg.BasicInfo.ThemeColor) {
		add(ErrThemeOutOfSync, "ui_settings.theme_color", "%q differs from basic_info.theme_color %q", ui, cfg.BasicInfo.ThemeColor)
	}

	// E204: business hours
	for _, d := range form.Weekdays {
		h := cfg.CalendarSettings.BusinessHours.Day(d)
		if h.Closed || (h.Open == "" && h.Close == "") {
			continue
		}
		if _, _, ok := h.Window(); !ok {
			add(ErrMalformedHours, "calendar_settings.business_hours."+form.WeekdayKey(d),
				"invalid window %q-%q", h.Open, h.Close)
		}
	}

	// E205/E206/E208: catalogue. Category and menu ids are unique across
	// the form; sub item and option ids within their menu.
	claim := func(seen map[string]string, field, id string) {
		if id == "" {
			return
		}
		if prev, ok := seen[id]; ok {
			add(ErrDuplicateID, field, "id %q already used by %s", id, prev)
			return
		}
		seen[id] = field
	}
	quantity := func(field string, price, duration int) {
		if price < 0 || duration < 0 {
			add(ErrNegativeQuantity, field, "price %d and duration %d must not be negative", price, duration)
		}
	}
	catIDs, menuIDs := map[string]string{}, map[string]string{}
	for ci, cat := range cfg.MenuStructure.Categories {
		cf := fmt.Sprintf("menu_structure.categories[%d]", ci)
		claim(catIDs, cf, cat.ID)
		for mi, m := range cat.Menus {
			mf := fmt.Sprintf("%s.menus[%d]", cf, mi)
			claim(menuIDs, mf, m.ID)
			quantity(mf, m.Price, m.Duration)
			if len(m.SubMenuItems) > 0 && len(m.Options) > 0 {
				add(ErrMixedRefinement, mf, "menu %q has both sub items and options", m.ID)
			}
			if !m.HasSubmenu && len(m.SubMenuItems) > 0 {
				add(ErrMixedRefinement, mf, "menu %q lists sub items without has_submenu", m.ID)
			}
			subIDs, optIDs := map[string]string{}, map[string]string{}
			for si, s := range m.SubMenuItems {
				sf := fmt.Sprintf("%s.sub_menu_items[%d]", mf, si)
				claim(subIDs, sf, s.ID)
				quantity(sf, s.Price, s.Duration)
			}
			for oi, o := range m.Options {
				of := fmt.Sprintf("%s.options[%d]", mf, oi)
				claim(optIDs, of, o.ID)
				quantity(of, o.Price, o.Duration)
			}
		}
	}

	// E207: enums (empty means default)
	enum := func(field, value string, allowed ...string) {
		if value == "" {
			return
		}
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		add(ErrInvalidEnum, field, "%q is not one of %s", value, strings.Join(allowed, ", "))
	}
	enum("menu_structure.structure_type", string(cfg.MenuStructure.StructureType),
		string(form.StructureCategory), string(form.StructureFlat))
	enum("calendar_settings.booking_mode", string(cfg.CalendarSettings.BookingMode),
		string(form.BookingCalendar), string(form.BookingList))
	enum("ui_settings.button_style", string(cfg.UISettings.ButtonStyle),
		string(form.ButtonRounded), string(form.ButtonSquare), string(form.ButtonPill))
	enum("validation_rules.phone_format", string(cfg.ValidationRules.PhoneFormat),
		string(form.PhoneJP), string(form.PhoneInternational), string(form.PhoneAny))

	// E208: counts
	if cfg.CalendarSettings.AdvanceBookingDays < 0 {
		add(ErrNegativeQuantity, "calendar_settings.advance_booking_days", "must not be negative")
	}
	if cfg.CalendarSettings.MultiDateSettings.MaxDates < 0 {
		add(ErrNegativeQuantity, "calendar_settings.multi_date_settings.max_dates", "must not be negative")
	}
	if cfg.ValidationRules.MaxNameLength < 0 {
		add(ErrNegativeQuantity, "validation_rules.max_name_length", "must not be negative")
	}

	// E209: webhook
	if ep := cfg.WebhookEndpoint; ep != "" {
		u, err := url.Parse(ep)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add(ErrInvalidEndpoint, "webhook_endpoint", "%q is not an absolute http(s) URL", ep)
		}
	}

	return errs
}
