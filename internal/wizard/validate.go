package wizard

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
)

// ValidationError is the first failed check of a submission attempt.
// Anchor is the section the form scrolls back to.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Anchor  string `json:"anchor"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	jpPhone            = regexp.MustCompile(`^0\d{9,10}$`)
	internationalPhone = regexp.MustCompile(`^\+?\d{7,15}$`)
	phoneNoise         = strings.NewReplacer("-", "", " ", "", "(", "", ")", "")
)

// NormalizePhone folds full-width characters and strips separators.
func NormalizePhone(phone string) string {
	return phoneNoise.Replace(width.Narrow.String(strings.TrimSpace(phone)))
}

// ValidPhone checks phone against the configured dialect.
func ValidPhone(phone string, format form.PhoneFormat) bool {
	p := NormalizePhone(phone)
	switch format {
	case form.PhoneInternational:
		return internationalPhone.MatchString(p)
	case form.PhoneAny:
		return p != ""
	default:
		return jpPhone.MatchString(p)
	}
}

// Validate runs the submission checks top to bottom and returns the first
// failure, or nil.
func (m *Machine) Validate(s State) *ValidationError {
	rules := m.cfg.ValidationRules

	name := strings.TrimSpace(s.Name)
	if name == "" {
		return &ValidationError{Field: form.FieldName, Message: "お名前を入力してください", Anchor: form.SectionCustomer}
	}
	if max := rules.MaxNameLength; max > 0 && utf8.RuneCountInString(name) > max {
		return &ValidationError{
			Field:   form.FieldName,
			Message: fmt.Sprintf("お名前は%d文字以内で入力してください", max),
			Anchor:  form.SectionCustomer,
		}
	}
	if strings.TrimSpace(s.Phone) == "" {
		return &ValidationError{Field: form.FieldPhone, Message: "電話番号を入力してください", Anchor: form.SectionCustomer}
	}
	if !ValidPhone(s.Phone, rules.PhoneFormat) {
		return &ValidationError{Field: form.FieldPhone, Message: "電話番号の形式が正しくありません", Anchor: form.SectionCustomer}
	}

	choices := []struct {
		field, anchor, message, value string
		sel                           form.Selection
	}{
		{form.FieldGender, form.SectionGender, "性別を選択してください", s.Gender, m.cfg.GenderSelection},
		{form.FieldVisitCount, form.SectionVisitCount, "ご来店回数を選択してください", s.VisitCount, m.cfg.VisitCountSelection},
		{form.FieldCoupon, form.SectionCoupon, "クーポン利用の有無を選択してください", s.Coupon, m.cfg.CouponSelection},
	}
	for _, c := range choices {
		if c.sel.Enabled && (c.sel.Required || rules.Requires(c.field)) && c.value == "" {
			return &ValidationError{Field: c.field, Message: c.message, Anchor: c.anchor}
		}
	}

	menu, sub, ok := selection(m.cfg, s)
	if !ok {
		return &ValidationError{Field: form.FieldMenu, Message: "メニューを選択してください", Anchor: form.SectionMenu}
	}
	if menu.HasSubmenu && sub == nil {
		return &ValidationError{Field: form.FieldMenu, Message: "サブメニューを選択してください", Anchor: form.SectionMenu}
	}
	if s.Date == "" || s.Time == "" {
		return &ValidationError{Field: form.FieldDateTime, Message: "ご希望の日時を選択してください", Anchor: form.SectionDateTime}
	}
	if rules.Requires(form.FieldMessage) && strings.TrimSpace(s.Message) == "" {
		return &ValidationError{Field: form.FieldMessage, Message: "メッセージを入力してください", Anchor: form.SectionMessage}
	}
	return nil
}
