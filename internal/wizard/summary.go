package wizard

import (
	"fmt"
	"strings"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/submission"
)

// Totals is the price and duration of the active selection.
type Totals struct {
	Price    int `json:"price"`
	Duration int `json:"duration"`
}

// Totals adds the menu (or chosen sub item) to the selected options.
func (m *Machine) Totals(s State) Totals {
	menu, sub, ok := selection(m.cfg, s)
	if !ok {
		return Totals{}
	}
	t := Totals{Price: menu.Price, Duration: menu.Duration}
	if sub != nil {
		t = Totals{Price: sub.Price, Duration: sub.Duration}
	}
	for _, id := range s.OptionIDs {
		if o, ok := menu.FindOption(id); ok {
			t.Price += o.Price
			t.Duration += o.Duration
		}
	}
	return t
}

// SummaryItem is one line of the summary panel.
type SummaryItem struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Anchor string `json:"anchor"`
}

// Summary lists the fields set in s in form order. Unset fields are omitted.
func (m *Machine) Summary(s State) []SummaryItem {
	items := []SummaryItem{}
	add := func(key, label, value, anchor string) {
		if value == "" {
			return
		}
		items = append(items, SummaryItem{Key: key, Label: label, Value: value, Anchor: anchor})
	}

	add(form.FieldName, "お名前", strings.TrimSpace(s.Name), form.SectionCustomer)
	add(form.FieldPhone, "電話番号", strings.TrimSpace(s.Phone), form.SectionCustomer)
	add(form.FieldGender, "性別", answer(m.cfg.GenderSelection, s.Gender), form.SectionGender)
	add(form.FieldVisitCount, "ご来店回数", answer(m.cfg.VisitCountSelection, s.VisitCount), form.SectionVisitCount)
	add(form.FieldCoupon, "クーポン", answer(m.cfg.CouponSelection, s.Coupon), form.SectionCoupon)

	if menu, sub, ok := selection(m.cfg, s); ok {
		display := m.cfg.MenuStructure.DisplayOptions
		name, price := menu.Name, menu.Price
		if sub != nil {
			name, price = menu.Name+" / "+sub.Name, sub.Price
		}
		if display.ShowPrice {
			name += "（" + form.FormatPrice(price) + "）"
		}
		add(form.FieldMenu, "メニュー", name, form.SectionMenu)
		for _, id := range s.OptionIDs {
			o, ok := menu.FindOption(id)
			if !ok {
				continue
			}
			value := o.Name
			if display.ShowPrice {
				value += "（+" + form.FormatPrice(o.Price) + "）"
			}
			add("option:"+o.ID, "オプション", value, form.SectionMenu)
		}
	}

	if s.Date != "" {
		value := s.Date
		if s.Time != "" {
			value += " " + s.Time
		}
		add(form.FieldDateTime, "ご希望日時", value, form.SectionDateTime)
	}
	for i, alt := range s.Alternates {
		add(fmt.Sprintf("alternate:%d", i+1), fmt.Sprintf("第%d希望", i+2), alt.Date+" "+alt.Time, form.SectionDateTime)
	}
	add(form.FieldMessage, "メッセージ", strings.TrimSpace(s.Message), form.SectionMessage)
	return items
}

// answer returns the label of an enabled selection's answer.
func answer(sel form.Selection, value string) string {
	if !sel.Enabled || value == "" {
		return ""
	}
	if label, ok := sel.Label(value); ok {
		return label
	}
	return ""
}

// Payload builds the webhook body for s.
func (m *Machine) Payload(s State) submission.Payload {
	totals := m.Totals(s)
	st := submission.State{
		Name:       strings.TrimSpace(s.Name),
		Phone:      NormalizePhone(s.Phone),
		Options:    []submission.Option{},
		Date:       s.Date,
		Time:       s.Time,
		Alternates: []submission.Slot{},
		Message:    s.Message,
		LineUserID: s.LineUserID,
	}
	if m.cfg.GenderSelection.Enabled {
		st.Gender = s.Gender
	}
	if m.cfg.VisitCountSelection.Enabled {
		st.VisitCount = s.VisitCount
	}
	if m.cfg.CouponSelection.Enabled {
		st.Coupon = s.Coupon
	}
	if menu, sub, ok := selection(m.cfg, s); ok {
		st.MenuID, st.MenuName = menu.ID, menu.Name
		if sub != nil {
			st.SubmenuID, st.SubmenuName = sub.ID, sub.Name
		}
		for _, id := range s.OptionIDs {
			if o, ok := menu.FindOption(id); ok {
				st.Options = append(st.Options, submission.Option{ID: o.ID, Name: o.Name, Price: o.Price})
			}
		}
	}
	for _, alt := range s.Alternates {
		st.Alternates = append(st.Alternates, submission.Slot{Date: alt.Date, Time: alt.Time})
	}
	return submission.Payload{
		FormTitle:     m.cfg.BasicInfo.Title,
		StoreName:     m.cfg.BasicInfo.StoreName,
		SubmittedAt:   s.SubmittedAt,
		State:         st,
		TotalPrice:    totals.Price,
		TotalDuration: totals.Duration,
	}
}

// ConfirmationText is the message sent through the identity SDK after a
// submission. The compiled runtime builds the same text.
func (m *Machine) ConfirmationText(s State) string {
	var b strings.Builder
	b.WriteString("【ご予約内容】\n")
	if store := m.cfg.BasicInfo.StoreName; store != "" {
		b.WriteString("店舗: " + store + "\n")
	}
	for _, item := range m.Summary(s) {
		b.WriteString(item.Label + ": " + item.Value + "\n")
	}
	t := m.Totals(s)
	b.WriteString("合計: " + form.FormatPrice(t.Price) + " / " + form.FormatDuration(t.Duration))
	return b.String()
}
