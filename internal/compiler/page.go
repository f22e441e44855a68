package compiler

import (
	"html/template"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
)

// page is the view model of page.html.tmpl.
type page struct {
	Title     string
	StoreName string
	LogoURL   string
	LiffID    string
	Theme     theme

	Nav           []navItem
	SideNav       bool
	RepeatBooking bool

	MaxNameLength int

	Selections []selectionView

	Tabs       bool
	Categories []categoryView

	MultiDate       bool
	MaxAlternates   int
	ListMode        bool
	MessageRequired bool

	Inline bool
	Style  template.CSS
	Script template.JS
}

type theme struct {
	Color       string
	ButtonStyle string
	Radius      string
}

type navItem struct {
	Anchor string
	Label  string
}

type selectionView struct {
	Key      string
	Anchor   string
	Heading  string
	Required bool
	Choices  []form.Choice
}

type categoryView struct {
	ID     string
	Label  string
	Active bool
	Menus  []menuView
}

type menuView struct {
	ID          string
	Name        string
	Description string
	Price       string
	Duration    string
	HasSubmenu  bool
	SubItems    []itemView
	Options     []itemView
}

type itemView struct {
	ID          string
	Name        string
	Description string
	Price       string
	Duration    string
	Default     bool
}

var radii = map[form.ButtonStyle]string{
	form.ButtonRounded: "8px",
	form.ButtonSquare:  "0",
	form.ButtonPill:    "9999px",
}

func newPage(cfg form.Config) page {
	style := cfg.UISettings.ButtonStyle
	if _, ok := radii[style]; !ok {
		style = form.ButtonRounded
	}
	rules := cfg.ValidationRules

	p := page{
		Title:     cfg.BasicInfo.Title,
		StoreName: cfg.BasicInfo.StoreName,
		LogoURL:   cfg.BasicInfo.LogoURL,
		LiffID:    cfg.BasicInfo.LiffID,
		Theme: theme{
			Color:       cfg.BasicInfo.ThemeColor,
			ButtonStyle: string(style),
			Radius:      radii[style],
		},
		SideNav:         cfg.UISettings.ShowSideNav,
		RepeatBooking:   cfg.UISettings.ShowRepeatBooking,
		MaxNameLength:   rules.MaxNameLength,
		ListMode:        cfg.CalendarSettings.BookingMode == form.BookingList,
		MessageRequired: rules.Requires(form.FieldMessage),
	}

	p.Nav = append(p.Nav, navItem{Anchor: form.SectionCustomer, Label: "お客様情報"})
	for _, s := range []struct {
		key, anchor, heading string
		sel                  form.Selection
	}{
		{form.FieldGender, form.SectionGender, "性別", cfg.GenderSelection},
		{form.FieldVisitCount, form.SectionVisitCount, "ご来店回数", cfg.VisitCountSelection},
		{form.FieldCoupon, form.SectionCoupon, "クーポンのご利用", cfg.CouponSelection},
	} {
		if !s.sel.Enabled {
			continue
		}
		p.Selections = append(p.Selections, selectionView{
			Key:      s.key,
			Anchor:   s.anchor,
			Heading:  s.heading,
			Required: s.sel.Required || rules.Requires(s.key),
			Choices:  s.sel.Options,
		})
		p.Nav = append(p.Nav, navItem{Anchor: s.anchor, Label: s.heading})
	}

	display := cfg.MenuStructure.DisplayOptions
	for i, cat := range cfg.MenuStructure.Categories {
		cv := categoryView{ID: cat.ID, Label: cat.Label, Active: i == 0}
		for _, m := range cat.Menus {
			mv := menuView{ID: m.ID, Name: m.Name, HasSubmenu: m.HasSubmenu}
			mv.Description, mv.Price, mv.Duration = details(display, m.Description, m.Price, m.Duration)
			for _, s := range m.SubMenuItems {
				iv := itemView{ID: s.ID, Name: s.Name}
				iv.Description, iv.Price, iv.Duration = details(display, s.Description, s.Price, s.Duration)
				mv.SubItems = append(mv.SubItems, iv)
			}
			for _, o := range m.Options {
				iv := itemView{ID: o.ID, Name: o.Name, Default: o.IsDefault}
				_, iv.Price, iv.Duration = details(display, "", o.Price, o.Duration)
				mv.Options = append(mv.Options, iv)
			}
			cv.Menus = append(cv.Menus, mv)
		}
		p.Categories = append(p.Categories, cv)
	}
	p.Tabs = !cfg.MenuStructure.AllowCrossCategorySelection &&
		cfg.MenuStructure.StructureType != form.StructureFlat &&
		len(p.Categories) > 1

	multi := cfg.CalendarSettings.MultiDateSettings
	if multi.Enabled && multi.MaxDates > 1 {
		p.MultiDate = true
		p.MaxAlternates = multi.MaxDates - 1
	}

	p.Nav = append(p.Nav,
		navItem{Anchor: form.SectionMenu, Label: "メニュー"},
		navItem{Anchor: form.SectionDateTime, Label: "ご希望日時"},
		navItem{Anchor: form.SectionMessage, Label: "メッセージ"},
		navItem{Anchor: form.SectionSummary, Label: "ご予約内容"},
	)
	return p
}

// details applies the display options to a card.
func details(d form.DisplayOptions, description string, price, duration int) (string, string, string) {
	var desc, p, dur string
	if d.ShowDescription {
		desc = description
	}
	if d.ShowPrice {
		p = form.FormatPrice(price)
	}
	if d.ShowDuration && duration > 0 {
		dur = form.FormatDuration(duration)
	}
	return desc, p, dur
}
