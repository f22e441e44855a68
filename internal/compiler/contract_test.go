package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
)

func TestCheckContractValid(t *testing.T) {
	assert.Empty(t, CheckContract(salonConfig()))
	assert.Empty(t, CheckContract(form.Default()))
}

func TestCheckContractViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*form.Config)
		code   string
		field  string
	}{
		{
			name:   "missing title",
			mutate: func(c *form.Config) { c.BasicInfo.Title = "  " },
			code:   ErrTitleMissing,
			field:  "basic_info.title",
		},
		{
			name:   "bad theme color",
			mutate: func(c *form.Config) { c.BasicInfo.ThemeColor = "pink"; c.UISettings.ThemeColor = "" },
			code:   ErrInvalidColor,
			field:  "basic_info.theme_color",
		},
		{
			name:   "theme out of sync",
			mutate: func(c *form.Config) { c.UISettings.ThemeColor = "#000000" },
			code:   ErrThemeOutOfSync,
			field:  "ui_settings.theme_color",
		},
		{
			name: "malformed hours",
			mutate: func(c *form.Config) {
				c.CalendarSettings.BusinessHours.Tuesday = form.DayHours{Open: "18:00", Close: "09:00"}
			},
			code:  ErrMalformedHours,
			field: "calendar_settings.business_hours.tuesday",
		},
		{
			name: "sub items and options",
			mutate: func(c *form.Config) {
				m := &c.MenuStructure.Categories[1].Menus[0]
				m.Options = []form.Option{{ID: "x", Name: "x"}}
			},
			code:  ErrMixedRefinement,
			field: "menu_structure.categories[1].menus[0]",
		},
		{
			name: "duplicate menu id",
			mutate: func(c *form.Config) {
				c.MenuStructure.Categories[1].Menus[0].ID = "menu-cut"
			},
			code:  ErrDuplicateID,
			field: "menu_structure.categories[1].menus[0]",
		},
		{
			name:   "unknown button style",
			mutate: func(c *form.Config) { c.UISettings.ButtonStyle = "round" },
			code:   ErrInvalidEnum,
			field:  "ui_settings.button_style",
		},
		{
			name:   "negative price",
			mutate: func(c *form.Config) { c.MenuStructure.Categories[0].Menus[0].Price = -1 },
			code:   ErrNegativeQuantity,
			field:  "menu_structure.categories[0].menus[0]",
		},
		{
			name:   "relative webhook",
			mutate: func(c *form.Config) { c.WebhookEndpoint = "/hook" },
			code:   ErrInvalidEndpoint,
			field:  "webhook_endpoint",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := salonConfig()
			tt.mutate(&cfg)

			errs := CheckContract(cfg)
			require.Len(t, errs, 1, "%v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.True(t, strings.HasPrefix(errs[0].Error(), "["+tt.code+"] "))
		})
	}
}

func TestCheckContractEmptySectionsAllowed(t *testing.T) {
	cfg := form.Config{BasicInfo: form.BasicInfo{Title: "t", ThemeColor: "#FFF"}}
	assert.Empty(t, CheckContract(cfg))
}

func TestContractErrorCollectsAll(t *testing.T) {
	cfg := salonConfig()
	cfg.BasicInfo.Title = ""
	cfg.WebhookEndpoint = "ftp://example.com"

	_, err := Compile(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrTitleMissing)
	assert.Contains(t, err.Error(), ErrInvalidEndpoint)
}
