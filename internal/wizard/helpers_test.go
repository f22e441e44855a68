package wizard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/testutil"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/wizard"
)

// wednesday is 2026-10-14 10:15 JST; its week starts Monday 2026-10-12.
var wednesday = time.Date(2026, 10, 14, 10, 15, 0, 0, testutil.JST)

func salonConfig() form.Config {
	cfg := form.Default()
	cfg.BasicInfo.Title = "Cut Reservation"
	cfg.BasicInfo.StoreName = "Salon Wakuwaku"
	cfg.CalendarSettings.AdvanceBookingDays = 30
	cfg.MenuStructure.Categories = []form.Category{{
		ID:    "cat-hair",
		Label: "ヘア",
		Menus: []form.Menu{
			{
				ID:           "menu-a",
				Name:         "カット",
				Price:        4000,
				Duration:     60,
				SubMenuItems: []form.SubMenuItem{},
				Options: []form.Option{
					{ID: "opt-shampoo", Name: "シャンプー", Price: 500, Duration: 15},
					{ID: "opt-treatment", Name: "トリートメント", Price: 1500, Duration: 30, IsDefault: true},
				},
			},
			{
				ID:         "menu-b",
				Name:       "カラー",
				Price:      6000,
				Duration:   90,
				HasSubmenu: true,
				SubMenuItems: []form.SubMenuItem{
					{ID: "sub-short", Name: "ショート", Price: 6000, Duration: 90},
					{ID: "sub-long", Name: "ロング", Price: 8000, Duration: 120},
				},
				Options: []form.Option{},
			},
		},
	}}
	return cfg
}

func newMachine(t *testing.T, cfg form.Config, avail wizard.Availability) (*wizard.Machine, *testutil.FixedClock) {
	t.Helper()
	clock := testutil.NewFixedClock(wednesday)
	return wizard.New(cfg, wizard.WithClock(clock), wizard.WithAvailability(avail)), clock
}

// apply runs actions in order and fails the test if any produced effects.
func apply(t *testing.T, m *wizard.Machine, s wizard.State, actions ...wizard.Action) wizard.State {
	t.Helper()
	for _, a := range actions {
		var effects []wizard.Effect
		s, effects = m.Apply(s, a)
		require.Empty(t, effects, "action %s", a.Kind)
	}
	return s
}

func customer() []wizard.Action {
	return []wizard.Action{
		{Kind: wizard.ActionSetName, Value: "山田 花子"},
		{Kind: wizard.ActionSetPhone, Value: "090-1234-5678"},
	}
}
