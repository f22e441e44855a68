package wizard_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/submission"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/wizard"
)

func TestStart(t *testing.T) {
	m, _ := newMachine(t, salonConfig(), wizard.AlwaysAvailable)
	s := m.Start()

	assert.Equal(t, wizard.PhaseIdle, s.Phase)
	assert.Equal(t, "2026-10-12", s.WeekStart)
	assert.NotNil(t, s.OptionIDs)
	assert.NotNil(t, s.Alternates)
	assert.False(t, s.CalendarVisible())
}

func TestSwitchingMenuClearsOptionsAndRequiresSubmenu(t *testing.T) {
	m, _ := newMachine(t, salonConfig(), wizard.AlwaysAvailable)

	s := apply(t, m, m.Start(), wizard.Action{Kind: wizard.ActionSelectMenu, ID: "menu-a"})
	assert.Equal(t, wizard.PhaseMenuChosen, s.Phase)
	assert.Equal(t, []string{"opt-treatment"}, s.OptionIDs, "default option preselected")

	s = apply(t, m, s, wizard.Action{Kind: wizard.ActionToggleOption, ID: "opt-shampoo"})
	assert.Equal(t, []string{"opt-shampoo", "opt-treatment"}, s.OptionIDs)
	assert.Equal(t, wizard.Totals{Price: 6000, Duration: 105}, m.Totals(s))

	s = apply(t, m, s, wizard.Action{Kind: wizard.ActionSelectMenu, ID: "menu-b"})
	assert.Equal(t, wizard.PhaseAwaitingSubmenu, s.Phase)
	assert.Empty(t, s.OptionIDs)
	assert.False(t, s.CalendarVisible())

	s = apply(t, m, s, wizard.Action{Kind: wizard.ActionPickDate, Date: "2026-10-16"})
	assert.Empty(t, s.Date, "calendar hidden until a submenu is chosen")

	s = apply(t, m, s, wizard.Action{Kind: wizard.ActionSelectSubmenu, ID: "sub-short"})
	assert.Equal(t, wizard.PhaseSubmenuChosen, s.Phase)
	assert.True(t, s.CalendarVisible())
}

func TestOptionsBelongToActiveMenu(t *testing.T) {
	m, _ := newMachine(t, salonConfig(), wizard.AlwaysAvailable)

	s := apply(t, m, m.Start(),
		wizard.Action{Kind: wizard.ActionSelectMenu, ID: "menu-b"},
		wizard.Action{Kind: wizard.ActionToggleOption, ID: "opt-shampoo"},
	)
	assert.Empty(t, s.OptionIDs)

	s = apply(t, m, s,
		wizard.Action{Kind: wizard.ActionSelectMenu, ID: "menu-a"},
		wizard.Action{Kind: wizard.ActionToggleOption, ID: "opt-treatment"},
	)
	assert.Empty(t, s.OptionIDs, "toggling the default option removes it")
}

func TestReselectingMenuKeepsSelections(t *testing.T) {
	m, _ := newMachine(t, salonConfig(), wizard.AlwaysAvailable)

	s := apply(t, m, m.Start(),
		wizard.Action{Kind: wizard.ActionSelectMenu, ID: "menu-a"},
		wizard.Action{Kind: wizard.ActionPickSlot, Date: "2026-10-16", Time: "11:00"},
		wizard.Action{Kind: wizard.ActionSelectMenu, ID: "menu-a"},
	)
	assert.Equal(t, "2026-10-16", s.Date)
	assert.Equal(t, "11:00", s.Time)
	assert.Equal(t, wizard.PhaseReadyToSubmit, s.Phase)
}

func TestSubmenuChangeRevalidatesSlot(t *testing.T) {
	shortOnly := wizard.AvailabilityFunc(func(_, _ string, duration int) bool { return duration <= 100 })

	tests := []struct {
		name     string
		avail    wizard.Availability
		wantDate string
	}{
		{name: "slot still bookable", avail: wizard.AlwaysAvailable, wantDate: "2026-10-16"},
		{name: "slot no longer bookable", avail: shortOnly, wantDate: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newMachine(t, salonConfig(), tt.avail)
			s := apply(t, m, m.Start(),
				wizard.Action{Kind: wizard.ActionSelectMenu, ID: "menu-b"},
				wizard.Action{Kind: wizard.ActionSelectSubmenu, ID: "sub-short"},
				wizard.Action{Kind: wizard.ActionPickSlot, Date: "2026-10-16", Time: "11:00"},
				wizard.Action{Kind: wizard.ActionSelectSubmenu, ID: "sub-long"},
			)
			assert.Equal(t, "sub-long", s.SubmenuID)
			assert.Equal(t, tt.wantDate, s.Date)
		})
	}
}

func TestSubmitWithoutDateTimeHaltsBeforeDelivery(t *testing.T) {
	cfg := salonConfig()
	cfg.WebhookEndpoint = "https://example.com/hook"
	m, _ := newMachine(t, cfg, wizard.AlwaysAvailable)

	s := apply(t, m, m.Start(), customer()...)
	s = apply(t, m, s, wizard.Action{Kind: wizard.ActionSelectMenu, ID: "menu-a"})

	s, effects := m.Apply(s, wizard.Action{Kind: wizard.ActionSubmit})
	assert.Empty(t, effects)
	require.NotNil(t, s.Error)
	assert.Equal(t, form.FieldDateTime, s.Error.Field)
	assert.Equal(t, form.SectionDateTime, s.Error.Anchor)
	assert.Equal(t, wizard.PhaseMenuChosen, s.Phase)

	s = apply(t, m, s, wizard.Action{Kind: wizard.ActionPickSlot, Date: "2026-10-16", Time: "11:00"})
	assert.Nil(t, s.Error, "next action clears the surfaced error")
}

func TestSubmitProducesEffects(t *testing.T) {
	cfg := salonConfig()
	cfg.WebhookEndpoint = "https://example.com/hook"
	cfg.BasicInfo.LiffID = "1234567890-abcdefgh"
	m, _ := newMachine(t, cfg, wizard.AlwaysAvailable)

	s := apply(t, m, m.Start(), customer()...)
	s = apply(t, m, s,
		wizard.Action{Kind: wizard.ActionSetProfile, Value: "LINE Name", ID: "U123"},
		wizard.Action{Kind: wizard.ActionSelectMenu, ID: "menu-a"},
		wizard.Action{Kind: wizard.ActionPickDate, Date: "2026-10-16"},
		wizard.Action{Kind: wizard.ActionPickTime, Time: "11:00"},
	)
	require.Equal(t, wizard.PhaseReadyToSubmit, s.Phase)
	assert.Equal(t, "山田 花子", s.Name, "profile never overwrites a typed name")

	s, effects := m.Apply(s, wizard.Action{Kind: wizard.ActionSubmit})
	assert.Equal(t, wizard.PhaseSubmitting, s.Phase)
	assert.Equal(t, "2026-10-14T10:15:00+09:00", s.SubmittedAt)
	require.Len(t, effects, 2)

	hook := effects[0]
	assert.Equal(t, wizard.EffectWebhook, hook.Kind)
	assert.Equal(t, "https://example.com/hook", hook.URL)
	assert.Equal(t, "09012345678", hook.Payload.State.Phone)
	assert.Equal(t, "U123", hook.Payload.State.LineUserID)
	assert.Equal(t, 5500, hook.Payload.TotalPrice)
	assert.Equal(t, 90, hook.Payload.TotalDuration)
	require.NoError(t, submission.Validate(hook.Payload))

	assert.Equal(t, wizard.EffectMessage, effects[1].Kind)
	assert.Contains(t, effects[1].Text, "【ご予約内容】")

	ignored, effects := m.Apply(s, wizard.Action{Kind: wizard.ActionSetName, Value: "changed"})
	assert.Empty(t, effects)
	assert.Equal(t, s, ignored, "input is locked while submitting")

	s = apply(t, m, s, wizard.Action{Kind: wizard.ActionDelivered})
	assert.Equal(t, wizard.PhaseSubmitted, s.Phase)
	assert.True(t, s.Terminal())

	final, effects := m.Apply(s, wizard.Action{Kind: wizard.ActionSubmit})
	assert.Empty(t, effects)
	assert.Equal(t, s, final)
}

func TestSubmitWithoutEndpointsHasNoEffects(t *testing.T) {
	m, _ := newMachine(t, salonConfig(), wizard.AlwaysAvailable)

	s := apply(t, m, m.Start(), customer()...)
	s = apply(t, m, s,
		wizard.Action{Kind: wizard.ActionSelectMenu, ID: "menu-a"},
		wizard.Action{Kind: wizard.ActionPickSlot, Date: "2026-10-16", Time: "11:00"},
	)
	s, effects := m.Apply(s, wizard.Action{Kind: wizard.ActionSubmit})
	assert.Equal(t, wizard.PhaseSubmitting, s.Phase)
	assert.Empty(t, effects)
}

func TestDisabledSelectionIgnoresAnswers(t *testing.T) {
	cfg := salonConfig()
	cfg.VisitCountSelection.Enabled = true
	m, _ := newMachine(t, cfg, wizard.AlwaysAvailable)

	s := apply(t, m, m.Start(),
		wizard.Action{Kind: wizard.ActionSetGender, Value: "female"},
		wizard.Action{Kind: wizard.ActionSetVisitCount, Value: "repeat"},
		wizard.Action{Kind: wizard.ActionSetVisitCount, Value: "unknown"},
	)
	assert.Empty(t, s.Gender)
	assert.Equal(t, "repeat", s.VisitCount, "unknown answers leave the current one")
}

func TestMultiDateAlternates(t *testing.T) {
	cfg := salonConfig()
	cfg.CalendarSettings.MultiDateSettings = form.MultiDateSettings{Enabled: true, MaxDates: 3}
	m, _ := newMachine(t, cfg, wizard.AlwaysAvailable)

	s := apply(t, m, m.Start(), wizard.Action{Kind: wizard.ActionSelectMenu, ID: "menu-a"})
	s = apply(t, m, s, wizard.Action{Kind: wizard.ActionAddAlternate, Date: "2026-10-17", Time: "10:00"})
	assert.Empty(t, s.Alternates, "alternates follow the primary slot")

	s = apply(t, m, s,
		wizard.Action{Kind: wizard.ActionPickSlot, Date: "2026-10-16", Time: "11:00"},
		wizard.Action{Kind: wizard.ActionAddAlternate, Date: "2026-10-16", Time: "11:00"},
		wizard.Action{Kind: wizard.ActionAddAlternate, Date: "2026-10-17", Time: "10:00"},
		wizard.Action{Kind: wizard.ActionAddAlternate, Date: "2026-10-17", Time: "10:00"},
		wizard.Action{Kind: wizard.ActionAddAlternate, Date: "2026-10-18", Time: "10:00"},
		wizard.Action{Kind: wizard.ActionAddAlternate, Date: "2026-10-19", Time: "10:00"},
		wizard.Action{Kind: wizard.ActionAddAlternate, Date: "2026-10-20", Time: "10:00"},
	)
	assert.Equal(t, []wizard.Slot{
		{Date: "2026-10-17", Time: "10:00"},
		{Date: "2026-10-19", Time: "10:00"},
	}, s.Alternates, "duplicates, Sunday and overflow are ignored")

	s = apply(t, m, s, wizard.Action{Kind: wizard.ActionRemoveAlternate, Index: 0})
	assert.Equal(t, []wizard.Slot{{Date: "2026-10-19", Time: "10:00"}}, s.Alternates)
}

func TestStateJSONRoundTrip(t *testing.T) {
	m, _ := newMachine(t, salonConfig(), wizard.AlwaysAvailable)
	s := apply(t, m, m.Start(), customer()...)
	s, _ = m.Apply(s, wizard.Action{Kind: wizard.ActionSubmit})
	require.NotNil(t, s.Error)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var back wizard.State
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)
}
