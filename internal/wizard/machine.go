package wizard

import (
	"time"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/submission"
)

// Clock supplies the current time. Dates are interpreted in the location
// of the returned time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// EffectKind names a side effect requested by a transition.
type EffectKind string

const (
	EffectWebhook EffectKind = "webhook"
	EffectMessage EffectKind = "message"
)

// Effect is a best-effort delivery requested on submission.
type Effect struct {
	Kind    EffectKind         `json:"kind"`
	URL     string             `json:"url,omitempty"`
	Payload submission.Payload `json:"payload"`
	Text    string             `json:"text,omitempty"`
}

// Machine applies wizard transitions for one configuration.
type Machine struct {
	cfg   form.Config
	clock Clock
	avail Availability
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithAvailability replaces the placeholder availability.
func WithAvailability(a Availability) Option {
	return func(m *Machine) { m.avail = a }
}

// New returns a Machine for cfg using the system clock and Placeholder.
func New(cfg form.Config, opts ...Option) *Machine {
	m := &Machine{cfg: cfg, clock: systemClock{}, avail: Placeholder}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the configuration the machine runs against.
func (m *Machine) Config() form.Config {
	return m.cfg
}

// Start returns the initial state showing the current week.
func (m *Machine) Start() State {
	return State{
		Phase:      PhaseIdle,
		OptionIDs:  []string{},
		Alternates: []Slot{},
		WeekStart:  mondayOf(m.today()).Format(DateFormat),
	}
}

// Apply performs one action. Actions that do not apply in the current
// state leave it unchanged. Effects are only returned by a successful submit.
func (m *Machine) Apply(s State, a Action) (State, []Effect) {
	switch s.Phase {
	case PhaseSubmitted:
		return s, nil
	case PhaseSubmitting:
		if a.Kind != ActionDelivered {
			return s, nil
		}
		next := s.clone()
		next.Phase = PhaseSubmitted
		return next, nil
	}

	next := s.clone()
	if a.Kind == ActionSubmit {
		return m.submit(next)
	}
	next.Error = nil

	switch a.Kind {
	case ActionSetName:
		next.Name = a.Value
	case ActionSetPhone:
		next.Phone = a.Value
	case ActionSetMessage:
		next.Message = a.Value
	case ActionSetGender:
		next.Gender = choose(m.cfg.GenderSelection, a.Value, next.Gender)
	case ActionSetVisitCount:
		next.VisitCount = choose(m.cfg.VisitCountSelection, a.Value, next.VisitCount)
	case ActionSetCoupon:
		next.Coupon = choose(m.cfg.CouponSelection, a.Value, next.Coupon)
	case ActionSetProfile:
		if next.Name == "" {
			next.Name = a.Value
		}
		next.LineUserID = a.ID
	case ActionSelectMenu:
		next = m.selectMenu(next, a.ID)
	case ActionSelectSubmenu:
		next = m.selectSubmenu(next, a.MenuID, a.ID)
	case ActionToggleOption:
		next = m.toggleOption(next, a.ID)
	case ActionPickDate:
		next = m.pickDate(next, a.Date)
	case ActionPickTime:
		next = m.pickTime(next, a.Time)
	case ActionPickSlot:
		next = m.pickSlot(next, a.Date, a.Time)
	case ActionAddAlternate:
		next = m.addAlternate(next, a.Date, a.Time)
	case ActionRemoveAlternate:
		if a.Index >= 0 && a.Index < len(next.Alternates) {
			next.Alternates = append(next.Alternates[:a.Index], next.Alternates[a.Index+1:]...)
		}
	case ActionNextWeek, ActionPrevWeek, ActionNextMonth, ActionPrevMonth:
		next = m.navigate(next, a.Kind)
	}

	next.Phase = m.phase(next)
	return next, nil
}

// phase derives the flow position from the selections.
func (m *Machine) phase(s State) Phase {
	menu, sub, ok := selection(m.cfg, s)
	switch {
	case !ok:
		return PhaseIdle
	case menu.HasSubmenu && sub == nil:
		return PhaseAwaitingSubmenu
	case s.Date == "" && sub != nil:
		return PhaseSubmenuChosen
	case s.Date == "":
		return PhaseMenuChosen
	case s.Time == "":
		return PhaseDateChosen
	default:
		return PhaseReadyToSubmit
	}
}

// choose accepts value only if it is an answer of an enabled selection.
// An empty value clears the answer.
func choose(sel form.Selection, value, current string) string {
	if !sel.Enabled {
		return ""
	}
	if value == "" {
		return ""
	}
	if _, ok := sel.Label(value); ok {
		return value
	}
	return current
}

func (m *Machine) selectMenu(s State, id string) State {
	menu, ok := m.cfg.FindMenu(id)
	if !ok || s.MenuID == id {
		return s
	}
	s.MenuID = id
	s.SubmenuID = ""
	s.OptionIDs = []string{}
	for _, o := range menu.Options {
		if o.IsDefault {
			s.OptionIDs = append(s.OptionIDs, o.ID)
		}
	}
	s.Date, s.Time = "", ""
	s.Alternates = []Slot{}
	return s
}

func (m *Machine) selectSubmenu(s State, menuID, id string) State {
	if menuID == "" {
		menuID = s.MenuID
	}
	if menuID != s.MenuID {
		s = m.selectMenu(s, menuID)
		if s.MenuID != menuID {
			return s
		}
	}
	menu, _ := m.cfg.FindMenu(menuID)
	if !menu.HasSubmenu || s.SubmenuID == id {
		return s
	}
	if _, ok := menu.FindSubmenu(id); !ok {
		return s
	}
	s.SubmenuID = id
	return m.revalidateSlots(s)
}

func (m *Machine) toggleOption(s State, id string) State {
	menu, ok := m.cfg.FindMenu(s.MenuID)
	if !ok || menu.HasSubmenu {
		return s
	}
	if _, ok := menu.FindOption(id); !ok {
		return s
	}
	selected := map[string]bool{}
	for _, o := range s.OptionIDs {
		selected[o] = true
	}
	selected[id] = !selected[id]

	s.OptionIDs = []string{}
	for _, o := range menu.Options {
		if selected[o.ID] {
			s.OptionIDs = append(s.OptionIDs, o.ID)
		}
	}
	return m.revalidateSlots(s)
}

// revalidateSlots drops picks that the changed selection can no longer book.
func (m *Machine) revalidateSlots(s State) State {
	duration := m.Totals(s).Duration
	if s.Date != "" && s.Time != "" && !m.slotSelectable(s.Date, s.Time, duration) {
		s.Date, s.Time = "", ""
	}
	if s.Date != "" && s.Time == "" && !m.dateSelectable(s.Date, duration) {
		s.Date = ""
	}
	kept := []Slot{}
	for _, alt := range s.Alternates {
		if m.slotSelectable(alt.Date, alt.Time, duration) {
			kept = append(kept, alt)
		}
	}
	s.Alternates = kept
	return s
}

func (m *Machine) pickDate(s State, date string) State {
	if !s.CalendarVisible() || !m.dateSelectable(date, m.Totals(s).Duration) {
		return s
	}
	d, _ := m.parseDate(date)
	s.Date = d.Format(DateFormat)
	s.Time = ""
	s.WeekStart = mondayOf(d).Format(DateFormat)
	return s
}

func (m *Machine) pickTime(s State, clock string) State {
	if s.Date == "" || !m.slotSelectable(s.Date, clock, m.Totals(s).Duration) {
		return s
	}
	minutes, _ := form.ParseClock(clock)
	s.Time = form.FormatClock(minutes)
	return s
}

func (m *Machine) pickSlot(s State, date, clock string) State {
	if !s.CalendarVisible() || !m.slotSelectable(date, clock, m.Totals(s).Duration) {
		return s
	}
	d, _ := m.parseDate(date)
	minutes, _ := form.ParseClock(clock)
	s.Date = d.Format(DateFormat)
	s.Time = form.FormatClock(minutes)
	s.WeekStart = mondayOf(d).Format(DateFormat)
	return s
}

func (m *Machine) addAlternate(s State, date, clock string) State {
	multi := m.cfg.CalendarSettings.MultiDateSettings
	if !multi.Enabled || s.Date == "" || s.Time == "" || len(s.Alternates) >= multi.MaxDates-1 {
		return s
	}
	if !m.slotSelectable(date, clock, m.Totals(s).Duration) {
		return s
	}
	d, _ := m.parseDate(date)
	minutes, _ := form.ParseClock(clock)
	slot := Slot{Date: d.Format(DateFormat), Time: form.FormatClock(minutes)}
	if slot.Date == s.Date && slot.Time == s.Time {
		return s
	}
	for _, alt := range s.Alternates {
		if alt == slot {
			return s
		}
	}
	s.Alternates = append(s.Alternates, slot)
	return s
}

func (m *Machine) submit(s State) (State, []Effect) {
	if verr := m.Validate(s); verr != nil {
		s.Error = verr
		s.Phase = m.phase(s)
		return s, nil
	}
	s.Error = nil
	s.SubmittedAt = m.now().Format(time.RFC3339)
	s.Phase = PhaseSubmitting

	payload := m.Payload(s)
	var effects []Effect
	if m.cfg.WebhookEndpoint != "" {
		effects = append(effects, Effect{Kind: EffectWebhook, URL: m.cfg.WebhookEndpoint, Payload: payload})
	}
	if m.cfg.BasicInfo.LiffID != "" {
		effects = append(effects, Effect{Kind: EffectMessage, Payload: payload, Text: m.ConfirmationText(s)})
	}
	return s, effects
}
