package wizard

import "github.com/wakuwakusystemsharing/form-management-sub001/internal/form"

// Phase is the position of the wizard in the booking flow.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseAwaitingSubmenu Phase = "awaiting_submenu"
	PhaseMenuChosen      Phase = "menu_chosen"
	PhaseSubmenuChosen   Phase = "submenu_chosen"
	PhaseDateChosen      Phase = "date_chosen"
	PhaseReadyToSubmit   Phase = "ready_to_submit"
	PhaseSubmitting      Phase = "submitting"
	PhaseSubmitted       Phase = "submitted"
)

// Date and time layouts used throughout the wizard.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// SlotMinutes is the height of one calendar row.
const SlotMinutes = 30

// Slot is a date and start time.
type Slot struct {
	Date string `json:"date" yaml:"date"`
	Time string `json:"time" yaml:"time"`
}

// State is the complete wizard state. It round-trips through JSON.
type State struct {
	Phase       Phase            `json:"phase"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone"`
	Gender      string           `json:"gender"`
	VisitCount  string           `json:"visit_count"`
	Coupon      string           `json:"coupon"`
	MenuID      string           `json:"menu_id"`
	SubmenuID   string           `json:"submenu_id"`
	OptionIDs   []string         `json:"option_ids"`
	Date        string           `json:"date"`
	Time        string           `json:"time"`
	Alternates  []Slot           `json:"alternates"`
	Message     string           `json:"message"`
	WeekStart   string           `json:"week_start"`
	SubmittedAt string           `json:"submitted_at,omitempty"`
	LineUserID  string           `json:"line_user_id,omitempty"`
	Error       *ValidationError `json:"error,omitempty"`
}

// CalendarVisible reports whether the date/time section is shown.
func (s State) CalendarVisible() bool {
	switch s.Phase {
	case PhaseIdle, PhaseAwaitingSubmenu:
		return false
	default:
		return true
	}
}

// Terminal reports whether the flow has finished.
func (s State) Terminal() bool {
	return s.Phase == PhaseSubmitted
}

func (s State) clone() State {
	c := s
	c.OptionIDs = append([]string{}, s.OptionIDs...)
	c.Alternates = append([]Slot{}, s.Alternates...)
	if s.Error != nil {
		e := *s.Error
		c.Error = &e
	}
	return c
}

// ActionKind names a user action.
type ActionKind string

const (
	ActionSetName         ActionKind = "set_name"
	ActionSetPhone        ActionKind = "set_phone"
	ActionSetGender       ActionKind = "set_gender"
	ActionSetVisitCount   ActionKind = "set_visit_count"
	ActionSetCoupon       ActionKind = "set_coupon"
	ActionSetMessage      ActionKind = "set_message"
	ActionSelectMenu      ActionKind = "select_menu"
	ActionSelectSubmenu   ActionKind = "select_submenu"
	ActionToggleOption    ActionKind = "toggle_option"
	ActionPickDate        ActionKind = "pick_date"
	ActionPickTime        ActionKind = "pick_time"
	ActionPickSlot        ActionKind = "pick_slot"
	ActionAddAlternate    ActionKind = "add_alternate"
	ActionRemoveAlternate ActionKind = "remove_alternate"
	ActionNextWeek        ActionKind = "next_week"
	ActionPrevWeek        ActionKind = "prev_week"
	ActionNextMonth       ActionKind = "next_month"
	ActionPrevMonth       ActionKind = "prev_month"
	ActionSetProfile      ActionKind = "set_profile"
	ActionSubmit          ActionKind = "submit"
	ActionDelivered       ActionKind = "delivered"
)

// Action is one user interaction. Only the fields relevant to Kind are read:
// Value for text and choices, ID (and MenuID for submenus) for menu
// selections, Date/Time for calendar picks, Index for alternate removal.
type Action struct {
	Kind   ActionKind `json:"kind" yaml:"action"`
	Value  string     `json:"value,omitempty" yaml:"value,omitempty"`
	ID     string     `json:"id,omitempty" yaml:"id,omitempty"`
	MenuID string     `json:"menu_id,omitempty" yaml:"menu_id,omitempty"`
	Date   string     `json:"date,omitempty" yaml:"date,omitempty"`
	Time   string     `json:"time,omitempty" yaml:"time,omitempty"`
	Index  int        `json:"index,omitempty" yaml:"index,omitempty"`
}

// selection returns the active menu and, when chosen, its sub item.
func selection(cfg form.Config, s State) (form.Menu, *form.SubMenuItem, bool) {
	menu, ok := cfg.FindMenu(s.MenuID)
	if !ok {
		return form.Menu{}, nil, false
	}
	if s.SubmenuID == "" {
		return menu, nil, true
	}
	sub, ok := menu.FindSubmenu(s.SubmenuID)
	if !ok {
		return menu, nil, true
	}
	return menu, &sub, true
}
