package harness

import (
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/wizard"
)

// TraceEvent records the outcome of one flow step.
type TraceEvent struct {
	Seq     int      `json:"seq"`
	Action  string   `json:"action"`
	Phase   string   `json:"phase"`
	Error   string   `json:"error,omitempty"`
	Effects []string `json:"effects,omitempty"`
}

// DeliveryRecord is the outcome of one delivered effect.
type DeliveryRecord struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the wizard state after the last step.
	Final wizard.State `json:"final"`

	// Effects lists every effect requested during the flow.
	Effects []wizard.Effect `json:"effects"`

	// Deliveries is set when the harness ran with a dispatcher.
	Deliveries []DeliveryRecord `json:"deliveries,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Effects: []wizard.Effect{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace records the state after a step.
func (r *Result) AddTrace(action wizard.ActionKind, s wizard.State, effects []wizard.Effect) {
	ev := TraceEvent{
		Seq:    len(r.Trace) + 1,
		Action: string(action),
		Phase:  string(s.Phase),
	}
	if s.Error != nil {
		ev.Error = s.Error.Field
	}
	for _, e := range effects {
		ev.Effects = append(ev.Effects, string(e.Kind))
	}
	r.Trace = append(r.Trace, ev)
	r.Effects = append(r.Effects, effects...)
}
