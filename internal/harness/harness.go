package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/delivery"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/logger"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/normalize"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/testutil"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/wizard"
)

// Harness is the scenario execution engine.
type Harness struct {
	dispatcher *delivery.Dispatcher
	log        logger.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithDispatcher delivers the effects of every successful submit and
// records the outcomes in Result.Deliveries.
func WithDispatcher(d *delivery.Dispatcher) Option {
	return func(h *Harness) { h.dispatcher = d }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Harness) { h.log = l }
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return New(opts...).Run(context.Background(), scenario)
}

// New returns a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{log: logger.NewNoOpLogger()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario and returns the result. An error means the
// scenario could not be executed at all; failed expectations are reported
// in the result.
//
// Execution flow:
//  1. Load and normalize the record
//  2. Start the wizard on a fixed clock
//  3. Apply each flow step and check its expect clause
//  4. Evaluate assertions against the final state
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	record, err := scenario.LoadRecord()
	if err != nil {
		return nil, err
	}
	now, err := time.Parse(time.RFC3339, scenario.Now)
	if err != nil {
		return nil, fmt.Errorf("now: %w", err)
	}
	cfg := normalize.Normalize(record)

	m := machineFor(cfg, scenario.Availability, testutil.NewFixedClock(now))
	result := NewResult()
	state := m.Start()

	for i, step := range scenario.Flow {
		var effects []wizard.Effect
		state, effects = m.Apply(state, step.Action)
		result.AddTrace(step.Kind, state, effects)
		for _, msg := range checkStep(state, effects, step.Expect) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Kind, msg))
		}
		if h.dispatcher != nil {
			for _, e := range effects {
				r := h.dispatcher.Deliver(ctx, e)
				result.Deliveries = append(result.Deliveries, deliveryRecord(r))
			}
		}
		h.log.Debug("step applied", logger.Fields{"step": i, "action": string(step.Kind), "phase": string(state.Phase)})
	}
	result.Final = state

	for _, msg := range EvaluateAssertions(m, result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func machineFor(cfg form.Config, availability string, clock wizard.Clock) *wizard.Machine {
	avail := wizard.AlwaysAvailable
	if availability == AvailabilityPlaceholder {
		avail = wizard.Placeholder
	}
	return wizard.New(cfg, wizard.WithClock(clock), wizard.WithAvailability(avail))
}

func checkStep(s wizard.State, effects []wizard.Effect, expect *StepExpect) []string {
	if expect == nil {
		return nil
	}
	var errs []string
	if expect.Phase != "" && string(s.Phase) != expect.Phase {
		errs = append(errs, fmt.Sprintf("phase = %s, expected %s", s.Phase, expect.Phase))
	}
	if expect.Error != nil {
		got := ""
		if s.Error != nil {
			got = s.Error.Field
		}
		if got != *expect.Error {
			errs = append(errs, fmt.Sprintf("error field = %q, expected %q", got, *expect.Error))
		}
	}
	if expect.Effects != nil {
		got := make([]string, len(effects))
		for i, e := range effects {
			got[i] = string(e.Kind)
		}
		if strings.Join(got, ",") != strings.Join(expect.Effects, ",") {
			errs = append(errs, fmt.Sprintf("effects = %v, expected %v", got, expect.Effects))
		}
	}
	return errs
}

func deliveryRecord(r delivery.Result) DeliveryRecord {
	rec := DeliveryRecord{Kind: string(r.Kind), Target: r.Target, Status: r.Status}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}

// LoadRecord returns the inline record or reads RecordFile as JSON or YAML.
func (s *Scenario) LoadRecord() (map[string]any, error) {
	if s.RecordFile == "" {
		return s.Record, nil
	}
	data, err := os.ReadFile(s.RecordFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	var record map[string]any
	switch filepath.Ext(s.RecordFile) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &record)
	default:
		err = json.Unmarshal(data, &record)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse record file: %w", err)
	}
	return record, nil
}
