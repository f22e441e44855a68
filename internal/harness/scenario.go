package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/wizard"
)

// Scenario defines one booking flow and what it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Record is the raw form record, normalized before the flow runs.
	Record map[string]any `yaml:"record,omitempty"`

	// RecordFile is a JSON or YAML record file, relative to the scenario
	// file. Exactly one of Record and RecordFile is set.
	RecordFile string `yaml:"record_file,omitempty"`

	// Now is the fixed wall clock as RFC 3339.
	Now string `yaml:"now"`

	// Availability is "always" (default) or "placeholder".
	Availability string `yaml:"availability,omitempty"`

	// Flow is applied to the wizard in order.
	Flow []Step `yaml:"flow"`

	// Assertions validate the end of the flow.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one wizard action with an optional expectation.
type Step struct {
	wizard.Action `yaml:",inline"`

	Expect *StepExpect `yaml:"expect,omitempty"`
}

// StepExpect checks the state right after a step. Unset fields are not
// checked.
type StepExpect struct {
	Phase string `yaml:"phase,omitempty"`

	// Error is the field of the expected validation error; "" expects none.
	Error *string `yaml:"error,omitempty"`

	// Effects lists the expected effect kinds in order; [] expects none.
	Effects []string `yaml:"effects,omitempty"`
}

// Assertion validates the end of the flow.
type Assertion struct {
	Type     string         `yaml:"type"`
	Phase    string         `yaml:"phase,omitempty"`
	Key      string         `yaml:"key,omitempty"`
	Value    string         `yaml:"value,omitempty"`
	Price    *int           `yaml:"price,omitempty"`
	Duration *int           `yaml:"duration,omitempty"`
	Kind     string         `yaml:"kind,omitempty"`
	Count    int            `yaml:"count,omitempty"`
	Expect   map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalPhase           = "final_phase"
	AssertFinalState           = "final_state"
	AssertSummaryContains      = "summary_contains"
	AssertTotals               = "totals"
	AssertEffectCount          = "effect_count"
	AssertPayloadValid         = "payload_valid"
	AssertConfirmationContains = "confirmation_contains"
)

// Availability modes.
const (
	AvailabilityAlways      = "always"
	AvailabilityPlaceholder = "placeholder"
)

var knownActions = map[wizard.ActionKind]bool{
	wizard.ActionSetName: true, wizard.ActionSetPhone: true, wizard.ActionSetGender: true,
	wizard.ActionSetVisitCount: true, wizard.ActionSetCoupon: true, wizard.ActionSetMessage: true,
	wizard.ActionSelectMenu: true, wizard.ActionSelectSubmenu: true, wizard.ActionToggleOption: true,
	wizard.ActionPickDate: true, wizard.ActionPickTime: true, wizard.ActionPickSlot: true,
	wizard.ActionAddAlternate: true, wizard.ActionRemoveAlternate: true,
	wizard.ActionNextWeek: true, wizard.ActionPrevWeek: true,
	wizard.ActionNextMonth: true, wizard.ActionPrevMonth: true,
	wizard.ActionSetProfile: true, wizard.ActionSubmit: true, wizard.ActionDelivered: true,
}

// LoadScenario reads and parses a scenario YAML file. Returns an error if
// the file doesn't exist, is malformed, contains unknown fields (typos) or
// is missing required fields. RecordFile is resolved relative to path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if scenario.RecordFile != "" && !filepath.IsAbs(scenario.RecordFile) {
		scenario.RecordFile = filepath.Join(filepath.Dir(path), scenario.RecordFile)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if (s.Record == nil) == (s.RecordFile == "") {
		return fmt.Errorf("exactly one of record and record_file is required")
	}
	if s.Now == "" {
		return fmt.Errorf("now is required")
	}
	if _, err := time.Parse(time.RFC3339, s.Now); err != nil {
		return fmt.Errorf("now: %w", err)
	}
	switch s.Availability {
	case "", AvailabilityAlways, AvailabilityPlaceholder:
	default:
		return fmt.Errorf("unknown availability %q", s.Availability)
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow must have at least one step")
	}
	for i, step := range s.Flow {
		if !knownActions[step.Kind] {
			return fmt.Errorf("flow[%d]: unknown action %q", i, step.Kind)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a, i); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(a Assertion, index int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalPhase:
		if a.Phase == "" {
			return fmt.Errorf("assertions[%d]: phase is required for final_phase", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertSummaryContains:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for summary_contains", index)
		}
	case AssertTotals:
		if a.Price == nil && a.Duration == nil {
			return fmt.Errorf("assertions[%d]: price or duration is required for totals", index)
		}
	case AssertEffectCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for effect_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for effect_count", index)
		}
	case AssertPayloadValid:
	case AssertConfirmationContains:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for confirmation_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
