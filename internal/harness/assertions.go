package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/submission"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/wizard"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %s", event.Seq, event.Action, event.Phase)
		if event.Error != "" {
			fmt.Fprintf(&buf, " (error: %s)", event.Error)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the end of the flow
// and returns one message per failure.
func EvaluateAssertions(m *wizard.Machine, result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(m, result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %s", i, err.Error()))
		}
	}
	return errs
}

func evaluate(m *wizard.Machine, result *Result, a Assertion) error {
	switch a.Type {
	case AssertFinalPhase:
		return assertFinalPhase(result, a)
	case AssertFinalState:
		return assertFinalState(result, a)
	case AssertSummaryContains:
		return assertSummaryContains(m, result, a)
	case AssertTotals:
		return assertTotals(m, result, a)
	case AssertEffectCount:
		return assertEffectCount(result, a)
	case AssertPayloadValid:
		return assertPayloadValid(m, result)
	case AssertConfirmationContains:
		return assertConfirmationContains(m, result, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertFinalPhase(result *Result, a Assertion) error {
	if string(result.Final.Phase) == a.Phase {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalPhase,
		Expected: a.Phase,
		Actual:   string(result.Final.Phase),
		Trace:    result.Trace,
	}
}

// assertFinalState compares the listed keys of the JSON form of the final
// state. Keys not listed are ignored.
func assertFinalState(result *Result, a Assertion) error {
	actual, err := jsonMap(result.Final)
	if err != nil {
		return err
	}
	expected, err := jsonMap(a.Expect)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mismatches []string
	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("%s: missing", k))
			continue
		}
		if !reflect.DeepEqual(got, expected[k]) {
			mismatches = append(mismatches, fmt.Sprintf("%s: got %v, want %v", k, got, expected[k]))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fmt.Sprintf("%v", a.Expect),
		Actual:   strings.Join(mismatches, "; "),
		Trace:    result.Trace,
	}
}

func assertSummaryContains(m *wizard.Machine, result *Result, a Assertion) error {
	items := m.Summary(result.Final)
	for _, item := range items {
		if item.Key != a.Key {
			continue
		}
		if a.Value == "" || item.Value == a.Value {
			return nil
		}
		return &AssertionError{
			Type:     AssertSummaryContains,
			Expected: fmt.Sprintf("%s = %q", a.Key, a.Value),
			Actual:   fmt.Sprintf("%s = %q", a.Key, item.Value),
			Trace:    result.Trace,
		}
	}
	return &AssertionError{
		Type:     AssertSummaryContains,
		Expected: fmt.Sprintf("summary item %s", a.Key),
		Actual:   "not in summary",
		Trace:    result.Trace,
	}
}

func assertTotals(m *wizard.Machine, result *Result, a Assertion) error {
	t := m.Totals(result.Final)
	if a.Price != nil && *a.Price != t.Price {
		return &AssertionError{
			Type:     AssertTotals,
			Expected: fmt.Sprintf("price %d", *a.Price),
			Actual:   fmt.Sprintf("price %d", t.Price),
			Trace:    result.Trace,
		}
	}
	if a.Duration != nil && *a.Duration != t.Duration {
		return &AssertionError{
			Type:     AssertTotals,
			Expected: fmt.Sprintf("duration %d", *a.Duration),
			Actual:   fmt.Sprintf("duration %d", t.Duration),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertEffectCount(result *Result, a Assertion) error {
	count := 0
	for _, e := range result.Effects {
		if string(e.Kind) == a.Kind {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertEffectCount,
		Expected: fmt.Sprintf("%d %s effect(s)", a.Count, a.Kind),
		Actual:   fmt.Sprintf("%d", count),
		Trace:    result.Trace,
	}
}

// assertPayloadValid checks every webhook payload produced by the flow
// against the submission schema. A flow without a submit fails.
func assertPayloadValid(m *wizard.Machine, result *Result) error {
	payloads := []submission.Payload{}
	for _, e := range result.Effects {
		payloads = append(payloads, e.Payload)
	}
	if len(payloads) == 0 {
		if result.Final.SubmittedAt == "" {
			return &AssertionError{
				Type:     AssertPayloadValid,
				Expected: "a submitted booking",
				Actual:   "no submission",
				Trace:    result.Trace,
			}
		}
		payloads = append(payloads, m.Payload(result.Final))
	}
	for _, p := range payloads {
		if err := submission.Validate(p); err != nil {
			return &AssertionError{
				Type:     AssertPayloadValid,
				Expected: "payload matching the submission schema",
				Actual:   err.Error(),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

func assertConfirmationContains(m *wizard.Machine, result *Result, a Assertion) error {
	text := m.ConfirmationText(result.Final)
	if strings.Contains(text, a.Value) {
		return nil
	}
	return &AssertionError{
		Type:     AssertConfirmationContains,
		Expected: fmt.Sprintf("confirmation containing %q", a.Value),
		Actual:   text,
		Trace:    result.Trace,
	}
}

// jsonMap round-trips v through JSON so that YAML-decoded expectations and
// struct state compare with the same number and slice types.
func jsonMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}
