package harness

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/delivery"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/testutil"
)

func TestRun_Scenarios(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(s.Flow))
		})
	}
}

func TestRun_CollectsEffects(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "cut_with_options.yaml"))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Effects, 2)
	assert.Equal(t, "https://example.com/hook", result.Effects[0].URL)
	assert.Contains(t, result.Effects[1].Text, "【ご予約内容】")
	assert.Empty(t, result.Deliveries)
}

func TestRun_StepExpectationFailure(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong_expectation
record: {}
now: "2026-10-14T10:15:00+09:00"
flow:
  - action: submit
    expect:
      phase: ready_to_submit
      error: phone
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "flow[0] submit: phase = idle, expected ready_to_submit")
	assert.Contains(t, result.Errors[1], `error field = "name", expected "phone"`)
}

func TestRun_RecordFileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))

	s := &Scenario{Name: "x", RecordFile: bad, Now: "2026-10-14T10:15:00Z"}
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse record file")

	s.RecordFile = filepath.Join(dir, "missing.json")
	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read record file")
}

func TestRun_YAMLRecordFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: YAML Salon\n"), 0o644))

	s := &Scenario{
		Name:       "yaml_record",
		RecordFile: path,
		Now:        "2026-10-14T10:15:00Z",
		Flow:       []Step{{}},
		Assertions: []Assertion{{Type: AssertFinalPhase, Phase: "idle"}},
	}
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_WithDispatcher(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "cut_with_options.yaml"))
	require.NoError(t, err)
	s.RecordFile = ""
	s.Record = map[string]any{
		"title":       "Cut Reservation",
		"liff_id":     "1234567890-abcdefgh",
		"webhook_url": srv.URL,
		"menus": []any{
			map[string]any{
				"id":       "cut",
				"name":     "カット",
				"price":    4000,
				"duration": 60,
				"options": []any{
					map[string]any{"id": "shampoo", "name": "炭酸シャンプー", "price": 500, "duration": 10},
					map[string]any{"id": "treatment", "name": "トリートメント", "price": 1500, "duration": 20, "default": true},
				},
			},
		},
	}
	s.Assertions = nil

	messenger := &testutil.FakeMessenger{}
	result, err := Run(s, WithDispatcher(delivery.New(delivery.WithMessenger(messenger))))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Deliveries, 2)
	assert.Equal(t, DeliveryRecord{Kind: "webhook", Target: srv.URL, Status: http.StatusAccepted}, result.Deliveries[0])
	assert.Equal(t, "message", result.Deliveries[1].Kind)
	assert.Equal(t, delivery.ErrNoRecipient.Error(), result.Deliveries[1].Error)
	assert.Equal(t, int32(1), hits.Load())
	assert.Empty(t, messenger.Sent())
}
