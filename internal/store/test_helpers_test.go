package store

import (
	"path/filepath"
	"testing"
	"time"
)

var testEpoch = time.Date(2026, 10, 14, 1, 15, 0, 0, time.UTC)

// createTestStore creates a new store in a temp dir whose clock ticks one
// second per write.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	tick := testEpoch
	s, err := Open(path, WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleRecord is a minimal nested-shape record.
func sampleRecord(title string) map[string]any {
	return map[string]any{
		"config": map[string]any{
			"basic_info": map[string]any{"title": title},
		},
		"price": 3000.0,
	}
}
