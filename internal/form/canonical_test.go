package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"json number", json.Number("3000"), "3000"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"html kept", "<b>&</b>", `"<b>&</b>"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": map[string]any{"b": 1, "a": 2},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"zebra":1}`, string(result))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"null", nil},
		{"float", 1.5},
		{"fractional json number", json.Number("1.5")},
		{"nested null", map[string]any{"a": []any{nil}}},
		{"unsupported", struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// Base kana plus combining voiced mark vs the precomposed form.
	decomposed, err := MarshalCanonical("\u304b\u3099")
	require.NoError(t, err)
	composed, err := MarshalCanonical("\u304c")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestConfigCanonicalJSON(t *testing.T) {
	cfg := Default()
	cfg.GenderSelection.Metadata = map[string]string{"z": "1", "a": "2"}

	first, err := cfg.CanonicalJSON()
	require.NoError(t, err)
	second, err := cfg.CanonicalJSON()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, string(first), `"metadata":{"a":"2","z":"1"}`)
	assert.Contains(t, string(first), `"title":"予約フォーム"`)
}
