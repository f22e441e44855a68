package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type normalizeEnvelope struct {
	Status string          `json:"status"`
	Data   NormalizeResult `json:"data"`
}

func TestNormalize_FlatRecordJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "normalize", "--report", salonRecord())
	require.NoError(t, err)

	var resp normalizeEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Cut Reservation", resp.Data.Config.BasicInfo.Title)
	assert.Equal(t, "Salon Wakuwaku", resp.Data.Config.BasicInfo.StoreName)
	assert.Len(t, resp.Data.Hash, 64)
	assert.Equal(t, "flat", resp.Data.Sources["title"])
	assert.Equal(t, "default", resp.Data.Sources["button_style"])
}

func TestNormalize_YAMLText(t *testing.T) {
	out, err := execute(t, "normalize", "--report", filepath.Join("testdata", "legacy.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, `"title": "Legacy Salon"`)
	assert.Contains(t, out, `"store_name": "Old Shop"`)
	assert.Contains(t, out, "Sources:")
	assert.Regexp(t, `title\s+nested`, out)
}

func TestNormalize_HashIgnoresShape(t *testing.T) {
	hashOf := func(path string) string {
		out, err := execute(t, "--format", "json", "normalize", path)
		require.NoError(t, err)
		var resp normalizeEnvelope
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		return resp.Data.Hash
	}
	assert.Equal(t, hashOf(salonRecord()), hashOf(salonRecord()))
	assert.NotEqual(t, hashOf(salonRecord()), hashOf(filepath.Join("testdata", "legacy.yaml")))
}

func TestNormalize_InputErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing file", filepath.Join("testdata", "missing.json"), ErrCodeNotFound},
		{"invalid json", filepath.Join("testdata", "broken.json"), ErrCodeParseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "--format", "json", "normalize", tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
