package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/compiler"
)

func TestValidate_NormalizedRecordIsValid(t *testing.T) {
	for _, path := range []string{salonRecord(), filepath.Join("testdata", "legacy.yaml")} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			out, err := execute(t, "validate", path)
			require.NoError(t, err)
			assert.Contains(t, out, "✓ Valid")
		})
	}
}

func TestValidate_CanonicalViolations(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", "--canonical", filepath.Join("testdata", "canonical_invalid.json"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Valid)

	codes := map[string]bool{}
	for _, v := range resp.Data.ContractViolations {
		codes[v.Code] = true
	}
	assert.True(t, codes[compiler.ErrTitleMissing], "violations: %v", resp.Data.ContractViolations)
	assert.True(t, codes[compiler.ErrInvalidColor], "violations: %v", resp.Data.ContractViolations)
}

func TestValidate_CanonicalText(t *testing.T) {
	out, err := execute(t, "validate", "--canonical", filepath.Join("testdata", "canonical_invalid.json"))
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "basic_info.title: title is required")
}

func TestValidate_JSONListsAreNeverNull(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", salonRecord())
	require.NoError(t, err)
	assert.Contains(t, out, `"schema_violations": []`)
	assert.Contains(t, out, `"contract_violations": []`)
}
