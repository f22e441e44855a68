package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/compiler"
)

func publishJSON(t *testing.T, cfgPath, formID string) PublishResult {
	t.Helper()
	out, err := execute(t, "--config", cfgPath, "--format", "json", "publish", formID)
	require.NoError(t, err, out)

	var resp struct {
		Status string        `json:"status"`
		Data   PublishResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp.Data
}

func TestImportAndPublish(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	out, err := execute(t, "--config", cfgPath, "import", "salon-a", salonRecord())
	require.NoError(t, err, out)
	assert.Equal(t, "✓ Imported salon-a revision 1\n", out)

	first := publishJSON(t, cfgPath, "salon-a")
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 1, first.Revision)
	assert.False(t, first.Unchanged)
	assert.Empty(t, first.Superseded)
	assert.Equal(t, filepath.Join(dir, "public", "salon-a", first.Hash), first.Dir)
	for _, name := range []string{compiler.FileDocument, compiler.FileMarkup, compiler.FileStyle, compiler.FileScript} {
		assert.FileExists(t, filepath.Join(first.Dir, name))
	}

	again := publishJSON(t, cfgPath, "salon-a")
	assert.True(t, again.Unchanged)
	assert.Equal(t, 1, again.Seq)

	legacy := filepath.Join("testdata", "legacy.yaml")
	out, err = execute(t, "--config", cfgPath, "--format", "json", "import", "salon-a", legacy)
	require.NoError(t, err, out)
	assert.Contains(t, out, `"revision": 2`)

	second := publishJSON(t, cfgPath, "salon-a")
	assert.Equal(t, 2, second.Seq)
	assert.Equal(t, 2, second.Revision)
	assert.NotEqual(t, first.Hash, second.Hash)
	assert.Equal(t, first.Dir, second.Superseded)
	assert.DirExists(t, first.Dir, "superseded publications stay on disk")
}

func TestImport_FromStdin(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(`{"title": "Piped"}`))
	cmd.SetArgs([]string{"--config", cfgPath, "import", "piped", "-"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "revision 1")
}

func TestImport_InvalidFormID(t *testing.T) {
	out, err := execute(t, "import", "../escape", salonRecord())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E011]")
}

func TestPublish_UnknownForm(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	out, err := execute(t, "--config", cfgPath, "publish", "nobody")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]: no stored record for nobody")
}

func TestPublish_MissingConfigFile(t *testing.T) {
	out, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "publish", "salon-a")
	require.Error(t, err)
	assert.Contains(t, out, "Error [E010]")
}

func TestPublish_ConfigFromEnvironment(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	root := filepath.Join(dir, "elsewhere")
	t.Setenv("FORMC_PUBLISH_ROOT", root)

	_, err := execute(t, "--config", cfgPath, "import", "salon-a", salonRecord())
	require.NoError(t, err)
	res := publishJSON(t, cfgPath, "salon-a")
	assert.Equal(t, filepath.Join(root, "salon-a", res.Hash), res.Dir)

	_, err = os.Stat(filepath.Join(dir, "public"))
	assert.True(t, os.IsNotExist(err))
}
