package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/cmplot/internal/render"
)

func TestDefaultMatchesRenderDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, render.DefaultOptions(), cfg.RenderOptions())
	assert.Equal(t, "confusion_matrix.csv", cfg.Scan.Suffix)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingOptionalFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFile), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingRequiredFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	assert.Error(t, err)
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), DefaultFile)
	configYAML := strings.TrimSpace(`
render:
  dpi: 150
  colormap: Greens
  annotate: false
scan:
  suffix: _cm.csv
`)
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o644))

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.Render.DPI)
	assert.Equal(t, "Greens", cfg.Render.Colormap)
	assert.False(t, cfg.Render.Annotate)
	assert.Equal(t, "_cm.csv", cfg.Scan.Suffix)
	assert.Equal(t, 10.0, cfg.Render.WidthIn)
	assert.Equal(t, "Confusion Matrix", cfg.Render.Title)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	for name, body := range map[string]string{
		"colormap":   "render:\n  colormap: jet\n",
		"dpi":        "render:\n  dpi: -1\n",
		"suffix":     "scan:\n  suffix: \"\"\n",
		"upload":     "server:\n  max_upload_mb: 0\n",
		"bad yaml":   "render: [\n",
		"wrong type": "render:\n  dpi: lots\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path, true)
			assert.Error(t, err)
		})
	}
}

func TestPortOverridesServerAddr(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFile), false)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestWriteDefaultDoesNotClobber(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigYAML, string(data))

	assert.Error(t, WriteDefault(path))
}
