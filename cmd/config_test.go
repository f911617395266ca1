package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit(t *testing.T) {
	tmpDir := isolate(t)
	configPath := filepath.Join(tmpDir, "stretchres", "stretchres.toml")

	t.Run("creates config file when it doesn't exist", func(t *testing.T) {
		out, err := executeCommand(t, "", "config", "init")
		require.NoError(t, err)

		assert.Contains(t, out, "Configuration initialized at: "+configPath)
		content, err := os.ReadFile(configPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "max_displays = 3")
		assert.Contains(t, string(content), "quit_token")
	})

	t.Run("doesn't overwrite existing config without force", func(t *testing.T) {
		require.NoError(t, os.WriteFile(configPath, []byte("[prompt]\nquit_token = 'x'\n"), 0644))

		out, err := executeCommand(t, "", "config", "init")
		require.NoError(t, err)

		assert.Contains(t, out, "already exists")
		content, err := os.ReadFile(configPath)
		require.NoError(t, err)
		assert.Equal(t, "[prompt]\nquit_token = 'x'\n", string(content))
	})

	t.Run("overwrites with force flag", func(t *testing.T) {
		require.NoError(t, os.WriteFile(configPath, []byte("[display]\nbackend = 'x11'\n"), 0644))

		_, err := executeCommand(t, "", "config", "init", "--force")
		require.NoError(t, err)

		content, err := os.ReadFile(configPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "max_displays = 3")
	})
}

func TestConfigInitExplicitPath(t *testing.T) {
	tmpDir := isolate(t)
	configPath := filepath.Join(tmpDir, "custom", "res.toml")

	_, err := executeCommand(t, "", "config", "init", "--config", configPath)
	require.NoError(t, err)

	_, err = os.Stat(configPath)
	assert.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	t.Run("shows defaults", func(t *testing.T) {
		isolate(t)

		out, err := executeCommand(t, "", "config", "show")
		require.NoError(t, err)

		assert.Contains(t, out, "backend = auto")
		assert.Contains(t, out, "max_displays = 3")
		assert.Contains(t, out, "persist = true")
		assert.Contains(t, out, "quit_token = q")
	})

	t.Run("shows file values", func(t *testing.T) {
		tmpDir := isolate(t)
		configPath := filepath.Join(tmpDir, "stretchres", "stretchres.toml")
		require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
		require.NoError(t, os.WriteFile(configPath, []byte(`
[display]
backend = "wlr-randr"
revert_without_snapshot = true
`), 0644))

		out, err := executeCommand(t, "", "config", "show")
		require.NoError(t, err)

		assert.Contains(t, out, "Config file: "+configPath)
		assert.Contains(t, out, "backend = wlr-randr")
		assert.Contains(t, out, "revert_without_snapshot = true")
	})

	t.Run("rejects invalid TOML", func(t *testing.T) {
		tmpDir := isolate(t)
		configPath := filepath.Join(tmpDir, "stretchres", "stretchres.toml")
		require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
		require.NoError(t, os.WriteFile(configPath, []byte("[display\n"), 0644))

		_, err := executeCommand(t, "", "config", "show")
		assert.Error(t, err)
	})
}
