package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readConfig(t *testing.T, path string) Config {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestSaveEditorFeatures_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mirrorkit.yaml")

	err := SaveEditorFeatures(configPath, []string{"codemirror", "active-line"})
	require.NoError(t, err)

	cfg := readConfig(t, configPath)
	require.Equal(t, []string{"codemirror", "active-line"}, cfg.Editor.Features)
}

func TestSaveEditorFeatures_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mirrorkit.yaml")
	initial := `# top comment
assets:
  source: sqlite
  db_path: /tmp/p.db
editor:
  theme: monokai # dark
  features:
    - codemirror
serve:
  addr: ":9000"
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o600))

	require.NoError(t, SaveEditorFeatures(configPath, []string{"vim", "fullscreen"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# top comment")
	assert.Contains(t, string(data), "# dark")

	cfg := readConfig(t, configPath)
	require.Equal(t, []string{"vim", "fullscreen"}, cfg.Editor.Features)
	require.Equal(t, "monokai", cfg.Editor.Theme)
	require.Equal(t, SourceSQLite, cfg.Assets.Source)
	require.Equal(t, "/tmp/p.db", cfg.Assets.DBPath)
	require.Equal(t, ":9000", cfg.Serve.Addr)
}

func TestSaveEditorFeatures_AddsEditorSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mirrorkit.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("serve:\n  addr: \":1\"\n"), 0o600))

	require.NoError(t, SaveEditorFeatures(configPath, []string{"lint"}))

	cfg := readConfig(t, configPath)
	require.Equal(t, []string{"lint"}, cfg.Editor.Features)
	require.Equal(t, ":1", cfg.Serve.Addr)
}

func TestSaveEditorFeatures_NullEditor(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mirrorkit.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("editor:\n"), 0o600))

	require.NoError(t, SaveEditorFeatures(configPath, []string{"search"}))

	cfg := readConfig(t, configPath)
	require.Equal(t, []string{"search"}, cfg.Editor.Features)
}

func TestSaveEditorFeatures_Empty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mirrorkit.yaml")
	require.NoError(t, SaveEditorFeatures(configPath, []string{"search"}))
	require.NoError(t, SaveEditorFeatures(configPath, nil))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "features: []")
	require.Empty(t, readConfig(t, configPath).Editor.Features)
}

func TestSaveEditorFeatures_EditorNotMapping(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mirrorkit.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("editor: vim\n"), 0o600))

	err := SaveEditorFeatures(configPath, []string{"search"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a mapping")

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, "editor: vim\n", string(data), "file must be untouched on error")
}

func TestSaveEditorFeatures_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mirrorkit.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("editor: [unclosed\n"), 0o600))

	err := SaveEditorFeatures(configPath, []string{"search"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing config")
}

func TestSaveEditorValue(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mirrorkit.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("editor:\n  theme: default\n"), 0o600))

	require.NoError(t, SaveEditorValue(configPath, "theme", "dracula"))
	require.NoError(t, SaveEditorValue(configPath, "keymap", "vim"))

	cfg := readConfig(t, configPath)
	require.Equal(t, "dracula", cfg.Editor.Theme)
	require.Equal(t, "vim", cfg.Editor.KeyMap)
}

func TestSaveEditorFeatures_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".mirrorkit.yaml")
	require.NoError(t, SaveEditorFeatures(configPath, []string{"a"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
