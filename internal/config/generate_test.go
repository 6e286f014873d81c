package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, WriteDefaultConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)

	for _, section := range []string{
		"[mode]",
		"[server]",
		"[db.mysql]",
		"[db.mysql.databases]",
		"[db.mysql.connections]",
		"[[db.redis.addrs]]",
		"[ms.openvidu]",
		"[log.app]",
		"[auth]",
		"[app]",
		"[app.live_stream]",
		"[app.live_stream.visit]",
		"[app.live_stream.preview]",
		"[app.setup_stream]",
		"[background.finalizer]",
		"[background.recounter]",
		"[background.watchdog]",
		"[ice]",
	} {
		assert.Contains(t, content, section)
	}
}

func TestWriteDefaultConfigCreatesDirectories(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "deeper", "config.toml")

	require.NoError(t, WriteDefaultConfig(configPath))

	_, err := os.Stat(configPath)
	assert.NoError(t, err)
}

func TestWriteDefaultConfigKeepsExistingFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("# custom"), 0o644))

	require.NoError(t, WriteDefaultConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "# custom", string(data))
}

// The generated file must load back to exactly the compiled-in defaults.
func TestGeneratedConfigMatchesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefaultConfig(configPath))

	fromFile, err := New(configPath)
	require.NoError(t, err)

	fromDefaults, err := New(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, fromDefaults.Current(), fromFile.Current())
}
