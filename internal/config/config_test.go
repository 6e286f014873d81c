package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func TestDefaults(t *testing.T) {
	// Point at an empty directory so no file is read.
	cfg, err := New(t.TempDir())
	require.NoError(t, err)

	c := cfg.Current()
	assert.False(t, c.Mode.Debug)
	assert.Equal(t, "http://127.0.0.1", c.Server.ShardURL)
	assert.Equal(t, 8081, c.Server.HTTPPort)
	assert.Equal(t, 8082, c.Server.GRPCPort)
	assert.Equal(t, 10025, c.Server.HealthzPort)
	assert.Equal(t, 9199, c.Server.MetricsPort)

	assert.Equal(t, "127.0.0.1", c.DB.MySQL.Host)
	assert.Equal(t, 3306, c.DB.MySQL.Port)
	assert.Equal(t, "root", c.DB.MySQL.User)
	assert.Equal(t, "dating", c.DB.MySQL.Databases.Dating)
	assert.Equal(t, "social", c.DB.MySQL.Databases.Social)
	assert.Equal(t, 30, c.DB.MySQL.Connections.MaxIdle)
	assert.Equal(t, 30, c.DB.MySQL.Connections.MaxOpen)

	require.Len(t, c.DB.Redis.Addrs, 1)
	assert.Equal(t, "127.0.0.1:6379", c.DB.Redis.Addrs[0].Addr())

	assert.Equal(t, "127.0.0.1", c.MS.OpenVidu.Host)
	assert.Equal(t, 8080, c.MS.OpenVidu.GRPCPort)
	assert.Equal(t, 9321, c.MS.OpenVidu.MetricsPort)

	assert.Equal(t, "info", c.Log.App.Level)
	assert.Equal(t, 5*time.Minute, c.Auth.RenewalDuration)
	assert.Equal(t, 30*time.Second, c.App.ShutdownTimeout)
	assert.Equal(t, 1000, c.App.LiveStream.MaxMessageLength)
	assert.Equal(t, 5*time.Second, c.App.LiveStream.Visit.IdleTimeout)
	assert.Equal(t, 20*time.Second, c.App.SetupStream.StartingTimeout)

	assert.Equal(t, 10*time.Second, c.Background.Finalizer.Period)
	assert.Equal(t, 50, c.Background.Finalizer.Limit)
	assert.Equal(t, 4*time.Second, c.Background.Watchdog.LockTimeout)
	assert.Equal(t, 10, c.Background.Watchdog.Limit)

	assert.Equal(t, []string{"turn:access_token:qwerty@127.0.0.1:3478"}, c.ICE.Servers)
}

func TestFileOverridesDefaults(t *testing.T) {
	configPath := writeConfig(t, `
[mode]
debug = true

[server]
http_port = 9001

[db.mysql]
host = "db.internal"
pass = "hunter2"

[db.mysql.connections]
max_idle = 10
max_open = 20

[app.live_stream]
idle_timeout = "7s"

[ice]
servers = [
  "stun:stun.example.com:3478",
  "turn:sapi:secret@turn.example.com:3479",
]
`)

	cfg, err := New(configPath)
	require.NoError(t, err)

	c := cfg.Current()
	assert.True(t, c.Mode.Debug)
	assert.Equal(t, 9001, c.Server.HTTPPort)
	// Untouched keys keep their defaults.
	assert.Equal(t, 8082, c.Server.GRPCPort)
	assert.Equal(t, "db.internal", c.DB.MySQL.Host)
	assert.Equal(t, "hunter2", c.DB.MySQL.Pass)
	assert.Equal(t, 10, c.DB.MySQL.Connections.MaxIdle)
	assert.Equal(t, 7*time.Second, c.App.LiveStream.IdleTimeout)
	assert.Len(t, c.ICE.Servers, 2)
}

func TestEnvironmentVariablePrecedence(t *testing.T) {
	configPath := writeConfig(t, `
[mode]
debug = false

[server]
http_port = 9001
`)

	t.Setenv("SAPI_MODE_DEBUG", "true")
	t.Setenv("SAPI_SERVER_HTTP_PORT", "9002")
	t.Setenv("SAPI_DB_MYSQL_HOST", "env.internal")
	t.Setenv("SAPI_AUTH_RENEWAL_DURATION", "10m")

	cfg, err := New(configPath)
	require.NoError(t, err)

	c := cfg.Current()
	assert.True(t, c.Mode.Debug, "env should beat file")
	assert.Equal(t, 9002, c.Server.HTTPPort, "env should beat file")
	assert.Equal(t, "env.internal", c.DB.MySQL.Host, "env should beat default")
	assert.Equal(t, 10*time.Minute, c.Auth.RenewalDuration)
}

func TestRedisAddrRepair(t *testing.T) {
	tests := []struct {
		name     string
		section  string
		expected []string
	}{
		{
			name: "missing_host",
			section: `
[[db.redis.addrs]]
port = 535
`,
			expected: []string{"127.0.0.1:535"},
		},
		{
			name: "missing_port",
			section: `
[[db.redis.addrs]]
host = "10.0.0.5"
`,
			expected: []string{"10.0.0.5:6379"},
		},
		{
			name: "mixed_members",
			section: `
[[db.redis.addrs]]
host = "10.0.0.5"
port = 6380

[[db.redis.addrs]]
port = 535
`,
			expected: []string{"10.0.0.5:6380", "127.0.0.1:535"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := New(writeConfig(t, tt.section))
			require.NoError(t, err)

			addrs := cfg.Current().DB.Redis.Addrs
			require.Len(t, addrs, len(tt.expected))
			for i, want := range tt.expected {
				assert.Equal(t, want, addrs[i].Addr())
			}
		})
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "bad_log_level",
			content: `
[log.app]
level = "verbose"
`,
			wantErr: "log.app.level",
		},
		{
			name: "bad_duration",
			content: `
[app]
shutdown_timeout = "soon"
`,
			wantErr: "failed to unmarshal",
		},
		{
			name: "duplicate_ports",
			content: `
[server]
http_port = 9000
grpc_port = 9000
`,
			wantErr: "both bind port 9000",
		},
		{
			name: "idle_exceeds_open",
			content: `
[db.mysql.connections]
max_idle = 50
max_open = 20
`,
			wantErr: "max_idle 50 exceeds max_open 20",
		},
		{
			name: "bad_ice_uri",
			content: `
[ice]
servers = ["https://not-ice.example.com"]
`,
			wantErr: "ice.servers",
		},
		{
			name: "zero_limit",
			content: `
[background.finalizer]
period = "10s"
limit = 0
`,
			wantErr: "background.finalizer.limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReload(t *testing.T) {
	configPath := writeConfig(t, `
[server]
http_port = 9001
`)

	cfg, err := New(configPath)
	require.NoError(t, err)
	require.Equal(t, 9001, cfg.Current().Server.HTTPPort)

	require.NoError(t, os.WriteFile(configPath, []byte(`
[server]
http_port = 9002
`), 0o644))

	require.NoError(t, cfg.Reload())
	assert.Equal(t, 9002, cfg.Current().Server.HTTPPort)
}

func TestReloadKeepsPreviousConfigOnError(t *testing.T) {
	configPath := writeConfig(t, `
[server]
http_port = 9001
`)

	cfg, err := New(configPath)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(configPath, []byte(`
[log.app]
level = "verbose"
`), 0o644))

	require.Error(t, cfg.Reload())
	assert.Equal(t, 9001, cfg.Current().Server.HTTPPort, "previous config must stay in effect")
}

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		setupFile      bool
		fileIsDir      bool
		expectedSuffix string
	}{
		{
			name:           "toml_file_extension",
			input:          "custom.toml",
			expectedSuffix: "custom.toml",
		},
		{
			name:           "directory_path",
			input:          "confdir",
			expectedSuffix: filepath.Join("confdir", "config.toml"),
		},
		{
			name:           "existing_file_without_toml",
			input:          "configfile",
			setupFile:      true,
			expectedSuffix: "configfile",
		},
		{
			name:           "existing_directory",
			input:          "configdir",
			setupFile:      true,
			fileIsDir:      true,
			expectedSuffix: filepath.Join("configdir", "config.toml"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			inputPath := filepath.Join(tmpDir, tt.input)

			if tt.setupFile {
				if tt.fileIsDir {
					require.NoError(t, os.MkdirAll(inputPath, 0o755))
				} else {
					require.NoError(t, os.WriteFile(inputPath, []byte("test"), 0o644))
				}
			}

			c := &AppConfig{}
			result := c.resolveConfigPath(inputPath)
			assert.True(t, strings.HasSuffix(result, tt.expectedSuffix),
				"expected %s to end with %s", result, tt.expectedSuffix)
		})
	}
}

func TestRedacted(t *testing.T) {
	configPath := writeConfig(t, `
[auth]
user_password_salt = "supersecret"

[db.mysql]
pass = "hunter2"

[ice]
servers = ["turn:sapi:secret@turn.example.com:3478"]
`)

	cfg, err := New(configPath)
	require.NoError(t, err)

	masked := cfg.Current().Redacted()
	assert.Equal(t, "[redacted]", masked.Auth.UserPasswordSalt)
	assert.Equal(t, "[redacted]", masked.DB.MySQL.Pass)
	require.Len(t, masked.ICE.Servers, 1)
	assert.Equal(t, "turn:turn.example.com:3478", masked.ICE.Servers[0])

	// The original is untouched.
	assert.Equal(t, "supersecret", cfg.Current().Auth.UserPasswordSalt)

	// Stringer must not leak secrets either.
	s := cfg.Current().String()
	assert.NotContains(t, s, "supersecret")
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "secret@")
}
