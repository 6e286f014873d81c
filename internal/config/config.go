package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/streamdate/sapi/internal/ice"
)

const (
	envPrefix = "SAPI"

	defaultRedisHost = "127.0.0.1"
	defaultRedisPort = 6379
)

// Mode holds global runtime mode flags.
type Mode struct {
	Debug bool `toml:"debug" mapstructure:"debug" json:"debug"`
}

// Server holds the listen ports and the public shard URL of this instance.
type Server struct {
	ShardURL    string `toml:"shard_url" mapstructure:"shard_url" json:"shard_url"`
	HTTPPort    int    `toml:"http_port" mapstructure:"http_port" json:"http_port"`
	GRPCPort    int    `toml:"grpc_port" mapstructure:"grpc_port" json:"grpc_port"`
	HealthzPort int    `toml:"healthz_port" mapstructure:"healthz_port" json:"healthz_port"`
	MetricsPort int    `toml:"metrics_port" mapstructure:"metrics_port" json:"metrics_port"`
}

// DB groups the storage backends.
type DB struct {
	MySQL MySQL `toml:"mysql" mapstructure:"mysql" json:"mysql"`
	Redis Redis `toml:"redis" mapstructure:"redis" json:"redis"`
}

// MySQL holds connection settings shared by both application databases.
type MySQL struct {
	Host        string      `toml:"host" mapstructure:"host" json:"host"`
	Port        int         `toml:"port" mapstructure:"port" json:"port"`
	User        string      `toml:"user" mapstructure:"user" json:"user"`
	Pass        string      `toml:"pass" mapstructure:"pass" json:"pass"`
	Databases   Databases   `toml:"databases" mapstructure:"databases" json:"databases"`
	Connections Connections `toml:"connections" mapstructure:"connections" json:"connections"`
}

// Databases names the two schemas SAPI reads from.
type Databases struct {
	Dating string `toml:"dating" mapstructure:"dating" json:"dating"`
	Social string `toml:"social" mapstructure:"social" json:"social"`
}

// Connections holds sql.DB pool limits.
type Connections struct {
	MaxIdle int `toml:"max_idle" mapstructure:"max_idle" json:"max_idle"`
	MaxOpen int `toml:"max_open" mapstructure:"max_open" json:"max_open"`
}

// Redis holds the members of the consistent-hash ring.
type Redis struct {
	Addrs []RedisAddr `toml:"addrs" mapstructure:"addrs" json:"addrs"`
}

// RedisAddr is a single ring member. A member may be written with only one
// of host/port in the file; the missing half falls back to 127.0.0.1:6379.
type RedisAddr struct {
	Host string `toml:"host" mapstructure:"host" json:"host"`
	Port int    `toml:"port" mapstructure:"port" json:"port"`
}

// Addr returns the member as host:port.
func (a RedisAddr) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// MS groups external media servers.
type MS struct {
	OpenVidu OpenVidu `toml:"openvidu" mapstructure:"openvidu" json:"openvidu"`
}

// OpenVidu holds the media server endpoints.
type OpenVidu struct {
	Host        string `toml:"host" mapstructure:"host" json:"host"`
	GRPCPort    int    `toml:"grpc_port" mapstructure:"grpc_port" json:"grpc_port"`
	MetricsPort int    `toml:"metrics_port" mapstructure:"metrics_port" json:"metrics_port"`
}

// Log holds the per-channel log levels. An empty level means the channel
// inherits the app level.
type Log struct {
	App    LogChannel `toml:"app" mapstructure:"app" json:"app"`
	Access LogChannel `toml:"access" mapstructure:"access" json:"access"`
	User   LogChannel `toml:"user" mapstructure:"user" json:"user"`
}

// LogChannel holds the level of one log channel.
type LogChannel struct {
	Level string `toml:"level" mapstructure:"level" json:"level"`
}

// Auth holds credential hashing and session renewal settings.
type Auth struct {
	UserPasswordSalt string        `toml:"user_password_salt" mapstructure:"user_password_salt" json:"user_password_salt"`
	RenewalDuration  time.Duration `toml:"renewal_duration" mapstructure:"renewal_duration" json:"renewal_duration"`
}

// App holds lifecycle timeouts for the signaling domain.
type App struct {
	ShutdownTimeout time.Duration  `toml:"shutdown_timeout" mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
	LiveStream      LiveStream     `toml:"live_stream" mapstructure:"live_stream" json:"live_stream"`
	SetupStream     StreamTimeouts `toml:"setup_stream" mapstructure:"setup_stream" json:"setup_stream"`
}

// LiveStream holds the live-stream lifecycle parameters plus the nested
// visit and preview timeout pairs.
type LiveStream struct {
	MaxMessageLength int            `toml:"max_message_length" mapstructure:"max_message_length" json:"max_message_length"`
	IdleTimeout      time.Duration  `toml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout"`
	StartingTimeout  time.Duration  `toml:"starting_timeout" mapstructure:"starting_timeout" json:"starting_timeout"`
	Visit            StreamTimeouts `toml:"visit" mapstructure:"visit" json:"visit"`
	Preview          StreamTimeouts `toml:"preview" mapstructure:"preview" json:"preview"`
}

// StreamTimeouts is the idle/starting timeout pair shared by several
// lifecycle states.
type StreamTimeouts struct {
	IdleTimeout     time.Duration `toml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout"`
	StartingTimeout time.Duration `toml:"starting_timeout" mapstructure:"starting_timeout" json:"starting_timeout"`
}

// Background holds the cadences of the periodic jobs.
type Background struct {
	Finalizer Job `toml:"finalizer" mapstructure:"finalizer" json:"finalizer"`
	Recounter Job `toml:"recounter" mapstructure:"recounter" json:"recounter"`
	Watchdog  Job `toml:"watchdog" mapstructure:"watchdog" json:"watchdog"`
}

// Job holds the cadence of one periodic job. LockTimeout is zero for jobs
// that do not take a distributed lock.
type Job struct {
	Period      time.Duration `toml:"period" mapstructure:"period" json:"period"`
	Limit       int           `toml:"limit" mapstructure:"limit" json:"limit"`
	LockTimeout time.Duration `toml:"lock_timeout" mapstructure:"lock_timeout" json:"lock_timeout"`
}

// ICE holds the STUN/TURN servers handed to clients.
type ICE struct {
	Servers []string `toml:"servers" mapstructure:"servers" json:"servers"`
}

// Config is the full effective configuration of a SAPI instance.
type Config struct {
	Mode       Mode       `toml:"mode" mapstructure:"mode" json:"mode"`
	Server     Server     `toml:"server" mapstructure:"server" json:"server"`
	DB         DB         `toml:"db" mapstructure:"db" json:"db"`
	MS         MS         `toml:"ms" mapstructure:"ms" json:"ms"`
	Log        Log        `toml:"log" mapstructure:"log" json:"log"`
	Auth       Auth       `toml:"auth" mapstructure:"auth" json:"auth"`
	App        App        `toml:"app" mapstructure:"app" json:"app"`
	Background Background `toml:"background" mapstructure:"background" json:"background"`
	ICE        ICE        `toml:"ice" mapstructure:"ice" json:"ice"`
}

// ICEServers returns the parsed ICE server list. Load has already
// validated the URIs, so unparsable entries are skipped here.
func (c *Config) ICEServers() []ice.Server {
	servers := make([]ice.Server, 0, len(c.ICE.Servers))
	for _, uri := range c.ICE.Servers {
		srv, err := ice.Parse(uri)
		if err != nil {
			continue
		}
		servers = append(servers, srv)
	}
	return servers
}

// AppConfig wraps the effective Config together with the viper instance
// that produced it, so the file can be re-read on change. The current
// config is swapped atomically on reload; callers must go through
// Current and must not hold the pointer across reload boundaries they
// care about.
type AppConfig struct {
	current atomic.Pointer[Config]

	viper      *viper.Viper
	configPath string
}

// Current returns the effective configuration.
func (c *AppConfig) Current() *Config {
	return c.current.Load()
}

// New loads configuration with priority: compiled defaults, then the TOML
// file (if present), then SAPI_* environment variables. The result is
// validated before it is returned.
//
// configPath may be a direct path to a .toml file, a directory containing
// config.toml, or empty to use the OS-specific default location.
func New(configPath string) (*AppConfig, error) {
	c := &AppConfig{
		viper: viper.New(),
	}

	c.configPath = c.resolveConfigPath(configPath)

	c.defaults()

	c.viper.SetEnvPrefix(envPrefix)
	c.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.viper.AutomaticEnv()

	c.viper.SetConfigFile(c.configPath)
	c.viper.SetConfigType("toml")

	if _, err := os.Stat(c.configPath); err == nil {
		if err := c.viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", c.configPath, err)
		}
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	return c, nil
}

// load unmarshals the merged settings into Config, repairs partial redis
// ring members and validates the result.
func (c *AppConfig) load() error {
	cfg := &Config{}
	// Weak typing so environment overrides (always strings) decode into
	// bool and int fields.
	err := c.viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	})
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	repairRedisAddrs(cfg.DB.Redis.Addrs)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.current.Store(cfg)
	return nil
}

// Reload re-reads the config file and swaps in the new effective config.
// On any error the previous config stays in place.
func (c *AppConfig) Reload() error {
	if err := c.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to re-read config file %s: %w", c.configPath, err)
	}
	return c.load()
}

// ConfigPath returns the resolved path of the config file, whether or not
// it exists on disk.
func (c *AppConfig) ConfigPath() string {
	return c.configPath
}

// repairRedisAddrs fills the missing half of partially specified ring
// members. The sample config ships a member with its host commented out;
// the loader has always treated that as 127.0.0.1 rather than failing.
func repairRedisAddrs(addrs []RedisAddr) {
	for i := range addrs {
		if addrs[i].Host == "" {
			addrs[i].Host = defaultRedisHost
		}
		if addrs[i].Port == 0 {
			addrs[i].Port = defaultRedisPort
		}
	}
}

// resolveConfigPath turns the user-supplied path into a concrete file
// path. Direct .toml paths and existing files are used as-is; anything
// else is treated as a directory holding config.toml.
func (c *AppConfig) resolveConfigPath(path string) string {
	if path == "" {
		return filepath.Join(GetDefaultConfigDir(), "config.toml")
	}

	if strings.HasSuffix(strings.ToLower(path), ".toml") {
		return path
	}

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}

	return filepath.Join(path, "config.toml")
}

// GetDefaultConfigDir returns the OS-specific default configuration
// directory for sapi.
func GetDefaultConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "sapi")
		}
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		// Container images mount a bare /config; use it directly.
		if xdg == "/config" {
			return xdg
		}
		return filepath.Join(xdg, "sapi")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "sapi")
}
