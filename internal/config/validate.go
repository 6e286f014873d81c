package config

import (
	"fmt"
	"time"

	"github.com/streamdate/sapi/internal/ice"
)

// validLogLevels are the accepted values for log.*.level. The empty string
// means the channel inherits log.app.level.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"fatal": true,
	"panic": true,
	"":      true,
}

// Validate checks the effective configuration. It is called on every load
// and reload; a config that fails validation is never installed.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.DB.validate(); err != nil {
		return err
	}
	if err := c.MS.validate(); err != nil {
		return err
	}
	if err := c.Log.validate(); err != nil {
		return err
	}
	if err := c.Auth.validate(); err != nil {
		return err
	}
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Background.validate(); err != nil {
		return err
	}
	if _, err := ice.ParseAll(c.ICE.Servers); err != nil {
		return fmt.Errorf("ice.servers: %w", err)
	}
	return nil
}

func (s *Server) validate() error {
	ports := map[string]int{
		"server.http_port":    s.HTTPPort,
		"server.grpc_port":    s.GRPCPort,
		"server.healthz_port": s.HealthzPort,
		"server.metrics_port": s.MetricsPort,
	}
	seen := make(map[int]string, len(ports))
	for key, port := range ports {
		if err := validatePort(key, port); err != nil {
			return err
		}
		if other, ok := seen[port]; ok {
			return fmt.Errorf("%s and %s both bind port %d", other, key, port)
		}
		seen[port] = key
	}
	if s.ShardURL == "" {
		return fmt.Errorf("server.shard_url must not be empty")
	}
	return nil
}

func (d *DB) validate() error {
	if d.MySQL.Host == "" {
		return fmt.Errorf("db.mysql.host must not be empty")
	}
	if err := validatePort("db.mysql.port", d.MySQL.Port); err != nil {
		return err
	}
	if d.MySQL.Databases.Dating == "" {
		return fmt.Errorf("db.mysql.databases.dating must not be empty")
	}
	if d.MySQL.Databases.Social == "" {
		return fmt.Errorf("db.mysql.databases.social must not be empty")
	}
	if d.MySQL.Connections.MaxIdle < 0 || d.MySQL.Connections.MaxOpen < 1 {
		return fmt.Errorf("db.mysql.connections limits must be positive")
	}
	if d.MySQL.Connections.MaxIdle > d.MySQL.Connections.MaxOpen {
		return fmt.Errorf("db.mysql.connections.max_idle %d exceeds max_open %d",
			d.MySQL.Connections.MaxIdle, d.MySQL.Connections.MaxOpen)
	}

	if len(d.Redis.Addrs) == 0 {
		return fmt.Errorf("db.redis.addrs must name at least one ring member")
	}
	for i, addr := range d.Redis.Addrs {
		if addr.Host == "" {
			return fmt.Errorf("db.redis.addrs[%d]: host must not be empty", i)
		}
		if err := validatePort(fmt.Sprintf("db.redis.addrs[%d].port", i), addr.Port); err != nil {
			return err
		}
	}
	return nil
}

func (m *MS) validate() error {
	if m.OpenVidu.Host == "" {
		return fmt.Errorf("ms.openvidu.host must not be empty")
	}
	if err := validatePort("ms.openvidu.grpc_port", m.OpenVidu.GRPCPort); err != nil {
		return err
	}
	return validatePort("ms.openvidu.metrics_port", m.OpenVidu.MetricsPort)
}

func (l *Log) validate() error {
	channels := map[string]string{
		"log.app.level":    l.App.Level,
		"log.access.level": l.Access.Level,
		"log.user.level":   l.User.Level,
	}
	for key, level := range channels {
		if !validLogLevels[level] {
			return fmt.Errorf("%s: unknown level %q (want debug, info, warn, error, fatal, panic or empty)", key, level)
		}
	}
	return nil
}

func (a *Auth) validate() error {
	return validateDuration("auth.renewal_duration", a.RenewalDuration)
}

func (a *App) validate() error {
	if err := validateDuration("app.shutdown_timeout", a.ShutdownTimeout); err != nil {
		return err
	}
	if a.LiveStream.MaxMessageLength < 1 {
		return fmt.Errorf("app.live_stream.max_message_length must be positive")
	}
	pairs := map[string]StreamTimeouts{
		"app.live_stream": {
			IdleTimeout:     a.LiveStream.IdleTimeout,
			StartingTimeout: a.LiveStream.StartingTimeout,
		},
		"app.live_stream.visit":   a.LiveStream.Visit,
		"app.live_stream.preview": a.LiveStream.Preview,
		"app.setup_stream":        a.SetupStream,
	}
	for key, pair := range pairs {
		if err := validateDuration(key+".idle_timeout", pair.IdleTimeout); err != nil {
			return err
		}
		if err := validateDuration(key+".starting_timeout", pair.StartingTimeout); err != nil {
			return err
		}
	}
	return nil
}

func (b *Background) validate() error {
	jobs := map[string]Job{
		"background.finalizer": b.Finalizer,
		"background.recounter": b.Recounter,
		"background.watchdog":  b.Watchdog,
	}
	for key, job := range jobs {
		if err := validateDuration(key+".period", job.Period); err != nil {
			return err
		}
		if job.Limit < 1 {
			return fmt.Errorf("%s.limit must be positive", key)
		}
		// lock_timeout is optional; zero means the job takes no lock.
		if job.LockTimeout < 0 {
			return fmt.Errorf("%s.lock_timeout must not be negative", key)
		}
	}
	return nil
}

func validatePort(key string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s: port %d out of range", key, port)
	}
	return nil
}

func validateDuration(key string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be a positive duration", key)
	}
	return nil
}
