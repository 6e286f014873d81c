package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigTemplate is the commented config.toml shipped with sapi.
// Every key is listed with its compiled-in default.
const defaultConfigTemplate = `# config.toml - sapi configuration

[mode]
# Enable debug mode: verbose console logging, debug level everywhere.
#
# Default: false
debug = false

[server]
# Public URL of this shard, advertised to clients.
#
# Default: "http://127.0.0.1"
shard_url = "http://127.0.0.1"

# Client-facing HTTP API port.
#
# Default: 8081
http_port = 8081

# Internal gRPC port.
#
# Default: 8082
grpc_port = 8082

# Liveness/readiness probe port.
#
# Default: 10025
healthz_port = 10025

# Prometheus metrics port.
#
# Default: 9199
metrics_port = 9199

[db.mysql]
# MySQL server shared by the dating and social databases.
#
# Defaults: 127.0.0.1:3306, user "root", empty password
host = "127.0.0.1"
port = 3306
user = "root"
pass = ""

[db.mysql.databases]
# Schema names.
#
# Defaults: "dating" and "social"
dating = "dating"
social = "social"

[db.mysql.connections]
# sql.DB pool limits, applied to each database.
#
# Defaults: 30 idle, 30 open
max_idle = 30
max_open = 30

# Redis ring members. Keys are distributed across the listed instances by
# consistent hashing. A member may omit host or port; the missing half
# falls back to 127.0.0.1:6379.
[[db.redis.addrs]]
host = "127.0.0.1"
port = 6379

# Additional ring members can be appended:
# [[db.redis.addrs]]
# host = "127.0.0.1"
# port = 6380

[ms.openvidu]
# OpenVidu media server endpoints.
#
# Defaults: 127.0.0.1, gRPC 8080, metrics 9321
host = "127.0.0.1"
grpc_port = 8080
metrics_port = 9321

# Log channels. Levels: "debug", "info", "warn", "error", "fatal",
# "panic" or "" (inherit the app level).
[log.app]
level = "info"

[log.access]
level = "info"

[log.user]
level = "info"

[auth]
# Salt mixed into user password hashes. Set this before first use.
#
# Default: ""
user_password_salt = ""

# How long a session token stays renewable.
#
# Default: "5m"
renewal_duration = "5m"

[app]
# Grace period for in-flight requests on shutdown.
#
# Default: "30s"
shutdown_timeout = "30s"

[app.live_stream]
# Maximum chat message length in a live stream.
#
# Default: 1000
max_message_length = 1000

# A stream with no participants is closed after idle_timeout; a stream
# that never leaves the starting state is closed after starting_timeout.
#
# Defaults: "5s" / "20s"
idle_timeout = "5s"
starting_timeout = "20s"

[app.live_stream.visit]
idle_timeout = "5s"
starting_timeout = "20s"

[app.live_stream.preview]
idle_timeout = "5s"
starting_timeout = "20s"

[app.setup_stream]
idle_timeout = "5s"
starting_timeout = "20s"

[background.finalizer]
# Closes streams whose lifecycle has ended.
#
# Defaults: every "10s", up to 50 per pass
period = "10s"
limit = 50

[background.recounter]
# Recomputes viewer counters. lock_timeout bounds the distributed lock.
#
# Defaults: every "5s", up to 50 per pass, lock "4s"
period = "5s"
limit = 50
lock_timeout = "4s"

[background.watchdog]
# Reaps sessions that stopped heartbeating.
#
# Defaults: every "5s", up to 10 per pass, lock "4s"
period = "5s"
limit = 10
lock_timeout = "4s"

[ice]
# STUN/TURN servers handed to clients for NAT traversal.
# TURN entries carry credentials as turn:user:credential@host:port.
#
# Default: ["turn:access_token:qwerty@127.0.0.1:3478"]
servers = [
  "turn:access_token:qwerty@127.0.0.1:3478",
]
`

// WriteDefaultConfig writes the commented default config.toml to path,
// creating parent directories as needed. An existing file is left alone.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
