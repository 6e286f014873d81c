package config

// defaults registers the compiled-in default for every known key. These
// mirror the documented defaults in the shipped config.toml; the file and
// SAPI_* environment variables override them in that order.
func (c *AppConfig) defaults() {
	c.viper.SetDefault("mode.debug", false)

	c.viper.SetDefault("server.shard_url", "http://127.0.0.1")
	c.viper.SetDefault("server.http_port", 8081)
	c.viper.SetDefault("server.grpc_port", 8082)
	c.viper.SetDefault("server.healthz_port", 10025)
	c.viper.SetDefault("server.metrics_port", 9199)

	c.viper.SetDefault("db.mysql.host", "127.0.0.1")
	c.viper.SetDefault("db.mysql.port", 3306)
	c.viper.SetDefault("db.mysql.user", "root")
	c.viper.SetDefault("db.mysql.pass", "")
	c.viper.SetDefault("db.mysql.databases.dating", "dating")
	c.viper.SetDefault("db.mysql.databases.social", "social")
	c.viper.SetDefault("db.mysql.connections.max_idle", 30)
	c.viper.SetDefault("db.mysql.connections.max_open", 30)

	c.viper.SetDefault("db.redis.addrs", []map[string]any{
		{"host": defaultRedisHost, "port": defaultRedisPort},
	})

	c.viper.SetDefault("ms.openvidu.host", "127.0.0.1")
	c.viper.SetDefault("ms.openvidu.grpc_port", 8080)
	c.viper.SetDefault("ms.openvidu.metrics_port", 9321)

	c.viper.SetDefault("log.app.level", "info")
	c.viper.SetDefault("log.access.level", "info")
	c.viper.SetDefault("log.user.level", "info")

	c.viper.SetDefault("auth.user_password_salt", "")
	c.viper.SetDefault("auth.renewal_duration", "5m")

	c.viper.SetDefault("app.shutdown_timeout", "30s")
	c.viper.SetDefault("app.live_stream.max_message_length", 1000)
	c.viper.SetDefault("app.live_stream.idle_timeout", "5s")
	c.viper.SetDefault("app.live_stream.starting_timeout", "20s")
	c.viper.SetDefault("app.live_stream.visit.idle_timeout", "5s")
	c.viper.SetDefault("app.live_stream.visit.starting_timeout", "20s")
	c.viper.SetDefault("app.live_stream.preview.idle_timeout", "5s")
	c.viper.SetDefault("app.live_stream.preview.starting_timeout", "20s")
	c.viper.SetDefault("app.setup_stream.idle_timeout", "5s")
	c.viper.SetDefault("app.setup_stream.starting_timeout", "20s")

	c.viper.SetDefault("background.finalizer.period", "10s")
	c.viper.SetDefault("background.finalizer.limit", 50)
	c.viper.SetDefault("background.recounter.period", "5s")
	c.viper.SetDefault("background.recounter.limit", 50)
	c.viper.SetDefault("background.recounter.lock_timeout", "4s")
	c.viper.SetDefault("background.watchdog.period", "5s")
	c.viper.SetDefault("background.watchdog.limit", 10)
	c.viper.SetDefault("background.watchdog.lock_timeout", "4s")

	c.viper.SetDefault("ice.servers", []string{
		"turn:access_token:qwerty@127.0.0.1:3478",
	})
}
