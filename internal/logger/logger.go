// Package logger builds the three zerolog channels sapi writes to:
// app (service internals), access (request log) and user (user-visible
// audit events). Each channel carries its own level from log.*.level.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/streamdate/sapi/internal/config"
)

// Channels holds the configured loggers.
type Channels struct {
	App    zerolog.Logger
	Access zerolog.Logger
	User   zerolog.Logger
}

// Setup builds the channels from config. Debug mode forces the debug
// level on every channel and switches to the human-readable console
// writer; otherwise output is JSON at the configured levels, with empty
// levels inheriting the app channel's.
func Setup(cfg config.Log, debug bool) Channels {
	return SetupWriter(cfg, debug, nil)
}

// SetupWriter is Setup with an explicit output, used by tests.
func SetupWriter(cfg config.Log, debug bool, out io.Writer) Channels {
	if out == nil {
		out = os.Stderr
	}
	if debug {
		out = zerolog.ConsoleWriter{Out: out}
	}

	appLevel := parseLevel(cfg.App.Level, zerolog.InfoLevel)

	base := zerolog.New(out).With().Timestamp().Logger()
	if debug {
		appLevel = zerolog.DebugLevel
	}

	channel := func(name, level string) zerolog.Logger {
		l := base.With().Str("channel", name).Logger()
		if debug {
			return l.Level(zerolog.DebugLevel)
		}
		return l.Level(parseLevel(level, appLevel))
	}

	return Channels{
		App:    base.With().Str("channel", "app").Logger().Level(appLevel),
		Access: channel("access", cfg.Access.Level),
		User:   channel("user", cfg.User.Level),
	}
}

// parseLevel maps a log.*.level value to a zerolog level. The empty
// string falls back to the given inherited level.
func parseLevel(level string, inherit zerolog.Level) zerolog.Level {
	if level == "" {
		return inherit
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return inherit
	}
	return parsed
}
