package logger

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Live holds the current Channels and lets a config reload swap in
// re-leveled loggers without restarting. Readers always see a complete
// Channels value.
type Live struct {
	v atomic.Pointer[Channels]
}

// NewLive wraps the initial channels.
func NewLive(c Channels) *Live {
	l := &Live{}
	l.v.Store(&c)
	return l
}

// Swap installs new channels, typically after a config reload.
func (l *Live) Swap(c Channels) {
	l.v.Store(&c)
}

// App returns the current app channel logger.
func (l *Live) App() zerolog.Logger {
	return l.v.Load().App
}

// Access returns the current access channel logger.
func (l *Live) Access() zerolog.Logger {
	return l.v.Load().Access
}

// User returns the current user channel logger.
func (l *Live) User() zerolog.Logger {
	return l.v.Load().User
}
