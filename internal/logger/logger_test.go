package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamdate/sapi/internal/config"
)

func TestChannelLevels(t *testing.T) {
	var buf bytes.Buffer
	channels := SetupWriter(config.Log{
		App:    config.LogChannel{Level: "info"},
		Access: config.LogChannel{Level: "error"},
		User:   config.LogChannel{Level: "debug"},
	}, false, &buf)

	channels.App.Debug().Msg("app debug")
	channels.App.Info().Msg("app info")
	channels.Access.Info().Msg("access info")
	channels.Access.Error().Msg("access error")
	channels.User.Debug().Msg("user debug")

	out := buf.String()
	assert.NotContains(t, out, "app debug")
	assert.Contains(t, out, "app info")
	assert.NotContains(t, out, "access info")
	assert.Contains(t, out, "access error")
	assert.Contains(t, out, "user debug")
}

func TestEmptyLevelInheritsAppLevel(t *testing.T) {
	var buf bytes.Buffer
	channels := SetupWriter(config.Log{
		App:    config.LogChannel{Level: "error"},
		Access: config.LogChannel{Level: ""},
		User:   config.LogChannel{Level: ""},
	}, false, &buf)

	channels.Access.Info().Msg("access info")
	channels.User.Warn().Msg("user warn")
	channels.User.Error().Msg("user error")

	out := buf.String()
	assert.NotContains(t, out, "access info")
	assert.NotContains(t, out, "user warn")
	assert.Contains(t, out, "user error")
}

func TestDebugModeForcesDebugEverywhere(t *testing.T) {
	var buf bytes.Buffer
	channels := SetupWriter(config.Log{
		App:    config.LogChannel{Level: "error"},
		Access: config.LogChannel{Level: "error"},
		User:   config.LogChannel{Level: "error"},
	}, true, &buf)

	channels.App.Debug().Msg("app debug message")
	channels.Access.Debug().Msg("access debug message")

	out := buf.String()
	assert.Contains(t, out, "app debug message")
	assert.Contains(t, out, "access debug message")
}

func TestChannelsAreTagged(t *testing.T) {
	var buf bytes.Buffer
	channels := SetupWriter(config.Log{
		App:    config.LogChannel{Level: "info"},
		Access: config.LogChannel{Level: "info"},
		User:   config.LogChannel{Level: "info"},
	}, false, &buf)

	channels.Access.Info().Msg("tagged")

	require.True(t, strings.Contains(buf.String(), `"channel":"access"`),
		"expected channel field in %s", buf.String())
}

func TestLiveSwap(t *testing.T) {
	var first, second bytes.Buffer

	live := NewLive(SetupWriter(config.Log{
		App: config.LogChannel{Level: "info"},
	}, false, &first))

	before := live.App()
	before.Info().Msg("before swap")

	live.Swap(SetupWriter(config.Log{
		App: config.LogChannel{Level: "info"},
	}, false, &second))

	after := live.App()
	after.Info().Msg("after swap")

	assert.Contains(t, first.String(), "before swap")
	assert.NotContains(t, first.String(), "after swap")
	assert.Contains(t, second.String(), "after swap")
}
