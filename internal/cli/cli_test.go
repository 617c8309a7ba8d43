package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("HOTPANEL_FEED_URL", "")
	out := &bytes.Buffer{}

	config, shouldExit, err := Parse(nil, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	require.NotNil(t, config)
	assert.Equal(t, ":8077", config.ListenAddr)
	assert.Empty(t, config.PanelsPath)
	assert.Equal(t, 10*time.Second, config.ImportTimeout)
	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, "info", config.LogLevel)
}

func TestParse_AllFlags(t *testing.T) {
	out := &bytes.Buffer{}
	args := []string{
		"-listen", ":9000",
		"-panels-path", "/srv/panels",
		"-feed-url", "http://localhost:3000/socket.io/",
		"-feed-namespace", "/panels",
		"-import-timeout", "2s",
		"-log-format", "TEXT",
		"-log-level", "DEBUG",
	}

	config, shouldExit, err := Parse(args, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, ":9000", config.ListenAddr)
	assert.Equal(t, "/srv/panels", config.PanelsPath)
	assert.Equal(t, "http://localhost:3000/socket.io/", config.FeedURL)
	assert.Equal(t, "/panels", config.FeedNamespace)
	assert.Equal(t, 2*time.Second, config.ImportTimeout)
	assert.Equal(t, "text", config.LogFormat, "format should be lowercased")
	assert.Equal(t, "debug", config.LogLevel, "level should be lowercased")
}

func TestParse_FeedURLFromEnv(t *testing.T) {
	t.Setenv("HOTPANEL_FEED_URL", "http://feed.internal:3000")
	out := &bytes.Buffer{}

	config, _, err := Parse(nil, out)

	require.NoError(t, err)
	assert.Equal(t, "http://feed.internal:3000", config.FeedURL)
}

func TestParse_Help(t *testing.T) {
	out := &bytes.Buffer{}

	config, shouldExit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, config)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_InvalidLogFormat(t *testing.T) {
	out := &bytes.Buffer{}

	_, _, err := Parse([]string{"-log-format", "yaml"}, out)

	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "invalid log-format")
}

func TestParse_InvalidLogLevel(t *testing.T) {
	out := &bytes.Buffer{}

	_, _, err := Parse([]string{"-log-level", "loud"}, out)

	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "invalid log-level")
}

func TestParse_UnknownFlag(t *testing.T) {
	out := &bytes.Buffer{}

	_, _, err := Parse([]string{"-bogus"}, out)

	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}
