package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

func TestNew_AppendsTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wallpaper_changer.log")

	for _, msg := range []string{"first run", "second run"} {
		logger, closer, err := New(Options{Path: path, Level: "info"})
		require.NoError(t, err)
		logger.Info(msg)
		logger.Debug("hidden")
		require.NoError(t, closer.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "time="))
	assert.Contains(t, lines[0], `msg="first run"`)
	assert.Contains(t, lines[1], `msg="second run"`)
}

func TestNew_VerboseMirrorsToStderr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallpaper_changer.log")
	var stderr bytes.Buffer

	logger, closer, err := New(Options{Path: path, Level: "error", Verbose: true, Stderr: &stderr})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("fetching", "subreddit", "EarthPorn")

	assert.Contains(t, stderr.String(), "subreddit=EarthPorn")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level=DEBUG")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}
