// Package logging sets up the application's append-only log file
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

// Options controls where and how much is logged
type Options struct {
	Path  string
	Level string
	// Verbose mirrors every line to Stderr and forces the debug level
	Verbose bool
	Stderr  io.Writer
}

// New opens the log file for appending and returns a text logger writing to
// it. The returned closer releases the file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), constants.DirPermissions); err != nil {
		return nil, nil, fmt.Errorf("%w: create log directory: %v", errors.ErrFileOperation, err)
	}
	f, err := os.OpenFile(opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open log file: %v", errors.ErrFileOperation, err)
	}

	var w io.Writer = f
	if opts.Verbose {
		level = slog.LevelDebug
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		w = io.MultiWriter(f, stderr)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, f, nil
}

// ParseLevel accepts debug, info, warn or error. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", errors.ErrInvalidConfig, s)
	}
	return level, nil
}
