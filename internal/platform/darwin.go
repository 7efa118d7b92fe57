package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"howett.net/plist"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
	"git.asdf.cafe/abs3nt/wallpaper_changer/interfaces"
)

type macWallpaper struct {
	runner interfaces.CommandRunner
	logger *slog.Logger
}

// Set uses AppleScript to point every desktop at path
func (m *macWallpaper) Set(ctx context.Context, path string) error {
	script := `tell application "System Events" to tell every desktop to set picture to ` + strconv.Quote(path)
	if _, err := run(ctx, m.runner, "osascript", "-e", script); err != nil {
		return err
	}
	m.logger.Debug("Wallpaper set", "platform", MacOS, "path", path)
	return nil
}

func (m *macWallpaper) Current(ctx context.Context) (string, error) {
	out, err := run(ctx, m.runner, "osascript", "-e", `tell application "Finder" to get POSIX path of (get desktop picture as alias)`)
	if err != nil {
		return "", err
	}
	return outputText(out), nil
}

// launchAgent is the plist document launchd reads
type launchAgent struct {
	Label            string   `plist:"Label"`
	ProgramArguments []string `plist:"ProgramArguments"`
	StartInterval    int      `plist:"StartInterval"`
	RunAtLoad        bool     `plist:"RunAtLoad"`
}

// launchAgents registers triggers as per-user launchd agents
type launchAgents struct {
	dir    string
	runner interfaces.CommandRunner
	logger *slog.Logger
}

// LaunchdLabel returns the agent label for a task name
func LaunchdLabel(name string) string {
	return constants.LaunchdLabelPrefix + strings.ToLower(name)
}

func (l *launchAgents) plistPath(name string) string {
	return filepath.Join(l.dir, LaunchdLabel(name)+".plist")
}

func (l *launchAgents) Register(ctx context.Context, spec interfaces.TriggerSpec) error {
	// RunAtLoad stays off: login does not change the wallpaper, the first change comes one interval after load
	agent := launchAgent{
		Label:            LaunchdLabel(spec.Name),
		ProgramArguments: append([]string{spec.Program}, spec.Args...),
		StartInterval:    max(1, spec.IntervalSeconds),
		RunAtLoad:        false,
	}
	data, err := plist.MarshalIndent(agent, plist.XMLFormat, "\t")
	if err != nil {
		return fmt.Errorf("encode launch agent: %w", err)
	}

	if err := os.MkdirAll(l.dir, constants.DirPermissions); err != nil {
		return fmt.Errorf("%w: create %s: %v", errors.ErrFileOperation, l.dir, err)
	}
	path := l.plistPath(spec.Name)
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return fmt.Errorf("%w: write %s: %v", errors.ErrFileOperation, path, err)
	}

	if _, err := run(ctx, l.runner, "launchctl", "load", "-w", path); err != nil {
		return err
	}
	l.logger.Info("Launch agent loaded", "label", agent.Label, "interval", agent.StartInterval)
	return nil
}

func (l *launchAgents) Unregister(ctx context.Context, name string) error {
	path := l.plistPath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		l.logger.Debug("Launch agent not present", "path", path)
		return nil
	}

	if _, err := run(ctx, l.runner, "launchctl", "unload", path); err != nil {
		// an agent whose plist exists but was never loaded is still removed
		l.logger.Warn("launchctl unload failed", "path", path, "error", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove %s: %v", errors.ErrFileOperation, path, err)
	}
	return nil
}

func (l *launchAgents) IsRegistered(ctx context.Context, name string) (bool, error) {
	if _, err := os.Stat(l.plistPath(name)); os.IsNotExist(err) {
		return false, nil
	}
	if _, err := run(ctx, l.runner, "launchctl", "list", LaunchdLabel(name)); err != nil {
		if errors.Is(err, errors.ErrCommandFailed) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
