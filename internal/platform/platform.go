// Package platform identifies the host and provides the per-platform strategy
// for setting the wallpaper and registering the recurring trigger.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
	"git.asdf.cafe/abs3nt/wallpaper_changer/executor"
	"git.asdf.cafe/abs3nt/wallpaper_changer/interfaces"
)

// Kind is a supported host platform
type Kind string

const (
	Windows Kind = "windows"
	MacOS   Kind = "darwin"
	Linux   Kind = "linux"
)

// Identify maps a GOOS value to a supported Kind
func Identify(goos string) (Kind, error) {
	switch Kind(goos) {
	case Windows, MacOS, Linux:
		return Kind(goos), nil
	default:
		return "", fmt.Errorf("%w: %s", errors.ErrUnsupportedPlatform, goos)
	}
}

// Detect identifies the platform this binary runs on
func Detect() (Kind, error) {
	return Identify(runtime.GOOS)
}

// Options holds the host dependencies of a platform strategy
type Options struct {
	Runner interfaces.CommandRunner
	Logger *slog.Logger
	// Getenv reads the desktop environment variables. Defaults to os.Getenv.
	Getenv func(string) string
	// LaunchAgentsDir is where launchd agents are written on macOS.
	// Defaults to ~/Library/LaunchAgents.
	LaunchAgentsDir string
	// Desktop overrides the native Windows wallpaper API.
	Desktop DesktopAPI
}

// Strategy bundles the wallpaper setter and trigger backend of one platform
type Strategy struct {
	kind      Kind
	wallpaper interfaces.WallpaperSetter
	scheduler interfaces.TriggerBackend
}

// New builds the strategy for kind. It is constructed once at startup and
// injected wherever platform behaviour is needed.
func New(kind Kind, opts Options) (*Strategy, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Runner == nil {
		opts.Runner = executor.NewRunner(opts.Logger)
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	s := &Strategy{kind: kind}
	switch kind {
	case Windows:
		desktop := opts.Desktop
		if desktop == nil {
			desktop = nativeDesktop{}
		}
		s.wallpaper = &windowsWallpaper{desktop: desktop, logger: opts.Logger}
		s.scheduler = &taskScheduler{runner: opts.Runner, logger: opts.Logger}
	case MacOS:
		dir := opts.LaunchAgentsDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("%w: resolve home directory: %v", errors.ErrFileOperation, err)
			}
			dir = filepath.Join(home, constants.DefaultLaunchAgentsPath)
		}
		s.wallpaper = &macWallpaper{runner: opts.Runner, logger: opts.Logger}
		s.scheduler = &launchAgents{dir: dir, runner: opts.Runner, logger: opts.Logger}
	case Linux:
		s.wallpaper = &linuxWallpaper{
			runner:  opts.Runner,
			desktop: desktopFamily(opts.Getenv("XDG_CURRENT_DESKTOP")),
			logger:  opts.Logger,
		}
		s.scheduler = &crontab{runner: opts.Runner, getenv: opts.Getenv, logger: opts.Logger}
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedPlatform, kind)
	}
	return s, nil
}

// Name returns the platform identifier
func (s *Strategy) Name() string {
	return string(s.kind)
}

// Wallpaper returns the desktop background setter
func (s *Strategy) Wallpaper() interfaces.WallpaperSetter {
	return s.wallpaper
}

// Scheduler returns the native recurring-job backend
func (s *Strategy) Scheduler() interfaces.TriggerBackend {
	return s.scheduler
}

var _ interfaces.Platform = (*Strategy)(nil)

// intervalMinutes converts seconds to whole minutes with a floor of one
func intervalMinutes(seconds int) int {
	return max(1, seconds/60)
}

func outputText(out executor.Output) string {
	return strings.TrimSpace(string(out.Stdout))
}

func commandStderr(err error) string {
	var cmdErr *errors.CommandError
	if errors.As(err, &cmdErr) {
		return strings.ToLower(cmdErr.Stderr)
	}
	return ""
}

func run(ctx context.Context, r interfaces.CommandRunner, name string, args ...string) (executor.Output, error) {
	return r.Run(ctx, executor.Command{Name: name, Args: args})
}
