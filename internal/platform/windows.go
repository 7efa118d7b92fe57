package platform

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"git.asdf.cafe/abs3nt/wallpaper_changer/interfaces"
)

// DesktopAPI is the Windows user32/registry surface for the wallpaper
type DesktopAPI interface {
	SetWallpaper(path string) error
	Wallpaper() (string, error)
}

type windowsWallpaper struct {
	desktop DesktopAPI
	logger  *slog.Logger
}

func (w *windowsWallpaper) Set(_ context.Context, path string) error {
	if err := w.desktop.SetWallpaper(path); err != nil {
		return fmt.Errorf("SystemParametersInfo: %w", err)
	}
	w.logger.Debug("Wallpaper set", "platform", Windows, "path", path)
	return nil
}

func (w *windowsWallpaper) Current(context.Context) (string, error) {
	return w.desktop.Wallpaper()
}

// taskScheduler registers triggers with schtasks.exe
type taskScheduler struct {
	runner interfaces.CommandRunner
	logger *slog.Logger
}

func (t *taskScheduler) Register(ctx context.Context, spec interfaces.TriggerSpec) error {
	args := []string{
		"/create",
		"/tn", spec.Name,
		"/tr", windowsCommandLine(spec.Program, spec.Args),
		"/sc", "minute",
		"/mo", strconv.Itoa(intervalMinutes(spec.IntervalSeconds)),
		"/f",
	}
	if _, err := run(ctx, t.runner, "schtasks", args...); err != nil {
		return err
	}
	t.logger.Info("Scheduled task created", "task", spec.Name, "minutes", intervalMinutes(spec.IntervalSeconds))
	return nil
}

func (t *taskScheduler) Unregister(ctx context.Context, name string) error {
	_, err := run(ctx, t.runner, "schtasks", "/delete", "/tn", name, "/f")
	if err != nil && taskMissing(err) {
		t.logger.Debug("Scheduled task not present", "task", name)
		return nil
	}
	return err
}

func (t *taskScheduler) IsRegistered(ctx context.Context, name string) (bool, error) {
	_, err := run(ctx, t.runner, "schtasks", "/query", "/tn", name)
	if err == nil {
		return true, nil
	}
	if taskMissing(err) {
		return false, nil
	}
	return false, err
}

func taskMissing(err error) bool {
	stderr := commandStderr(err)
	return strings.Contains(stderr, "cannot find") || strings.Contains(stderr, "does not exist")
}

// windowsCommandLine joins a program and its arguments, quoting any part with spaces
func windowsCommandLine(program string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, p := range append([]string{program}, args...) {
		if p == "" || strings.ContainsAny(p, " \t") {
			p = `"` + p + `"`
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}
