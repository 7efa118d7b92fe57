package platform

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/executor"
	"git.asdf.cafe/abs3nt/wallpaper_changer/interfaces"
)

type desktop string

const (
	desktopGNOME    desktop = "gnome"
	desktopCinnamon desktop = "cinnamon"
	desktopMATE     desktop = "mate"
	desktopDeepin   desktop = "deepin"
)

// desktopFamily maps XDG_CURRENT_DESKTOP to the settings family it uses.
// Anything unrecognised is treated as GNOME.
func desktopFamily(xdg string) desktop {
	for _, part := range strings.Split(strings.ToLower(xdg), ":") {
		switch {
		case strings.Contains(part, "cinnamon"):
			return desktopCinnamon
		case strings.Contains(part, "mate"):
			return desktopMATE
		case strings.Contains(part, "deepin"):
			return desktopDeepin
		}
	}
	return desktopGNOME
}

// dconf keys for the non-GNOME families
var dconfKeys = map[desktop]string{
	desktopCinnamon: "/org/cinnamon/desktop/background/picture-uri",
	desktopMATE:     "/org/mate/desktop/background/picture-filename",
	desktopDeepin:   "/com/deepin/wrap/gnome/desktop/background/picture-uri",
}

const gnomeSchema = "org.gnome.desktop.background"

type linuxWallpaper struct {
	runner  interfaces.CommandRunner
	desktop desktop
	logger  *slog.Logger
}

func (l *linuxWallpaper) Set(ctx context.Context, path string) error {
	uri := "file://" + path

	if l.desktop == desktopGNOME {
		if _, err := run(ctx, l.runner, "gsettings", "set", gnomeSchema, "picture-uri", uri); err != nil {
			return err
		}
		// picture-uri-dark only exists on GNOME 42+
		if _, err := run(ctx, l.runner, "gsettings", "set", gnomeSchema, "picture-uri-dark", uri); err != nil {
			l.logger.Debug("Dark wallpaper key not updated", "error", err)
		}
		l.logger.Debug("Wallpaper set", "platform", Linux, "desktop", l.desktop, "path", path)
		return nil
	}

	value := uri
	if l.desktop == desktopMATE {
		value = path
	}
	if _, err := run(ctx, l.runner, "dconf", "write", dconfKeys[l.desktop], strconv.Quote(value)); err != nil {
		return err
	}
	l.logger.Debug("Wallpaper set", "platform", Linux, "desktop", l.desktop, "path", path)
	return nil
}

func (l *linuxWallpaper) Current(ctx context.Context) (string, error) {
	var (
		out executor.Output
		err error
	)
	if l.desktop == desktopGNOME {
		out, err = run(ctx, l.runner, "gsettings", "get", gnomeSchema, "picture-uri")
	} else {
		out, err = run(ctx, l.runner, "dconf", "read", dconfKeys[l.desktop])
	}
	if err != nil {
		return "", err
	}
	return settingPath(outputText(out)), nil
}

// settingPath turns a GVariant string such as 'file:///a b.jpg' into a plain path
func settingPath(value string) string {
	value = strings.Trim(value, `'"`)
	return strings.TrimPrefix(value, "file://")
}

// crontab registers triggers as lines in the user's crontab, each tagged
// with a marker comment naming the task.
type crontab struct {
	runner interfaces.CommandRunner
	getenv func(string) string
	logger *slog.Logger
}

// cronEnvironment is copied from the registering session onto the cron line.
// cron starts jobs without it and gsettings/dconf cannot reach the desktop otherwise.
var cronEnvironment = []string{"XDG_CURRENT_DESKTOP", "DBUS_SESSION_BUS_ADDRESS", "DISPLAY", "XDG_RUNTIME_DIR"}

// cronStepMinutes divide an hour or a day evenly, so */N fires at a steady pace
var cronStepMinutes = []int{1, 2, 3, 4, 5, 6, 10, 12, 15, 20, 30, 60, 120, 180, 240, 360, 480, 720, 1440}

// cronMinutes rounds an interval to the nearest step cron can repeat evenly.
// Ties go to the shorter step.
func cronMinutes(seconds int) int {
	minutes := intervalMinutes(seconds)
	best := cronStepMinutes[0]
	for _, step := range cronStepMinutes[1:] {
		if abs(step-minutes) < abs(best-minutes) {
			best = step
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// CronSchedule converts an interval to a five-field cron expression
func CronSchedule(seconds int) string {
	minutes := cronMinutes(seconds)
	switch {
	case minutes < 60:
		return fmt.Sprintf("*/%d * * * *", minutes)
	case minutes < 1440:
		return fmt.Sprintf("0 */%d * * *", minutes/60)
	default:
		return "0 0 * * *"
	}
}

func cronMarker(name string) string {
	return constants.CronMarkerPrefix + name
}

func (c *crontab) Register(ctx context.Context, spec interfaces.TriggerSpec) error {
	schedule := CronSchedule(spec.IntervalSeconds)
	if effective := cronMinutes(spec.IntervalSeconds) * 60; effective != spec.IntervalSeconds {
		c.logger.Warn("Interval rounded to fit cron", "requested_seconds", spec.IntervalSeconds, "effective_seconds", effective)
	}

	lines, err := c.read(ctx)
	if err != nil {
		return err
	}
	lines = withoutTask(lines, spec.Name)

	command := shellCommandLine(spec.Program, spec.Args)
	if env := c.environment(); env != "" {
		command = env + " " + command
	}
	// cron reads an unescaped % as a newline
	command = strings.ReplaceAll(command, "%", `\%`)
	lines = append(lines, fmt.Sprintf("%s %s %s", schedule, command, cronMarker(spec.Name)))
	if err := c.write(ctx, lines); err != nil {
		return err
	}
	c.logger.Info("Cron job installed", "task", spec.Name, "schedule", schedule)
	return nil
}

// environment renders the session variables that are set as NAME=value assignments
func (c *crontab) environment() string {
	if c.getenv == nil {
		return ""
	}
	var pairs []string
	for _, name := range cronEnvironment {
		if value := c.getenv(name); value != "" {
			pairs = append(pairs, name+"="+shellQuote(value))
		}
	}
	return strings.Join(pairs, " ")
}

func (c *crontab) Unregister(ctx context.Context, name string) error {
	lines, err := c.read(ctx)
	if err != nil {
		return err
	}
	kept := withoutTask(lines, name)
	if len(kept) == len(lines) {
		c.logger.Debug("Cron job not present", "task", name)
		return nil
	}
	return c.write(ctx, kept)
}

func (c *crontab) IsRegistered(ctx context.Context, name string) (bool, error) {
	lines, err := c.read(ctx)
	if err != nil {
		return false, err
	}
	return len(withoutTask(lines, name)) != len(lines), nil
}

// read returns the current crontab lines; a user without a crontab has none
func (c *crontab) read(ctx context.Context) ([]string, error) {
	out, err := run(ctx, c.runner, "crontab", "-l")
	if err != nil {
		if strings.Contains(commandStderr(err), "no crontab") {
			return nil, nil
		}
		return nil, err
	}

	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(string(out.Stdout)))
	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func (c *crontab) write(ctx context.Context, lines []string) error {
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	_, err := c.runner.Run(ctx, executor.Command{Name: "crontab", Args: []string{"-"}, Stdin: content})
	return err
}

func withoutTask(lines []string, name string) []string {
	marker := cronMarker(name)
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasSuffix(strings.TrimSpace(line), marker) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

// shellCommandLine single-quotes every part that the shell would split or expand
func shellCommandLine(program string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, p := range append([]string{program}, args...) {
		parts = append(parts, shellQuote(p))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t'\"$`\\&;|<>()*?#~%") {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return s
}
