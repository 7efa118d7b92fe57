package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/robfig/cron/v3"

	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
	"git.asdf.cafe/abs3nt/wallpaper_changer/internal/platform"
)

// UpdateInterval persists a new change interval and re-installs the trigger
// with it. The setting is saved even when the trigger update fails.
func (m *Manager) UpdateInterval(ctx context.Context, seconds int) error {
	if err := m.validator.ValidateInterval(seconds); err != nil {
		return err
	}

	m.cfg.Interval = seconds
	if err := m.saveConfig(); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Interval set to %d seconds\n", seconds)

	if err := m.trigger.Update(ctx, m.cfg.TaskName, seconds); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Recurring trigger %q updated\n", m.cfg.TaskName)
	return nil
}

// AddSubreddits appends new subreddit names and persists them
func (m *Manager) AddSubreddits(names []string) error {
	if len(names) == 0 {
		return errors.NewValidationError("subreddits", "", "at least one name is required")
	}
	for _, name := range names {
		if err := m.validator.ValidateSubreddit(name); err != nil {
			return err
		}
	}

	added := m.cfg.AddSubreddits(names)
	if len(added) == 0 {
		fmt.Fprintln(m.out, "All subreddits are already configured")
		return nil
	}
	if err := m.saveConfig(); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Added subreddits: %s\n", strings.Join(added, ", "))
	return nil
}

// RemoveSubreddits drops the named subreddits and persists the list
func (m *Manager) RemoveSubreddits(names []string) error {
	if len(names) == 0 {
		return errors.NewValidationError("subreddits", "", "at least one name is required")
	}

	removed := m.cfg.RemoveSubreddits(names)
	if len(removed) == 0 {
		fmt.Fprintln(m.out, "None of those subreddits are configured")
		return nil
	}
	if err := m.saveConfig(); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Removed subreddits: %s\n", strings.Join(removed, ", "))
	if len(m.cfg.Subreddits) == 0 {
		fmt.Fprintln(m.out, "Warning: no subreddits left, new images cannot be downloaded")
	}
	return nil
}

// SetMinResolution persists the minimum resolution setting
func (m *Manager) SetMinResolution(width, height int) error {
	if err := m.validator.ValidateResolution(width, height); err != nil {
		return err
	}
	m.cfg.MinResolution = [2]int{width, height}
	if err := m.saveConfig(); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Minimum resolution set to %dx%d\n", width, height)
	return nil
}

// SetImageLimit persists the maximum pool size setting
func (m *Manager) SetImageLimit(limit int) error {
	if err := m.validator.ValidateImageLimit(limit); err != nil {
		return err
	}
	m.cfg.ImageLimit = limit
	if err := m.saveConfig(); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Image limit set to %d\n", limit)
	return nil
}

// ShowConfig prints the current settings
func (m *Manager) ShowConfig() error {
	images, err := m.pool.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(m.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Settings file:\t%s\n", m.cfgPath)
	fmt.Fprintf(w, "Platform:\t%s\n", m.platform)
	fmt.Fprintf(w, "Task name:\t%s\n", m.cfg.TaskName)
	fmt.Fprintf(w, "Interval:\t%d seconds\n", m.cfg.Interval)
	fmt.Fprintf(w, "Subreddits:\t%s\n", strings.Join(m.cfg.Subreddits, ", "))
	fmt.Fprintf(w, "Image limit:\t%d\n", m.cfg.ImageLimit)
	fmt.Fprintf(w, "Min resolution:\t%dx%d\n", m.cfg.MinResolution[0], m.cfg.MinResolution[1])
	fmt.Fprintf(w, "Image folder:\t%s (%d images)\n", m.cfg.ImageFolder, len(images))
	if next, ok := m.nextChange(); ok {
		fmt.Fprintf(w, "Next change:\t%s\n", next)
	} else {
		fmt.Fprintf(w, "Next change:\tevery %d seconds after the trigger was installed\n", m.cfg.Interval)
	}
	return w.Flush()
}

// nextChange reports when the cron trigger fires next. launchd and the Task
// Scheduler count from when the task was loaded, which is not recorded, so
// only crontab has a wall-clock answer.
func (m *Manager) nextChange() (string, bool) {
	if m.platform != string(platform.Linux) {
		return "", false
	}
	schedule, err := cron.ParseStandard(platform.CronSchedule(m.cfg.Interval))
	if err != nil {
		m.logger.Debug("Cannot compute next change", "error", err)
		return "", false
	}
	return schedule.Next(m.now()).Format("2006-01-02 15:04"), true
}

// parseResolution reads "WxH" or a width followed by a separate height
func parseResolution(value string, rest []string) (int, int, error) {
	parts := strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
		return r == 'x' || r == ' ' || r == ','
	})
	if len(parts) == 1 && len(rest) > 0 {
		parts = append(parts, rest[0])
	}
	if len(parts) != 2 {
		return 0, 0, errors.NewValidationError("min_resolution", value, "expected WIDTH HEIGHT or WIDTHxHEIGHT")
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.NewValidationError("min_resolution", value, "width is not a number")
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errors.NewValidationError("min_resolution", value, "height is not a number")
	}
	return width, height, nil
}
