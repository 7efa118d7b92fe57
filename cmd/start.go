package cmd

import (
	"context"
	"fmt"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

// Start registers the recurring trigger, fills the pool with a batch of
// images and applies one. Each step runs even if an earlier one failed; the
// failures are returned together.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.pool.EnsureFolder(); err != nil {
		return err
	}
	m.captureDefault(ctx)

	var errs []error
	if err := m.trigger.Install(ctx, m.cfg.TaskName, m.cfg.Interval); err != nil {
		m.logger.Error("Failed to register recurring trigger", "task", m.cfg.TaskName, "error", err)
		fmt.Fprintf(m.out, "Could not register recurring trigger: %v\n", err)
		errs = append(errs, err)
	} else {
		fmt.Fprintf(m.out, "Recurring trigger %q installed, every %d seconds\n", m.cfg.TaskName, m.cfg.Interval)
	}

	records := m.fetcher.FetchBatch(ctx, constants.DefaultStartBatchSize)
	fmt.Fprintf(m.out, "Downloaded %d of %d images into %s\n", len(records), constants.DefaultStartBatchSize, m.cfg.ImageFolder)

	record, err := m.changer.ChangeWallpaper(ctx)
	if err != nil {
		fmt.Fprintf(m.out, "Could not change wallpaper: %v\n", err)
		errs = append(errs, err)
	} else {
		fmt.Fprintf(m.out, "Wallpaper set to %s\n", record.Path)
	}

	return errors.Join(errs...)
}

// Stop removes the recurring trigger and puts the original wallpaper back
func (m *Manager) Stop(ctx context.Context) error {
	var errs []error
	if err := m.trigger.Remove(ctx, m.cfg.TaskName); err != nil {
		fmt.Fprintf(m.out, "Could not remove recurring trigger: %v\n", err)
		errs = append(errs, err)
	} else {
		fmt.Fprintf(m.out, "Recurring trigger %q removed\n", m.cfg.TaskName)
	}

	if err := m.changer.RestoreDefault(ctx); err != nil {
		fmt.Fprintf(m.out, "Could not restore the original wallpaper: %v\n", err)
		errs = append(errs, err)
	} else {
		fmt.Fprintln(m.out, "Original wallpaper restored")
	}

	return errors.Join(errs...)
}

// captureDefault snapshots the wallpaper in place before we change anything.
// A failure only costs the ability to restore later.
func (m *Manager) captureDefault(ctx context.Context) {
	if _, err := m.changer.CaptureDefault(ctx); err != nil {
		m.logger.Warn("Could not capture current wallpaper", "error", err)
	}
}
