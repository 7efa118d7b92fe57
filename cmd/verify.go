package cmd

import (
	"context"
	"fmt"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
)

// Verify re-installs the recurring trigger if the scheduler lost it
func (m *Manager) Verify(ctx context.Context) error {
	repaired, err := m.trigger.VerifyRunning(ctx, m.cfg.TaskName)
	if err != nil {
		return err
	}
	if repaired {
		fmt.Fprintf(m.out, "Recurring trigger %q was missing and has been reinstalled every %d seconds\n", m.cfg.TaskName, constants.FallbackInterval)
		return nil
	}
	fmt.Fprintf(m.out, "Recurring trigger %q is installed\n", m.cfg.TaskName)
	return nil
}
