// Package trigger installs the recurring re-invocation of wallpaper_changer
// with whatever native scheduler the platform provides.
package trigger

import (
	"context"
	"fmt"
	"log/slog"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
	"git.asdf.cafe/abs3nt/wallpaper_changer/interfaces"
)

// Configurator manages one program's trigger on a scheduler backend
type Configurator struct {
	backend interfaces.TriggerBackend
	program string
	args    []string
	logger  *slog.Logger
}

// NewConfigurator creates a configurator whose triggers run program with args
func NewConfigurator(backend interfaces.TriggerBackend, program string, args []string, logger *slog.Logger) *Configurator {
	return &Configurator{
		backend: backend,
		program: program,
		args:    args,
		logger:  logger,
	}
}

// Install registers taskName to fire every intervalSeconds. Any previous
// registration under the same name is removed first.
func (c *Configurator) Install(ctx context.Context, taskName string, intervalSeconds int) error {
	if err := c.backend.Unregister(ctx, taskName); err != nil {
		return fmt.Errorf("%w: remove previous %q: %v", errors.ErrTriggerRegistration, taskName, err)
	}

	spec := interfaces.TriggerSpec{
		Name:            taskName,
		IntervalSeconds: intervalSeconds,
		Program:         c.program,
		Args:            c.args,
	}
	if err := c.backend.Register(ctx, spec); err != nil {
		return fmt.Errorf("%w: %q: %v", errors.ErrTriggerRegistration, taskName, err)
	}

	c.logger.Info("Recurring trigger installed", "task", taskName, "interval_seconds", intervalSeconds)
	return nil
}

// Remove unregisters taskName. A task that does not exist is not an error.
func (c *Configurator) Remove(ctx context.Context, taskName string) error {
	if err := c.backend.Unregister(ctx, taskName); err != nil {
		return fmt.Errorf("%w: remove %q: %v", errors.ErrTriggerRegistration, taskName, err)
	}
	c.logger.Info("Recurring trigger removed", "task", taskName)
	return nil
}

// Update re-installs taskName with a new interval
func (c *Configurator) Update(ctx context.Context, taskName string, intervalSeconds int) error {
	return c.Install(ctx, taskName, intervalSeconds)
}

// VerifyRunning re-installs taskName with the fallback interval when the
// backend no longer knows about it. It reports whether a repair was made.
func (c *Configurator) VerifyRunning(ctx context.Context, taskName string) (bool, error) {
	ok, err := c.backend.IsRegistered(ctx, taskName)
	if err != nil {
		return false, fmt.Errorf("%w: query %q: %v", errors.ErrTriggerRegistration, taskName, err)
	}
	if ok {
		c.logger.Debug("Recurring trigger present", "task", taskName)
		return false, nil
	}

	c.logger.Warn("Recurring trigger missing, reinstalling", "task", taskName, "interval_seconds", constants.FallbackInterval)
	if err := c.Install(ctx, taskName, constants.FallbackInterval); err != nil {
		return false, err
	}
	return true, nil
}
