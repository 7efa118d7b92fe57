// Package changer applies wallpapers and keeps track of the desktop's original one
package changer

import (
	"context"
	"fmt"
	"log/slog"

	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
	"git.asdf.cafe/abs3nt/wallpaper_changer/interfaces"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/pool"
)

// Changer picks, applies and records wallpapers
type Changer struct {
	selector interfaces.ImageSelector
	fetcher  interfaces.ImageFetcher
	setter   interfaces.WallpaperSetter
	history  interfaces.ChangeHistory
	logger   *slog.Logger
}

// NewChanger creates a changer. fetcher may be nil, in which case an empty
// pool is reported instead of being refilled.
func NewChanger(selector interfaces.ImageSelector, fetcher interfaces.ImageFetcher, setter interfaces.WallpaperSetter, history interfaces.ChangeHistory, logger *slog.Logger) *Changer {
	return &Changer{
		selector: selector,
		fetcher:  fetcher,
		setter:   setter,
		history:  history,
		logger:   logger,
	}
}

// Apply sets the desktop background to path and reports whether it worked.
// Failures are logged and recorded, never returned.
func (c *Changer) Apply(ctx context.Context, path string) bool {
	err := c.setter.Set(ctx, path)
	if recErr := c.history.RecordChange(ctx, path, err == nil); recErr != nil {
		c.logger.Warn("Failed to record wallpaper change", "path", path, "error", recErr)
	}
	if err != nil {
		c.logger.Error("Failed to set wallpaper", "path", path, "error", err)
		return false
	}
	c.logger.Info("Wallpaper changed", "path", path)
	return true
}

// ChangeWallpaper selects the next pool image and applies it. An empty pool is
// refilled with a single fetch before giving up.
func (c *Changer) ChangeWallpaper(ctx context.Context) (pool.ImageRecord, error) {
	record, err := c.selector.SelectNext(ctx)
	if errors.Is(err, errors.ErrPoolEmpty) && c.fetcher != nil {
		c.logger.Info("Image pool is empty, fetching a new image")
		fetched, fetchErr := c.fetcher.Fetch(ctx)
		if fetchErr != nil {
			return pool.ImageRecord{}, errors.Join(err, fetchErr)
		}
		record, err = fetched, nil
	}
	if err != nil {
		return pool.ImageRecord{}, err
	}

	if !c.Apply(ctx, record.Path) {
		if err := c.selector.Release(ctx, record); err != nil {
			c.logger.Warn("Failed to release image after apply failure", "image", record.ID, "error", err)
		}
		return record, fmt.Errorf("%w: %s", errors.ErrApplyFailed, record.Path)
	}
	return record, nil
}

// CaptureDefault stores the current wallpaper as the one to restore later.
// Once a default is stored it is never overwritten, so later runs that see
// one of our own images do not replace the original.
func (c *Changer) CaptureDefault(ctx context.Context) (string, error) {
	path, ok, err := c.history.DefaultWallpaper(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		return path, nil
	}

	path, err = c.setter.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("read current wallpaper: %w", err)
	}
	if err := c.history.SaveDefaultWallpaper(ctx, path); err != nil {
		return "", err
	}
	c.logger.Info("Captured default wallpaper", "path", path)
	return path, nil
}

// RestoreDefault re-applies the captured default wallpaper and forgets it.
// Having nothing captured is not an error.
func (c *Changer) RestoreDefault(ctx context.Context) error {
	path, ok, err := c.history.DefaultWallpaper(ctx)
	if err != nil {
		return err
	}
	if !ok || path == "" {
		c.logger.Info("No default wallpaper captured, nothing to restore")
		return nil
	}

	if !c.Apply(ctx, path) {
		return fmt.Errorf("%w: restore %s", errors.ErrApplyFailed, path)
	}
	return c.history.ClearDefaultWallpaper(ctx)
}
