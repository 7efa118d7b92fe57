// Package interfaces defines interfaces for dependency injection
package interfaces

import (
	"context"

	"git.asdf.cafe/abs3nt/wallpaper_changer/executor"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/history"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/pool"
)

// CommandRunner runs external programs
type CommandRunner interface {
	Run(ctx context.Context, cmd executor.Command) (executor.Output, error)
}

// ImagePool defines the interface for the local image folder
type ImagePool interface {
	EnsureFolder() error
	List() ([]pool.ImageRecord, error)
	Write(data []byte, subreddit string) (pool.ImageRecord, error)
}

// ImageFetcher defines the interface for pulling new images from the remote source
type ImageFetcher interface {
	Fetch(ctx context.Context) (pool.ImageRecord, error)
	FetchBatch(ctx context.Context, count int) []pool.ImageRecord
}

// UsedStore holds the identifiers shown since the last full rotation cycle
type UsedStore interface {
	Used(ctx context.Context) ([]string, error)
	MarkUsed(ctx context.Context, id string) error
	UnmarkUsed(ctx context.Context, id string) error
	ResetUsed(ctx context.Context) error
}

// ImageSelector picks the next wallpaper from the pool
type ImageSelector interface {
	SelectNext(ctx context.Context) (pool.ImageRecord, error)
	// Release gives a selected image its turn back, e.g. when it could not be shown
	Release(ctx context.Context, record pool.ImageRecord) error
}

// WallpaperSetter is the platform-native desktop background call
type WallpaperSetter interface {
	Set(ctx context.Context, path string) error
	Current(ctx context.Context) (string, error)
}

// TriggerSpec describes a periodic re-invocation of this program
type TriggerSpec struct {
	Name            string
	IntervalSeconds int
	Program         string
	Args            []string
}

// TriggerBackend is the host's native recurring-job facility
type TriggerBackend interface {
	Register(ctx context.Context, spec TriggerSpec) error
	Unregister(ctx context.Context, name string) error
	IsRegistered(ctx context.Context, name string) (bool, error)
}

// Platform bundles the platform-specific capabilities, constructed once at startup
type Platform interface {
	Name() string
	Wallpaper() WallpaperSetter
	Scheduler() TriggerBackend
}

// ChangeHistory records wallpaper changes and the pre-existing wallpaper
type ChangeHistory interface {
	RecordChange(ctx context.Context, path string, success bool) error
	History(ctx context.Context, limit int) ([]history.Entry, error)
	DefaultWallpaper(ctx context.Context) (string, bool, error)
	SaveDefaultWallpaper(ctx context.Context, path string) error
	ClearDefaultWallpaper(ctx context.Context) error
}

// WallpaperChanger applies wallpapers and manages the captured default
type WallpaperChanger interface {
	ChangeWallpaper(ctx context.Context) (pool.ImageRecord, error)
	CaptureDefault(ctx context.Context) (string, error)
	RestoreDefault(ctx context.Context) error
}

// TriggerConfigurator installs and repairs the recurring trigger
type TriggerConfigurator interface {
	Install(ctx context.Context, taskName string, intervalSeconds int) error
	Remove(ctx context.Context, taskName string) error
	Update(ctx context.Context, taskName string, intervalSeconds int) error
	VerifyRunning(ctx context.Context, taskName string) (bool, error)
}

// Validator defines the interface for input validation
type Validator interface {
	ValidateInterval(value int) error
	ValidateSubreddit(value string) error
	ValidateResolution(width, height int) error
	ValidateImageLimit(value int) error
	ValidateTaskName(value string) error
}
