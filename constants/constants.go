// Package constants defines application constants
package constants

import "time"

// Application constants
const (
	AppName      = "wallpaper_changer"
	AppVersion   = "1.0.0"
	UserAgent    = "WallpaperChanger Bot 1.0"
	SettingsFile = "settings.json"
	EnvFile      = ".env"
	DatabaseFile = "wallpapers.db"
	LogFile      = "wallpaper_changer.log"
)

// Default values
const (
	DefaultInterval         = 60   // seconds
	FallbackInterval        = 3600 // seconds, used when a missing trigger is re-installed
	DefaultTaskName         = "WallpaperChanger"
	DefaultStartBatchSize   = 10
	DefaultImageLimit       = 50
	DefaultMinWidth         = 1920
	DefaultMinHeight        = 1080
	DefaultHistoryLimit     = 20
	DefaultImageFolderName  = "WallpaperChanger"
	DefaultLaunchAgentsPath = "Library/LaunchAgents"
)

// DefaultSubreddits is the subreddit list a fresh install draws from
var DefaultSubreddits = []string{"EarthPorn", "CityPorn", "SpacePorn", "Art"}

// Environment keys
const (
	EnvImageFolder = "WALLPAPER_CHANGER_IMAGE_FOLDER"
	EnvDataDir     = "WALLPAPER_CHANGER_DATA_DIR"
	EnvTaskName    = "WALLPAPER_CHANGER_TASK_NAME"
	EnvUserAgent   = "WALLPAPER_CHANGER_USER_AGENT"
	EnvLogLevel    = "LOG_LEVEL"
)

// Remote API constants
const (
	RedditBaseURL       = "https://www.reddit.com"
	RequestTimeout      = 30 * time.Second
	MaxIdleConns        = 10
	MaxIdleConnsPerHost = 2
	IdleConnTimeout     = 30 * time.Second
	BatchRequestEvery   = 2 * time.Second // public JSON endpoints allow roughly one request per two seconds
	MaxDownloadBytes    = 64 << 20
)

// DirectImageExtensions are the URL suffixes accepted as direct image links
var DirectImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// PoolImageExtensions are the file suffixes listed as pool members
var PoolImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

// ShortenerHosts serve images at extension-less URLs; ".jpg" is appended for them
var ShortenerHosts = []string{"imgur.com"}

// Trigger constants
const (
	TriggerCommandFlag = "--change-now"
	CronMarkerPrefix   = "# wallpaper_changer:"
	LaunchdLabelPrefix = "com."
)

// Exit codes
const (
	ExitOK                  = 0
	ExitGeneric             = 1
	ExitUnsupportedPlatform = 2
	ExitInvalidInput        = 3
	ExitApplyFailure        = 4
	ExitTriggerFailure      = 5
	ExitFetchFailure        = 6
)

// File permission constants
const (
	DirPermissions  = 0o755
	FilePermissions = 0o644
)
