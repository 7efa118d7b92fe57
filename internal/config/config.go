// Package config provides configuration management for wallpaper_changer
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
	"git.asdf.cafe/abs3nt/wallpaper_changer/validator"
)

// Config holds application configuration. Only the JSON-tagged fields are
// persisted; the rest come from defaults and the environment.
type Config struct {
	Interval      int      `json:"interval"`
	Subreddits    []string `json:"subreddits"`
	ImageLimit    int      `json:"image_limit"`    // stored, not enforced
	MinResolution [2]int   `json:"min_resolution"` // stored, not enforced

	TaskName    string `json:"-"`
	ImageFolder string `json:"-"`
	DataDir     string `json:"-"`
	UserAgent   string `json:"-"`
	LogLevel    string `json:"-"`
}

// settings mirrors the persisted fields with pointers so absent keys keep defaults
type settings struct {
	Interval      *int      `json:"interval"`
	Subreddits    *[]string `json:"subreddits"`
	ImageLimit    *int      `json:"image_limit"`
	MinResolution *[2]int   `json:"min_resolution"`
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Interval:      constants.DefaultInterval,
		Subreddits:    append([]string(nil), constants.DefaultSubreddits...),
		ImageLimit:    constants.DefaultImageLimit,
		MinResolution: [2]int{constants.DefaultMinWidth, constants.DefaultMinHeight},
		TaskName:      constants.DefaultTaskName,
		ImageFolder:   filepath.Join(home, "Pictures", constants.DefaultImageFolderName),
		UserAgent:     constants.UserAgent,
		LogLevel:      "info",
	}
}

// DefaultPath returns the default settings file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, constants.AppName, constants.SettingsFile)
}

// Load builds the configuration for the settings file at path: defaults, then
// the .env file beside it, then the process environment, then the persisted
// settings. A missing settings file is not an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	cfg.DataDir = filepath.Dir(path)

	env, err := readEnv(filepath.Join(filepath.Dir(path), constants.EnvFile))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("%w: read settings: %v", errors.ErrFileOperation, err)
	}

	var s settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", errors.ErrInvalidConfig, path, err)
	}
	if s.Interval != nil {
		cfg.Interval = *s.Interval
	}
	if s.Subreddits != nil {
		cfg.Subreddits = *s.Subreddits
	}
	if s.ImageLimit != nil {
		cfg.ImageLimit = *s.ImageLimit
	}
	if s.MinResolution != nil {
		cfg.MinResolution = *s.MinResolution
	}

	return cfg, cfg.Validate()
}

// Save persists the settings fields to path, replacing the file atomically
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return fmt.Errorf("%w: create settings dir: %v", errors.ErrFileOperation, err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp settings: %v", errors.ErrFileOperation, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write settings: %v", errors.ErrFileOperation, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close settings: %v", errors.ErrFileOperation, err)
	}
	if err := os.Chmod(tmp.Name(), constants.FilePermissions); err != nil {
		return fmt.Errorf("%w: chmod settings: %v", errors.ErrFileOperation, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: replace settings: %v", errors.ErrFileOperation, err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	v := validator.NewValidator()

	if err := v.ValidateInterval(c.Interval); err != nil {
		return err
	}
	for _, sub := range c.Subreddits {
		if err := v.ValidateSubreddit(sub); err != nil {
			return err
		}
	}
	if err := v.ValidateImageLimit(c.ImageLimit); err != nil {
		return err
	}
	if err := v.ValidateResolution(c.MinResolution[0], c.MinResolution[1]); err != nil {
		return err
	}
	if err := v.ValidateTaskName(c.TaskName); err != nil {
		return err
	}
	if strings.TrimSpace(c.ImageFolder) == "" {
		return errors.NewValidationError("image_folder", c.ImageFolder, "cannot be empty")
	}
	return nil
}

// AddSubreddits appends the names not already configured and returns those added.
// Names compare case-insensitively.
func (c *Config) AddSubreddits(names []string) []string {
	var added []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || c.indexOf(name) >= 0 {
			continue
		}
		c.Subreddits = append(c.Subreddits, name)
		added = append(added, name)
	}
	return added
}

// RemoveSubreddits drops the named subreddits and returns those removed
func (c *Config) RemoveSubreddits(names []string) []string {
	var removed []string
	for _, name := range names {
		i := c.indexOf(strings.TrimSpace(name))
		if i < 0 {
			continue
		}
		removed = append(removed, c.Subreddits[i])
		c.Subreddits = append(c.Subreddits[:i], c.Subreddits[i+1:]...)
	}
	return removed
}

// DatabasePath returns the path of the state database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, constants.DatabaseFile)
}

// LogPath returns the path of the append-only log file
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, constants.LogFile)
}

func (c *Config) indexOf(name string) int {
	for i, sub := range c.Subreddits {
		if strings.EqualFold(sub, name) {
			return i
		}
	}
	return -1
}

func (c *Config) applyEnv(env map[string]string) error {
	lookup := func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(env[key])
	}

	if v := lookup(constants.EnvImageFolder); v != "" {
		p, err := expandPath(v)
		if err != nil {
			return err
		}
		c.ImageFolder = p
	}
	if v := lookup(constants.EnvDataDir); v != "" {
		p, err := expandPath(v)
		if err != nil {
			return err
		}
		c.DataDir = p
	}
	if v := lookup(constants.EnvTaskName); v != "" {
		c.TaskName = v
	}
	if v := lookup(constants.EnvUserAgent); v != "" {
		c.UserAgent = v
	}
	if v := lookup(constants.EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

func readEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", errors.ErrInvalidConfig, path, err)
	}
	return env, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
