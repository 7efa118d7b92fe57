// Package cmd provides command handlers for the CLI
package cmd

import (
	"io"
	"log/slog"
	"os"
	"time"

	"git.asdf.cafe/abs3nt/wallpaper_changer/interfaces"
	"git.asdf.cafe/abs3nt/wallpaper_changer/internal/config"
	"git.asdf.cafe/abs3nt/wallpaper_changer/validator"
)

// Deps are the collaborators a Manager orchestrates
type Deps struct {
	Config     *config.Config
	ConfigPath string
	Platform   string
	Pool       interfaces.ImagePool
	Fetcher    interfaces.ImageFetcher
	Changer    interfaces.WallpaperChanger
	Trigger    interfaces.TriggerConfigurator
	History    interfaces.ChangeHistory
	Out        io.Writer
	Logger     *slog.Logger
}

// Manager runs one CLI operation per process
type Manager struct {
	cfg       *config.Config
	cfgPath   string
	platform  string
	pool      interfaces.ImagePool
	fetcher   interfaces.ImageFetcher
	changer   interfaces.WallpaperChanger
	trigger   interfaces.TriggerConfigurator
	history   interfaces.ChangeHistory
	validator interfaces.Validator
	out       io.Writer
	now       func() time.Time
	logger    *slog.Logger
}

// NewManager creates a manager from its dependencies
func NewManager(d Deps) *Manager {
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	return &Manager{
		cfg:       d.Config,
		cfgPath:   d.ConfigPath,
		platform:  d.Platform,
		pool:      d.Pool,
		fetcher:   d.Fetcher,
		changer:   d.Changer,
		trigger:   d.Trigger,
		history:   d.History,
		validator: validator.NewValidator(),
		out:       out,
		now:       time.Now,
		logger:    d.Logger,
	}
}

func (m *Manager) saveConfig() error {
	if err := m.cfg.Save(m.cfgPath); err != nil {
		return err
	}
	m.logger.Debug("Settings saved", "path", m.cfgPath)
	return nil
}
