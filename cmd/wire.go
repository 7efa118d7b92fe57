package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
	"git.asdf.cafe/abs3nt/wallpaper_changer/internal/config"
	"git.asdf.cafe/abs3nt/wallpaper_changer/internal/logging"
	"git.asdf.cafe/abs3nt/wallpaper_changer/internal/platform"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/changer"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/history"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/pool"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/reddit"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/rotation"
	"git.asdf.cafe/abs3nt/wallpaper_changer/src/trigger"
)

// Wire is the production SetupFunc: it identifies the platform, loads the
// settings, opens the log and state database, and connects the components.
func Wire(ctx context.Context, opts Options) (*Manager, func(), error) {
	kind, err := platform.Detect()
	if err != nil {
		return nil, nil, err
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	if abs, err := filepath.Abs(cfgPath); err == nil {
		cfgPath = abs
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	logger, logFile, err := logging.New(logging.Options{
		Path:    cfg.LogPath(),
		Level:   cfg.LogLevel,
		Verbose: opts.Verbose,
	})
	if err != nil {
		return nil, nil, err
	}

	strategy, err := platform.New(kind, platform.Options{Logger: logger})
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}

	state, err := history.NewStore(cfg.DatabasePath(), logger)
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}

	exe, err := os.Executable()
	if err != nil {
		state.Close()
		logFile.Close()
		return nil, nil, fmt.Errorf("%w: locate executable: %v", errors.ErrFileOperation, err)
	}

	images := pool.NewStore(cfg.ImageFolder, logger)
	client := reddit.NewClient(cfg.UserAgent, logger)
	fetcher := reddit.NewFetcher(client, images, cfg.Subreddits, logger)
	selector := rotation.NewSelector(images, state, logger)

	m := NewManager(Deps{
		Config:     cfg,
		ConfigPath: cfgPath,
		Platform:   strategy.Name(),
		Pool:       images,
		Fetcher:    fetcher,
		Changer:    changer.NewChanger(selector, fetcher, strategy.Wallpaper(), state, logger),
		Trigger: trigger.NewConfigurator(strategy.Scheduler(), exe,
			[]string{constants.TriggerCommandFlag, "--config", cfgPath}, logger),
		History: state,
		Logger:  logger,
	})

	logger.Debug("Components wired", "platform", strategy.Name(), "settings", cfgPath, "images", cfg.ImageFolder)

	cleanup := func() {
		if err := state.Close(); err != nil {
			logger.Warn("Failed to close state database", "error", err)
		}
		logFile.Close()
	}
	return m, cleanup, nil
}
