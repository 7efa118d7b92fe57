package cmd

import (
	"context"
	"strconv"

	"github.com/urfave/cli/v3"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

// Options are the global flags needed before a Manager can be built
type Options struct {
	ConfigPath string
	Verbose    bool
}

// SetupFunc builds the Manager for one invocation. The returned func releases
// what it opened.
type SetupFunc func(ctx context.Context, opts Options) (*Manager, func(), error)

// NewRootCommand creates the wallpaper_changer command line
func NewRootCommand(setup SetupFunc) *cli.Command {
	return &cli.Command{
		Name:  constants.AppName,
		Usage: "Rotate the desktop wallpaper through images from Reddit",
		Flags: GetFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if !anyOperation(c) {
				return cli.ShowAppHelp(c)
			}

			m, cleanup, err := setup(ctx, Options{
				ConfigPath: c.String("config"),
				Verbose:    c.Bool("verbose"),
			})
			if err != nil {
				return err
			}
			defer cleanup()

			return Dispatch(ctx, c, m)
		},
	}
}

// operations in precedence order; the first one set on the command line runs
var operations = []string{
	"start",
	"stop",
	"change-now",
	"interval",
	"add-subreddits",
	"remove-subreddits",
	"min-resolution",
	"image-limit",
	"show-config",
	"clean-images",
	"history",
	"verify",
}

func anyOperation(c *cli.Command) bool {
	for _, op := range operations {
		if c.IsSet(op) {
			return true
		}
	}
	return false
}

// Dispatch runs the first operation set on c. Positional arguments feed the
// operations that take a list or a second value.
func Dispatch(ctx context.Context, c *cli.Command, m *Manager) error {
	args := c.Args().Slice()

	for _, op := range operations {
		if !c.IsSet(op) {
			continue
		}
		switch op {
		case "start":
			return m.Start(ctx)
		case "stop":
			return m.Stop(ctx)
		case "change-now":
			return m.ChangeNow(ctx)
		case "interval":
			return m.UpdateInterval(ctx, c.Int("interval"))
		case "add-subreddits":
			return m.AddSubreddits(append(c.StringSlice("add-subreddits"), args...))
		case "remove-subreddits":
			return m.RemoveSubreddits(append(c.StringSlice("remove-subreddits"), args...))
		case "min-resolution":
			width, height, err := parseResolution(c.String("min-resolution"), args)
			if err != nil {
				return err
			}
			return m.SetMinResolution(width, height)
		case "image-limit":
			return m.SetImageLimit(c.Int("image-limit"))
		case "show-config":
			return m.ShowConfig()
		case "clean-images":
			return m.CleanImages()
		case "history":
			limit := constants.DefaultHistoryLimit
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return errors.NewValidationError("history", args[0], "must be a positive number")
				}
				limit = n
			}
			return m.History(ctx, limit)
		case "verify":
			return m.Verify(ctx)
		}
	}
	return nil
}

// GetFlags returns the CLI flags of the root command
func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "start",
			Usage: "Install the recurring trigger, download a batch of images and set one",
		},
		&cli.BoolFlag{
			Name:  "stop",
			Usage: "Remove the recurring trigger and restore the original wallpaper",
		},
		&cli.BoolFlag{
			Name:  "change-now",
			Usage: "Change the wallpaper to the next image in the rotation",
		},
		&cli.IntFlag{
			Name:  "interval",
			Usage: "Set the change interval in seconds and update the trigger",
		},
		&cli.StringSliceFlag{
			Name:  "add-subreddits",
			Usage: "Add subreddits to download from",
		},
		&cli.StringSliceFlag{
			Name:  "remove-subreddits",
			Usage: "Remove subreddits from the list",
		},
		&cli.StringFlag{
			Name:  "min-resolution",
			Usage: "Store a minimum resolution as WIDTH HEIGHT or WIDTHxHEIGHT",
		},
		&cli.IntFlag{
			Name:  "image-limit",
			Usage: "Store the maximum number of images to keep",
		},
		&cli.BoolFlag{
			Name:  "show-config",
			Usage: "Print the current settings",
		},
		&cli.BoolFlag{
			Name:  "clean-images",
			Usage: "Clean up downloaded images (currently does nothing)",
		},
		&cli.BoolFlag{
			Name:  "history",
			Usage: "Print the last N wallpaper changes (default 20)",
		},
		&cli.BoolFlag{
			Name:  "verify",
			Usage: "Reinstall the recurring trigger if it is missing",
		},
		&cli.StringFlag{
			Name:      "config",
			Aliases:   []string{"c"},
			TakesFile: true,
			Usage:     "Path to the settings file",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Also write log lines to stderr at debug level",
		},
	}
}
