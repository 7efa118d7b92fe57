package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.asdf.cafe/abs3nt/wallpaper_changer/cmd"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCommand(cmd.Wire).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(errors.ExitCode(err))
	}
}
