// Package executor provides external command execution
package executor

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

// Command describes one invocation of an external program
type Command struct {
	Name  string
	Args  []string
	Stdin string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Output holds what a command wrote
type Output struct {
	Stdout []byte
	Stderr []byte
}

// Runner runs commands on the host
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a new command runner
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		logger: logger,
	}
}

// Run executes cmd and waits for it. A non-zero exit is returned as *errors.CommandError
// with the captured output still populated.
func (r *Runner) Run(ctx context.Context, cmd Command) (Output, error) {
	r.logger.Debug("Executing command", "command", cmd.String())

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	err := c.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		r.logger.Debug("Command failed", "command", cmd.Name, "error", err, "stderr", strings.TrimSpace(stderr.String()))
		return out, &errors.CommandError{
			Name:   cmd.Name,
			Args:   cmd.Args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return out, nil
}
