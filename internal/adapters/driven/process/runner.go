// Package process provides a CommandRunner backed by os/exec.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
	"github.com/Byrix/bom-scrapper/internal/logger"
)

// Ensure Runner implements the interface.
var _ driven.CommandRunner = (*Runner)(nil)

// Runner runs child processes, streaming their output.
type Runner struct {
	stdout io.Writer
	stderr io.Writer
}

// NewRunner creates a runner writing child output to stdout and stderr.
// nil writers default to the process's own streams.
func NewRunner(stdout, stderr io.Writer) *Runner {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Runner{stdout: stdout, stderr: stderr}
}

// Run executes cmd and waits for it to exit.
func (r *Runner) Run(ctx context.Context, cmd domain.Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("%w: empty command", domain.ErrInvalidInput)
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdin = os.Stdin
	c.Stdout = r.stdout
	c.Stderr = r.stderr
	if cmd.Stdout != nil {
		c.Stdout = cmd.Stdout
	}
	if cmd.Stderr != nil {
		c.Stderr = cmd.Stderr
	}
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	logger.Debug("exec: %s", cmd.String())

	err := c.Run()
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &domain.ExitError{Name: cmd.Name, Code: exitErr.ExitCode()}
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrToolNotFound, cmd.Name)
	}
	return fmt.Errorf("run %s: %w", cmd.Name, err)
}

// LookPath resolves name through PATH.
func (r *Runner) LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
	}
	return p, nil
}
