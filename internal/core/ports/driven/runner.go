package driven

import (
	"context"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

// CommandRunner runs child processes.
type CommandRunner interface {
	// Run executes the command and waits for it to exit.
	// A non-zero exit status is reported as *domain.ExitError.
	// Cancelling ctx kills the process.
	Run(ctx context.Context, cmd domain.Command) error

	// LookPath resolves an executable name through PATH.
	// Returns an error wrapping domain.ErrToolNotFound when absent.
	LookPath(name string) (string, error)
}
