package driven

import (
	"context"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

// RunStore persists the bootstrap run history.
type RunStore interface {
	// Save stores or updates a run.
	Save(ctx context.Context, run *domain.Run) error

	// Get retrieves a run by ID. A unique ID prefix is also accepted.
	// Returns domain.ErrNotFound if no run matches.
	Get(ctx context.Context, id string) (*domain.Run, error)

	// List returns the newest runs first. limit <= 0 returns every run.
	List(ctx context.Context, limit int) ([]domain.Run, error)

	// Prune deletes all but the newest keep runs and returns how many were removed.
	Prune(ctx context.Context, keep int) (int, error)
}
