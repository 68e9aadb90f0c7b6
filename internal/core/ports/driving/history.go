package driving

import (
	"context"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

// HistoryService exposes recorded bootstrap runs.
type HistoryService interface {
	// List returns the newest runs first.
	List(ctx context.Context, limit int) ([]domain.Run, error)

	// Get retrieves one run by ID or unique ID prefix.
	Get(ctx context.Context, id string) (*domain.Run, error)

	// Prune keeps only the newest keep runs.
	Prune(ctx context.Context, keep int) (int, error)
}
