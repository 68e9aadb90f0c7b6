package services

import (
	"context"
	"errors"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

var errHistoryNotConfigured = errors.New("run history not configured")

// HistoryService exposes recorded runs.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{runs: runs}
}

// List returns the newest runs first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.Run, error) {
	if s.runs == nil {
		return nil, errHistoryNotConfigured
	}
	return s.runs.List(ctx, limit)
}

// Get retrieves one run by ID or unique ID prefix.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.Run, error) {
	if s.runs == nil {
		return nil, errHistoryNotConfigured
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.runs.Get(ctx, id)
}

// Prune keeps only the newest keep runs.
func (s *HistoryService) Prune(ctx context.Context, keep int) (int, error) {
	if s.runs == nil {
		return 0, errHistoryNotConfigured
	}
	if keep < 0 {
		return 0, domain.ErrInvalidInput
	}
	return s.runs.Prune(ctx, keep)
}
