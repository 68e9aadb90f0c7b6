// Package memory provides in-memory implementations of driven port interfaces.
// They back the tests and stand in when the history database cannot be opened.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.Run
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.Run),
	}
}

// Save stores or updates a run.
func (s *RunStore) Save(_ context.Context, run *domain.Run) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = copyRun(*run)
	return nil
}

// Get retrieves a run by ID or unique ID prefix.
func (s *RunStore) Get(_ context.Context, id string) (*domain.Run, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if run, ok := s.runs[id]; ok {
		cp := copyRun(run)
		return &cp, nil
	}

	var match *domain.Run
	for key, run := range s.runs {
		if !strings.HasPrefix(key, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: run id prefix %q is ambiguous", domain.ErrInvalidInput, id)
		}
		cp := copyRun(run)
		match = &cp
	}
	if match == nil {
		return nil, domain.ErrNotFound
	}
	return match, nil
}

// List returns the newest runs first.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.sorted()
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Prune deletes all but the newest keep runs.
func (s *RunStore) Prune(_ context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := s.sorted()
	if len(sorted) <= keep {
		return 0, nil
	}
	for _, run := range sorted[keep:] {
		delete(s.runs, run.ID)
	}
	return len(sorted) - keep, nil
}

// sorted returns runs newest first (caller must hold lock).
func (s *RunStore) sorted() []domain.Run {
	out := make([]domain.Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, copyRun(run))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// copyRun detaches the steps so callers never share them with the store.
func copyRun(run domain.Run) domain.Run {
	run.Steps = append([]domain.StepResult(nil), run.Steps...)
	return run
}
