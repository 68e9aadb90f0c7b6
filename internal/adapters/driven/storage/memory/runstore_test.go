package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

func seed(t *testing.T, s *RunStore, ids ...string) {
	t.Helper()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range ids {
		require.NoError(t, s.Save(context.Background(), &domain.Run{
			ID:        id,
			Strategy:  domain.StrategyVenv,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestRunStore_SaveAndGet(t *testing.T) {
	s := NewRunStore()
	ctx := context.Background()

	run := &domain.Run{ID: "abc-123", Steps: []domain.StepResult{{Step: domain.StepCheckEnvironment}}}
	require.NoError(t, s.Save(ctx, run))

	// Mutating the caller's run must not change the stored copy.
	run.Steps[0].Status = domain.StepFailed

	got, err := s.Get(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, domain.StepStatus(""), got.Steps[0].Status)
}

func TestRunStore_ReturnedRunsAreDetached(t *testing.T) {
	s := NewRunStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, &domain.Run{
		ID:    "abc-123",
		Steps: []domain.StepResult{{Step: domain.StepCheckEnvironment, Status: domain.StepDone}},
	}))

	got, err := s.Get(ctx, "abc-123")
	require.NoError(t, err)
	got.Steps[0].Status = domain.StepFailed

	listed, err := s.List(ctx, 0)
	require.NoError(t, err)
	listed[0].Steps[0].Status = domain.StepFailed

	again, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, domain.StepDone, again.Steps[0].Status)
}

func TestRunStore_GetEmptyID(t *testing.T) {
	s := NewRunStore()
	seed(t, s, "only-1")

	_, err := s.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunStore_SaveInvalid(t *testing.T) {
	s := NewRunStore()
	assert.ErrorIs(t, s.Save(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Save(context.Background(), &domain.Run{}), domain.ErrInvalidInput)
}

func TestRunStore_GetByPrefix(t *testing.T) {
	s := NewRunStore()
	seed(t, s, "aaa-1", "aab-2", "bbb-3")
	ctx := context.Background()

	got, err := s.Get(ctx, "bb")
	require.NoError(t, err)
	assert.Equal(t, "bbb-3", got.ID)

	_, err = s.Get(ctx, "aa")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "ambiguous prefix")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = s.Get(ctx, "zzz")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	s := NewRunStore()
	seed(t, s, "r1", "r2", "r3")

	runs, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r1", runs[2].ID)

	runs, err = s.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunStore_Prune(t *testing.T) {
	s := NewRunStore()
	seed(t, s, "r1", "r2", "r3", "r4")
	ctx := context.Background()

	n, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r4", runs[0].ID)
	assert.Equal(t, "r3", runs[1].ID)

	n, err = s.Prune(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.Prune(ctx, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
