package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Byrix/bom-scrapper/internal/adapters/driven/storage/memory"
	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

func seedRuns(t *testing.T, store *memory.RunStore, ids ...string) {
	t.Helper()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range ids {
		require.NoError(t, store.Save(context.Background(), &domain.Run{
			ID:        id,
			Strategy:  domain.StrategyVenv,
			Status:    domain.RunSucceeded,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestHistoryService_List(t *testing.T) {
	store := memory.NewRunStore()
	seedRuns(t, store, "aaa111", "bbb222", "ccc333")
	svc := NewHistoryService(store)

	runs, err := svc.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "ccc333", runs[0].ID)
	assert.Equal(t, "bbb222", runs[1].ID)
}

func TestHistoryService_Get(t *testing.T) {
	store := memory.NewRunStore()
	seedRuns(t, store, "aaa111", "bbb222")
	svc := NewHistoryService(store)

	run, err := svc.Get(context.Background(), "bbb")
	require.NoError(t, err)
	assert.Equal(t, "bbb222", run.ID)

	_, err = svc.Get(context.Background(), "zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryService_Prune(t *testing.T) {
	store := memory.NewRunStore()
	seedRuns(t, store, "aaa111", "bbb222", "ccc333")
	svc := NewHistoryService(store)

	n, err := svc.Prune(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	runs, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "ccc333", runs[0].ID)

	_, err = svc.Prune(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryService_NotConfigured(t *testing.T) {
	svc := NewHistoryService(nil)

	_, err := svc.List(context.Background(), 0)
	assert.ErrorIs(t, err, errHistoryNotConfigured)
	_, err = svc.Get(context.Background(), "x")
	assert.ErrorIs(t, err, errHistoryNotConfigured)
	_, err = svc.Prune(context.Background(), 0)
	assert.ErrorIs(t, err, errHistoryNotConfigured)
}
