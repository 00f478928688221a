package service

import (
	"context"
	"testing"
	"time"

	"fieldvisit/internal/domain"
	"fieldvisit/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSyncFixture(t *testing.T) (*visitFixture, SyncService, *repository.MemorySyncLogsRepository) {
	t.Helper()
	f := newVisitFixture(t)
	logs := repository.NewMemorySyncLogsRepository()
	svc := NewSyncService(f.outlets, f.assignees, f.md, f.sales, f.actions, logs, zap.NewNop())
	return f, svc, logs
}

func TestSyncMarksDirtyRowsAndLogsRun(t *testing.T) {
	f, svc, logs := newSyncFixture(t)
	ctx := context.Background()
	f.seedVisit(t)

	result, err := svc.Run(ctx, SyncTypeManual)
	require.NoError(t, err)
	// outlet + assignee + schedule
	require.EqualValues(t, 3, result.RecordsSynced)
	require.Empty(t, result.TableErrors)

	entries, err := logs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, SyncTypeManual, entries[0].SyncType)
	require.Equal(t, "all", entries[0].TableName)
	require.Equal(t, 3, entries[0].RecordCount)
	require.Equal(t, "success", entries[0].Status)

	// A second pass with nothing dirty syncs nothing.
	result, err = svc.Run(ctx, SyncTypeManual)
	require.NoError(t, err)
	require.Zero(t, result.RecordsSynced)
}

func TestSyncPicksUpUpdatedRows(t *testing.T) {
	f, svc, _ := newSyncFixture(t)
	ctx := context.Background()
	scheduleID := f.seedVisit(t)

	_, err := svc.Run(ctx, SyncTypeScheduled)
	require.NoError(t, err)

	// Updates bump updated_at past synced_at, so the row goes dirty again.
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, f.md.Complete(ctx, scheduleID))

	result, err := svc.Run(ctx, SyncTypeScheduled)
	require.NoError(t, err)
	require.EqualValues(t, 1, result.RecordsSynced)
}

func TestSchedulerNextRun(t *testing.T) {
	s := NewSyncScheduler(nil, []string{"12:00", "18:00"}, zap.NewNop())

	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	next, ok := s.nextRun(now)
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC), next)

	now = time.Date(2025, 1, 10, 13, 0, 0, 0, time.UTC)
	next, ok = s.nextRun(now)
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC), next)

	now = time.Date(2025, 1, 10, 19, 0, 0, 0, time.UTC)
	next, ok = s.nextRun(now)
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC), next)

	s = NewSyncScheduler(nil, []string{"not-a-time"}, zap.NewNop())
	_, ok = s.nextRun(now)
	require.False(t, ok)
}

func TestSyncReconcileTolerance(t *testing.T) {
	// A completed action whose schedule row is still scheduled must not fail
	// the pass; it is only surfaced in logs.
	f, svc, _ := newSyncFixture(t)
	ctx := context.Background()
	scheduleID := f.seedVisit(t)
	actionID := f.checkIn(t, scheduleID)
	require.NoError(t, f.actions.SetPhoto(ctx, actionID, domain.PhotoBefore, "images/a.jpg"))
	require.NoError(t, f.actions.SetPhoto(ctx, actionID, domain.PhotoAfter, "images/b.jpg"))
	require.NoError(t, f.actions.SetClassification(ctx, actionID, domain.ClassificationInstalled))
	// Stamp check-out directly, without flipping the schedule row.
	require.NoError(t, f.actions.SetCheckOut(ctx, actionID, -6.2, 106.8))

	_, err := svc.Run(ctx, SyncTypeManual)
	require.NoError(t, err)
}
