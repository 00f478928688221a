package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fieldvisit/internal/domain"
	"fieldvisit/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newScheduleFixture(t *testing.T) (*repository.MemorySchedulesRepository, *ScheduleHandler) {
	t.Helper()
	md := repository.NewMemorySchedulesRepository()
	h := NewScheduleHandler(md, domain.RoleMD, nil, t.TempDir(), zap.NewNop())
	return md, h
}

func putJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(b))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Status only ever moves scheduled -> completed, and only through check-out;
// the CRUD surface refuses to touch it in either direction.
func TestScheduleUpdateRefusesStatusChanges(t *testing.T) {
	md, h := newScheduleFixture(t)
	ctx := context.Background()

	id, err := md.Create(ctx, &domain.VisitSchedule{
		Username:   "u1",
		OutletCode: "OUT-1",
		OutletName: "Toko Maju",
		VisitDate:  "2025-01-10",
	})
	require.NoError(t, err)

	// Completing through the CRUD surface is refused.
	rec := putJSON(t, h, "/api/visits/md/1", map[string]any{"status": "completed"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "schedule status is set by check-out", decodeResult(t, rec).Message)

	// Reopening a completed row is refused too.
	require.NoError(t, md.Complete(ctx, id))
	rec = putJSON(t, h, "/api/visits/md/1", map[string]any{"status": "scheduled"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "completed schedules cannot be reopened", decodeResult(t, rec).Message)

	// Echoing the current status back is not a change.
	rec = putJSON(t, h, "/api/visits/md/1", map[string]any{
		"status":      "completed",
		"outlet_name": "Toko Maju Baru",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := md.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.ScheduleStatusCompleted, updated.Status)
	require.Equal(t, "Toko Maju Baru", updated.OutletName)
}
