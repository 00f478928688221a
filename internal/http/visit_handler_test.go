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
	"fieldvisit/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type handlerFixture struct {
	md      *repository.MemorySchedulesRepository
	outlets *repository.MemoryOutletsRepository
	handler *VisitHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	md := repository.NewMemorySchedulesRepository()
	sales := repository.NewMemorySchedulesRepository()
	outlets := repository.NewMemoryOutletsRepository()
	assignees := repository.NewMemoryAssigneesRepository()
	actions := repository.NewMemoryActionsRepository()
	svc := service.NewVisitService(md, sales, outlets, assignees, actions, zap.NewNop())
	return &handlerFixture{
		md:      md,
		outlets: outlets,
		handler: NewVisitHandler(svc, t.TempDir(), zap.NewNop()),
	}
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) Result {
	t.Helper()
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestVisitFlowCheckOutBeforePhotos(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()

	require.NoError(t, f.outlets.Upsert(ctx, &domain.Outlet{
		Username:   "u1",
		OutletCode: "OUT-1",
		Name:       "Toko Maju",
		Address:    "Jl. Sudirman 1",
		Latitude:   -6.2,
		Longitude:  106.8,
	}))
	scheduleID, err := f.md.Create(ctx, &domain.VisitSchedule{
		Username:   "u1",
		OutletCode: "OUT-1",
		OutletName: "Toko Maju",
		VisitDate:  "2025-01-10",
	})
	require.NoError(t, err)

	// Check-in within 100 m of the outlet succeeds and returns the snapshot.
	rec := postJSON(t, f.handler, "/api/visits/check-in", map[string]any{
		"schedule_id": scheduleID,
		"role_type":   "md",
		"latitude":    -6.2003,
		"longitude":   106.8002,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	res := decodeResult(t, rec)
	require.True(t, res.Success)

	data := res.Data.(map[string]any)
	require.True(t, data["within_radius"].(bool))
	require.Less(t, data["distance_meters"].(float64), domain.CheckInRadiusMeters)
	outlet := data["outlet"].(map[string]any)
	require.Equal(t, "OUT-1", outlet["outlet_code"])
	require.Equal(t, "Toko Maju", outlet["name"])
	require.Equal(t, -6.2, outlet["latitude"])
	actionID := int64(data["action_id"].(float64))
	require.NotZero(t, actionID)

	// Check-out before any photo upload names the unmet precondition.
	rec = postJSON(t, f.handler, "/api/visits/check-out", map[string]any{
		"action_id": actionID,
		"latitude":  -6.2003,
		"longitude": 106.8002,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	res = decodeResult(t, rec)
	require.False(t, res.Success)
	require.Equal(t, "documentation missing", res.Message)
}

func TestStartReturnsEligibleVisits(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()

	_, err := f.md.Create(ctx, &domain.VisitSchedule{
		Username:   "u1",
		OutletCode: "OUT-1",
		OutletName: "Toko Maju",
		VisitDate:  "2025-01-10",
	})
	require.NoError(t, err)

	rec := postJSON(t, f.handler, "/api/visits/start", map[string]any{
		"username":   "u1",
		"visit_date": "2025-01-10",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	require.True(t, res.Success)

	visits := res.Data.([]any)
	require.Len(t, visits, 1)
	first := visits[0].(map[string]any)
	require.Equal(t, "md", first["role_type"])
	require.Equal(t, "OUT-1", first["outlet_code"])
}

func TestCheckInUnknownScheduleIs404(t *testing.T) {
	f := newHandlerFixture(t)

	rec := postJSON(t, f.handler, "/api/visits/check-in", map[string]any{
		"schedule_id": 77,
		"role_type":   "md",
		"latitude":    -6.2,
		"longitude":   106.8,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	res := decodeResult(t, rec)
	require.False(t, res.Success)
	require.Contains(t, res.Message, "schedule 77")
}

func TestClassificationOutsideClosedSetIs400(t *testing.T) {
	f := newHandlerFixture(t)

	rec := postJSON(t, f.handler, "/api/visits/classification", map[string]any{
		"action_id":      1,
		"classification": "flooded",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	res := decodeResult(t, rec)
	require.Contains(t, res.Message, "invalid classification")
}
