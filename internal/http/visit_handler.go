package httpapi

import (
	"net/http"
	"strings"

	"fieldvisit/internal/domain"
	"fieldvisit/internal/repository"
	"fieldvisit/internal/service"

	"go.uber.org/zap"
)

// VisitHandler exposes the visit execution state machine.
type VisitHandler struct {
	visits    service.VisitService
	uploadDir string
	logger    *zap.Logger
}

func NewVisitHandler(visits service.VisitService, uploadDir string, logger *zap.Logger) *VisitHandler {
	return &VisitHandler{visits: visits, uploadDir: uploadDir, logger: logger}
}

func (h *VisitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/visits/")
	switch {
	case path == "start" && r.Method == http.MethodPost:
		h.Start(w, r)
	case path == "check-in" && r.Method == http.MethodPost:
		h.CheckIn(w, r)
	case path == "photo" && r.Method == http.MethodPost:
		h.Photo(w, r)
	case path == "classification" && r.Method == http.MethodPost:
		h.Classification(w, r)
	case path == "check-out" && r.Method == http.MethodPost:
		h.CheckOut(w, r)
	case path == "actions" && r.Method == http.MethodGet:
		h.ListActions(w, r)
	case strings.HasPrefix(path, "actions/user/") && r.Method == http.MethodGet:
		h.ActionsByUser(w, r, strings.TrimPrefix(path, "actions/user/"))
	case strings.HasPrefix(path, "actions/") && r.Method == http.MethodGet:
		h.GetAction(w, r, strings.TrimPrefix(path, "actions/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Start returns the assignee's still-scheduled visits for a date, both role
// collections merged and tagged.
func (h *VisitHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string `json:"username"`
		VisitDate string `json:"visit_date"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	visits, err := h.visits.EligibleVisits(r.Context(), service.EligibleVisitsRequest{
		Username:  req.Username,
		VisitDate: req.VisitDate,
	})
	if err != nil {
		writeServiceError(w, h.logger, "list eligible visits", err)
		return
	}

	out := make([]any, 0, len(visits))
	for _, v := range visits {
		out = append(out, v.ToJSON())
	}
	writeJSON(w, http.StatusOK, OK("eligible visits", out))
}

func (h *VisitHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScheduleID int64   `json:"schedule_id"`
		RoleType   string  `json:"role_type"`
		Latitude   float64 `json:"latitude"`
		Longitude  float64 `json:"longitude"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	resp, err := h.visits.CheckIn(r.Context(), service.CheckInRequest{
		ScheduleID: req.ScheduleID,
		RoleType:   domain.RoleType(req.RoleType),
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	})
	if err != nil {
		writeServiceError(w, h.logger, "check-in", err)
		return
	}

	writeJSON(w, http.StatusCreated, OK("checked in", map[string]any{
		"action_id":       resp.ActionID,
		"outlet":          resp.Outlet.ToJSON(),
		"distance_meters": resp.DistanceMeters,
		"within_radius":   resp.WithinRadius,
	}))
}

// Photo accepts a multipart form with action_id, slot and the image file. A
// repeated upload for the same slot replaces the reference.
func (h *VisitHandler) Photo(w http.ResponseWriter, r *http.Request) {
	path, err := saveUpload(r, "photo", h.uploadDir, "images", imageExts, maxImageBytes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	actionID, err := parseID(r.FormValue("action_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid action_id"))
		return
	}

	action, err := h.visits.AttachPhoto(r.Context(), service.AttachPhotoRequest{
		ActionID: actionID,
		Slot:     domain.PhotoSlot(r.FormValue("slot")),
		Path:     path,
	})
	if err != nil {
		writeServiceError(w, h.logger, "attach photo", err)
		return
	}

	writeJSON(w, http.StatusOK, OK("photo stored", map[string]any{
		"path":   path,
		"action": action.ToJSON(),
	}))
}

func (h *VisitHandler) Classification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActionID       int64  `json:"action_id"`
		Classification string `json:"classification"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	action, err := h.visits.Classify(r.Context(), service.ClassifyRequest{
		ActionID:       req.ActionID,
		Classification: domain.Classification(req.Classification),
	})
	if err != nil {
		writeServiceError(w, h.logger, "set classification", err)
		return
	}
	writeJSON(w, http.StatusOK, OK("classification set", action.ToJSON()))
}

func (h *VisitHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActionID  int64   `json:"action_id"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	action, err := h.visits.CheckOut(r.Context(), service.CheckOutRequest{
		ActionID:  req.ActionID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		writeServiceError(w, h.logger, "check-out", err)
		return
	}
	writeJSON(w, http.StatusOK, OK("checked out", action.ToJSON()))
}

func (h *VisitHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	filters := repository.ActionFilters{
		Username:   r.URL.Query().Get("username"),
		Date:       r.URL.Query().Get("date"),
		Completion: r.URL.Query().Get("status"),
	}
	h.writeActions(w, r, filters)
}

func (h *VisitHandler) ActionsByUser(w http.ResponseWriter, r *http.Request, username string) {
	if username == "" {
		writeJSON(w, http.StatusBadRequest, Fail("username is required"))
		return
	}
	filters := repository.ActionFilters{
		Username:   username,
		Date:       r.URL.Query().Get("date"),
		Completion: r.URL.Query().Get("status"),
	}
	h.writeActions(w, r, filters)
}

func (h *VisitHandler) writeActions(w http.ResponseWriter, r *http.Request, filters repository.ActionFilters) {
	actions, err := h.visits.ListActions(r.Context(), filters)
	if err != nil {
		writeServiceError(w, h.logger, "list visit actions", err)
		return
	}
	out := make([]any, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.ToJSON())
	}
	writeJSON(w, http.StatusOK, OK("visit actions", out))
}

func (h *VisitHandler) GetAction(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid action id"))
		return
	}
	action, err := h.visits.GetAction(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "get visit action", err)
		return
	}
	writeJSON(w, http.StatusOK, OK("visit action", action.ToJSON()))
}
