package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"fieldvisit/internal/domain"
	"fieldvisit/internal/repository"
	"fieldvisit/internal/service"

	"go.uber.org/zap"
)

// ScheduleHandler manages one visit-schedule collection. Two instances are
// mounted, one per role collection, sharing the implementation the way the
// repositories do.
type ScheduleHandler struct {
	schedulesRepo repository.SchedulesRepository
	roleType      domain.RoleType
	importer      service.ImportService
	importTarget  service.ImportTarget
	basePath      string
	uploadDir     string
	logger        *zap.Logger
}

func NewScheduleHandler(
	schedulesRepo repository.SchedulesRepository,
	roleType domain.RoleType,
	importer service.ImportService,
	uploadDir string,
	logger *zap.Logger,
) *ScheduleHandler {
	target := service.ImportSchedulesMD
	base := "/api/visits/md"
	if roleType == domain.RoleSales {
		target = service.ImportSchedulesSales
		base = "/api/visits/sales"
	}
	return &ScheduleHandler{
		schedulesRepo: schedulesRepo,
		roleType:      roleType,
		importer:      importer,
		importTarget:  target,
		basePath:      base,
		uploadDir:     uploadDir,
		logger:        logger,
	}
}

func (h *ScheduleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, h.basePath)
	path = strings.TrimPrefix(path, "/")
	switch {
	case path == "" && r.Method == http.MethodGet:
		h.List(w, r)
	case path == "" && r.Method == http.MethodPost:
		h.Create(w, r)
	case path == "import" && r.Method == http.MethodPost:
		handleImport(w, r, h.importer, h.importTarget, h.uploadDir, h.logger)
	case path == "import-template" && r.Method == http.MethodGet:
		h.ImportTemplate(w, r)
	case path != "" && r.Method == http.MethodGet:
		h.Get(w, r, path)
	case path != "" && r.Method == http.MethodPut:
		h.Update(w, r, path)
	case path != "" && r.Method == http.MethodDelete:
		h.Delete(w, r, path)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := repository.ScheduleFilters{
		Username:  r.URL.Query().Get("username"),
		VisitDate: r.URL.Query().Get("visit_date"),
		Status:    r.URL.Query().Get("status"),
	}
	schedules, err := h.schedulesRepo.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list schedules failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to list schedules", err))
		return
	}
	out := make([]any, 0, len(schedules))
	for _, v := range schedules {
		m := v.ToJSON()
		m["role_type"] = string(h.roleType)
		out = append(out, m)
	}
	writeJSON(w, http.StatusOK, OK("schedules", out))
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid schedule id"))
		return
	}
	schedule, err := h.schedulesRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("schedule not found"))
			return
		}
		h.logger.Error("get schedule failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to get schedule", err))
		return
	}
	writeJSON(w, http.StatusOK, OK("schedule", schedule.ToJSON()))
}

type scheduleBody struct {
	Username   string `json:"username"`
	AreaCode   string `json:"area_code"`
	DepotCode  string `json:"depot_code"`
	OutletCode string `json:"outlet_code"`
	OutletName string `json:"outlet_name"`
	VisitDate  string `json:"visit_date"`
	Status     string `json:"status"`
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req scheduleBody
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Username == "" || req.OutletCode == "" || req.OutletName == "" || req.VisitDate == "" {
		writeJSON(w, http.StatusBadRequest, Fail("username, outlet_code, outlet_name and visit_date are required"))
		return
	}
	schedule := &domain.VisitSchedule{
		Username:   req.Username,
		AreaCode:   req.AreaCode,
		DepotCode:  req.DepotCode,
		OutletCode: req.OutletCode,
		OutletName: req.OutletName,
		VisitDate:  req.VisitDate,
		Status:     domain.ScheduleStatusScheduled,
	}
	id, err := h.schedulesRepo.Create(r.Context(), schedule)
	if err != nil {
		h.logger.Error("create schedule failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to create schedule", err))
		return
	}
	schedule.ID = id
	writeJSON(w, http.StatusCreated, OK("schedule created", schedule.ToJSON()))
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid schedule id"))
		return
	}
	existing, err := h.schedulesRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("schedule not found"))
			return
		}
		h.logger.Error("get schedule failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to get schedule", err))
		return
	}

	var req scheduleBody
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Username != "" {
		existing.Username = req.Username
	}
	if req.AreaCode != "" {
		existing.AreaCode = req.AreaCode
	}
	if req.DepotCode != "" {
		existing.DepotCode = req.DepotCode
	}
	if req.OutletCode != "" {
		existing.OutletCode = req.OutletCode
	}
	if req.OutletName != "" {
		existing.OutletName = req.OutletName
	}
	if req.VisitDate != "" {
		existing.VisitDate = req.VisitDate
	}
	// Status is owned by check-out: only a successful check-out moves a row
	// to completed, and nothing moves it back. Update refuses any status
	// change in either direction.
	if req.Status != "" && req.Status != existing.Status {
		if existing.Status == domain.ScheduleStatusCompleted {
			writeJSON(w, http.StatusBadRequest, Fail("completed schedules cannot be reopened"))
			return
		}
		writeJSON(w, http.StatusBadRequest, Fail("schedule status is set by check-out"))
		return
	}

	if err := h.schedulesRepo.Update(r.Context(), id, existing); err != nil {
		h.logger.Error("update schedule failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to update schedule", err))
		return
	}
	writeJSON(w, http.StatusOK, OK("schedule updated", existing.ToJSON()))
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid schedule id"))
		return
	}
	if err := h.schedulesRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("schedule not found"))
			return
		}
		h.logger.Error("delete schedule failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to delete schedule", err))
		return
	}
	writeJSON(w, http.StatusOK, OK("schedule deleted", nil))
}

func (h *ScheduleHandler) ImportTemplate(w http.ResponseWriter, _ *http.Request) {
	data, err := generateSheet("Visit Schedules", ScheduleImportHeader, nil)
	if err != nil {
		h.logger.Error("generate schedule template failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to generate template", err))
		return
	}
	writeWorkbook(w, "visit_schedule_import_template.xlsx", data)
}
