package httpapi

import (
	"net/http"
	"time"

	"fieldvisit/internal/repository"

	"go.uber.org/zap"
)

// DashboardHandler serves the read-only rollups behind the dashboard. Plain
// repository reads, no service layer.
type DashboardHandler struct {
	outletsRepo    repository.OutletsRepository
	assigneesRepo  repository.AssigneesRepository
	mdSchedules    repository.SchedulesRepository
	salesSchedules repository.SchedulesRepository
	actionsRepo    repository.ActionsRepository
	logger         *zap.Logger
}

func NewDashboardHandler(
	outletsRepo repository.OutletsRepository,
	assigneesRepo repository.AssigneesRepository,
	mdSchedules, salesSchedules repository.SchedulesRepository,
	actionsRepo repository.ActionsRepository,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		outletsRepo:    outletsRepo,
		assigneesRepo:  assigneesRepo,
		mdSchedules:    mdSchedules,
		salesSchedules: salesSchedules,
		actionsRepo:    actionsRepo,
		logger:         logger,
	}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	outlets, err := h.outletsRepo.Count(ctx)
	if err != nil {
		h.fail(w, "count outlets", err)
		return
	}
	assignees, err := h.assigneesRepo.Count(ctx)
	if err != nil {
		h.fail(w, "count assignees", err)
		return
	}
	mdScheduled, mdCompleted, err := h.mdSchedules.CountByStatus(ctx)
	if err != nil {
		h.fail(w, "count md schedules", err)
		return
	}
	salesScheduled, salesCompleted, err := h.salesSchedules.CountByStatus(ctx)
	if err != nil {
		h.fail(w, "count sales schedules", err)
		return
	}
	totalActions, completedActions, err := h.actionsRepo.Count(ctx)
	if err != nil {
		h.fail(w, "count actions", err)
		return
	}
	classifications, err := h.actionsRepo.CountByClassification(ctx)
	if err != nil {
		h.fail(w, "count classifications", err)
		return
	}

	recent, err := h.actionsRepo.ListRecent(ctx, 10)
	if err != nil {
		h.fail(w, "list recent actions", err)
		return
	}
	recentOut := make([]any, 0, len(recent))
	for _, a := range recent {
		recentOut = append(recentOut, a.ToJSON())
	}

	// Visit counts per day for the trailing week, most recent day last.
	daily := make([]map[string]any, 0, 7)
	for i := 6; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		actions, err := h.actionsRepo.List(ctx, repository.ActionFilters{Date: day})
		if err != nil {
			h.fail(w, "count daily actions", err)
			return
		}
		daily = append(daily, map[string]any{"date": day, "count": len(actions)})
	}

	writeJSON(w, http.StatusOK, OK("dashboard stats", map[string]any{
		"outlets":   outlets,
		"assignees": assignees,
		"schedules": map[string]any{
			"md":    map[string]int{"scheduled": mdScheduled, "completed": mdCompleted},
			"sales": map[string]int{"scheduled": salesScheduled, "completed": salesCompleted},
		},
		"actions": map[string]any{
			"total":       totalActions,
			"completed":   completedActions,
			"in_progress": totalActions - completedActions,
		},
		"classifications": classifications,
		"recent_actions":  recentOut,
		"daily_visits":    daily,
	}))
}

// ExportVisitActions streams the audit report workbook, honoring the same
// filters as the actions list.
func (h *DashboardHandler) ExportVisitActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	filters := repository.ActionFilters{
		Username:   r.URL.Query().Get("username"),
		Date:       r.URL.Query().Get("date"),
		Completion: r.URL.Query().Get("status"),
	}
	actions, err := h.actionsRepo.List(r.Context(), filters)
	if err != nil {
		h.fail(w, "list actions for export", err)
		return
	}
	data, err := GenerateVisitActionExport(actions)
	if err != nil {
		h.fail(w, "generate export", err)
		return
	}
	writeWorkbook(w, "visit_actions_"+time.Now().Format("20060102")+".xlsx", data)
}

func (h *DashboardHandler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, FailWith(op+" failed", err))
}
