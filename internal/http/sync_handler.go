package httpapi

import (
	"net/http"

	"fieldvisit/internal/service"

	"go.uber.org/zap"
)

// SyncHandler exposes the housekeeping pass: manual trigger and run history.
type SyncHandler struct {
	sync   service.SyncService
	logger *zap.Logger
}

func NewSyncHandler(sync service.SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{sync: sync, logger: logger}
}

func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	result, err := h.sync.Run(r.Context(), service.SyncTypeManual)
	if err != nil {
		writeServiceError(w, h.logger, "sync", err)
		return
	}
	writeJSON(w, http.StatusOK, OK("sync complete", map[string]any{
		"records_synced": result.RecordsSynced,
		"table_errors":   result.TableErrors,
	}))
}

func (h *SyncHandler) Logs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	logs, err := h.sync.Logs(r.Context(), parseInt(r.URL.Query().Get("limit"), 50))
	if err != nil {
		writeServiceError(w, h.logger, "list sync logs", err)
		return
	}
	out := make([]any, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.ToJSON())
	}
	writeJSON(w, http.StatusOK, OK("sync logs", out))
}
