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

// AssigneeHandler manages field-personnel records.
type AssigneeHandler struct {
	assigneesRepo repository.AssigneesRepository
	importer      service.ImportService
	uploadDir     string
	logger        *zap.Logger
}

func NewAssigneeHandler(assigneesRepo repository.AssigneesRepository, importer service.ImportService, uploadDir string, logger *zap.Logger) *AssigneeHandler {
	return &AssigneeHandler{assigneesRepo: assigneesRepo, importer: importer, uploadDir: uploadDir, logger: logger}
}

func (h *AssigneeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/assignees")
	path = strings.TrimPrefix(path, "/")
	switch {
	case path == "" && r.Method == http.MethodGet:
		h.List(w, r)
	case path == "" && r.Method == http.MethodPost:
		h.Create(w, r)
	case path == "import" && r.Method == http.MethodPost:
		handleImport(w, r, h.importer, service.ImportAssignees, h.uploadDir, h.logger)
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

func (h *AssigneeHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := repository.AssigneeFilters{
		Username:  r.URL.Query().Get("username"),
		Role:      r.URL.Query().Get("role"),
		DepotCode: r.URL.Query().Get("depot_code"),
	}
	assignees, err := h.assigneesRepo.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list assignees failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to list assignees", err))
		return
	}
	out := make([]any, 0, len(assignees))
	for _, a := range assignees {
		out = append(out, a.ToJSON())
	}
	writeJSON(w, http.StatusOK, OK("assignees", out))
}

func (h *AssigneeHandler) Get(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid assignee id"))
		return
	}
	assignee, err := h.assigneesRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("assignee not found"))
			return
		}
		h.logger.Error("get assignee failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to get assignee", err))
		return
	}
	writeJSON(w, http.StatusOK, OK("assignee", assignee.ToJSON()))
}

type assigneeBody struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AreaCode  string `json:"area_code"`
	DepotCode string `json:"depot_code"`
}

func (h *AssigneeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req assigneeBody
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Username == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, Fail("username and name are required"))
		return
	}
	assignee := &domain.Assignee{
		Username:  req.Username,
		Name:      req.Name,
		Role:      req.Role,
		AreaCode:  req.AreaCode,
		DepotCode: req.DepotCode,
	}
	id, err := h.assigneesRepo.Create(r.Context(), assignee)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			writeJSON(w, http.StatusBadRequest, Fail("username already exists"))
			return
		}
		h.logger.Error("create assignee failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to create assignee", err))
		return
	}
	assignee.ID = id
	writeJSON(w, http.StatusCreated, OK("assignee created", assignee.ToJSON()))
}

func (h *AssigneeHandler) Update(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid assignee id"))
		return
	}
	existing, err := h.assigneesRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("assignee not found"))
			return
		}
		h.logger.Error("get assignee failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to get assignee", err))
		return
	}

	var req assigneeBody
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Username != "" {
		existing.Username = req.Username
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Role != "" {
		existing.Role = req.Role
	}
	if req.AreaCode != "" {
		existing.AreaCode = req.AreaCode
	}
	if req.DepotCode != "" {
		existing.DepotCode = req.DepotCode
	}

	if err := h.assigneesRepo.Update(r.Context(), id, existing); err != nil {
		h.logger.Error("update assignee failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to update assignee", err))
		return
	}
	writeJSON(w, http.StatusOK, OK("assignee updated", existing.ToJSON()))
}

func (h *AssigneeHandler) Delete(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid assignee id"))
		return
	}
	if err := h.assigneesRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("assignee not found"))
			return
		}
		h.logger.Error("delete assignee failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to delete assignee", err))
		return
	}
	writeJSON(w, http.StatusOK, OK("assignee deleted", nil))
}

func (h *AssigneeHandler) ImportTemplate(w http.ResponseWriter, _ *http.Request) {
	data, err := generateSheet("Assignees", AssigneeImportHeader, nil)
	if err != nil {
		h.logger.Error("generate assignee template failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to generate template", err))
		return
	}
	writeWorkbook(w, "assignee_import_template.xlsx", data)
}
