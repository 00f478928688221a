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

// OutletHandler manages the outlet reference data. Plain CRUD goes straight
// to the repository; only the spreadsheet import runs through a service.
type OutletHandler struct {
	outletsRepo repository.OutletsRepository
	importer    service.ImportService
	uploadDir   string
	logger      *zap.Logger
}

func NewOutletHandler(outletsRepo repository.OutletsRepository, importer service.ImportService, uploadDir string, logger *zap.Logger) *OutletHandler {
	return &OutletHandler{outletsRepo: outletsRepo, importer: importer, uploadDir: uploadDir, logger: logger}
}

func (h *OutletHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/outlets")
	path = strings.TrimPrefix(path, "/")
	switch {
	case path == "" && r.Method == http.MethodGet:
		h.List(w, r)
	case path == "" && r.Method == http.MethodPost:
		h.Create(w, r)
	case path == "import" && r.Method == http.MethodPost:
		handleImport(w, r, h.importer, service.ImportOutlets, h.uploadDir, h.logger)
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

func (h *OutletHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := repository.OutletFilters{
		Username:   r.URL.Query().Get("username"),
		DepotCode:  r.URL.Query().Get("depot_code"),
		OutletCode: r.URL.Query().Get("outlet_code"),
	}
	outlets, err := h.outletsRepo.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list outlets failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to list outlets", err))
		return
	}
	out := make([]any, 0, len(outlets))
	for _, o := range outlets {
		out = append(out, o.ToJSON())
	}
	writeJSON(w, http.StatusOK, OK("outlets", out))
}

func (h *OutletHandler) Get(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid outlet id"))
		return
	}
	outlet, err := h.outletsRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("outlet not found"))
			return
		}
		h.logger.Error("get outlet failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to get outlet", err))
		return
	}
	writeJSON(w, http.StatusOK, OK("outlet", outlet.ToJSON()))
}

type outletBody struct {
	Username   string   `json:"username"`
	AreaCode   string   `json:"area_code"`
	DepotCode  string   `json:"depot_code"`
	OutletCode string   `json:"outlet_code"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (h *OutletHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req outletBody
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Username == "" || req.OutletCode == "" || req.Name == "" || req.Latitude == nil || req.Longitude == nil {
		writeJSON(w, http.StatusBadRequest, Fail("username, outlet_code, name, latitude and longitude are required"))
		return
	}
	outlet := &domain.Outlet{
		Username:   req.Username,
		AreaCode:   req.AreaCode,
		DepotCode:  req.DepotCode,
		OutletCode: req.OutletCode,
		Name:       req.Name,
		Address:    req.Address,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
	}
	if !outlet.ValidCoordinates() {
		writeJSON(w, http.StatusBadRequest, Fail("coordinates out of range"))
		return
	}
	id, err := h.outletsRepo.Create(r.Context(), outlet)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			writeJSON(w, http.StatusBadRequest, Fail("outlet code already exists"))
			return
		}
		h.logger.Error("create outlet failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to create outlet", err))
		return
	}
	outlet.ID = id
	writeJSON(w, http.StatusCreated, OK("outlet created", outlet.ToJSON()))
}

// Update fills unspecified fields from the existing row, so partial bodies
// only change what they name.
func (h *OutletHandler) Update(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid outlet id"))
		return
	}
	existing, err := h.outletsRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("outlet not found"))
			return
		}
		h.logger.Error("get outlet failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to get outlet", err))
		return
	}

	var req outletBody
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
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Address != "" {
		existing.Address = req.Address
	}
	if req.Latitude != nil {
		existing.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		existing.Longitude = *req.Longitude
	}
	if !existing.ValidCoordinates() {
		writeJSON(w, http.StatusBadRequest, Fail("coordinates out of range"))
		return
	}

	if err := h.outletsRepo.Update(r.Context(), id, existing); err != nil {
		h.logger.Error("update outlet failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to update outlet", err))
		return
	}
	writeJSON(w, http.StatusOK, OK("outlet updated", existing.ToJSON()))
}

func (h *OutletHandler) Delete(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid outlet id"))
		return
	}
	if err := h.outletsRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("outlet not found"))
			return
		}
		h.logger.Error("delete outlet failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to delete outlet", err))
		return
	}
	writeJSON(w, http.StatusOK, OK("outlet deleted", nil))
}

func (h *OutletHandler) ImportTemplate(w http.ResponseWriter, _ *http.Request) {
	data, err := generateSheet("Outlets", OutletImportHeader, nil)
	if err != nil {
		h.logger.Error("generate outlet template failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith("failed to generate template", err))
		return
	}
	writeWorkbook(w, "outlet_import_template.xlsx", data)
}
