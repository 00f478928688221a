package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"fieldvisit/internal/service"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// writeServiceError maps the service error taxonomy onto status codes:
// validation and precondition failures are 400 with the specific condition in
// the message, missing records are 404, everything else is a store fault
// reported as 500 with the underlying message preserved.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	var ve *service.ValidationError
	var pe *service.PreconditionError
	var nfe *service.NotFoundError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, Fail(ve.Error()))
	case errors.As(err, &pe):
		writeJSON(w, http.StatusBadRequest, Fail(pe.Error()))
	case errors.As(err, &nfe):
		writeJSON(w, http.StatusNotFound, Fail(nfe.Error()))
	default:
		logger.Error(op+" failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, FailWith(op+" failed", err))
	}
}
