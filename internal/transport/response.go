package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/rpggio/civicreport/internal/media"
	"github.com/rpggio/civicreport/internal/ratelimit"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	writeJSON(w, status, ErrorResponse{Error: message, Fields: fields})
}

// writeServiceError maps domain errors onto HTTP responses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *report.ValidationError
	switch {
	case errors.Is(err, report.ErrReportNotFound):
		writeError(w, http.StatusNotFound, "Not found", nil)
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "Invalid payload", verr.Fields)
	case errors.Is(err, report.ErrInvalidInput), errors.Is(err, media.ErrInvalidDataURL):
		writeError(w, http.StatusBadRequest, "Invalid payload", nil)
	case errors.Is(err, media.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "File too large", nil)
	case errors.Is(err, ratelimit.ErrLimited):
		writeError(w, http.StatusTooManyRequests, "Too many reports, try again later", nil)
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}
