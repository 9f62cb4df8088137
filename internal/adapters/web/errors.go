package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"invoizo/internal/ai"
	"invoizo/internal/app"
	"invoizo/internal/core"
	"invoizo/internal/logging"
	"invoizo/internal/store"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorBody(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func writeErrorBody(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps an application error to its HTTP status. Domain
// errors carry their user-facing message; anything unrecognised is logged and
// reported as a bare 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fields app.FieldErrors
	switch {
	case errors.As(err, &fields):
		writeErrorBody(w, http.StatusBadRequest, errorResponse{
			Error:     "invalid request",
			Code:      "INVALID_REQUEST",
			Fields:    fields,
			RequestID: requestIDFromContext(r.Context()),
		})
	case errors.Is(err, core.ErrValidation):
		writeError(w, r, core.UserMessage(err), "VALIDATION_FAILED", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, core.UserMessage(err), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrConflict):
		writeError(w, r, core.UserMessage(err), "CONFLICT", http.StatusConflict)
	case errors.Is(err, store.ErrMalformed):
		logging.LogError(h.logger, "web", r.Method+" "+r.URL.Path, "stored value unreadable",
			map[string]any{"request_id": requestIDFromContext(r.Context())}, err)
		writeError(w, r, "Stored data could not be read. Restore a backup before making changes.",
			"STORE_MALFORMED", http.StatusConflict)
	case errors.Is(err, ai.ErrNotConfigured):
		writeError(w, r, err.Error(), "AI_NOT_CONFIGURED", http.StatusServiceUnavailable)
	default:
		logging.LogError(h.logger, "web", r.Method+" "+r.URL.Path, "request failed",
			map[string]any{"request_id": requestIDFromContext(r.Context())}, err)
		writeError(w, r, "internal server error", "INTERNAL", http.StatusInternalServerError)
	}
}

// writeFile sends a rendered export as an attachment.
func writeFile(w http.ResponseWriter, f *app.File) {
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	_, _ = w.Write(f.Data)
}
