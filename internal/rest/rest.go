package rest

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// RespondError writes an ErrorResponse with the given status code.
func RespondError(w http.ResponseWriter, status int, message, details string) {
	RespondJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// RespondInternalError logs err with a correlation id and answers with an opaque
// 500. Internals are never exposed to the caller.
func RespondInternalError(w http.ResponseWriter, err error) {
	correlationId := uuid.NewString()
	log.Errorf("internal error [%s]: %v", correlationId, err)
	RespondError(w, http.StatusInternalServerError, "internal error", "correlation id "+correlationId)
}
