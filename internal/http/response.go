package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"wallet/internal/core"
	"wallet/internal/log"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response",
			log.FieldError, err, log.FieldStatusCode, status)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, ErrorResponse{Code: code, Message: message})
}

// handleError maps store errors to a status: unknown ids are 404, bad
// input 400, everything else 500 with the details kept in the log.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.FromContext(r.Context())

	var (
		nf *core.NotFoundError
		ve *core.ValidationError
		pe *core.PersistenceError
	)
	switch {
	case errors.As(err, &nf):
		logger.WarnContext(r.Context(), "Record not found", log.FieldKind, nf.Kind, log.FieldRecordID, nf.ID)
		writeError(w, r, http.StatusNotFound, "not_found", nf.Error())

	case errors.As(err, &ve):
		logger.WarnContext(r.Context(), "Validation failed", log.FieldError, ve)
		writeError(w, r, http.StatusBadRequest, "invalid_input", ve.Error())

	case errors.As(err, &pe):
		logger.ErrorContext(r.Context(), "Persistence error", log.FieldOperation, pe.Op, log.FieldError, pe.Err)
		writeError(w, r, http.StatusInternalServerError, "internal_error", "An error occurred")

	default:
		logger.ErrorContext(r.Context(), "Unexpected error",
			log.FieldError, err,
			"type", fmt.Sprintf("%T", err))
		writeError(w, r, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
