package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"uredno/internal/booking"
	"uredno/internal/pricing"
	"uredno/internal/storage"
	"uredno/internal/whatsapp"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps domain errors to status codes. Unexpected errors
// are logged and answered with a generic 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *booking.ValidationError
	var serr *whatsapp.StatusError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, pricing.ErrInvalidInput), errors.Is(err, pricing.ErrUnknownEnumValue):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrInvalidServiceConfiguration):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "the selected time slot is fully booked")
	case errors.Is(err, booking.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, whatsapp.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "whatsapp relay is not configured")
	case errors.As(err, &serr):
		s.logger.Warn("WhatsApp webhook rejected message",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, "whatsapp relay failed")
	default:
		s.logger.Error("Request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a size limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
