package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"creatorflow/internal/service"
	"creatorflow/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	http.Error(w, userMsg, status)
}

// errorResponse is the body of every failed API call. Kind is stable and
// machine-readable so callers can tell "you can't do that" apart from
// "try again" instead of showing a generic failure.
type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	ResetAt string `json:"reset_at,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondErrorKind(w http.ResponseWriter, status int, kind, message string) {
	respondJSON(w, status, errorResponse{Error: message, Kind: kind})
}

// respondServiceError maps a service error to its HTTP status and kind
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondErrorKind(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		respondErrorKind(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respondErrorKind(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, service.ErrNotificationsPaused):
		respondErrorKind(w, http.StatusConflict, "notifications_paused", err.Error())
	case errors.Is(err, service.ErrMailPermanentFailure):
		respondErrorKind(w, http.StatusBadGateway, "mail_permanent_failure", err.Error())
	case errors.Is(err, service.ErrMailTransientFailure):
		respondErrorKind(w, http.StatusBadGateway, "mail_transient_failure", err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		respondErrorKind(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		respondErrorKind(w, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionExpired):
		respondErrorKind(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.As(err, &validationErr):
		respondErrorKind(w, http.StatusBadRequest, "validation", err.Error())
	default:
		log.Printf("Unhandled service error: %v", err)
		respondErrorKind(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func respondRateLimited(w http.ResponseWriter, resetAt time.Time) {
	w.Header().Set("Retry-After", resetAt.UTC().Format(http.TimeFormat))
	respondJSON(w, http.StatusTooManyRequests, errorResponse{
		Error:   "rate limit exceeded",
		Kind:    "rate_limited",
		ResetAt: resetAt.UTC().Format(time.RFC3339),
	})
}
