package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/nutriagenda/scheduling-portal/internal/clinical"
	"github.com/nutriagenda/scheduling-portal/internal/notification"
	redisclient "github.com/nutriagenda/scheduling-portal/internal/redis"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// handleDomainError maps domain sentinels onto HTTP status codes. Anything
// unrecognized is a 500.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduling.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, scheduling.ErrNutritionistNotFound):
		writeError(w, http.StatusNotFound, "nutritionist_not_found", err.Error())
	case errors.Is(err, scheduling.ErrScheduleNotFound):
		writeError(w, http.StatusNotFound, "schedule_not_found", err.Error())
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, scheduling.ErrLocationNotFound):
		writeError(w, http.StatusNotFound, "location_not_found", err.Error())
	case errors.Is(err, notification.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, "notification_not_found", err.Error())
	case errors.Is(err, clinical.ErrFormNotFound):
		writeError(w, http.StatusNotFound, "clinical_form_not_found", err.Error())
	case errors.Is(err, scheduling.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, scheduling.ErrAlreadyOnRoster):
		writeError(w, http.StatusConflict, "patient_already_on_roster", err.Error())
	case errors.Is(err, scheduling.ErrScheduleBeingBooked),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "schedule_being_booked", "schedule is currently being booked, please retry shortly")
	case errors.Is(err, scheduling.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, scheduling.ErrActorNotAllowed),
		errors.Is(err, scheduling.ErrNotOwner):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, scheduling.ErrInvalidDuration),
		errors.Is(err, scheduling.ErrStartInPast),
		errors.Is(err, scheduling.ErrLocationRequired):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, scheduling.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
