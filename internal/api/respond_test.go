package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/nutriagenda/scheduling-portal/internal/redis"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

func TestHandleDomainError_Mapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{scheduling.ErrScheduleNotFound, http.StatusNotFound, "schedule_not_found"},
		{scheduling.ErrAppointmentNotFound, http.StatusNotFound, "appointment_not_found"},
		{scheduling.ErrEmailTaken, http.StatusConflict, "email_taken"},
		{scheduling.ErrAlreadyOnRoster, http.StatusConflict, "patient_already_on_roster"},
		{scheduling.ErrScheduleBeingBooked, http.StatusConflict, "schedule_being_booked"},
		{redisclient.ErrLockNotAcquired, http.StatusConflict, "schedule_being_booked"},
		{scheduling.ErrInvalidStatusTransition, http.StatusConflict, "invalid_status_transition"},
		{scheduling.ErrActorNotAllowed, http.StatusForbidden, "forbidden"},
		{scheduling.ErrNotOwner, http.StatusForbidden, "forbidden"},
		{scheduling.ErrInvalidDuration, http.StatusBadRequest, "invalid_request"},
		{scheduling.ErrStartInPast, http.StatusBadRequest, "invalid_request"},
		{scheduling.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{errors.New("database exploded"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		handleDomainError(rec, tc.err)

		assert.Equal(t, tc.wantStatus, rec.Code, "%v", tc.err)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.wantCode, body.Error, "%v", tc.err)
	}
}

func TestHandleDomainError_UnwrapsWrappedSentinels(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handleDomainError(rec, fmt.Errorf("load schedule: %w", scheduling.ErrScheduleNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteJSON_SetsContentType(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]string{"ok": "yes"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":"yes"}`, rec.Body.String())
}
