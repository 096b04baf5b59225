package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

const defaultSlotDuration = 30

// listSchedulesHandler returns the nutritionist's calendar for a date
// range: open slots plus appointments, as one event list.
func listSchedulesHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())

		from, err := parseDateParam(r, "startDate", time.Now().AddDate(0, 0, -7))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_date", "startDate must be YYYY-MM-DD")
			return
		}
		to, err := parseDateParam(r, "endDate", time.Now().AddDate(0, 0, 28))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_date", "endDate must be YYYY-MM-DD")
			return
		}

		schedules, appts, err := svc.ListCalendar(r.Context(), ident.UserID, from, to)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		events := make([]CalendarEventResponse, 0, len(schedules)+len(appts))
		for _, s := range schedules {
			events = append(events, scheduleEvent(s))
		}
		for _, a := range appts {
			events = append(events, appointmentEvent(a, scheduling.ActorNutritionist))
		}

		writeJSON(w, http.StatusOK, events)
	}
}

func createScheduleHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())

		var req CreateScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		start, err := time.ParseInLocation("2006-01-02T15:04:05", req.StartLocalDateTime, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "startLocalDateTime must be ISO 8601 without offset")
			return
		}

		duration := req.DurationMinutes
		if duration == 0 {
			duration = defaultSlotDuration
		}

		sched, err := svc.CreateSchedule(r.Context(), ident.UserID, start, duration)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, scheduleEvent(*sched))
	}
}

func deleteScheduleHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_schedule_id", "id must be a valid UUID")
			return
		}

		if err := svc.DeleteSchedule(r.Context(), ident.UserID, id); err != nil {
			handleDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func parseDateParam(r *http.Request, name string, def time.Time) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return time.ParseInLocation("2006-01-02", v, time.Local)
}
