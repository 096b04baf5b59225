package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/pagination"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

// bookAppointmentHandler fills an open schedule slot. Patients book for
// themselves; nutritionists book on behalf of a patient named in the body.
func bookAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())

		scheduleID, err := uuid.Parse(chi.URLParam(r, "scheduleId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_schedule_id", "scheduleId must be a valid UUID")
			return
		}

		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		var patientID uuid.UUID
		var actor scheduling.Actor
		if ident.Role == scheduling.RolePatient {
			patientID = ident.UserID
			actor = scheduling.ActorPatient
		} else {
			actor = scheduling.ActorNutritionist
			patientID, err = uuid.Parse(req.PatientID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_patient_id", "patientId must be a valid UUID")
				return
			}
		}

		var locationID *uuid.UUID
		if req.LocationID != nil {
			id, err := uuid.Parse(*req.LocationID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_location_id", "locationId must be a valid UUID")
				return
			}
			locationID = &id
		}

		appt, err := svc.Book(r.Context(), scheduleID, patientID, actor, req.IsRemote, locationID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		detail, err := svc.AppointmentDetail(r.Context(), appt.ID)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, appointmentEvent(*detail, actor))
	}
}

func requestConfirmationHandler(svc *scheduling.Service) http.HandlerFunc {
	return transitionHandler(svc, func(r *http.Request, id uuid.UUID, ident Identity) (*scheduling.Appointment, error) {
		return svc.RequestConfirmation(r.Context(), id, ident.UserID)
	})
}

func confirmAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return transitionHandler(svc, func(r *http.Request, id uuid.UUID, ident Identity) (*scheduling.Appointment, error) {
		return svc.Confirm(r.Context(), id, ident.UserID)
	})
}

// finishAppointmentHandler requires an explicit attended value; defaulting
// would silently decide between CONCLUIDO and NAO_COMPARECEU.
func finishAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attended, err := strconv.ParseBool(r.URL.Query().Get("attended"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_attended", "attended must be true or false")
			return
		}
		transitionHandler(svc, func(r *http.Request, id uuid.UUID, ident Identity) (*scheduling.Appointment, error) {
			return svc.Finish(r.Context(), id, ident.UserID, attended)
		})(w, r)
	}
}

func cancelAppointmentHandler(svc *scheduling.Service, actor scheduling.Actor) http.HandlerFunc {
	return transitionHandler(svc, func(r *http.Request, id uuid.UUID, ident Identity) (*scheduling.Appointment, error) {
		return svc.Cancel(r.Context(), id, actor, ident.UserID)
	})
}

// transitionHandler factors the shared shape of every status-transition
// endpoint: parse id, run the transition, render the updated appointment
// hydrated with both parties.
func transitionHandler(svc *scheduling.Service, run func(r *http.Request, id uuid.UUID, ident Identity) (*scheduling.Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := run(r, id, ident)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		viewer := scheduling.ActorPatient
		if ident.Role == scheduling.RoleNutritionist {
			viewer = scheduling.ActorNutritionist
		}
		detail, err := svc.AppointmentDetail(r.Context(), appt.ID)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentEvent(*detail, viewer))
	}
}

func deleteAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if err := svc.DeletePermanently(r.Context(), id, ident.UserID); err != nil {
			handleDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func listNutritionistAppointmentsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())
		page, size := pageParams(r)

		appts, total, err := svc.ListNutritionistAppointments(r.Context(), ident.UserID, size, page*size)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		content := make([]CalendarEventResponse, 0, len(appts))
		for _, a := range appts {
			content = append(content, appointmentEvent(a, scheduling.ActorNutritionist))
		}
		writeJSON(w, http.StatusOK, pagination.New(content, page, size, total))
	}
}

func listPatientFutureAppointmentsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())
		page, size := pageParams(r)

		appts, total, err := svc.ListPatientFutureAppointments(r.Context(), ident.UserID, size, page*size)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		content := make([]CalendarEventResponse, 0, len(appts))
		for _, a := range appts {
			content = append(content, appointmentEvent(a, scheduling.ActorPatient))
		}
		writeJSON(w, http.StatusOK, pagination.New(content, page, size, total))
	}
}

func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	return pagination.Clamp(page, size, 20, 100)
}
