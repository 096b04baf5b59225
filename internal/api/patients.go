package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/pagination"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

const patientSearchLimit = 20

func searchPatientsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, http.StatusBadRequest, "missing_name", "name query parameter is required")
			return
		}

		results, err := svc.SearchPatients(r.Context(), name, patientSearchLimit)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		if results == nil {
			results = []scheduling.Participant{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func listRosterHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())
		page, size := pageParams(r)

		entries, total, err := svc.ListRoster(r.Context(), ident.UserID, size, page*size)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		content := make([]RosterEntryResponse, 0, len(entries))
		for _, e := range entries {
			content = append(content, rosterEntry(e))
		}
		writeJSON(w, http.StatusOK, pagination.New(content, page, size, total))
	}
}

func addRosterPatientHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())

		var req AddRosterPatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patientId must be a valid UUID")
			return
		}

		if err := svc.AddPatientToRoster(r.Context(), ident.UserID, patientID); err != nil {
			handleDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}

func searchScheduledPatientsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())
		page, size := pageParams(r)
		name := r.URL.Query().Get("name")

		entries, total, err := svc.SearchScheduledPatients(r.Context(), ident.UserID, name, size, page*size)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		content := make([]RosterEntryResponse, 0, len(entries))
		for _, e := range entries {
			content = append(content, rosterEntry(e))
		}
		writeJSON(w, http.StatusOK, pagination.New(content, page, size, total))
	}
}
