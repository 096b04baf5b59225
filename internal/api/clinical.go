package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/clinical"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

func masterDataHandler(svc *clinical.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		md, err := svc.MasterData(r.Context())
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, md)
	}
}

// patientFromPath resolves the {patientId} path segment and enforces that
// patients may only touch their own form.
func patientFromPath(r *http.Request) (uuid.UUID, error) {
	patientID, err := uuid.Parse(chi.URLParam(r, "patientId"))
	if err != nil {
		return uuid.Nil, errors.New("patientId must be a valid UUID")
	}

	ident, _ := GetIdentity(r.Context())
	if ident.Role == scheduling.RolePatient && ident.UserID != patientID {
		return uuid.Nil, scheduling.ErrNotOwner
	}
	return patientID, nil
}

func getClinicalFormHandler(svc *clinical.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := patientFromPath(r)
		if err != nil {
			if errors.Is(err, scheduling.ErrNotOwner) {
				handleDomainError(w, err)
				return
			}
			writeError(w, http.StatusBadRequest, "invalid_patient_id", err.Error())
			return
		}

		form, err := svc.FormForPatient(r.Context(), patientID)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, form)
	}
}

func saveClinicalFormHandler(svc *clinical.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := patientFromPath(r)
		if err != nil {
			if errors.Is(err, scheduling.ErrNotOwner) {
				handleDomainError(w, err)
				return
			}
			writeError(w, http.StatusBadRequest, "invalid_patient_id", err.Error())
			return
		}

		var form clinical.Form
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		saved, err := svc.Save(r.Context(), patientID, &form)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}
