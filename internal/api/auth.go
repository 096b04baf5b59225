package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nutriagenda/scheduling-portal/internal/auth"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

func registerHandler(svc *scheduling.Service, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
			writeError(w, http.StatusBadRequest, "invalid_request", "name, email and a password of at least 8 characters are required")
			return
		}

		var resp AuthResponse
		switch scheduling.Role(req.Role) {
		case scheduling.RolePatient:
			p, err := svc.RegisterPatient(r.Context(), req.Name, req.Email, req.Password)
			if err != nil {
				handleDomainError(w, err)
				return
			}
			resp.User = UserResponse{ID: p.ID, Name: p.Name, Email: p.Email, Role: string(scheduling.RolePatient)}
		case scheduling.RoleNutritionist:
			if req.CRF == "" {
				writeError(w, http.StatusBadRequest, "invalid_request", "crf is required for nutritionists")
				return
			}
			n, err := svc.RegisterNutritionist(r.Context(), req.Name, req.Email, req.Password, req.CRF, req.AcceptsRemote)
			if err != nil {
				handleDomainError(w, err)
				return
			}
			resp.User = UserResponse{ID: n.ID, Name: n.Name, Email: n.Email, Role: string(scheduling.RoleNutritionist)}
		default:
			writeError(w, http.StatusBadRequest, "invalid_role", "role must be PATIENT or NUTRITIONIST")
			return
		}

		token, err := auth.MakeToken(resp.User.ID.String(), resp.User.Role, secret)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not issue token")
			return
		}
		resp.Token = token

		writeJSON(w, http.StatusCreated, resp)
	}
}

func loginHandler(svc *scheduling.Service, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		email := strings.TrimSpace(strings.ToLower(req.Email))
		id, role, name, err := svc.Authenticate(r.Context(), email, req.Password)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		token, err := auth.MakeToken(id.String(), string(role), secret)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not issue token")
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{
			Token: token,
			User:  UserResponse{ID: id, Name: name, Email: email, Role: string(role)},
		})
	}
}
