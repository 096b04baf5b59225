package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/nutriagenda/scheduling-portal/internal/pagination"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

func getProfileHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())

		n, locs, err := svc.GetProfile(r.Context(), ident.UserID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := ProfileResponse{
			ID:            n.ID,
			Name:          n.Name,
			Email:         n.Email,
			CRF:           n.CRF,
			AcceptsRemote: n.AcceptsRemote,
			Locations:     make([]LocationResponse, 0, len(locs)),
		}
		for _, l := range locs {
			resp.Locations = append(resp.Locations, locationResponse(l))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func updateProfileHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Name == "" || req.CRF == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name and crf are required")
			return
		}

		n, _, err := svc.GetProfile(r.Context(), ident.UserID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		n.Name = req.Name
		n.CRF = req.CRF
		n.AcceptsRemote = req.AcceptsRemote
		if err := svc.UpdateProfile(r.Context(), n); err != nil {
			handleDomainError(w, err)
			return
		}

		getProfileHandler(svc)(w, r)
	}
}

func listLocationsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())

		locs, err := svc.ListLocations(r.Context(), ident.UserID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		out := make([]LocationResponse, 0, len(locs))
		for _, l := range locs {
			out = append(out, locationResponse(l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func searchNutritionistsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, size := pageParams(r)
		q := r.URL.Query()

		params := scheduling.NutritionistSearchParams{
			Name:      q.Get("nutritionistName"),
			IBGEState: q.Get("ibgeApiState"),
			IBGECity:  q.Get("ibgeApiCity"),
		}
		// acceptsRemote is tri-state: absent means both, false filters
		// to in-person only.
		if raw := q.Get("acceptsRemote"); raw != "" {
			acceptsRemote, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_accepts_remote", "acceptsRemote must be true or false")
				return
			}
			params.AcceptsRemote = &acceptsRemote
		}

		results, total, err := svc.SearchNutritionists(r.Context(), params, size, page*size)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		content := make([]NutritionistSearchResponse, 0, len(results))
		for _, res := range results {
			content = append(content, NutritionistSearchResponse{
				ID:            res.ID,
				Name:          res.Name,
				IBGEState:     res.IBGEState,
				IBGECity:      res.IBGECity,
				AcceptsRemote: res.AcceptsRemote,
				OpenSchedules: res.OpenSchedules,
			})
		}
		writeJSON(w, http.StatusOK, pagination.New(content, page, size, total))
	}
}
