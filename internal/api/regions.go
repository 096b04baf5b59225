package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nutriagenda/scheduling-portal/internal/ibge"
)

// Region lookups proxy the public IBGE localidades API so the client talks
// to a single origin.

func listStatesHandler(client *ibge.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		states, err := client.States(r.Context())
		if err != nil {
			writeError(w, http.StatusBadGateway, "ibge_unavailable", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, states)
	}
}

func listCitiesHandler(client *ibge.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uf := chi.URLParam(r, "uf")
		cities, err := client.Cities(r.Context(), uf)
		if err != nil {
			writeError(w, http.StatusBadGateway, "ibge_unavailable", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, cities)
	}
}
