package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/notification"
	"github.com/nutriagenda/scheduling-portal/internal/pagination"
)

func listNotificationsHandler(svc *notification.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())
		page, size := pageParams(r)

		items, total, err := svc.List(r.Context(), ident.UserID, size, page*size)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, pagination.New(items, page, size, total))
	}
}

func markNotificationReadHandler(svc *notification.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := GetIdentity(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_notification_id", "id must be a valid UUID")
			return
		}

		if err := svc.MarkRead(r.Context(), id, ident.UserID); err != nil {
			handleDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
