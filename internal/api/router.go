package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nutriagenda/scheduling-portal/internal/clinical"
	"github.com/nutriagenda/scheduling-portal/internal/ibge"
	"github.com/nutriagenda/scheduling-portal/internal/notification"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
	"github.com/nutriagenda/scheduling-portal/internal/ws"
)

type RouterConfig struct {
	Scheduling    *scheduling.Service
	Notifications *notification.Service
	Clinical      *clinical.Service
	IBGE          *ibge.Client
	Hub           *ws.Hub
	PgPool        *pgxpool.Pool
	Redis         *redis.Client
	JWTSecret     string
	AuthLimiter   *RateLimiter
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Credential endpoints, rate limited per IP
	r.Group(func(r chi.Router) {
		if cfg.AuthLimiter != nil {
			r.Use(cfg.AuthLimiter.Middleware)
		}
		r.Post("/auth/register", registerHandler(cfg.Scheduling, cfg.JWTSecret))
		r.Post("/auth/login", loginHandler(cfg.Scheduling, cfg.JWTSecret))
	})

	// Everything else is authenticated
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWTSecret))

		// Live notifications
		wsHandler := ws.NewHandler(cfg.Hub)
		r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
			ident, _ := GetIdentity(req.Context())
			wsHandler.ServeUser(w, req, ident.UserID)
		})

		// Notifications
		r.Get("/notifications", listNotificationsHandler(cfg.Notifications))
		r.Patch("/notifications/{id}/read", markNotificationReadHandler(cfg.Notifications))

		// Region lookup
		r.Get("/regions/states", listStatesHandler(cfg.IBGE))
		r.Get("/regions/states/{uf}/cities", listCitiesHandler(cfg.IBGE))

		// Booking and appointment transitions
		r.Post("/appointments/schedules/{scheduleId}", bookAppointmentHandler(cfg.Scheduling))
		r.Patch("/appointments/{id}/confirm", confirmAppointmentHandler(cfg.Scheduling))
		r.With(RequireRole(scheduling.RoleNutritionist)).
			Patch("/appointments/{id}/request-confirmation", requestConfirmationHandler(cfg.Scheduling))
		r.With(RequireRole(scheduling.RoleNutritionist)).
			Patch("/appointments/{id}/finish", finishAppointmentHandler(cfg.Scheduling))
		r.With(RequireRole(scheduling.RolePatient)).
			Get("/appointments/patient/future", listPatientFutureAppointmentsHandler(cfg.Scheduling))

		// Patient-facing
		r.Route("/patients", func(r chi.Router) {
			r.With(RequireRole(scheduling.RoleNutritionist)).
				Get("/search", searchPatientsHandler(cfg.Scheduling))
			r.With(RequireRole(scheduling.RolePatient)).
				Post("/me/appointments/{id}", cancelAppointmentHandler(cfg.Scheduling, scheduling.ActorPatient))
			r.Get("/{patientId}/clinical-information", getClinicalFormHandler(cfg.Clinical))
			r.Post("/{patientId}/clinical-information", saveClinicalFormHandler(cfg.Clinical))
		})
		r.Get("/clinical-information/master-data", masterDataHandler(cfg.Clinical))

		// Nutritionist search is open to any signed-in user
		r.Get("/nutritionists/search", searchNutritionistsHandler(cfg.Scheduling))

		// Nutritionist-only surface
		r.Route("/nutritionists/me", func(r chi.Router) {
			r.Use(RequireRole(scheduling.RoleNutritionist))

			r.Get("/", getProfileHandler(cfg.Scheduling))
			r.Put("/", updateProfileHandler(cfg.Scheduling))
			r.Get("/locations", listLocationsHandler(cfg.Scheduling))

			r.Get("/schedules", listSchedulesHandler(cfg.Scheduling))
			r.Post("/schedules", createScheduleHandler(cfg.Scheduling))
			r.Delete("/schedules/{id}", deleteScheduleHandler(cfg.Scheduling))

			r.Get("/appointments", listNutritionistAppointmentsHandler(cfg.Scheduling))
			r.Post("/appointments/{id}", cancelAppointmentHandler(cfg.Scheduling, scheduling.ActorNutritionist))
			r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Scheduling))

			r.Get("/patients", listRosterHandler(cfg.Scheduling))
			r.Post("/patients", addRosterPatientHandler(cfg.Scheduling))
			r.Get("/patients/scheduled", searchScheduledPatientsHandler(cfg.Scheduling))
		})
	})

	return r
}
