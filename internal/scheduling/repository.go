package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrNutritionistNotFound = errors.New("nutritionist not found")
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrLocationNotFound     = errors.New("location not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrAlreadyOnRoster      = errors.New("patient already on roster")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	// Identities
	CreatePatient(ctx context.Context, p *Patient) error
	CreateNutritionist(ctx context.Context, n *Nutritionist) error
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetNutritionistByID(ctx context.Context, id uuid.UUID) (*Nutritionist, error)
	GetPatientByEmail(ctx context.Context, email string) (*Patient, error)
	GetNutritionistByEmail(ctx context.Context, email string) (*Nutritionist, error)
	UpdateNutritionist(ctx context.Context, n *Nutritionist) error

	// Locations
	ListLocations(ctx context.Context, nutritionistID uuid.UUID) ([]Location, error)
	GetLocationByID(ctx context.Context, id uuid.UUID) (*Location, error)

	// Schedules (availability slots)
	CreateSchedule(ctx context.Context, s *Schedule) error
	GetScheduleByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	DeleteSchedule(ctx context.Context, id uuid.UUID) error
	ListSchedules(ctx context.Context, nutritionistID uuid.UUID, from, to time.Time) ([]Schedule, error)

	// BookSchedule atomically deletes the schedule row and inserts the
	// appointment in one transaction. The 1:1 conversion must not leave
	// both or neither behind.
	BookSchedule(ctx context.Context, scheduleID uuid.UUID, appt *Appointment) error

	// Appointments
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error)
	// UpdateAppointmentStatus compare-and-swaps the status; it returns
	// ErrAppointmentNotFound when no row matches (id, from).
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	ListAppointmentsByNutritionist(ctx context.Context, nutritionistID uuid.UUID, limit, offset int) ([]AppointmentDetail, int64, error)
	ListFutureAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, after time.Time, limit, offset int) ([]AppointmentDetail, int64, error)

	// Reminder worker
	FindUpcomingUnreminded(ctx context.Context, from, to time.Time) ([]AppointmentDetail, error)
	MarkReminded(ctx context.Context, appointmentID uuid.UUID, at time.Time) error

	// Roster and search
	AddToRoster(ctx context.Context, nutritionistID, patientID uuid.UUID) error
	ListRoster(ctx context.Context, nutritionistID uuid.UUID, limit, offset int) ([]RosterEntry, int64, error)
	SearchScheduledPatients(ctx context.Context, nutritionistID uuid.UUID, name string, limit, offset int) ([]RosterEntry, int64, error)
	SearchPatientsByName(ctx context.Context, name string, limit int) ([]Participant, error)
	SearchNutritionists(ctx context.Context, params NutritionistSearchParams, limit, offset int) ([]NutritionistSearchResult, int64, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
