package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient      Role = "PATIENT"
	RoleNutritionist Role = "NUTRITIONIST"
)

type EventType string

const (
	EventTypeSchedule    EventType = "SCHEDULE"
	EventTypeAppointment EventType = "APPOINTMENT"
)

type Patient struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Nutritionist struct {
	ID            uuid.UUID
	Name          string
	Email         string
	PasswordHash  string
	CRF           string
	AcceptsRemote bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Location is one of the places a nutritionist attends in person.
// State and city follow the IBGE naming used by the public localidades API.
type Location struct {
	ID             uuid.UUID
	NutritionistID uuid.UUID
	IBGEState      string
	IBGEStateID    int
	IBGECity       string
	Address        string
	Phone1         string
	Phone2         *string
	Phone3         *string
}

// Schedule is a nutritionist-declared open slot. It exists only while
// unbooked: booking converts it into exactly one Appointment and removes it.
type Schedule struct {
	ID              uuid.UUID
	NutritionistID  uuid.UUID
	StartTime       time.Time
	DurationMinutes int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Appointment struct {
	ID              uuid.UUID
	NutritionistID  uuid.UUID
	PatientID       uuid.UUID
	LocationID      *uuid.UUID
	StartTime       time.Time
	DurationMinutes int
	IsRemote        bool
	Status          Status
	RemindedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Participant is the minimal identity projection used in payloads.
type Participant struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AppointmentDetail hydrates an appointment with both parties and the
// resolved address for display.
type AppointmentDetail struct {
	Appointment
	Patient      *Participant
	Nutritionist *Participant
	Address      string
}

// NutritionistSearchResult is one row of the patient-facing search for
// available nutritionists.
type NutritionistSearchResult struct {
	ID            uuid.UUID
	Name          string
	IBGEState     string
	IBGECity      string
	AcceptsRemote bool
	OpenSchedules int
}

// NutritionistSearchParams filters the available-nutritionist search.
// Zero values mean "no filter"; a nil AcceptsRemote matches both
// remote and in-person nutritionists.
type NutritionistSearchParams struct {
	Name          string
	IBGEState     string
	IBGECity      string
	AcceptsRemote *bool
}

// RosterEntry is a patient on a nutritionist's roster.
type RosterEntry struct {
	Patient          Participant
	AddedAt          time.Time
	LastAppointment  *time.Time
	AppointmentCount int
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
