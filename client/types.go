package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

// Wire shapes mirrored from the server's API package. The status vocabulary
// itself (Status, Action, labels, style tokens) is shared with the server
// through the scheduling package, so the two sides cannot drift.

type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CalendarEvent struct {
	Type            scheduling.EventType    `json:"type"`
	ID              uuid.UUID               `json:"id"`
	StartTime       time.Time               `json:"startTime"`
	DurationMinutes int                     `json:"durationMinutes"`
	IsRemote        *bool                   `json:"isRemote,omitempty"`
	Address         string                  `json:"address,omitempty"`
	Status          scheduling.Status       `json:"status,omitempty"`
	StatusLabel     string                  `json:"statusLabel,omitempty"`
	StyleToken      string                  `json:"styleToken,omitempty"`
	AllowedActions  []scheduling.Action     `json:"allowedActions,omitempty"`
	Patient         *scheduling.Participant `json:"patient,omitempty"`
	Nutritionist    *scheduling.Participant `json:"nutritionist,omitempty"`
}

type RosterEntry struct {
	Patient          scheduling.Participant `json:"patient"`
	AddedAt          time.Time              `json:"addedAt"`
	LastAppointment  *time.Time             `json:"lastAppointment,omitempty"`
	AppointmentCount int                    `json:"appointmentCount"`
}

type NutritionistResult struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	IBGEState     string    `json:"ibgeApiState"`
	IBGECity      string    `json:"ibgeApiCity"`
	AcceptsRemote bool      `json:"acceptsRemote"`
	OpenSchedules int       `json:"openSchedules"`
}

type Location struct {
	ID          uuid.UUID `json:"id"`
	IBGEState   string    `json:"ibgeApiState"`
	IBGEStateID int       `json:"ibgeApiIdentifierState"`
	IBGECity    string    `json:"ibgeApiCity"`
	Address     string    `json:"address"`
	Phone1      string    `json:"phone1"`
	Phone2      *string   `json:"phone2"`
	Phone3      *string   `json:"phone3"`
}

type Profile struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	CRF           string     `json:"crf"`
	AcceptsRemote bool       `json:"acceptsRemote"`
	Locations     []Location `json:"locations"`
}
