package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

// --- auth ---

type RegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	CRF           string `json:"crf,omitempty"`
	AcceptsRemote bool   `json:"acceptsRemote,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- schedules / calendar ---

type CreateScheduleRequest struct {
	StartLocalDateTime string `json:"startLocalDateTime"`
	DurationMinutes    int    `json:"durationMinutes"`
}

// CalendarEventResponse is the union payload the calendar consumes: open
// slots carry only the base fields; appointments add the status block.
type CalendarEventResponse struct {
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

func scheduleEvent(s scheduling.Schedule) CalendarEventResponse {
	return CalendarEventResponse{
		Type:            scheduling.EventTypeSchedule,
		ID:              s.ID,
		StartTime:       s.StartTime,
		DurationMinutes: s.DurationMinutes,
	}
}

// appointmentEvent renders an appointment for the given viewer. The status
// block is resolved once here so no view carries its own status switch.
func appointmentEvent(d scheduling.AppointmentDetail, viewer scheduling.Actor) CalendarEventResponse {
	isRemote := d.IsRemote
	return CalendarEventResponse{
		Type:            scheduling.EventTypeAppointment,
		ID:              d.ID,
		StartTime:       d.StartTime,
		DurationMinutes: d.DurationMinutes,
		IsRemote:        &isRemote,
		Address:         d.Address,
		Status:          d.Status,
		StatusLabel:     scheduling.DisplayLabel(d.Status),
		StyleToken:      scheduling.StyleToken(d.Status),
		AllowedActions:  scheduling.AllowedActions(d.Status, viewer),
		Patient:         d.Patient,
		Nutritionist:    d.Nutritionist,
	}
}

// --- appointments ---

type BookAppointmentRequest struct {
	PatientID  string  `json:"patientId,omitempty"`
	IsRemote   bool    `json:"isRemote"`
	LocationID *string `json:"locationId,omitempty"`
}

// --- roster ---

type AddRosterPatientRequest struct {
	PatientID string `json:"patientId"`
}

type RosterEntryResponse struct {
	Patient          scheduling.Participant `json:"patient"`
	AddedAt          time.Time              `json:"addedAt"`
	LastAppointment  *time.Time             `json:"lastAppointment,omitempty"`
	AppointmentCount int                    `json:"appointmentCount"`
}

func rosterEntry(e scheduling.RosterEntry) RosterEntryResponse {
	return RosterEntryResponse{
		Patient:          e.Patient,
		AddedAt:          e.AddedAt,
		LastAppointment:  e.LastAppointment,
		AppointmentCount: e.AppointmentCount,
	}
}

// --- nutritionist search / profile ---

type NutritionistSearchResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	IBGEState     string    `json:"ibgeApiState"`
	IBGECity      string    `json:"ibgeApiCity"`
	AcceptsRemote bool      `json:"acceptsRemote"`
	OpenSchedules int       `json:"openSchedules"`
}

type LocationResponse struct {
	ID          uuid.UUID `json:"id"`
	IBGEState   string    `json:"ibgeApiState"`
	IBGEStateID int       `json:"ibgeApiIdentifierState"`
	IBGECity    string    `json:"ibgeApiCity"`
	Address     string    `json:"address"`
	Phone1      string    `json:"phone1"`
	Phone2      *string   `json:"phone2"`
	Phone3      *string   `json:"phone3"`
}

func locationResponse(l scheduling.Location) LocationResponse {
	return LocationResponse{
		ID:          l.ID,
		IBGEState:   l.IBGEState,
		IBGEStateID: l.IBGEStateID,
		IBGECity:    l.IBGECity,
		Address:     l.Address,
		Phone1:      l.Phone1,
		Phone2:      l.Phone2,
		Phone3:      l.Phone3,
	}
}

type ProfileResponse struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	CRF           string             `json:"crf"`
	AcceptsRemote bool               `json:"acceptsRemote"`
	Locations     []LocationResponse `json:"locations"`
}

type UpdateProfileRequest struct {
	Name          string `json:"name"`
	CRF           string `json:"crf"`
	AcceptsRemote bool   `json:"acceptsRemote"`
}
