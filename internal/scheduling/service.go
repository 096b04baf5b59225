package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/auth"
	"github.com/nutriagenda/scheduling-portal/internal/config"
	redisclient "github.com/nutriagenda/scheduling-portal/internal/redis"
)

const (
	EventScheduleCreated     = "SCHEDULE_CREATED"
	EventScheduleDeleted     = "SCHEDULE_DELETED"
	EventAppointmentBooked   = "APPOINTMENT_BOOKED"
	EventAppointmentStatus   = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentDeleted  = "APPOINTMENT_DELETED"
	EventAppointmentReminded = "APPOINTMENT_REMINDED"
)

var (
	ErrScheduleBeingBooked = errors.New("schedule is currently being booked, please retry")
	ErrNotOwner            = errors.New("resource does not belong to this user")
	ErrInvalidDuration     = errors.New("duration must be 15, 30, 45 or 60 minutes")
	ErrStartInPast         = errors.New("start time must be in the future")
	ErrLocationRequired    = errors.New("in-person appointments require a location")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)

// Notifier delivers a user-facing notification. The notification package
// provides the real implementation; tests use fakes.
type Notifier interface {
	Notify(ctx context.Context, from *uuid.UUID, to uuid.UUID, message string, relatedEntityID *uuid.UUID) error
}

// NopNotifier discards notifications. Used by the seeder.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, *uuid.UUID, uuid.UUID, string, *uuid.UUID) error {
	return nil
}

type Service struct {
	repo     Repository
	locker   redisclient.Locker
	notifier Notifier
	cfg      config.Config
}

func NewService(repo Repository, locker redisclient.Locker, notifier Notifier, cfg config.Config) *Service {
	return &Service{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		cfg:      cfg,
	}
}

// --- sign-up / sign-in ---

func (s *Service) RegisterPatient(ctx context.Context, name, email, password string) (*Patient, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &Patient{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.CreatePatient(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) RegisterNutritionist(ctx context.Context, name, email, password, crf string, acceptsRemote bool) (*Nutritionist, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	n := &Nutritionist{
		ID:            uuid.New(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		CRF:           crf,
		AcceptsRemote: acceptsRemote,
	}
	if err := s.repo.CreateNutritionist(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Authenticate checks credentials for either role. The patient table is
// tried first, then nutritionists; emails are unique across both.
func (s *Service) Authenticate(ctx context.Context, email, password string) (uuid.UUID, Role, string, error) {
	p, err := s.repo.GetPatientByEmail(ctx, email)
	if err == nil {
		if !auth.CheckPassword(p.PasswordHash, password) {
			return uuid.Nil, "", "", ErrInvalidCredentials
		}
		return p.ID, RolePatient, p.Name, nil
	}
	if !errors.Is(err, ErrPatientNotFound) {
		return uuid.Nil, "", "", fmt.Errorf("load patient: %w", err)
	}

	n, err := s.repo.GetNutritionistByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNutritionistNotFound) {
			return uuid.Nil, "", "", ErrInvalidCredentials
		}
		return uuid.Nil, "", "", fmt.Errorf("load nutritionist: %w", err)
	}
	if !auth.CheckPassword(n.PasswordHash, password) {
		return uuid.Nil, "", "", ErrInvalidCredentials
	}
	return n.ID, RoleNutritionist, n.Name, nil
}

// --- availability slots ---

var validDurations = map[int]bool{15: true, 30: true, 45: true, 60: true}

func (s *Service) CreateSchedule(ctx context.Context, nutritionistID uuid.UUID, start time.Time, durationMinutes int) (*Schedule, error) {
	if !validDurations[durationMinutes] {
		return nil, ErrInvalidDuration
	}
	if !start.After(time.Now()) {
		return nil, ErrStartInPast
	}
	if _, err := s.repo.GetNutritionistByID(ctx, nutritionistID); err != nil {
		return nil, fmt.Errorf("load nutritionist: %w", err)
	}

	sched := &Schedule{
		ID:              uuid.New(),
		NutritionistID:  nutritionistID,
		StartTime:       start,
		DurationMinutes: durationMinutes,
	}
	if err := s.repo.CreateSchedule(ctx, sched); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}

	s.logEvent(ctx, nil, EventScheduleCreated, map[string]any{
		"schedule_id":     sched.ID.String(),
		"nutritionist_id": nutritionistID.String(),
		"start_time":      start,
	})

	return sched, nil
}

func (s *Service) DeleteSchedule(ctx context.Context, nutritionistID, scheduleID uuid.UUID) error {
	sched, err := s.repo.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	if sched.NutritionistID != nutritionistID {
		return ErrNotOwner
	}

	if err := s.repo.DeleteSchedule(ctx, scheduleID); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}

	s.logEvent(ctx, nil, EventScheduleDeleted, map[string]any{
		"schedule_id": scheduleID.String(),
	})
	return nil
}

// ListCalendar returns the nutritionist's open slots and appointments in
// [from, to) for calendar rendering.
func (s *Service) ListCalendar(ctx context.Context, nutritionistID uuid.UUID, from, to time.Time) ([]Schedule, []AppointmentDetail, error) {
	schedules, err := s.repo.ListSchedules(ctx, nutritionistID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("list schedules: %w", err)
	}

	appts, _, err := s.repo.ListAppointmentsByNutritionist(ctx, nutritionistID, 500, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("list appointments: %w", err)
	}

	inRange := appts[:0]
	for _, a := range appts {
		if !a.StartTime.Before(from) && a.StartTime.Before(to) {
			inRange = append(inRange, a)
		}
	}
	return schedules, inRange, nil
}

// --- booking ---

// Book converts an open Schedule into an Appointment for a patient. A
// distributed lock keyed by the schedule ID guards the critical section so
// two concurrent bookings cannot both consume the slot.
func (s *Service) Book(ctx context.Context, scheduleID, patientID uuid.UUID, bookedBy Actor, isRemote bool, locationID *uuid.UUID) (*Appointment, error) {
	patient, err := s.repo.GetPatientByID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}

	sched, err := s.repo.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	if !isRemote {
		if locationID == nil {
			return nil, ErrLocationRequired
		}
		loc, err := s.repo.GetLocationByID(ctx, *locationID)
		if err != nil {
			return nil, fmt.Errorf("load location: %w", err)
		}
		if loc.NutritionistID != sched.NutritionistID {
			return nil, ErrNotOwner
		}
	}

	var created *Appointment

	err = s.locker.WithScheduleLock(ctx, scheduleID, func(lockCtx context.Context) error {
		// Re-check inside the critical section: the slot may have been
		// consumed between the read above and lock acquisition.
		if _, err := s.repo.GetScheduleByID(lockCtx, scheduleID); err != nil {
			return fmt.Errorf("recheck schedule: %w", err)
		}

		appt := &Appointment{
			ID:              uuid.New(),
			NutritionistID:  sched.NutritionistID,
			PatientID:       patientID,
			LocationID:      locationID,
			StartTime:       sched.StartTime,
			DurationMinutes: sched.DurationMinutes,
			IsRemote:        isRemote,
			Status:          StatusAgendado,
		}
		if err := s.repo.BookSchedule(lockCtx, scheduleID, appt); err != nil {
			return fmt.Errorf("book schedule: %w", err)
		}

		created = appt

		s.logEvent(lockCtx, &appt.ID, EventAppointmentBooked, map[string]any{
			"schedule_id": scheduleID.String(),
			"patient_id":  patientID.String(),
			"booked_by":   string(bookedBy),
		})
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrScheduleBeingBooked
		}
		return nil, err
	}

	// Tell the party that did not trigger the booking.
	if bookedBy == ActorPatient {
		s.notify(ctx, &patientID, created.NutritionistID,
			fmt.Sprintf("Nova consulta agendada por %s.", patient.Name), &created.ID)
	} else {
		s.notify(ctx, &created.NutritionistID, patientID,
			"Uma consulta foi agendada para você.", &created.ID)
	}

	return created, nil
}

// --- status transitions ---

func (s *Service) RequestConfirmation(ctx context.Context, appointmentID, nutritionistID uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, appointmentID, ActionRequestConfirmation, ActorNutritionist, nutritionistID, false,
		"Confirme sua presença na consulta.")
}

func (s *Service) Confirm(ctx context.Context, appointmentID, patientID uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, appointmentID, ActionConfirm, ActorPatient, patientID, false,
		"O paciente confirmou a consulta.")
}

func (s *Service) Cancel(ctx context.Context, appointmentID uuid.UUID, actor Actor, actorID uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, appointmentID, ActionCancel, actor, actorID, false,
		"A consulta foi cancelada.")
}

func (s *Service) Finish(ctx context.Context, appointmentID, nutritionistID uuid.UUID, attended bool) (*Appointment, error) {
	msg := "Consulta concluída."
	if !attended {
		msg = "Consulta marcada como não comparecida."
	}
	return s.transition(ctx, appointmentID, ActionFinish, ActorNutritionist, nutritionistID, attended, msg)
}

func (s *Service) transition(ctx context.Context, appointmentID uuid.UUID, action Action, actor Actor, actorID uuid.UUID, attended bool, message string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if err := s.checkParty(appt, actor, actorID); err != nil {
		return nil, err
	}
	if err := CanApply(appt.Status, action, actor); err != nil {
		return nil, err
	}

	next, ok := NextStatus(action, attended)
	if !ok {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, next)
	if err != nil {
		// A CAS miss means the status changed underneath us.
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.logEvent(ctx, &updated.ID, EventAppointmentStatus, map[string]any{
		"action": string(action),
		"from":   string(appt.Status),
		"to":     string(next),
		"actor":  string(actor),
	})

	counterpart := appt.PatientID
	if actor == ActorPatient {
		counterpart = appt.NutritionistID
	}
	s.notify(ctx, &actorID, counterpart, message, &updated.ID)

	return updated, nil
}

// DeletePermanently removes a cancelled appointment. Cancelling never
// recreates the availability slot; this cleanup is the nutritionist's
// explicit follow-up action.
func (s *Service) DeletePermanently(ctx context.Context, appointmentID, nutritionistID uuid.UUID) error {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}
	if appt.NutritionistID != nutritionistID {
		return ErrNotOwner
	}
	if err := CanApply(appt.Status, ActionDelete, ActorNutritionist); err != nil {
		return err
	}

	if err := s.repo.DeleteAppointment(ctx, appointmentID); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.logEvent(ctx, &appointmentID, EventAppointmentDeleted, map[string]any{
		"status": string(appt.Status),
	})
	return nil
}

func (s *Service) checkParty(appt *Appointment, actor Actor, actorID uuid.UUID) error {
	switch actor {
	case ActorPatient:
		if appt.PatientID != actorID {
			return ErrNotOwner
		}
	case ActorNutritionist:
		if appt.NutritionistID != actorID {
			return ErrNotOwner
		}
	default:
		return ErrActorNotAllowed
	}
	return nil
}

// --- listings ---

// AppointmentDetail loads one appointment hydrated with both parties and
// the resolved location address.
func (s *Service) AppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	d, err := s.repo.GetAppointmentDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment detail: %w", err)
	}
	return d, nil
}

func (s *Service) ListNutritionistAppointments(ctx context.Context, nutritionistID uuid.UUID, limit, offset int) ([]AppointmentDetail, int64, error) {
	return s.repo.ListAppointmentsByNutritionist(ctx, nutritionistID, limit, offset)
}

func (s *Service) ListPatientFutureAppointments(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]AppointmentDetail, int64, error) {
	return s.repo.ListFutureAppointmentsByPatient(ctx, patientID, time.Now(), limit, offset)
}

// --- roster and search ---

func (s *Service) AddPatientToRoster(ctx context.Context, nutritionistID, patientID uuid.UUID) error {
	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		return fmt.Errorf("load patient: %w", err)
	}
	return s.repo.AddToRoster(ctx, nutritionistID, patientID)
}

func (s *Service) ListRoster(ctx context.Context, nutritionistID uuid.UUID, limit, offset int) ([]RosterEntry, int64, error) {
	return s.repo.ListRoster(ctx, nutritionistID, limit, offset)
}

func (s *Service) SearchScheduledPatients(ctx context.Context, nutritionistID uuid.UUID, name string, limit, offset int) ([]RosterEntry, int64, error) {
	return s.repo.SearchScheduledPatients(ctx, nutritionistID, name, limit, offset)
}

func (s *Service) SearchPatients(ctx context.Context, name string, limit int) ([]Participant, error) {
	return s.repo.SearchPatientsByName(ctx, name, limit)
}

func (s *Service) SearchNutritionists(ctx context.Context, params NutritionistSearchParams, limit, offset int) ([]NutritionistSearchResult, int64, error) {
	return s.repo.SearchNutritionists(ctx, params, limit, offset)
}

// --- profile ---

func (s *Service) GetProfile(ctx context.Context, nutritionistID uuid.UUID) (*Nutritionist, []Location, error) {
	n, err := s.repo.GetNutritionistByID(ctx, nutritionistID)
	if err != nil {
		return nil, nil, fmt.Errorf("load nutritionist: %w", err)
	}
	locs, err := s.repo.ListLocations(ctx, nutritionistID)
	if err != nil {
		return nil, nil, fmt.Errorf("list locations: %w", err)
	}
	return n, locs, nil
}

func (s *Service) UpdateProfile(ctx context.Context, n *Nutritionist) error {
	return s.repo.UpdateNutritionist(ctx, n)
}

func (s *Service) ListLocations(ctx context.Context, nutritionistID uuid.UUID) ([]Location, error) {
	return s.repo.ListLocations(ctx, nutritionistID)
}

// --- reminders ---

// RemindUpcoming is called periodically by the reminder worker. It notifies
// the patient of every appointment starting within the configured window
// that has not been reminded yet.
func (s *Service) RemindUpcoming(ctx context.Context) error {
	now := time.Now()
	upcoming, err := s.repo.FindUpcomingUnreminded(ctx, now, now.Add(s.cfg.ReminderWindow))
	if err != nil {
		return fmt.Errorf("find upcoming appointments: %w", err)
	}

	for _, appt := range upcoming {
		msg := fmt.Sprintf("Lembrete: você tem uma consulta em %s.", appt.StartTime.Format("02/01/2006 15:04"))
		s.notify(ctx, nil, appt.PatientID, msg, &appt.ID)

		if err := s.repo.MarkReminded(ctx, appt.ID, now); err != nil {
			log.Printf("failed to mark appointment %s reminded: %v", appt.ID, err)
			continue
		}
		s.logEvent(ctx, &appt.ID, EventAppointmentReminded, map[string]any{})
	}

	return nil
}

// --- helpers ---

func (s *Service) notify(ctx context.Context, from *uuid.UUID, to uuid.UUID, message string, relatedID *uuid.UUID) {
	if err := s.notifier.Notify(ctx, from, to, message, relatedID); err != nil {
		log.Printf("failed to deliver notification to %s: %v", to, err)
	}
}

func (s *Service) logEvent(ctx context.Context, appointmentID *uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: appointmentID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert event log %s: %v", eventType, err)
	}
}
