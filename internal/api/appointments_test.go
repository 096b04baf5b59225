package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriagenda/scheduling-portal/internal/auth"
	"github.com/nutriagenda/scheduling-portal/internal/config"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
	"github.com/nutriagenda/scheduling-portal/internal/ws"
)

// apptStubRepo covers the appointment-transition surface; everything else
// inherits the embedded interface's panic.
type apptStubRepo struct {
	scheduling.Repository

	appointments map[uuid.UUID]*scheduling.Appointment
	patient      scheduling.Participant
	nutritionist scheduling.Participant
	address      string

	searchParams *scheduling.NutritionistSearchParams
}

func (s *apptStubRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	appt, ok := s.appointments[id]
	if !ok {
		return nil, scheduling.ErrAppointmentNotFound
	}
	cp := *appt
	return &cp, nil
}

func (s *apptStubRepo) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to scheduling.Status) (*scheduling.Appointment, error) {
	appt, ok := s.appointments[id]
	if !ok || appt.Status != from {
		return nil, scheduling.ErrAppointmentNotFound
	}
	appt.Status = to
	cp := *appt
	return &cp, nil
}

func (s *apptStubRepo) GetAppointmentDetail(_ context.Context, id uuid.UUID) (*scheduling.AppointmentDetail, error) {
	appt, ok := s.appointments[id]
	if !ok {
		return nil, scheduling.ErrAppointmentNotFound
	}
	return &scheduling.AppointmentDetail{
		Appointment:  *appt,
		Patient:      &s.patient,
		Nutritionist: &s.nutritionist,
		Address:      s.address,
	}, nil
}

func (s *apptStubRepo) InsertEvent(context.Context, scheduling.EventLog) error {
	return nil
}

func (s *apptStubRepo) SearchNutritionists(_ context.Context, params scheduling.NutritionistSearchParams, _, _ int) ([]scheduling.NutritionistSearchResult, int64, error) {
	s.searchParams = &params
	return nil, 0, nil
}

func newAppointmentFixture(t *testing.T) (*apptStubRepo, http.Handler, *scheduling.Appointment, string) {
	t.Helper()

	nutritionistID := uuid.New()
	appt := &scheduling.Appointment{
		ID:              uuid.New(),
		NutritionistID:  nutritionistID,
		PatientID:       uuid.New(),
		StartTime:       time.Now().Add(2 * time.Hour),
		DurationMinutes: 30,
		Status:          scheduling.StatusConfirmado,
	}
	repo := &apptStubRepo{
		appointments: map[uuid.UUID]*scheduling.Appointment{appt.ID: appt},
		patient:      scheduling.Participant{ID: appt.PatientID, Name: "João", Email: "joao@example.com"},
		nutritionist: scheduling.Participant{ID: nutritionistID, Name: "Dra. Helena", Email: "helena@example.com"},
		address:      "Rua das Acácias, 12",
	}

	svc := scheduling.NewService(repo, nil, scheduling.NopNotifier{}, config.Config{})
	router := NewRouter(RouterConfig{
		Scheduling: svc,
		Hub:        ws.NewHub(),
		JWTSecret:  testSecret,
	})

	token, err := auth.MakeToken(nutritionistID.String(), string(scheduling.RoleNutritionist), testSecret)
	require.NoError(t, err)

	return repo, router, appt, token
}

func patchAs(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFinishAppointment_RequiresAttended(t *testing.T) {
	t.Parallel()

	repo, router, appt, token := newAppointmentFixture(t)

	rec := patchAs(router, "/appointments/"+appt.ID.String()+"/finish", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing attended must not default to attended")

	rec = patchAs(router, "/appointments/"+appt.ID.String()+"/finish?attended=talvez", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, scheduling.StatusConfirmado, repo.appointments[appt.ID].Status, "rejected request must not transition")
}

func TestFinishAppointment_HydratesParties(t *testing.T) {
	t.Parallel()

	_, router, appt, token := newAppointmentFixture(t)

	rec := patchAs(router, "/appointments/"+appt.ID.String()+"/finish?attended=false", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var event CalendarEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))
	assert.Equal(t, scheduling.StatusNaoCompareceu, event.Status)
	require.NotNil(t, event.Patient)
	assert.Equal(t, "João", event.Patient.Name)
	require.NotNil(t, event.Nutritionist)
	assert.Equal(t, "Dra. Helena", event.Nutritionist.Name)
	assert.Equal(t, "Rua das Acácias, 12", event.Address)
}

func TestSearchNutritionists_AcceptsRemoteTriState(t *testing.T) {
	t.Parallel()

	repo, router, _, token := newAppointmentFixture(t)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// Absent means both remote and in-person.
	rec := get("/nutritionists/search")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, repo.searchParams)
	assert.Nil(t, repo.searchParams.AcceptsRemote)

	// false filters to in-person only instead of being dropped.
	rec = get("/nutritionists/search?acceptsRemote=false")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, repo.searchParams.AcceptsRemote)
	assert.False(t, *repo.searchParams.AcceptsRemote)

	rec = get("/nutritionists/search?acceptsRemote=talvez")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
