package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriagenda/scheduling-portal/internal/auth"
	"github.com/nutriagenda/scheduling-portal/internal/config"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
	"github.com/nutriagenda/scheduling-portal/internal/ws"
)

// stubRepo embeds the interface and overrides only what auth flows touch;
// anything else panics, which is what we want in a handler test.
type stubRepo struct {
	scheduling.Repository

	patients      map[string]*scheduling.Patient
	nutritionists map[string]*scheduling.Nutritionist
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		patients:      make(map[string]*scheduling.Patient),
		nutritionists: make(map[string]*scheduling.Nutritionist),
	}
}

func (s *stubRepo) CreatePatient(_ context.Context, p *scheduling.Patient) error {
	if _, ok := s.patients[p.Email]; ok {
		return scheduling.ErrEmailTaken
	}
	s.patients[p.Email] = p
	return nil
}

func (s *stubRepo) CreateNutritionist(_ context.Context, n *scheduling.Nutritionist) error {
	if _, ok := s.nutritionists[n.Email]; ok {
		return scheduling.ErrEmailTaken
	}
	s.nutritionists[n.Email] = n
	return nil
}

func (s *stubRepo) GetPatientByEmail(_ context.Context, email string) (*scheduling.Patient, error) {
	p, ok := s.patients[email]
	if !ok {
		return nil, scheduling.ErrPatientNotFound
	}
	return p, nil
}

func (s *stubRepo) GetNutritionistByEmail(_ context.Context, email string) (*scheduling.Nutritionist, error) {
	n, ok := s.nutritionists[email]
	if !ok {
		return nil, scheduling.ErrNutritionistNotFound
	}
	return n, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	svc := scheduling.NewService(newStubRepo(), nil, scheduling.NopNotifier{}, config.Config{})
	return NewRouter(RouterConfig{
		Scheduling: svc,
		Hub:        ws.NewHub(),
		JWTSecret:  testSecret,
	})
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLogin_Patient(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := postJSON(t, router, "/auth/register", RegisterRequest{
		Name: "Maria", Email: "Maria@Example.com", Password: "segredo123", Role: "PATIENT",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "maria@example.com", created.User.Email, "email is normalized")
	assert.Equal(t, "PATIENT", created.User.Role)

	claims, err := auth.ParseToken(created.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID.String(), claims.UserID)

	rec = postJSON(t, router, "/auth/login", LoginRequest{Email: "maria@example.com", Password: "segredo123"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/auth/login", LoginRequest{Email: "maria@example.com", Password: "errada"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	// Short password.
	rec := postJSON(t, router, "/auth/register", RegisterRequest{
		Name: "A", Email: "a@example.com", Password: "curta", Role: "PATIENT",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nutritionist without a CRF.
	rec = postJSON(t, router, "/auth/register", RegisterRequest{
		Name: "Dra. B", Email: "b@example.com", Password: "segredo123", Role: "NUTRITIONIST",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown role.
	rec = postJSON(t, router, "/auth/register", RegisterRequest{
		Name: "C", Email: "c@example.com", Password: "segredo123", Role: "ADMIN",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	body := RegisterRequest{Name: "Maria", Email: "dup@example.com", Password: "segredo123", Role: "PATIENT"}

	rec := postJSON(t, router, "/auth/register", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/auth/register", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_RoleScoping(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	token, err := auth.MakeToken(uuid.NewString(), string(scheduling.RolePatient), testSecret)
	require.NoError(t, err)

	// A patient cannot reach the nutritionist surface.
	req := httptest.NewRequest(http.MethodGet, "/nutritionists/me/schedules", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unauthenticated requests never reach a handler.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
