package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriagenda/scheduling-portal/internal/auth"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

const testSecret = "test-secret"

func identityEcho(t *testing.T, want Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := GetIdentity(r.Context())
		require.True(t, ok)
		assert.Equal(t, want, ident)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidBearer(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token, err := auth.MakeToken(userID.String(), string(scheduling.RolePatient), testSecret)
	require.NoError(t, err)

	want := Identity{UserID: userID, Role: scheduling.RolePatient}
	handler := AuthMiddleware(testSecret)(identityEcho(t, want))

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_QueryTokenFallback(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token, err := auth.MakeToken(userID.String(), string(scheduling.RolePatient), testSecret)
	require.NoError(t, err)

	want := Identity{UserID: userID, Role: scheduling.RolePatient}
	handler := AuthMiddleware(testSecret)(identityEcho(t, want))

	// WebSocket upgrades cannot carry headers from a browser.
	req := httptest.NewRequest(http.MethodGet, "/ws?access_token="+token, nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	handler := AuthMiddleware(testSecret)(next)

	// No token at all.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token signed with another secret.
	token, err := auth.MakeToken(uuid.NewString(), "PATIENT", "other-secret")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid signature but garbage subject.
	token, err = auth.MakeToken("not-a-uuid", "PATIENT", testSecret)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token, err := auth.MakeToken(userID.String(), string(scheduling.RolePatient), testSecret)
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	patientOnly := AuthMiddleware(testSecret)(RequireRole(scheduling.RolePatient)(ok))
	nutritionistOnly := AuthMiddleware(testSecret)(RequireRole(scheduling.RoleNutritionist)(ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	patientOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	nutritionistOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, GetRequestID(r.Context()))
	}))

	// Generated when absent.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	// Propagated when present.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 2)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different IP has its own budget.
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
