package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriagenda/scheduling-portal/internal/notification"
	"github.com/nutriagenda/scheduling-portal/internal/pagination"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

func notificationWithMessage(msg string) notification.Notification {
	return notification.Notification{ID: uuid.New(), Message: msg}
}

func rosterPage(page, size int, total int64) pagination.Page[RosterEntry] {
	content := make([]RosterEntry, 0, size)
	for i := 0; i < size; i++ {
		content = append(content, RosterEntry{
			Patient: scheduling.Participant{ID: uuid.New(), Name: "Paciente"},
			AddedAt: time.Now(),
		})
	}
	return pagination.New(content, page, size, total)
}

func newRosterServer(t *testing.T, total int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/nutritionists/me/patients", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rosterPage(page, size, total))
	}))
}

func testSession(baseURL string) Session {
	return Session{BaseURL: baseURL, Token: "tok", UserID: uuid.New(), Role: "NUTRITIONIST"}
}

func TestStore_FirstPageReplaces(t *testing.T) {
	srv := newRosterServer(t, 5)
	defer srv.Close()

	store := NewStore(NewGateway(srv.Client()))
	sess := testSession(srv.URL)

	require.NoError(t, store.FetchRoster(context.Background(), sess, 0, 2))

	d := store.Roster()
	assert.Equal(t, StatusSucceeded, d.Status)
	assert.Len(t, d.Content, 2)
	assert.Equal(t, 0, d.Page)
	assert.False(t, d.Last)
}

func TestStore_LaterPagesAppend(t *testing.T) {
	srv := newRosterServer(t, 4)
	defer srv.Close()

	store := NewStore(NewGateway(srv.Client()))
	sess := testSession(srv.URL)

	require.NoError(t, store.FetchRoster(context.Background(), sess, 0, 2))
	require.NoError(t, store.FetchRoster(context.Background(), sess, 1, 2))

	d := store.Roster()
	assert.Len(t, d.Content, 4, "page 1 appends to page 0")
	assert.Equal(t, 1, d.Page)
	assert.True(t, d.Last)

	// Re-fetching page 0 replaces instead of appending.
	require.NoError(t, store.FetchRoster(context.Background(), sess, 0, 2))
	assert.Len(t, store.Roster().Content, 2)
}

func TestStore_FailureKeepsExistingContent(t *testing.T) {
	srv := newRosterServer(t, 4)
	store := NewStore(NewGateway(srv.Client()))
	sess := testSession(srv.URL)

	require.NoError(t, store.FetchRoster(context.Background(), sess, 0, 2))
	srv.Close()

	err := store.FetchRoster(context.Background(), sess, 1, 2)
	require.Error(t, err)

	d := store.Roster()
	assert.Equal(t, StatusFailed, d.Status)
	assert.Error(t, d.Err)
	assert.Len(t, d.Content, 2, "failed fetch must not clobber loaded data")
}

func TestStore_ResetClearsAllDomains(t *testing.T) {
	srv := newRosterServer(t, 4)
	defer srv.Close()

	store := NewStore(NewGateway(srv.Client()))
	sess := testSession(srv.URL)

	require.NoError(t, store.FetchRoster(context.Background(), sess, 0, 2))
	store.Reset()

	d := store.Roster()
	assert.Equal(t, StatusIdle, d.Status)
	assert.Empty(t, d.Content)
	assert.NoError(t, d.Err)
}

func TestStore_StaleFetchIsFencedOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rosterPage(0, 2, 2))
	}))
	defer srv.Close()

	store := NewStore(NewGateway(srv.Client()))
	sess := testSession(srv.URL)

	done := make(chan error, 1)
	go func() {
		done <- store.FetchRoster(context.Background(), sess, 0, 2)
	}()

	// Sign out while the fetch is in flight.
	time.Sleep(50 * time.Millisecond)
	store.Reset()
	close(release)
	require.NoError(t, <-done)

	d := store.Roster()
	assert.Equal(t, StatusIdle, d.Status, "stale completion must not resurrect signed-out state")
	assert.Empty(t, d.Content)
}

func TestStore_FetchLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/nutritionists/me/locations", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Location{
			{ID: uuid.New(), IBGEState: "SP", IBGECity: "Campinas", Address: "Rua Barão de Jaguara, 100"},
			{ID: uuid.New(), IBGEState: "SP", IBGECity: "Campinas", Address: "Av. Norte-Sul, 250"},
		})
	}))
	defer srv.Close()

	store := NewStore(NewGateway(srv.Client()))
	sess := testSession(srv.URL)

	require.NoError(t, store.FetchLocations(context.Background(), sess))

	d := store.Locations()
	assert.Equal(t, StatusSucceeded, d.Status)
	require.Len(t, d.Content, 2)
	assert.Equal(t, "Rua Barão de Jaguara, 100", d.Content[0].Address)
	assert.True(t, d.Last)

	// Sign-out clears locations together with the other domains.
	store.Reset()
	d = store.Locations()
	assert.Equal(t, StatusIdle, d.Status)
	assert.Empty(t, d.Content)
}

func TestStore_PushNotificationPrepends(t *testing.T) {
	store := NewStore(NewGateway(nil))

	store.PushNotification(notificationWithMessage("primeira"))
	store.PushNotification(notificationWithMessage("segunda"))

	d := store.Notifications()
	require.Len(t, d.Content, 2)
	assert.Equal(t, "segunda", d.Content[0].Message)
	assert.Equal(t, "primeira", d.Content[1].Message)
}
