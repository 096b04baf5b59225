package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriber_RunRejectsInvalidSession(t *testing.T) {
	t.Parallel()

	sub := NewSubscriber(NewStore(NewGateway(nil)))

	err := sub.Run(context.Background(), Session{BaseURL: "http://localhost"})
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSubscriber_StopsWhenTokenRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws", r.URL.Path)
		require.Equal(t, "Bearer expirado", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sub := NewSubscriber(NewStore(NewGateway(srv.Client())))
	sess := Session{BaseURL: srv.URL, Token: "expirado", UserID: uuid.New()}

	done := make(chan error, 1)
	go func() {
		done <- sub.Run(context.Background(), sess)
	}()

	// A rejected token must end the loop instead of retrying every 5s.
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSessionInvalid)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept retrying after the server rejected the token")
	}
}
