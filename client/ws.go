package client

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nutriagenda/scheduling-portal/internal/notification"
	"github.com/nutriagenda/scheduling-portal/internal/ws"
)

const reconnectDelay = 5 * time.Second

var (
	// ErrSessionInvalid is returned when Run is started without a usable
	// session, or when the server rejects the session's token.
	ErrSessionInvalid = errors.New("session is not valid")
)

// Subscriber keeps a WebSocket open to /ws and feeds pushed notifications
// into the store. On any read or dial failure it waits a fixed 5 seconds
// and reconnects, until Close is called or the context ends.
type Subscriber struct {
	store  *Store
	dialer *websocket.Dialer

	mu     sync.Mutex
	cancel context.CancelFunc
	conn   *websocket.Conn
}

func NewSubscriber(store *Store) *Subscriber {
	return &Subscriber{
		store:  store,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Run connects and consumes events until Close, context cancellation, or
// the session stops being valid. It blocks; callers run it in a goroutine.
func (s *Subscriber) Run(ctx context.Context, sess Session) error {
	if !sess.Valid() {
		return ErrSessionInvalid
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	endpoint, err := wsEndpoint(sess.BaseURL)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.consume(ctx, endpoint, sess); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// Close tears the connection down and stops the reconnect loop.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// consume dials and reads until the connection drops. A nil return means
// the caller should reconnect; a rejected token ends the loop for good.
func (s *Subscriber) consume(ctx context.Context, endpoint string, sess Session) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+sess.Token)

	conn, resp, err := s.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return ErrSessionInvalid
		}
		log.Printf("ws dial %s: %v", endpoint, err)
		return nil
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
	}()

	for {
		var event ws.Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() == nil {
				log.Printf("ws read: %v", err)
			}
			return nil
		}

		if event.Type != ws.EventNotification {
			continue
		}

		var n notification.Notification
		if err := json.Unmarshal(event.Data, &n); err != nil {
			log.Printf("ws decode notification: %v", err)
			continue
		}
		s.store.PushNotification(n)
	}
}

// wsEndpoint rewrites the API base URL to its WebSocket counterpart.
func wsEndpoint(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	switch {
	case u.Scheme == "https":
		u.Scheme = "wss"
	case u.Scheme == "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}
