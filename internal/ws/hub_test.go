package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriagenda/scheduling-portal/internal/notification"
)

func newTestClient(topic string) *Client {
	return &Client{
		ID:    uuid.NewString(),
		Topic: topic,
		Send:  make(chan []byte, 8),
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	userID := uuid.New()
	topic := NotificationTopic(userID)

	c1 := newTestClient(topic)
	c2 := newTestClient(topic)
	hub.Register(c1)
	hub.Register(c2)

	assert.Equal(t, 2, hub.TopicCount(topic))
	assert.Equal(t, 2, hub.ClientCount())

	hub.Unregister(c1)
	assert.Equal(t, 1, hub.TopicCount(topic))

	// Unregistering twice is a no-op.
	hub.Unregister(c1)
	assert.Equal(t, 1, hub.TopicCount(topic))

	hub.Unregister(c2)
	assert.Equal(t, 0, hub.TopicCount(topic))
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_BroadcastReachesOnlyTopicSubscribers(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	alice := uuid.New()
	bob := uuid.New()

	aliceConn := newTestClient(NotificationTopic(alice))
	bobConn := newTestClient(NotificationTopic(bob))
	hub.Register(aliceConn)
	hub.Register(bobConn)

	hub.PublishNotification(alice, notification.Notification{
		ID:      uuid.New(),
		Message: "Nova consulta agendada.",
	})

	select {
	case raw := <-aliceConn.Send:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, EventNotification, event.Type)
		assert.Equal(t, NotificationTopic(alice), event.Topic)

		var n notification.Notification
		require.NoError(t, json.Unmarshal(event.Data, &n))
		assert.Equal(t, "Nova consulta agendada.", n.Message)
	default:
		t.Fatal("expected a message on alice's channel")
	}

	assert.Empty(t, bobConn.Send)
}

func TestHub_BroadcastSkipsFullClient(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	userID := uuid.New()
	topic := NotificationTopic(userID)

	full := &Client{ID: "full", Topic: topic, Send: make(chan []byte)} // no buffer
	ok := newTestClient(topic)
	hub.Register(full)
	hub.Register(ok)

	// Must not block even though one subscriber cannot receive.
	hub.PublishNotification(userID, notification.Notification{ID: uuid.New(), Message: "m"})

	assert.Len(t, ok.Send, 1)
}
