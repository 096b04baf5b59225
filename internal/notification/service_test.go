package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

type fakeRepo struct {
	stored map[uuid.UUID]*Notification
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stored: make(map[uuid.UUID]*Notification)}
}

func (f *fakeRepo) Insert(_ context.Context, n *Notification) error {
	f.stored[n.ID] = n
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	n, ok := f.stored[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	// Hydrate names as the SQL join would.
	out := *n
	out.To.Name = "Destinatário"
	if out.From != nil {
		from := *out.From
		from.Name = "Remetente"
		out.From = &from
	}
	return &out, nil
}

func (f *fakeRepo) ListByRecipient(_ context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int64, error) {
	var out []Notification
	for _, n := range f.stored {
		if n.To.ID == userID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	n, ok := f.stored[id]
	if !ok || n.To.ID != userID {
		return ErrNotificationNotFound
	}
	n.Read = true
	return nil
}

type capturingPublisher struct {
	published []Notification
}

func (p *capturingPublisher) PublishNotification(_ uuid.UUID, n Notification) {
	p.published = append(p.published, n)
}

func TestNotify_PersistsAndPublishesHydrated(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	pub := &capturingPublisher{}
	svc := NewService(repo, pub)

	from := uuid.New()
	to := uuid.New()
	related := uuid.New()

	err := svc.Notify(context.Background(), &from, to, "Consulta confirmada.", &related)
	require.NoError(t, err)

	require.Len(t, repo.stored, 1)
	require.Len(t, pub.published, 1)

	got := pub.published[0]
	assert.Equal(t, "Consulta confirmada.", got.Message)
	assert.Equal(t, to, got.To.ID)
	assert.Equal(t, "Destinatário", got.To.Name, "push carries the hydrated names")
	require.NotNil(t, got.From)
	assert.Equal(t, scheduling.Participant{ID: from, Name: "Remetente"}, *got.From)
	assert.False(t, got.Read)
}

func TestNotify_SystemOriginHasNoSender(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	pub := &capturingPublisher{}
	svc := NewService(repo, pub)

	err := svc.Notify(context.Background(), nil, uuid.New(), "Lembrete de consulta.", nil)
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	assert.Nil(t, pub.published[0].From)
}

func TestMarkRead_ScopedToRecipient(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := NewService(repo, NopPublisher{})

	to := uuid.New()
	require.NoError(t, svc.Notify(context.Background(), nil, to, "m", nil))

	var id uuid.UUID
	for k := range repo.stored {
		id = k
	}

	err := svc.MarkRead(context.Background(), id, uuid.New())
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	require.NoError(t, svc.MarkRead(context.Background(), id, to))
	assert.True(t, repo.stored[id].Read)
}
