package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

// Publisher pushes a freshly created notification to the recipient's live
// WebSocket topic. The ws package provides the hub-backed implementation.
type Publisher interface {
	PublishNotification(userID uuid.UUID, n Notification)
}

// NopPublisher drops pushes; used where no hub is running (worker, tests).
type NopPublisher struct{}

func (NopPublisher) PublishNotification(uuid.UUID, Notification) {}

type Service struct {
	repo      Repository
	publisher Publisher
}

func NewService(repo Repository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Notify persists a notification and pushes it to the recipient's topic.
// It satisfies the scheduling service's Notifier dependency.
func (s *Service) Notify(ctx context.Context, from *uuid.UUID, to uuid.UUID, message string, relatedEntityID *uuid.UUID) error {
	n := &Notification{
		ID:              uuid.New(),
		Message:         message,
		RelatedEntityID: relatedEntityID,
	}
	n.To.ID = to
	if from != nil {
		n.From = &scheduling.Participant{ID: *from}
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	full, err := s.repo.GetByID(ctx, n.ID)
	if err != nil {
		log.Printf("failed to hydrate notification %s: %v", n.ID, err)
		full = n
	}

	s.publisher.PublishNotification(to, *full)
	return nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int64, error) {
	return s.repo.ListByRecipient(ctx, userID, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}
