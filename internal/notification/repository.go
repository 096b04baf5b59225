package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Repository interface {
	Insert(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByRecipient(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int64, error)
	// MarkRead flips the read flag; it returns ErrNotificationNotFound
	// when id does not belong to userID.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}
