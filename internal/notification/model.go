package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

// Notification is a message delivered to one user, shown in the inbox and
// pushed over the WebSocket topic. Only the read flag ever mutates.
type Notification struct {
	ID              uuid.UUID               `json:"id"`
	From            *scheduling.Participant `json:"from"`
	To              scheduling.Participant  `json:"to"`
	Message         string                  `json:"message"`
	Read            bool                    `json:"read"`
	RelatedEntityID *uuid.UUID              `json:"relatedEntityId"`
	CreatedAt       time.Time               `json:"createdAt"`
}
