// Package client is the Go SDK for the scheduling portal API: stateless
// request wrappers, a per-domain state store, a search debouncer, and a
// WebSocket subscriber for live notifications.
package client

import "github.com/google/uuid"

// Session carries the signed-in identity. It is passed explicitly to every
// call; nothing in the package holds ambient credentials.
type Session struct {
	BaseURL string
	Token   string
	UserID  uuid.UUID
	Role    string
}

func (s Session) Valid() bool {
	return s.BaseURL != "" && s.Token != "" && s.UserID != uuid.Nil
}
