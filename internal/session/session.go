package session

import (
	"context"
	"errors"
)

// Session is the cached record a token resolves to. Admin is a pointer:
// authorization for fetching a single user branches on whether the
// attribute is present at all, not just on its value, and decisions trust
// this snapshot for the lifetime of the token rather than re-reading the
// store.
type Session struct {
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
	UserName string `json:"user_name"`
	Admin    *bool  `json:"admin,omitempty"`
}

// IsAdmin reports the snapshot admin bit, treating an absent attribute as
// non-admin.
func (s *Session) IsAdmin() bool {
	return s.Admin != nil && *s.Admin
}

// HasAdminAttribute reports whether the admin attribute was present in the
// cached record at all.
func (s *Session) HasAdminAttribute() bool {
	return s.Admin != nil
}

var (
	ErrInvalidLogin = errors.New("invalid user name or password")
	ErrNotLoggedIn  = errors.New("no active session")
)

type ctxKey string

const sessionKey ctxKey = "session"

// NewContext returns a context carrying the resolved session.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session attached by the authentication gate.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}
