package session

import (
	"context"
	"time"
)

// Cache is the keyed expiring store mapping an opaque token to its session
// record. Get returns (nil, nil) for an absent or expired token; Delete is
// idempotent. Expiry set through Expire is absolute from the time of the
// call, not sliding.
type Cache interface {
	Set(ctx context.Context, token string, s *Session) error
	Expire(ctx context.Context, token string, ttl time.Duration) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
