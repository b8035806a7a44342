package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session  Session
	deadline time.Time // zero means no expiry set yet
}

// MemoryCache is an in-process Cache used by the test suites and as a
// single-node development fallback. The clock is injectable so expiry can
// be tested without sleeping.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Test-only hook.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Set(_ context.Context, token string, s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = memoryEntry{session: *s}
	return nil
}

func (c *MemoryCache) Expire(_ context.Context, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[token]
	if !ok {
		return nil
	}
	entry.deadline = c.now().Add(ttl)
	c.entries[token] = entry
	return nil
}

func (c *MemoryCache) Get(_ context.Context, token string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[token]
	if !ok {
		return nil, nil
	}
	if !entry.deadline.IsZero() && !c.now().Before(entry.deadline) {
		delete(c.entries, token)
		return nil, nil
	}
	s := entry.session
	return &s, nil
}

func (c *MemoryCache) Delete(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
	return nil
}
