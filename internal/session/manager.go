package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/telvanni/user-directory/internal/core/events"
	"github.com/telvanni/user-directory/internal/hasher"
)

// Credentials is the narrow view of a user record the lifecycle manager
// needs to check a login and bind a token.
type Credentials struct {
	UserID   string
	ClientID string
	UserName string
	Salt     string
	Password string
	AuthKey  *string
	Admin    bool
}

// Profile is the non-sensitive projection returned for the caller's own
// session. No password, no salt.
type Profile struct {
	UserID    string `json:"user_id"`
	ClientID  string `json:"client_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// Directory is the slice of the user store the session lifecycle depends
// on. Lookups return (nil, nil) when no user matches.
type Directory interface {
	Credentials(ctx context.Context, userName string) (*Credentials, error)
	ProfileByAuthKey(ctx context.Context, authKey string) (*Profile, error)
	StoreAuthKey(ctx context.Context, userID string, authKey *string) error
}

// Manager drives the login/logout state machine: it checks credentials,
// binds tokens to the cache and to the user's persisted auth_key, and
// resolves tokens for the authentication gate.
type Manager struct {
	directory Directory
	cache     Cache
	ttl       time.Duration
	bus       *events.EventBus
	logger    *slog.Logger
}

func NewManager(directory Directory, cache Cache, ttl time.Duration, bus *events.EventBus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		directory: directory,
		cache:     cache,
		ttl:       ttl,
		bus:       bus,
		logger:    logger,
	}
}

// Login checks user_name + plaintext password and returns the session
// token. Unknown user and wrong password collapse into the same
// ErrInvalidLogin so the response does not leak which case applied.
func (m *Manager) Login(ctx context.Context, userName, password string) (string, error) {
	creds, err := m.directory.Credentials(ctx, userName)
	if err != nil {
		return "", fmt.Errorf("look up credentials: %w", err)
	}
	if creds == nil {
		return "", ErrInvalidLogin
	}
	if !hasher.Verify(creds.Salt, password, creds.Password) {
		return "", ErrInvalidLogin
	}

	token, reused, err := m.resolveToken(ctx, creds)
	if err != nil {
		return "", err
	}

	if err := m.directory.StoreAuthKey(ctx, creds.UserID, &token); err != nil {
		return "", fmt.Errorf("persist auth key: %w", err)
	}

	admin := creds.Admin
	record := &Session{
		UserID:   creds.UserID,
		ClientID: creds.ClientID,
		UserName: creds.UserName,
		Admin:    &admin,
	}
	if err := m.cache.Set(ctx, token, record); err != nil {
		return "", err
	}
	if err := m.cache.Expire(ctx, token, m.ttl); err != nil {
		return "", err
	}

	if m.bus != nil {
		m.bus.Publish(ctx, events.NewSessionOpenedEvent(creds.UserID, creds.ClientID, reused))
	}

	return token, nil
}

// resolveToken reuses the persisted auth_key while the cache still holds a
// live entry for it, otherwise mints a fresh token.
func (m *Manager) resolveToken(ctx context.Context, creds *Credentials) (string, bool, error) {
	if creds.AuthKey != nil && *creds.AuthKey != "" {
		live, err := m.cache.Get(ctx, *creds.AuthKey)
		if err != nil {
			return "", false, err
		}
		if live != nil {
			return *creds.AuthKey, true, nil
		}
	}
	token, err := hasher.NewToken()
	if err != nil {
		return "", false, fmt.Errorf("mint token: %w", err)
	}
	return token, false, nil
}

// Logout destroys the caller's session. It fails with ErrNotLoggedIn when
// no user holds the token or the cache entry already expired.
func (m *Manager) Logout(ctx context.Context, token string) error {
	profile, err := m.directory.ProfileByAuthKey(ctx, token)
	if err != nil {
		return fmt.Errorf("look up session owner: %w", err)
	}
	if profile == nil {
		return ErrNotLoggedIn
	}

	live, err := m.cache.Get(ctx, token)
	if err != nil {
		return err
	}
	if live == nil {
		return ErrNotLoggedIn
	}

	if err := m.cache.Delete(ctx, token); err != nil {
		return err
	}
	if err := m.directory.StoreAuthKey(ctx, profile.UserID, nil); err != nil {
		return fmt.Errorf("clear auth key: %w", err)
	}

	if m.bus != nil {
		m.bus.Publish(ctx, events.NewSessionClosedEvent(profile.UserID))
	}

	return nil
}

// Current resolves the caller's own identity by the auth_key on file.
func (m *Manager) Current(ctx context.Context, token string) (*Profile, error) {
	profile, err := m.directory.ProfileByAuthKey(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("look up session owner: %w", err)
	}
	if profile == nil {
		return nil, ErrNotLoggedIn
	}
	return profile, nil
}

// Resolve looks a token up in the cache for the authentication gate. It
// never touches the user store.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	return m.cache.Get(ctx, token)
}
