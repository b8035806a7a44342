package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/telvanni/user-directory/internal"
	"github.com/telvanni/user-directory/internal/core/events"
	"github.com/telvanni/user-directory/internal/hasher"
	"github.com/telvanni/user-directory/internal/session"
)

// Service owns the authorization policy over user records. Every operation
// takes the caller's resolved session and trusts its admin snapshot; the
// admin bit is never re-read from the store mid-session.
type Service struct {
	repo         Repository
	bus          *events.EventBus
	resourceBase string
	logger       *slog.Logger
}

// NewService wires the user service. resourceBase is the canonical path
// prefix of the users collection, used to build Location headers for
// duplicate-create redirects.
func NewService(repo Repository, bus *events.EventBus, resourceBase string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		bus:          bus,
		resourceBase: resourceBase,
		logger:       logger,
	}
}

func (s *Service) locate(id string) string {
	return s.resourceBase + "/" + id
}

// List returns every user an admin may see, or only the caller's tenant
// for everyone else.
func (s *Service) List(ctx context.Context, caller *session.Session) ([]*User, error) {
	if caller.IsAdmin() {
		users, err := s.repo.List(ctx)
		if err != nil {
			return nil, internal.NewInternalError("list users", err)
		}
		return users, nil
	}

	users, err := s.repo.ListByClient(ctx, caller.ClientID)
	if err != nil {
		return nil, internal.NewInternalError("list users", err)
	}
	return users, nil
}

// Get fetches a single user by id. A session without an admin attribute at
// all is redirected to the canonical resource rather than denied; sessions
// carrying the attribute, true or false, fall through to the lookup.
func (s *Service) Get(ctx context.Context, caller *session.Session, id string) (*User, error) {
	if !caller.HasAdminAttribute() {
		return nil, internal.NewConflictError("see canonical resource", internal.ErrCodeUserNotFound, s.locate(id))
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return nil, internal.NewInternalError("fetch user", err)
	}
	return u, nil
}

// Create inserts a new user. Admin only; the admin picks client_id freely.
// A duplicate user_name is not a hard failure: the caller gets a redirect
// to the record that already exists.
func (s *Service) Create(ctx context.Context, caller *session.Session, dto CreateUserDTO) (*User, error) {
	if !caller.IsAdmin() {
		return nil, internal.NewForbiddenError("admin required", internal.ErrCodeAdminRequired)
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error())
	}

	existing, err := s.repo.FindByName(ctx, dto.UserName)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, internal.NewInternalError("check user name", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("user name already taken", internal.ErrCodeUserExists, s.locate(existing.ID))
	}

	salt, err := hasher.NewSalt()
	if err != nil {
		return nil, internal.NewInternalError("generate salt", err)
	}

	now := time.Now()
	u := &User{
		ID:        uuid.New().String(),
		ClientID:  dto.ClientID,
		Name:      dto.UserName,
		Email:     dto.UserEmail,
		Password:  hasher.Digest(salt, dto.Password),
		Salt:      salt,
		Admin:     dto.Admin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			// lost a create race; point at the row that won
			winner, ferr := s.repo.FindByName(ctx, dto.UserName)
			if ferr == nil && winner != nil {
				return nil, internal.NewConflictError("user name already taken", internal.ErrCodeUserExists, s.locate(winner.ID))
			}
			return nil, internal.NewConflictError("user name already taken", internal.ErrCodeUserExists, s.resourceBase)
		}
		return nil, internal.NewInternalError("create user", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewUserCreatedEvent(u.ID, u.ClientID, u.Name, u.Admin))
	}

	return u, nil
}

// Update mutates email and, when requested, rotates the password. An admin
// targets any user; everyone else only a record in their own tenant, and a
// miss answers not found so the response never confirms that a record
// exists in another tenant.
func (s *Service) Update(ctx context.Context, caller *session.Session, id string, dto UpdateUserDTO) (*User, error) {
	var (
		target *User
		err    error
	)
	if caller.IsAdmin() {
		target, err = s.repo.FindByID(ctx, id)
	} else {
		target, err = s.repo.FindForTenant(ctx, caller.ClientID, id)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return nil, internal.NewInternalError("fetch user", err)
	}

	if !caller.IsAdmin() {
		if dto.OldPassword == nil {
			return nil, internal.NewInvalidCredentialError("old password required", internal.ErrCodeMissingPassword)
		}
		if !hasher.Verify(target.Salt, *dto.OldPassword, target.Password) {
			return nil, internal.NewInvalidCredentialError("old password does not match", internal.ErrCodeWrongPassword)
		}
	}

	if dto.UserEmail != nil {
		target.Email = *dto.UserEmail
	}
	if dto.wantsPasswordChange() {
		target.Password = hasher.Digest(target.Salt, *dto.NewPassword)
	}
	target.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, target); err != nil {
		return nil, internal.NewInternalError("save user", err)
	}

	return target, nil
}

// Delete removes a user record for good. Admin only, and a record flagged
// admin is never deletable, whoever asks.
func (s *Service) Delete(ctx context.Context, caller *session.Session, id string) error {
	if !caller.IsAdmin() {
		return internal.NewForbiddenError("admin required", internal.ErrCodeAdminRequired)
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return internal.NewInternalError("fetch user", err)
	}
	if target.Admin {
		return internal.NewForbiddenError("admin users cannot be deleted", internal.ErrCodeAdminDelete)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("delete user", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewUserDeletedEvent(target.ID, target.ClientID))
	}

	return nil
}
