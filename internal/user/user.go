package user

import (
	"context"
	"errors"
	"time"

	userDatamodel "github.com/telvanni/user-directory/internal/core/datamodel/user"
)

// User is the internal domain model. Password and Salt never serialize;
// read endpoints only ever expose the projection fields.
type User struct {
	ID        string    `json:"user_id"`
	ClientID  string    `json:"client_id"`
	Name      string    `json:"user_name"`
	Email     string    `json:"user_email"`
	Password  string    `json:"-"`
	Salt      string    `json:"-"`
	AuthKey   *string   `json:"-"`
	Admin     bool      `json:"user_admin"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ErrDuplicateName is returned by Repository.Create when the user_name
// uniqueness constraint rejects the insert.
var ErrDuplicateName = errors.New("user name already taken")

// ErrNotFound is the sentinel for lookups with no match.
var ErrNotFound = errors.New("user not found")

// Repository is the persistence port for directory users. Lookups return
// (nil, ErrNotFound) when no row matches. All calls take a context so the
// caller can bound store latency.
type Repository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByName(ctx context.Context, name string) (*User, error)
	FindForTenant(ctx context.Context, clientID, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	ListByClient(ctx context.Context, clientID string) ([]*User, error)
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		UserID:    u.ID,
		ClientID:  u.ClientID,
		UserName:  u.Name,
		UserEmail: u.Email,
		Password:  u.Password,
		Salt:      u.Salt,
		AuthKey:   u.AuthKey,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:        u.UserID,
		ClientID:  u.ClientID,
		Name:      u.UserName,
		Email:     u.UserEmail,
		Password:  u.Password,
		Salt:      u.Salt,
		AuthKey:   u.AuthKey,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
