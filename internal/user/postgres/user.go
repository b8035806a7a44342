package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	userDatamodel "github.com/telvanni/user-directory/internal/core/datamodel/user"
	"github.com/telvanni/user-directory/internal/session"
	"github.com/telvanni/user-directory/internal/user"
)

// UserRepository implements user.Repository and the session.Directory port
// on top of GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.first(ctx, "user_id = ?", id)
}

func (r *UserRepository) FindByName(ctx context.Context, name string) (*user.User, error) {
	return r.first(ctx, "user_name = ?", name)
}

func (r *UserRepository) FindForTenant(ctx context.Context, clientID, id string) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Where("user_id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	var rows []userDatamodel.User
	if err := r.db.WithContext(ctx).Order("user_name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *UserRepository) ListByClient(ctx context.Context, clientID string) ([]*user.User, error) {
	var rows []userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("user_name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// Create inserts a new record. The unique index on user_name is the only
// backstop against concurrent duplicate creation; a violation surfaces as
// user.ErrDuplicateName.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.db.WithContext(ctx).Create(user.ToDataModel(u)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.ErrDuplicateName
		}
		return err
	}
	return nil
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Save(user.ToDataModel(u)).Error
}

// Delete removes the row physically; there is no soft delete.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Delete(&userDatamodel.User{}).Error
}

// Credentials implements session.Directory.
func (r *UserRepository) Credentials(ctx context.Context, userName string) (*session.Credentials, error) {
	u, err := r.FindByName(ctx, userName)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session.Credentials{
		UserID:   u.ID,
		ClientID: u.ClientID,
		UserName: u.Name,
		Salt:     u.Salt,
		Password: u.Password,
		AuthKey:  u.AuthKey,
		Admin:    u.Admin,
	}, nil
}

// ProfileByAuthKey implements session.Directory.
func (r *UserRepository) ProfileByAuthKey(ctx context.Context, authKey string) (*session.Profile, error) {
	u, err := r.first(ctx, "auth_key = ?", authKey)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session.Profile{
		UserID:    u.ID,
		ClientID:  u.ClientID,
		UserName:  u.Name,
		UserEmail: u.Email,
	}, nil
}

// StoreAuthKey implements session.Directory. A nil key clears the column.
func (r *UserRepository) StoreAuthKey(ctx context.Context, userID string, authKey *string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("user_id = ?", userID).
		Update("auth_key", authKey).Error
}

func fromRows(rows []userDatamodel.User) []*user.User {
	users := make([]*user.User, len(rows))
	for i := range rows {
		users[i] = user.FromDataModel(&rows[i])
	}
	return users
}
