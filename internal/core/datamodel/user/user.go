package user

import "time"

// User is the persistence shape of a directory user. user_id is minted by
// the service, never by the database; user_name carries the global
// uniqueness constraint that backstops concurrent create races.
type User struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	ClientID  string    `gorm:"column:client_id;not null"`
	UserName  string    `gorm:"column:user_name;uniqueIndex;not null"`
	UserEmail string    `gorm:"column:user_email;not null"`
	Password  string    `gorm:"column:user_password;not null"`
	Salt      string    `gorm:"column:user_salt;not null"`
	AuthKey   *string   `gorm:"column:auth_key"`
	Admin     bool      `gorm:"column:user_admin;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}
