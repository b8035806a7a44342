package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserCreated   = "user.created"
	EventTypeUserDeleted   = "user.deleted"
	EventTypeSessionOpened = "session.opened"
	EventTypeSessionClosed = "session.closed"
)

type UserCreatedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
	UserName string `json:"user_name"`
	Admin    bool   `json:"user_admin"`
}

func NewUserCreatedEvent(userID, clientID, userName string, admin bool) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"client_id":  clientID,
				"user_name":  userName,
				"user_admin": admin,
			},
		},
		UserID:   userID,
		ClientID: clientID,
		UserName: userName,
		Admin:    admin,
	}
}

type UserDeletedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
}

func NewUserDeletedEvent(userID, clientID string) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":   userID,
				"client_id": clientID,
			},
		},
		UserID:   userID,
		ClientID: clientID,
	}
}

type SessionOpenedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
	Reused   bool   `json:"reused"`
}

// NewSessionOpenedEvent records a login. Reused marks logins that picked up
// a still-live token instead of minting a new one.
func NewSessionOpenedEvent(userID, clientID string, reused bool) *SessionOpenedEvent {
	return &SessionOpenedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionOpened,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":   userID,
				"client_id": clientID,
				"reused":    reused,
			},
		},
		UserID:   userID,
		ClientID: clientID,
		Reused:   reused,
	}
}

type SessionClosedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
}

func NewSessionClosedEvent(userID string) *SessionClosedEvent {
	return &SessionClosedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionClosed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
			},
		},
		UserID: userID,
	}
}
