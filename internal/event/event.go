package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeUserRegistered   Type = "user.registered"
	TypeUserLoggedIn     Type = "user.logged_in"
	TypeUserLoginFailed  Type = "user.login_failed"
	TypeUserLoggedOut    Type = "user.logged_out"
	TypeCharacterCreated Type = "character.created"
	TypeCharacterUpdated Type = "character.updated"
	TypeCharacterDeleted Type = "character.deleted"
)

type Actor struct {
	UserID int64  `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Actor     Actor  `json:"actor"`
	Resource  string `json:"resource,omitempty"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
}

func New(t Type, actor Actor, resource string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Actor:     actor,
		Resource:  resource,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
