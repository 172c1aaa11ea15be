package models

import "time"

const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEvent is a single lifecycle change broadcast on the user feed.
type UserEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"` // user.created | user.updated | user.deleted
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	User       *User     `json:"user,omitempty"` // nil on delete
}
