package events

import (
	"time"

	"github.com/spec-kit/user-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated     EventType = "user_created"
	EventUserUpdated     EventType = "user_updated"
	EventUserActivated   EventType = "user_activated"
	EventUserDeactivated EventType = "user_deactivated"
	EventUserDeleted     EventType = "user_deleted"
	EventUserLoginFailed EventType = "user_login_failed"
)

// AllEventTypes lists every user lifecycle event.
var AllEventTypes = []EventType{
	EventUserCreated,
	EventUserUpdated,
	EventUserActivated,
	EventUserDeactivated,
	EventUserDeleted,
	EventUserLoginFailed,
}

// Actor identifies the caller that triggered an event. An empty ActorID means
// the operation was unauthenticated (registration, login).
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"rol,omitempty"`
}

// ActorFromClaims builds an Actor from optional session claims.
func ActorFromClaims(claims *domain.Claims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{UserID: claims.ID, Role: claims.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"rol"`
}

// UserUpdatedPayload lists the fields that were written.
type UserUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// LoginFailedPayload payload. Only the attempted email is recorded.
type LoginFailedPayload struct {
	Email string `json:"email"`
}
