package events

import "time"

// EventType labels security-relevant occurrences in the access pipeline.
type EventType string

const (
	EventLoginSucceeded   EventType = "auth.login_succeeded"
	EventLoginFailed      EventType = "auth.login_failed"
	EventTokenRevoked     EventType = "auth.token_revoked"
	EventPasswordChanged  EventType = "auth.password_changed"
	EventPermissionDenied EventType = "authz.permission_denied"
	EventQuotaExceeded    EventType = "quota.exceeded"
)

// Event is a security event published to subscribers.
type Event struct {
	Type       EventType
	OccurredAt time.Time
	SubjectID  string
	Payload    map[string]any
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType EventType, subjectID string, payload map[string]any) Event {
	return Event{
		Type:       eventType,
		OccurredAt: time.Now(),
		SubjectID:  subjectID,
		Payload:    payload,
	}
}
