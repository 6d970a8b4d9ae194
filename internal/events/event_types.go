package events

import (
	"time"

	"github.com/spec-kit/service-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCustomerRegistered   EventType = "customer_registered"
	EventCustomerDeleted      EventType = "customer_deleted"
	EventRequestCreated       EventType = "request_created"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestDeleted       EventType = "request_deleted"
)

// AllEventTypes lists every event the services publish.
func AllEventTypes() []EventType {
	return []EventType{
		EventCustomerRegistered,
		EventCustomerDeleted,
		EventRequestCreated,
		EventRequestStatusChanged,
		EventRequestDeleted,
	}
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64       `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID int64       `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CustomerRegisteredPayload payload.
type CustomerRegisteredPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	OwnerID int64  `json:"owner_id"`
	Title   string `json:"title"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OwnerID   int64                `json:"owner_id"`
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
}
