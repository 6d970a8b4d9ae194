package domain

import "time"

// RequestStatus enumerates lifecycle states for service requests. Admins may move a
// request between any two states.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "Pending"
	RequestStatusApproved  RequestStatus = "Approved"
	RequestStatusCompleted RequestStatus = "Completed"
)

// RequestStatuses lists every valid status in display order.
func RequestStatuses() []RequestStatus {
	return []RequestStatus{RequestStatusPending, RequestStatusApproved, RequestStatusCompleted}
}

// ParseRequestStatus validates a raw status value. Matching is exact.
func ParseRequestStatus(raw string) (RequestStatus, bool) {
	for _, status := range RequestStatuses() {
		if string(status) == raw {
			return status, true
		}
	}
	return "", false
}

// ServiceRequest is a customer-submitted work item.
type ServiceRequest struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	Status      RequestStatus
	CreatedAt   time.Time
}

// RequestWithOwner is a request joined with its owner's contact details.
type RequestWithOwner struct {
	ServiceRequest
	OwnerName  string
	OwnerEmail string
}
