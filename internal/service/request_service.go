package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-portal/internal/domain"
	"github.com/spec-kit/service-portal/internal/events"
	"github.com/spec-kit/service-portal/internal/repository"
	apperrors "github.com/spec-kit/service-portal/pkg/util"
)

const (
	MsgTitleDescriptionRequired = "Title and description are required."
	MsgInvalidStatus            = "Invalid status selected."
)

// RequestService coordinates service request workflows.
type RequestService struct {
	publisher
	requests repository.RequestRepository
}

// RequestDependencies bundles repositories for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	Dispatcher  events.Dispatcher
}

// CreateRequestInput describes request creation payload. There is deliberately no
// status field: new requests always start Pending.
type CreateRequestInput struct {
	Title       string
	Description string
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		publisher: publisher{dispatcher: deps.Dispatcher},
		requests:  deps.RequestRepo,
	}
}

// Create files a new Pending request for ownerID.
func (s *RequestService) Create(ctx context.Context, ownerID int64, input CreateRequestInput) (*domain.ServiceRequest, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError(MsgTitleDescriptionRequired, nil)
	}

	req := &domain.ServiceRequest{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      domain.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestCreated,
		SubjectID: req.ID,
		Actor:     events.Actor{UserID: ownerID, Role: domain.RoleCustomer},
		Payload:   events.RequestCreatedPayload{OwnerID: ownerID, Title: req.Title},
	})
	return req, nil
}

// ListForOwner returns the owner's requests, newest first.
func (s *RequestService) ListForOwner(ctx context.Context, ownerID int64) ([]domain.ServiceRequest, error) {
	return s.requests.ListByOwner(ctx, ownerID)
}

// ListAll returns every request with its owner's name and email, newest first.
func (s *RequestService) ListAll(ctx context.Context) ([]domain.RequestWithOwner, error) {
	return s.requests.ListWithOwners(ctx)
}

// UpdateStatus sets any valid status on an existing request.
func (s *RequestService) UpdateStatus(ctx context.Context, adminID, requestID int64, rawStatus string) (*domain.ServiceRequest, error) {
	status, ok := domain.ParseRequestStatus(strings.TrimSpace(rawStatus))
	if !ok {
		return nil, apperrors.NewValidationError(MsgInvalidStatus, map[string]any{"status": rawStatus})
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, requestID)
	}
	oldStatus := req.Status

	if err := s.requests.UpdateStatus(ctx, requestID, status); err != nil {
		return nil, notFoundOr(err, requestID)
	}
	req.Status = status

	s.publish(ctx, events.Event{
		Type:      events.EventRequestStatusChanged,
		SubjectID: req.ID,
		Actor:     events.Actor{UserID: adminID, Role: domain.RoleAdmin},
		Payload: events.RequestStatusChangedPayload{
			OwnerID:   req.OwnerID,
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return req, nil
}

// Delete removes a request by id.
func (s *RequestService) Delete(ctx context.Context, adminID, requestID int64) error {
	if err := s.requests.Delete(ctx, requestID); err != nil {
		return notFoundOr(err, requestID)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventRequestDeleted,
		SubjectID: requestID,
		Actor:     events.Actor{UserID: adminID, Role: domain.RoleAdmin},
	})
	return nil
}

func notFoundOr(err error, requestID int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("Request", map[string]any{"id": requestID})
	}
	return err
}

type publisher struct {
	dispatcher events.Dispatcher
}

// publish is fire-and-forget: subscriber failures never fail the operation.
func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = p.dispatcher.Publish(ctx, event)
}
