package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-portal/internal/domain"
	"github.com/spec-kit/service-portal/internal/events"
	apperrors "github.com/spec-kit/service-portal/pkg/util"
)

func TestCreateAlwaysPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := register(t, f, "Alice", "alice@x.com", "pw1")

	req, err := f.requests.Create(ctx, alice.ID, CreateRequestInput{Title: " Fix sink ", Description: "Leaking"})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.Equal(t, "Fix sink", req.Title)
	assert.Equal(t, alice.ID, req.OwnerID)

	_, err = f.requests.Create(ctx, alice.ID, CreateRequestInput{Title: "x", Description: "  "})
	requireDomainError(t, err, apperrors.CodeValidation, MsgTitleDescriptionRequired)

	mine, err := f.requests.ListForOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Len(t, f.events.ofType(events.EventRequestCreated), 1)
}

func TestListForOwnerIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := register(t, f, "Alice", "alice@x.com", "pw1")
	bob := register(t, f, "Bob", "bob@x.com", "pw2")

	_, err := f.requests.Create(ctx, alice.ID, CreateRequestInput{Title: "A", Description: "a"})
	require.NoError(t, err)
	_, err = f.requests.Create(ctx, bob.ID, CreateRequestInput{Title: "B", Description: "b"})
	require.NoError(t, err)

	mine, err := f.requests.ListForOwner(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "B", mine[0].Title)

	all, err := f.requests.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := register(t, f, "Alice", "alice@x.com", "pw1")
	req, err := f.requests.Create(ctx, alice.ID, CreateRequestInput{Title: "A", Description: "a"})
	require.NoError(t, err)

	_, err = f.requests.UpdateStatus(ctx, 1, req.ID, "Done")
	requireDomainError(t, err, apperrors.CodeValidation, MsgInvalidStatus)
	_, err = f.requests.UpdateStatus(ctx, 1, req.ID, "approved")
	requireDomainError(t, err, apperrors.CodeValidation, MsgInvalidStatus)

	mine, err := f.requests.ListForOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, mine[0].Status)

	_, err = f.requests.UpdateStatus(ctx, 1, 999, "Approved")
	requireDomainError(t, err, apperrors.CodeNotFound, "Request not found.")

	updated, err := f.requests.UpdateStatus(ctx, 1, req.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, updated.Status)

	// any status may follow any other
	_, err = f.requests.UpdateStatus(ctx, 1, req.ID, "Pending")
	require.NoError(t, err)

	changed := f.events.ofType(events.EventRequestStatusChanged)
	require.Len(t, changed, 2)
	payload, ok := changed[0].Payload.(events.RequestStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.RequestStatusPending, payload.OldStatus)
	assert.Equal(t, domain.RequestStatusCompleted, payload.NewStatus)
	assert.Equal(t, alice.ID, payload.OwnerID)
}

func TestDeleteRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := register(t, f, "Alice", "alice@x.com", "pw1")
	req, err := f.requests.Create(ctx, alice.ID, CreateRequestInput{Title: "A", Description: "a"})
	require.NoError(t, err)

	require.NoError(t, f.requests.Delete(ctx, 1, req.ID))
	err = f.requests.Delete(ctx, 1, req.ID)
	requireDomainError(t, err, apperrors.CodeNotFound, "Request not found.")

	assert.Len(t, f.events.ofType(events.EventRequestDeleted), 1)
}
