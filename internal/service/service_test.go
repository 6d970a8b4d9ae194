package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/service-portal/internal/config"
	"github.com/spec-kit/service-portal/internal/events"
	"github.com/spec-kit/service-portal/internal/repository"
	apperrors "github.com/spec-kit/service-portal/pkg/util"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	store    *repository.MemoryStore
	accounts *AccountService
	requests *RequestService
	events   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	rec := &recorder{}
	for _, eventType := range events.AllEventTypes() {
		dispatcher.Subscribe(eventType, rec.handle)
	}
	return &fixture{
		store: store,
		accounts: NewAccountService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, AccountDependencies{
			UserRepo:   store.Users(),
			Dispatcher: dispatcher,
		}),
		requests: NewRequestService(RequestDependencies{
			RequestRepo: store.Requests(),
			Dispatcher:  dispatcher,
		}),
		events: rec,
	}
}

func requireDomainError(t *testing.T, err error, code, message string) {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	require.Equal(t, code, domainErr.Code)
	require.Equal(t, message, domainErr.Message)
}
