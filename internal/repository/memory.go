package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-portal/internal/domain"
)

// MemoryStore is an in-memory implementation of the repositories. It is safe for
// concurrent use and is intended for tests and local development without Postgres.
// Missing rows are reported with pgx.ErrNoRows so callers treat both stores alike.
type MemoryStore struct {
	mu            sync.RWMutex
	nextUserID    int64
	nextRequestID int64
	users         map[int64]domain.User
	requests      map[int64]domain.ServiceRequest
	now           func() time.Time
}

var _ UserRepository = memoryUsers{}
var _ RequestRepository = memoryRequests{}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextUserID:    1,
		nextRequestID: 1,
		users:         make(map[int64]domain.User),
		requests:      make(map[int64]domain.ServiceRequest),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Users exposes the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Requests exposes the store as a RequestRepository.
func (s *MemoryStore) Requests() RequestRepository { return memoryRequests{s} }

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if !user.Role.Valid() {
		return ErrInvalidRole
	}
	if m.s.emailTakenLocked(user.Email, 0) {
		return ErrDuplicateEmail
	}
	user.ID = m.s.nextUserID
	user.CreatedAt = m.s.now()
	m.s.nextUserID++
	m.s.users[user.ID] = ownedUser(*user)
	return nil
}

func (m memoryUsers) Update(_ context.Context, user *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	existing, ok := m.s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if m.s.emailTakenLocked(user.Email, user.ID) {
		return ErrDuplicateEmail
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.PasswordHash = user.PasswordHash
	m.s.users[user.ID] = ownedUser(existing)
	return nil
}

func (m memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	user, ok := m.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (m memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	for _, user := range m.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m memoryUsers) GetByEmailAndRole(_ context.Context, email string, role domain.Role) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	for _, user := range m.s.users {
		if user.Email == email && user.Role == role {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m memoryUsers) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var result []domain.User
	for _, user := range m.s.users {
		if user.Role == role {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m memoryUsers) DeleteCustomer(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	user, ok := m.s.users[id]
	if !ok || user.Role != domain.RoleCustomer {
		return pgx.ErrNoRows
	}
	for reqID, req := range m.s.requests {
		if req.OwnerID == id {
			delete(m.s.requests, reqID)
		}
	}
	delete(m.s.users, id)
	return nil
}

// ownedUser detaches the strings of u from caller memory. Request values handed out by
// fasthttp are only valid until the request completes.
func ownedUser(u domain.User) domain.User {
	u.Name = strings.Clone(u.Name)
	u.Email = strings.Clone(u.Email)
	u.PasswordHash = strings.Clone(u.PasswordHash)
	return u
}

func (s *MemoryStore) emailTakenLocked(email string, exceptID int64) bool {
	for _, user := range s.users {
		if user.Email == email && user.ID != exceptID {
			return true
		}
	}
	return false
}

type memoryRequests struct{ s *MemoryStore }

func (m memoryRequests) Create(_ context.Context, req *domain.ServiceRequest) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.users[req.OwnerID]; !ok {
		return ErrOwnerNotFound
	}
	req.ID = m.s.nextRequestID
	req.CreatedAt = m.s.now()
	m.s.nextRequestID++
	stored := *req
	stored.Title = strings.Clone(req.Title)
	stored.Description = strings.Clone(req.Description)
	m.s.requests[req.ID] = stored
	return nil
}

func (m memoryRequests) GetByID(_ context.Context, id int64) (*domain.ServiceRequest, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	req, ok := m.s.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &req, nil
}

func (m memoryRequests) ListByOwner(_ context.Context, ownerID int64) ([]domain.ServiceRequest, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var result []domain.ServiceRequest
	for _, req := range m.s.requests {
		if req.OwnerID == ownerID {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return newerFirst(result[i], result[j])
	})
	return result, nil
}

func (m memoryRequests) ListWithOwners(_ context.Context) ([]domain.RequestWithOwner, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	result := make([]domain.RequestWithOwner, 0, len(m.s.requests))
	for _, req := range m.s.requests {
		owner, ok := m.s.users[req.OwnerID]
		if !ok {
			continue
		}
		result = append(result, domain.RequestWithOwner{
			ServiceRequest: req,
			OwnerName:      owner.Name,
			OwnerEmail:     owner.Email,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return newerFirst(result[i].ServiceRequest, result[j].ServiceRequest)
	})
	return result, nil
}

func (m memoryRequests) UpdateStatus(_ context.Context, id int64, status domain.RequestStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	req, ok := m.s.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	req.Status = status
	m.s.requests[id] = req
	return nil
}

func (m memoryRequests) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.requests[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.s.requests, id)
	return nil
}

func newerFirst(a, b domain.ServiceRequest) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
