package session

import (
	"github.com/google/uuid"

	"github.com/spec-kit/service-portal/internal/domain"
)

// Severity tags a flash notice.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Flash is a one-time notice shown on the next rendered page.
type Flash struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Data is the persisted part of a session.
type Data struct {
	Identity *domain.Identity `json:"identity,omitempty"`
	Flashes  []Flash          `json:"flashes,omitempty"`
}

func (d Data) empty() bool {
	return d.Identity == nil && len(d.Flashes) == 0
}

func (d Data) clone() Data {
	out := Data{}
	if d.Identity != nil {
		id := *d.Identity
		out.Identity = &id
	}
	if len(d.Flashes) > 0 {
		out.Flashes = append([]Flash(nil), d.Flashes...)
	}
	return out
}

// Session is the per-client state for one request. It is not safe for concurrent use;
// each request gets its own copy.
type Session struct {
	id        string
	data      Data
	persisted bool
	dirty     bool
	stale     []string
}

func newSession() *Session {
	return &Session{id: uuid.NewString()}
}

// ID returns the current session id.
func (s *Session) ID() string {
	return s.id
}

// Identity returns the signed-in user, if any.
func (s *Session) Identity() (domain.Identity, bool) {
	if s.data.Identity == nil {
		return domain.Identity{}, false
	}
	return *s.data.Identity, true
}

// Authenticated reports whether a user id is present.
func (s *Session) Authenticated() bool {
	return s.data.Identity != nil && s.data.Identity.UserID != 0
}

// Clear drops every value, pending flashes included, and moves the session to a new id.
func (s *Session) Clear() {
	s.stale = append(s.stale, s.id)
	s.id = uuid.NewString()
	s.data = Data{}
	s.persisted = false
	s.dirty = true
}

// Login resets the session and stores exactly the identity of user.
func (s *Session) Login(user *domain.User) {
	s.Clear()
	identity := domain.IdentityOf(user)
	s.data.Identity = &identity
}

// SetName refreshes the cached display name.
func (s *Session) SetName(name string) {
	if s.data.Identity == nil || s.data.Identity.Name == name {
		return
	}
	s.data.Identity.Name = name
	s.dirty = true
}

// AddFlash queues a notice for the next render.
func (s *Session) AddFlash(severity Severity, message string) {
	s.data.Flashes = append(s.data.Flashes, Flash{Severity: severity, Message: message})
	s.dirty = true
}

// Flashes returns queued notices and discards them.
func (s *Session) Flashes() []Flash {
	if len(s.data.Flashes) == 0 {
		return nil
	}
	flashes := s.data.Flashes
	s.data.Flashes = nil
	s.dirty = true
	return flashes
}

// RequeueFlashes puts notices taken by Flashes back ahead of anything queued since.
func (s *Session) RequeueFlashes(flashes []Flash) {
	if len(flashes) == 0 {
		return
	}
	s.data.Flashes = append(append([]Flash(nil), flashes...), s.data.Flashes...)
	s.dirty = true
}
