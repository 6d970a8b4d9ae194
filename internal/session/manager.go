package session

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/service-portal/internal/config"
)

const localsKey = "portal_session"

// Manager loads the session for each request and writes it back once the handler chain
// has finished.
type Manager struct {
	store      Store
	tokens     *TokenManager
	cookieName string
	secure     bool
	ttl        time.Duration
	logger     *zap.Logger
}

// NewManager builds a manager over store using the cookie settings in cfg.
func NewManager(store Store, cfg config.SessionConfig, logger *zap.Logger) *Manager {
	name := cfg.CookieName
	if name == "" {
		name = "portal_session"
	}
	return &Manager{
		store:      store,
		tokens:     NewTokenManager(cfg.Secret, cfg.TTL()),
		cookieName: name,
		secure:     cfg.CookieSecure,
		ttl:        cfg.TTL(),
		logger:     logger,
	}
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Middleware attaches the session to the request context and persists changes.
func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := m.load(c)
		c.Locals(localsKey, sess)

		err := c.Next()
		if saveErr := m.save(c, sess); saveErr != nil {
			if err != nil {
				m.logger.Error("session save failed", zap.Error(saveErr))
				return err
			}
			return saveErr
		}
		return err
	}
}

// FromContext returns the request's session. Without the middleware installed a
// detached session is returned and its changes are discarded.
func FromContext(c *fiber.Ctx) *Session {
	if sess, ok := c.Locals(localsKey).(*Session); ok && sess != nil {
		return sess
	}
	sess := newSession()
	c.Locals(localsKey, sess)
	return sess
}

func (m *Manager) load(c *fiber.Ctx) *Session {
	raw := c.Cookies(m.cookieName)
	if raw == "" {
		return newSession()
	}

	id, err := m.tokens.ParseToken(raw)
	if err != nil {
		m.logger.Debug("rejected session cookie", zap.Error(err))
		return newSession()
	}

	data, err := m.store.Load(c.UserContext(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn("session load failed", zap.Error(err))
		}
		return newSession()
	}
	return &Session{id: id, data: *data, persisted: true}
}

func (m *Manager) save(c *fiber.Ctx, sess *Session) error {
	if !sess.dirty {
		return nil
	}
	ctx := c.UserContext()

	for _, id := range sess.stale {
		if err := m.store.Delete(ctx, id); err != nil {
			return err
		}
	}
	sess.stale = nil

	if sess.data.empty() {
		if sess.persisted {
			if err := m.store.Delete(ctx, sess.id); err != nil {
				return err
			}
		}
		c.ClearCookie(m.cookieName)
		sess.persisted = false
		sess.dirty = false
		return nil
	}

	if err := m.store.Save(ctx, sess.id, sess.data, m.ttl); err != nil {
		return err
	}
	token, expiresAt, err := m.tokens.GenerateToken(sess.id)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	sess.persisted = true
	sess.dirty = false
	return nil
}
