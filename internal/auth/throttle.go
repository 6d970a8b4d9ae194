package auth

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/spec-kit/service-portal/internal/session"
)

const (
	msgTooManyAttempts = "Too many login attempts. Please try again shortly."
	maxTrackedClients  = 10000
	idleClientTTL      = 15 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginThrottle rate-limits login submissions per client IP.
type LoginThrottle struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientLimiter
	now     func() time.Time
}

// NewLoginThrottle allows perMinute attempts per client with the given burst. A
// non-positive perMinute disables throttling.
func NewLoginThrottle(perMinute, burst int) *LoginThrottle {
	if burst <= 0 {
		burst = 1
	}
	t := &LoginThrottle{
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
	if perMinute > 0 {
		t.limit = rate.Limit(float64(perMinute) / 60.0)
	}
	return t
}

// Allow records an attempt from key and reports whether it may proceed.
func (t *LoginThrottle) Allow(key string) bool {
	if t == nil || t.limit == 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if len(t.clients) >= maxTrackedClients {
		t.pruneLocked(now)
	}
	client, ok := t.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

func (t *LoginThrottle) pruneLocked(now time.Time) {
	for key, client := range t.clients {
		if now.Sub(client.lastSeen) > idleClientTTL {
			delete(t.clients, key)
		}
	}
}

// Handler rejects throttled submissions by redirecting back to the same page.
func (t *LoginThrottle) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if t.Allow(c.IP()) {
			return c.Next()
		}
		session.FromContext(c).AddFlash(session.SeverityDanger, msgTooManyAttempts)
		return c.Redirect(c.Path(), fiber.StatusFound)
	}
}
