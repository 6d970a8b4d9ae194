package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/service-portal/internal/config"
	"github.com/spec-kit/service-portal/internal/domain"
)

func TestSessionLoginResetsState(t *testing.T) {
	sess := newSession()
	original := sess.ID()
	sess.Login(&domain.User{ID: 1, Name: "Admin", Role: domain.RoleAdmin})
	sess.AddFlash(SeverityInfo, "hello")

	sess.Login(&domain.User{ID: 2, Name: "Alice", Role: domain.RoleCustomer, Email: "alice@x.com"})

	identity, ok := sess.Identity()
	require.True(t, ok)
	assert.Equal(t, domain.Identity{UserID: 2, Role: domain.RoleCustomer, Name: "Alice"}, identity)
	assert.Empty(t, sess.Flashes(), "flashes from the previous session must not survive a login")
	assert.NotEqual(t, original, sess.ID())
	assert.Contains(t, sess.stale, original)
}

func TestSessionFlashesAreConsumedOnce(t *testing.T) {
	sess := newSession()
	sess.AddFlash(SeverityWarning, "first")
	sess.AddFlash(SeverityDanger, "second")

	flashes := sess.Flashes()
	require.Len(t, flashes, 2)
	assert.Equal(t, Flash{Severity: SeverityWarning, Message: "first"}, flashes[0])
	assert.Nil(t, sess.Flashes())
}

func TestSessionRequeueFlashesKeepsOrder(t *testing.T) {
	sess := newSession()
	sess.AddFlash(SeverityWarning, "first")
	taken := sess.Flashes()
	sess.AddFlash(SeverityInfo, "later")
	sess.dirty = false

	sess.RequeueFlashes(taken)

	assert.True(t, sess.dirty)
	flashes := sess.Flashes()
	require.Len(t, flashes, 2)
	assert.Equal(t, "first", flashes[0].Message)
	assert.Equal(t, "later", flashes[1].Message)
}

func TestSessionSetName(t *testing.T) {
	sess := newSession()
	sess.SetName("ignored")
	assert.False(t, sess.Authenticated())

	sess.Login(&domain.User{ID: 3, Name: "Old", Role: domain.RoleCustomer})
	sess.SetName("New")
	identity, _ := sess.Identity()
	assert.Equal(t, "New", identity.Name)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", Data{Flashes: []Flash{{SeverityInfo, "x"}}}, time.Minute))
	data, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, data.Flashes, 1)

	now = now.Add(2 * time.Minute)
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenManagerRejectsForeignSignature(t *testing.T) {
	ours := NewTokenManager("secret-a", time.Hour)
	theirs := NewTokenManager("secret-b", time.Hour)

	token, _, err := theirs.GenerateToken("sid-1")
	require.NoError(t, err)

	_, err = ours.ParseToken(token)
	assert.Error(t, err)

	token, _, err = ours.GenerateToken("sid-1")
	require.NoError(t, err)
	id, err := ours.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", id)
}

func newTestApp(store Store) (*fiber.App, *Manager) {
	mgr := NewManager(store, config.SessionConfig{Secret: "test", TTLMinutes: 10, CookieName: "sid"}, zap.NewNop())
	app := fiber.New()
	app.Use(mgr.Middleware())
	app.Get("/login", func(c *fiber.Ctx) error {
		FromContext(c).Login(&domain.User{ID: 9, Name: "Alice", Role: domain.RoleCustomer})
		return c.SendStatus(http.StatusNoContent)
	})
	app.Get("/flash", func(c *fiber.Ctx) error {
		FromContext(c).AddFlash(SeveritySuccess, "saved")
		return c.SendStatus(http.StatusNoContent)
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		sess := FromContext(c)
		var parts []string
		if identity, ok := sess.Identity(); ok {
			parts = append(parts, identity.Name)
		}
		for _, f := range sess.Flashes() {
			parts = append(parts, string(f.Severity)+":"+f.Message)
		}
		return c.SendString(strings.Join(parts, ","))
	})
	app.Get("/logout", func(c *fiber.Ctx) error {
		FromContext(c).Clear()
		return c.SendStatus(http.StatusNoContent)
	})
	return app, mgr
}

func sessionCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func get(t *testing.T, app *fiber.App, path string, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestManagerRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	app, mgr := newTestApp(store)

	resp, _ := get(t, app, "/login", nil)
	cookie := sessionCookie(t, resp, mgr.CookieName())
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 1, store.Len())

	_, body := get(t, app, "/whoami", cookie)
	assert.Equal(t, "Alice", body)

	resp, _ = get(t, app, "/logout", cookie)
	assert.Equal(t, 0, store.Len(), "logout must remove the old record")
	cleared := sessionCookie(t, resp, mgr.CookieName())
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	_, body = get(t, app, "/whoami", cookie)
	assert.Empty(t, body, "old cookie must not resurrect the session")
}

func TestManagerFlashSurvivesOneRedirect(t *testing.T) {
	store := NewMemoryStore()
	app, mgr := newTestApp(store)

	resp, _ := get(t, app, "/flash", nil)
	cookie := sessionCookie(t, resp, mgr.CookieName())
	require.NotNil(t, cookie)

	_, body := get(t, app, "/whoami", cookie)
	assert.Equal(t, "success:saved", body)

	_, body = get(t, app, "/whoami", cookie)
	assert.Empty(t, body)
	assert.Equal(t, 0, store.Len(), "an emptied anonymous session is dropped")
}

func TestManagerIgnoresTamperedCookie(t *testing.T) {
	app, mgr := newTestApp(NewMemoryStore())

	_, body := get(t, app, "/whoami", &http.Cookie{Name: mgr.CookieName(), Value: "not-a-token"})
	assert.Empty(t, body)
}
