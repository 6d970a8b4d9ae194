package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-portal/internal/domain"
	"github.com/spec-kit/service-portal/internal/repository"
	"github.com/spec-kit/service-portal/internal/session"
)

const principalKey = "auth_principal"

const (
	LoginPath      = "/login"
	AdminLoginPath = "/admin/login"
	IndexPath      = "/"

	msgLoginRequired    = "Please log in to access this page."
	msgPermissionDenied = "You do not have permission to access that page."
)

// Principal represents the authenticated caller.
type Principal struct {
	Identity domain.Identity
	User     *domain.User
}

// AuthMiddleware resolves the session identity into a principal.
type AuthMiddleware struct {
	users repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// RequireLogin lets the request through only when the session names an existing user.
// Otherwise it redirects to the login page matching the path with a warning notice.
func (m *AuthMiddleware) RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.FromContext(c)
		identity, ok := sess.Identity()
		if !ok || !sess.Authenticated() {
			return redirectToLogin(c, sess)
		}

		user, err := m.users.GetByID(c.UserContext(), identity.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// the account was deleted while the session was alive
				sess.Clear()
				return redirectToLogin(c, sess)
			}
			return err
		}

		c.Locals(principalKey, &Principal{Identity: identity, User: user})
		return c.Next()
	}
}

// LoginPathFor picks the login entry point for a request path.
func LoginPathFor(path string) string {
	if strings.HasPrefix(path, "/admin") {
		return AdminLoginPath
	}
	return LoginPath
}

func redirectToLogin(c *fiber.Ctx, sess *session.Session) error {
	sess.AddFlash(session.SeverityWarning, msgLoginRequired)
	return c.Redirect(LoginPathFor(c.Path()), fiber.StatusFound)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
