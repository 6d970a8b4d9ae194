package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-portal/internal/domain"
	"github.com/spec-kit/service-portal/internal/session"
)

// RequireRole must run after RequireLogin. The role is taken from the stored account, not
// the session. On mismatch it redirects to the index with a danger notice and leaves the
// session untouched.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil || principal.User.Role != role {
			session.FromContext(c).AddFlash(session.SeverityDanger, msgPermissionDenied)
			return c.Redirect(IndexPath, fiber.StatusFound)
		}
		return c.Next()
	}
}

// RequireCustomer guards customer-only routes.
func RequireCustomer() fiber.Handler {
	return RequireRole(domain.RoleCustomer)
}

// RequireAdmin guards admin-only routes.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
