package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-portal/internal/session"
	apperrors "github.com/spec-kit/service-portal/pkg/util"
)

// Render draws a page through the shared layout. Queued flashes are consumed only when
// the page renders, so every notice is shown exactly once.
func Render(c *fiber.Ctx, status int, page, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	sess := session.FromContext(c)
	flashes := sess.Flashes()
	data["Title"] = title
	data["Flashes"] = flashes
	if identity, ok := sess.Identity(); ok {
		data["Identity"] = &identity
	}
	if err := c.Status(status).Render(page, data); err != nil {
		sess.RequeueFlashes(flashes)
		return err
	}
	return nil
}

func redirectWithFlash(c *fiber.Ctx, location string, severity session.Severity, message string) error {
	session.FromContext(c).AddFlash(severity, message)
	return c.Redirect(location, fiber.StatusFound)
}

// flashDomainError queues a notice for errors the user can act on and reports whether it
// did. Everything else belongs to the error middleware.
func flashDomainError(c *fiber.Ctx, err error) bool {
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || !domainErr.Recoverable() {
		return false
	}
	severity := session.SeverityDanger
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		severity = session.SeverityWarning
	}
	session.FromContext(c).AddFlash(severity, domainErr.Message)
	return true
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid identifier.")
	}
	return id, nil
}

// RenderError draws the error page. Queued flashes are left for the next page.
func RenderError(c *fiber.Ctx, status int, message string) error {
	data := fiber.Map{
		"Title":   "Error",
		"Status":  status,
		"Message": message,
	}
	if identity, ok := session.FromContext(c).Identity(); ok {
		data["Identity"] = &identity
	}
	return c.Status(status).Render("error", data)
}
