package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-portal/internal/session"
	"github.com/spec-kit/service-portal/internal/view"
	apperrors "github.com/spec-kit/service-portal/pkg/util"
)

func TestRenderKeepsFlashesWhenPageFails(t *testing.T) {
	var left []session.Flash
	app := fiber.New(fiber.Config{Views: view.New(), Immutable: true})
	app.Get("/", func(c *fiber.Ctx) error {
		sess := session.FromContext(c)
		sess.AddFlash(session.SeveritySuccess, "Request submitted.")

		err := Render(c, fiber.StatusOK, "missing", "Broken", nil)
		left = sess.Flashes()
		if err != nil {
			return c.SendString("render failed")
		}
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "render failed", string(body))
	require.Len(t, left, 1)
	assert.Equal(t, session.Flash{Severity: session.SeveritySuccess, Message: "Request submitted."}, left[0])
}

func TestRenderConsumesFlashesOnSuccess(t *testing.T) {
	var left []session.Flash
	app := fiber.New(fiber.Config{Views: view.New(), Immutable: true})
	app.Get("/", func(c *fiber.Ctx) error {
		sess := session.FromContext(c)
		sess.AddFlash(session.SeverityInfo, "You have been logged out.")
		if err := Render(c, fiber.StatusOK, pageLogin, titleLogin, nil); err != nil {
			return err
		}
		left = sess.Flashes()
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "You have been logged out.")
	assert.Empty(t, left)
}

func TestFlashDomainErrorSeverity(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		handled  bool
		severity session.Severity
	}{
		{"not found", apperrors.NewNotFound("Request", nil), true, session.SeverityWarning},
		{"validation", apperrors.NewValidationError("Title and description are required.", nil), true, session.SeverityDanger},
		{"plain", errors.New("boom"), false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var handled bool
			var flashes []session.Flash
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				handled = flashDomainError(c, tc.err)
				flashes = session.FromContext(c).Flashes()
				return nil
			})

			_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.handled, handled)
			if !tc.handled {
				assert.Empty(t, flashes)
				return
			}
			require.Len(t, flashes, 1)
			assert.Equal(t, tc.severity, flashes[0].Severity)
		})
	}
}
