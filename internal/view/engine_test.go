package view

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-portal/internal/domain"
	"github.com/spec-kit/service-portal/internal/session"
)

func TestEngineLoadsEmbeddedPages(t *testing.T) {
	engine := New()
	require.NoError(t, engine.Load())

	for _, page := range []string{"login", "register", "customer_dashboard", "admin_dashboard", "error"} {
		assert.Contains(t, engine.pages, page)
	}
	assert.NotContains(t, engine.pages, "layout")
}

func TestEngineRendersFlashesEscaped(t *testing.T) {
	engine := New()
	var buf bytes.Buffer

	err := engine.Render(&buf, "login", fiber.Map{
		"Title":   "Log in",
		"IsAdmin": true,
		"Email":   "",
		"Flashes": []session.Flash{{Severity: session.SeverityDanger, Message: "<b>Invalid admin credentials.</b>"}},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `class="flash flash-danger"`)
	assert.Contains(t, html, "&lt;b&gt;Invalid admin credentials.&lt;/b&gt;")
	assert.Contains(t, html, `action="/admin/login"`)
	assert.Contains(t, html, "Customer login")
}

func TestEngineAdminDashboardMarksCurrentStatus(t *testing.T) {
	engine := New()
	var buf bytes.Buffer

	identity := &domain.Identity{UserID: 1, Role: domain.RoleAdmin, Name: "Admin"}
	err := engine.Render(&buf, "admin_dashboard", fiber.Map{
		"Title":    "Admin dashboard",
		"Identity": identity,
		"Requests": []domain.RequestWithOwner{{
			ServiceRequest: domain.ServiceRequest{ID: 7, Title: "Fix sink", Status: domain.RequestStatusApproved},
			OwnerName:      "Alice",
			OwnerEmail:     "alice@x.com",
		}},
		"Customers": []domain.User{{ID: 2, Name: "Alice", Email: "alice@x.com"}},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Signed in as Admin")
	assert.Contains(t, html, `action="/admin/requests/7/status"`)
	assert.Contains(t, html, `<option value="Approved" selected>`)
	assert.Contains(t, html, `action="/admin/customers/2/delete"`)
}

func TestEngineUnknownPage(t *testing.T) {
	engine := New()
	err := engine.Render(&bytes.Buffer{}, "missing", nil)
	assert.ErrorContains(t, err, `"missing"`)
}

func TestEngineRequiresLayout(t *testing.T) {
	engine := NewFromFS(fstest.MapFS{
		"pages/login.html": {Data: []byte(`{{define "content"}}hi{{end}}`)},
	}, "pages")
	assert.Error(t, engine.Load())
}
