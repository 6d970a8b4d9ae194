package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-portal/internal/api/dto"
	"github.com/spec-kit/service-portal/internal/auth"
	"github.com/spec-kit/service-portal/internal/service"
	"github.com/spec-kit/service-portal/internal/session"
)

const (
	msgStatusUpdated   = "Request status updated."
	msgRequestDeleted  = "Request deleted."
	msgCustomerDeleted = "Customer deleted."
)

// AdminHandler serves the admin dashboard and its actions.
type AdminHandler struct {
	accounts *service.AccountService
	requests *service.RequestService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(accounts *service.AccountService, requests *service.RequestService) *AdminHandler {
	return &AdminHandler{accounts: accounts, requests: requests}
}

// Dashboard GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	customers, err := h.accounts.ListCustomers(ctx)
	if err != nil {
		return err
	}
	requests, err := h.requests.ListAll(ctx)
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusOK, "admin_dashboard", "Admin dashboard", fiber.Map{
		"Customers": customers,
		"Requests":  requests,
	})
}

// UpdateStatus POST /admin/requests/:id/status.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	requestID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var form dto.StatusForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission.")
	}

	if _, err := h.requests.UpdateStatus(c.UserContext(), adminID(c), requestID, form.Status); err != nil {
		if !flashDomainError(c, err) {
			return err
		}
		return c.Redirect(AdminDashboardPath, fiber.StatusFound)
	}
	return redirectWithFlash(c, AdminDashboardPath, session.SeveritySuccess, msgStatusUpdated)
}

// DeleteRequest POST /admin/requests/:id/delete.
func (h *AdminHandler) DeleteRequest(c *fiber.Ctx) error {
	requestID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.requests.Delete(c.UserContext(), adminID(c), requestID); err != nil {
		if !flashDomainError(c, err) {
			return err
		}
		return c.Redirect(AdminDashboardPath, fiber.StatusFound)
	}
	return redirectWithFlash(c, AdminDashboardPath, session.SeverityInfo, msgRequestDeleted)
}

// DeleteCustomer POST /admin/customers/:id/delete.
func (h *AdminHandler) DeleteCustomer(c *fiber.Ctx) error {
	customerID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.accounts.DeleteCustomer(c.UserContext(), adminID(c), customerID); err != nil {
		if !flashDomainError(c, err) {
			return err
		}
		return c.Redirect(AdminDashboardPath, fiber.StatusFound)
	}
	return redirectWithFlash(c, AdminDashboardPath, session.SeverityInfo, msgCustomerDeleted)
}

func adminID(c *fiber.Ctx) int64 {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.Identity.UserID
	}
	return 0
}
