package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-portal/internal/api/dto"
	"github.com/spec-kit/service-portal/internal/auth"
	"github.com/spec-kit/service-portal/internal/service"
	"github.com/spec-kit/service-portal/internal/session"
	apperrors "github.com/spec-kit/service-portal/pkg/util"
)

const (
	msgRequestSubmitted = "Service request submitted."
	msgProfileUpdated   = "Profile updated successfully."
)

// CustomerHandler serves the customer dashboard and its forms.
type CustomerHandler struct {
	accounts *service.AccountService
	requests *service.RequestService
}

// NewCustomerHandler constructs handler.
func NewCustomerHandler(accounts *service.AccountService, requests *service.RequestService) *CustomerHandler {
	return &CustomerHandler{accounts: accounts, requests: requests}
}

// Dashboard GET /customer/dashboard.
func (h *CustomerHandler) Dashboard(c *fiber.Ctx) error {
	principal, err := customerPrincipal(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	customer, err := h.accounts.GetProfile(ctx, principal.Identity.UserID)
	if err != nil {
		return err
	}
	requests, err := h.requests.ListForOwner(ctx, customer.ID)
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusOK, "customer_dashboard", "Dashboard", fiber.Map{
		"Customer": customer,
		"Requests": requests,
	})
}

// NewRequest POST /customer/request/new.
func (h *CustomerHandler) NewRequest(c *fiber.Ctx) error {
	principal, err := customerPrincipal(c)
	if err != nil {
		return err
	}
	var form dto.CreateRequestForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission.")
	}

	_, err = h.requests.Create(c.UserContext(), principal.Identity.UserID, service.CreateRequestInput{
		Title:       form.Title,
		Description: form.Description,
	})
	if err != nil {
		if !flashDomainError(c, err) {
			return err
		}
		return c.Redirect(CustomerDashboardPath, fiber.StatusFound)
	}
	return redirectWithFlash(c, CustomerDashboardPath, session.SeveritySuccess, msgRequestSubmitted)
}

// UpdateProfile POST /customer/profile.
func (h *CustomerHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, err := customerPrincipal(c)
	if err != nil {
		return err
	}
	var form dto.ProfileForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission.")
	}

	user, err := h.accounts.UpdateProfile(c.UserContext(), principal.Identity.UserID, service.ProfileInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		if !flashDomainError(c, err) {
			return err
		}
		return c.Redirect(CustomerDashboardPath, fiber.StatusFound)
	}

	session.FromContext(c).SetName(user.Name)
	return redirectWithFlash(c, CustomerDashboardPath, session.SeveritySuccess, msgProfileUpdated)
}

func customerPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return principal, nil
}
