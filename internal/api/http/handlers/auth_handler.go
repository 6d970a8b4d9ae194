package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-portal/internal/api/dto"
	"github.com/spec-kit/service-portal/internal/auth"
	"github.com/spec-kit/service-portal/internal/domain"
	"github.com/spec-kit/service-portal/internal/service"
	"github.com/spec-kit/service-portal/internal/session"
)

const (
	CustomerDashboardPath = "/customer/dashboard"
	AdminDashboardPath    = "/admin/dashboard"

	msgRegistered   = "Registration successful. Please log in."
	msgWelcomeBack  = "Welcome back!"
	msgAdminWelcome = "Admin login successful."
	msgLoggedOut    = "You have been logged out."
	titleRegister   = "Register"
	titleLogin      = "Log in"
	titleAdminLogin = "Admin login"
	pageLogin       = "login"
	pageRegister    = "register"
)

// AuthHandler serves registration, both login entry points and logout.
type AuthHandler struct {
	accounts *service.AccountService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Index GET / sends each role to its dashboard and everyone else to the login page.
func (h *AuthHandler) Index(c *fiber.Ctx) error {
	identity, ok := session.FromContext(c).Identity()
	switch {
	case ok && identity.Role == domain.RoleAdmin:
		return c.Redirect(AdminDashboardPath, fiber.StatusFound)
	case ok && identity.Role == domain.RoleCustomer:
		return c.Redirect(CustomerDashboardPath, fiber.StatusFound)
	}
	return c.Redirect(auth.LoginPath, fiber.StatusFound)
}

// ShowRegister GET /register.
func (h *AuthHandler) ShowRegister(c *fiber.Ctx) error {
	return Render(c, fiber.StatusOK, pageRegister, titleRegister, fiber.Map{"Name": "", "Email": ""})
}

// Register POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var form dto.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission.")
	}

	_, err := h.accounts.Register(c.UserContext(), service.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		if !flashDomainError(c, err) {
			return err
		}
		return Render(c, fiber.StatusOK, pageRegister, titleRegister, fiber.Map{
			"Name":  form.Name,
			"Email": form.Email,
		})
	}
	return redirectWithFlash(c, auth.LoginPath, session.SeveritySuccess, msgRegistered)
}

// ShowLogin GET /login.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return renderLogin(c, false, "")
}

// Login POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	return h.login(c, domain.RoleCustomer)
}

// ShowAdminLogin GET /admin/login.
func (h *AuthHandler) ShowAdminLogin(c *fiber.Ctx) error {
	return renderLogin(c, true, "")
}

// AdminLogin POST /admin/login.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	return h.login(c, domain.RoleAdmin)
}

// Logout GET /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess := session.FromContext(c)
	sess.Clear()
	return redirectWithFlash(c, auth.LoginPath, session.SeverityInfo, msgLoggedOut)
}

func (h *AuthHandler) login(c *fiber.Ctx, role domain.Role) error {
	isAdmin := role == domain.RoleAdmin
	var form dto.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission.")
	}

	user, err := h.accounts.Login(c.UserContext(), form.Email, form.Password, role)
	if err != nil {
		if !flashDomainError(c, err) {
			return err
		}
		return renderLogin(c, isAdmin, form.Email)
	}

	session.FromContext(c).Login(user)
	if isAdmin {
		return redirectWithFlash(c, AdminDashboardPath, session.SeveritySuccess, msgAdminWelcome)
	}
	return redirectWithFlash(c, CustomerDashboardPath, session.SeveritySuccess, msgWelcomeBack)
}

func renderLogin(c *fiber.Ctx, isAdmin bool, email string) error {
	title := titleLogin
	if isAdmin {
		title = titleAdminLogin
	}
	return Render(c, fiber.StatusOK, pageLogin, title, fiber.Map{
		"IsAdmin": isAdmin,
		"Email":   email,
	})
}
