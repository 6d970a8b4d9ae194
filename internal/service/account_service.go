package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-portal/internal/auth"
	"github.com/spec-kit/service-portal/internal/config"
	"github.com/spec-kit/service-portal/internal/domain"
	"github.com/spec-kit/service-portal/internal/events"
	"github.com/spec-kit/service-portal/internal/repository"
	apperrors "github.com/spec-kit/service-portal/pkg/util"
)

const (
	MsgAllFieldsRequired       = "All fields are required."
	MsgEmailRegistered         = "An account with that email already exists."
	MsgCredentialsRequired     = "Email and password are required."
	MsgInvalidCredentials      = "Invalid credentials."
	MsgInvalidAdminCredentials = "Invalid admin credentials."
	MsgNameEmailRequired       = "Name and email are required."
	MsgEmailInUse              = "That email is already in use."
	MsgPasswordTooLong         = "Password must be at most 72 bytes long."
)

// AccountService coordinates registration, login and customer management.
type AccountService struct {
	publisher
	users      repository.UserRepository
	bcryptCost int
	// dummyHash keeps the unknown-email path as slow as a wrong password.
	dummyHash string
}

// AccountDependencies encapsulates repo requirements for the account service.
type AccountDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// RegisterInput is the self-registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// ProfileInput is the customer profile form. An empty Password keeps the current one.
type ProfileInput struct {
	Name     string
	Email    string
	Password string
}

// NewAccountService builds the service.
func NewAccountService(cfg config.AuthConfig, deps AccountDependencies) *AccountService {
	dummy, _ := auth.HashPassword("not-a-real-password", cfg.BcryptCost)
	return &AccountService{
		publisher:  publisher{dispatcher: deps.Dispatcher},
		users:      deps.UserRepo,
		bcryptCost: cfg.BcryptCost,
		dummyHash:  dummy,
	}
}

// Register creates a customer account. It never signs the customer in.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := domain.NormalizeEmail(input.Email)
	if name == "" || email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewValidationError(MsgAllFieldsRequired, nil)
	}
	if auth.PasswordTooLong(input.Password) {
		return nil, apperrors.NewValidationError(MsgPasswordTooLong, nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict(MsgEmailRegistered, nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict(MsgEmailRegistered, nil)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventCustomerRegistered,
		SubjectID: user.ID,
		Actor:     events.Actor{UserID: user.ID, Role: user.Role},
		Payload:   events.CustomerRegisteredPayload{Name: user.Name, Email: user.Email},
	})
	return user, nil
}

// Login authenticates against accounts of the expected role only. Unknown emails and
// wrong passwords produce the same error.
func (s *AccountService) Login(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError(MsgCredentialsRequired, nil)
	}

	invalid := apperrors.NewUnauthorized(MsgInvalidCredentials)
	if role == domain.RoleAdmin {
		invalid = apperrors.NewUnauthorized(MsgInvalidAdminCredentials)
	}

	user, err := s.users.GetByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = auth.ComparePassword(s.dummyHash, password)
			return nil, invalid
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, invalid
	}
	return user, nil
}

// GetProfile loads an account by id.
func (s *AccountService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Account", nil)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes a customer's own name, email and optionally password.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, input ProfileInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := domain.NormalizeEmail(input.Email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError(MsgNameEmailRequired, nil)
	}
	if auth.PasswordTooLong(input.Password) {
		return nil, apperrors.NewValidationError(MsgPasswordTooLong, nil)
	}

	if other, err := s.users.GetByEmail(ctx, email); err == nil {
		if other.ID != userID {
			return nil, apperrors.NewConflict(MsgEmailInUse, nil)
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return nil, apperrors.NewForbidden("only customers can edit their profile")
	}

	user.Name = name
	user.Email = email
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apperrors.NewConflict(MsgEmailInUse, nil)
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("Account", nil)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ListCustomers returns every customer ordered by name.
func (s *AccountService) ListCustomers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleCustomer)
}

// DeleteCustomer removes a customer and all of their requests. Admin rows are never
// matched, so an admin id yields not found.
func (s *AccountService) DeleteCustomer(ctx context.Context, adminID, customerID int64) error {
	if err := s.users.DeleteCustomer(ctx, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Customer", map[string]any{"id": customerID})
		}
		return fmt.Errorf("delete customer: %w", err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventCustomerDeleted,
		SubjectID: customerID,
		Actor:     events.Actor{UserID: adminID, Role: domain.RoleAdmin},
	})
	return nil
}

// EnsureAdmin creates the admin account unless one already exists. It reports whether
// a new account was created.
func (s *AccountService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (*domain.User, bool, error) {
	admins, err := s.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, false, fmt.Errorf("list admins: %w", err)
	}
	if len(admins) > 0 {
		return &admins[0], false, nil
	}

	email := domain.NormalizeEmail(cfg.Email)
	if email == "" || cfg.Password == "" {
		return nil, false, errors.New("admin email and password must be configured")
	}
	if auth.PasswordTooLong(cfg.Password) {
		return nil, false, fmt.Errorf("admin password exceeds %d bytes", auth.MaxPasswordBytes)
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "Admin"
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, false, fmt.Errorf("admin email %s already belongs to a customer account", email)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("lookup admin email: %w", err)
	}

	hash, err := auth.HashPassword(cfg.Password, s.bcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash admin password: %w", err)
	}
	admin := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: domain.RoleAdmin}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	return admin, true, nil
}
