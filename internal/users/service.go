package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	mdshared "github.com/stockdesk/stockdesk/internal/masterdata/shared"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, u User) (User, error)
}

// Service handles user business logic.
type Service struct {
	repo      RepositoryPort
	validator *validator.Validate
	cost      int
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validator: mdshared.NewValidator(), cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, for tests and seeding.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// LoadPrincipal resolves the request principal for a session user id.
func (s *Service) LoadPrincipal(ctx context.Context, userID int64) (shared.Principal, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return shared.Principal{}, err
	}
	return shared.Principal{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}, nil
}

// CreateUser validates the form, hashes the password and stores the user.
func (s *Service) CreateUser(ctx context.Context, form Form) (User, error) {
	form.Normalize()
	if err := mdshared.Validate(s.validator, form); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	created, err := s.repo.CreateUser(ctx, User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: string(hash),
		IsAdmin:      form.IsAdmin,
	})
	if errors.Is(err, shared.ErrDuplicate) {
		return User{}, mdshared.FieldErrors{"username": "is already taken"}
	}
	return created, err
}
