package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

// Common errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailAlreadyInUse = errors.New("email already in use")
)

// Store is the persistence the user service needs
type Store interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]*User, int, error)
	UpdateManaged(ctx context.Context, id, adminID uuid.UUID, req *UpdateUserRequest) (*User, error)
	DeleteManaged(ctx context.Context, id, adminID uuid.UUID) (bool, error)
}

// Passwords hashes passwords and issues temporary ones
type Passwords interface {
	Hash(password string) (string, error)
	Temporary() (string, error)
}

// Service handles user business logic
type Service struct {
	repo      Store
	passwords Passwords
}

// NewService creates a new user service with its dependencies injected
func NewService(repo Store, passwords Passwords) *Service {
	return &Service{repo: repo, passwords: passwords}
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// CreateManaged creates a user owned by the calling admin. The generated
// temporary password is returned once and never stored in clear text.
func (s *Service) CreateManaged(ctx context.Context, adminID uuid.UUID, req *CreateUserRequest) (*User, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = validation.NormalizeEmail(req.Email)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))

	var v validation.Collector
	n := validation.RuneLen(req.Name)
	v.Check(n >= 2 && n <= 100, "name", "must be between 2 and 100 characters")
	v.Check(validation.IsEmail(req.Email), "email", "must be a valid email address")
	v.Check(middleware.ValidRole(req.Role), "role", "must be one of admin, manager, viewer")
	if err := v.Err(); err != nil {
		return nil, "", err
	}

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailAlreadyInUse
	}

	temp, err := s.passwords.Temporary()
	if err != nil {
		return nil, "", err
	}
	hash, err := s.passwords.Hash(temp)
	if err != nil {
		return nil, "", err
	}

	created, err := s.repo.Create(ctx, &User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		AdminID:      &adminID,
		Credits:      1,
	})
	if err != nil {
		return nil, "", err
	}

	return created, temp, nil
}

// ListManaged retrieves the users an admin created, with pagination
func (s *Service) ListManaged(ctx context.Context, adminID uuid.UUID, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByAdmin(ctx, adminID, perPage, offset)
}

// UpdateManaged changes name or role of a user the admin owns
func (s *Service) UpdateManaged(ctx context.Context, adminID, id uuid.UUID, req *UpdateUserRequest) (*User, error) {
	var v validation.Collector
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
		n := validation.RuneLen(name)
		v.Check(n >= 2 && n <= 100, "name", "must be between 2 and 100 characters")
	}
	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		req.Role = &role
		v.Check(middleware.ValidRole(role), "role", "must be one of admin, manager, viewer")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	u, err := s.repo.UpdateManaged(ctx, id, adminID, req)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// DeleteManaged removes a user the admin owns
func (s *Service) DeleteManaged(ctx context.Context, adminID, id uuid.UUID) error {
	found, err := s.repo.DeleteManaged(ctx, id, adminID)
	if err != nil {
		return err
	}
	if !found {
		return ErrUserNotFound
	}
	return nil
}
