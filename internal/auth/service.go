package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/internal/user"
	"github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
)

// UserStorage is the subset of user persistence authentication needs.
type UserStorage interface {
	Create(ctx context.Context, u *user.User) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Service registers accounts and issues sessions
type Service struct {
	users     UserStorage
	passwords Bcrypt
	tokens    *JWTManager
}

// NewService creates a new authentication service
func NewService(users UserStorage, passwords Bcrypt, tokens *JWTManager) *Service {
	return &Service{users: users, passwords: passwords, tokens: tokens}
}

// Register creates a self-service account. New accounts own their
// workspace, so they start as admins with one credit.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*user.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = validation.NormalizeEmail(req.Email)

	var v validation.Collector
	n := validation.RuneLen(req.Name)
	v.Check(n >= 2 && n <= 100, "name", "must be between 2 and 100 characters")
	v.Check(validation.IsEmail(req.Email), "email", "must be a valid email address")
	v.Check(len(req.Password) >= 8, "password", "must be at least 8 characters")
	if err := v.Err(); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &user.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         middleware.RoleAdmin,
		Credits:      1,
	})
	if errors.Is(err, user.ErrEmailAlreadyInUse) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login verifies credentials and returns the user with a signed session token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*user.User, string, error) {
	u, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(req.Email))
	if err != nil {
		return nil, "", err
	}
	if u == nil || !s.passwords.Compare(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// Session validates a token and returns the caller it belongs to
func (s *Service) Session(token string) (*middleware.Identity, error) {
	return s.tokens.Authenticate(token)
}
