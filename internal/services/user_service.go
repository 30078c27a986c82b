package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/auth"
	"fleet-backend/internal/models"
	"fleet-backend/internal/validation"
)

var errInvalidCredentials = apperrors.Validation("invalid email or password")

type UserService struct {
	Users      UserStore
	JWTManager *auth.JWTManager
}

func NewUserService(users UserStore, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Users:      users,
		JWTManager: jwtManager,
	}
}

// Login verifies credentials and issues a token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, errInvalidCredentials
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *UserService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.Users.Get(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.Users.List(ctx)
}

// Delete removes a user. The superadmin account cannot be deleted.
func (s *UserService) Delete(ctx context.Context, id int) error {
	u, err := s.Users.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == models.RoleSuperAdmin {
		return apperrors.BusinessRule("cannot delete the superadmin user")
	}
	return s.Users.Delete(ctx, id)
}

// EnsureBootstrapAdmin creates the superadmin when no users exist yet.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, name, email, password string) error {
	n, err := s.Users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if email == "" || password == "" {
		log.Printf("[Auth] no users and no bootstrap credentials configured")
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u := &models.User{
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return err
	}
	log.Printf("[Auth] bootstrap superadmin %s created", u.Email)
	return nil
}
