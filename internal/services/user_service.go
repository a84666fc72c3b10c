package services

import (
	"context"
	"fmt"

	"github.com/dentalis/clinica-api/internal/models"
	"github.com/dentalis/clinica-api/internal/repository"
)

// UserService handles staff account management
type UserService struct {
	repo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetUser returns one user by id
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// ListUsers returns a filtered page of users
func (s *UserService) ListUsers(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repo.List(ctx, query)
}

// CreateUser registers a new staff account with a hashed password
func (s *UserService) CreateUser(ctx context.Context, user *models.User, password string) error {
	if user.Email == "" {
		return fmt.Errorf("el correo electrónico es requerido")
	}
	if len(password) < 8 {
		return fmt.Errorf("la contraseña debe tener al menos 8 caracteres")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.EncryptedPassword = hash

	return s.repo.Create(ctx, user)
}

// UpdateUser persists profile changes
func (s *UserService) UpdateUser(ctx context.Context, user *models.User) error {
	current, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return ErrNotFound
	}
	// The password never changes through this path
	user.EncryptedPassword = current.EncryptedPassword

	return s.repo.Update(ctx, user)
}

// ChangePassword verifies the current password and sets a new one
func (s *UserService) ChangePassword(ctx context.Context, id uint, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if !VerifyPassword(currentPassword, user.EncryptedPassword) {
		return ErrInvalidPassword
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("la contraseña debe tener al menos 8 caracteres")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.EncryptedPassword = hash

	return s.repo.Update(ctx, user)
}

// DeactivateUser soft deletes a staff account
func (s *UserService) DeactivateUser(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.SoftDelete(ctx, id)
}
