package services

import (
	"context"
	"errors"
	"log"

	"libraria/internal/adapters/persistence/models"
	"libraria/internal/adapters/persistence/repositories"
	"libraria/internal/core/domain"

	"gorm.io/gorm"
)

var ErrInvalidRole = errors.New("role must be user or worker")

// UserService handles admin user management
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, refreshTokenRepo repositories.RefreshTokenRepository) *UserService {
	return &UserService{userRepo: userRepo, refreshTokenRepo: refreshTokenRepo}
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}

// SetRole changes a user's role. Admins can only be created by seeding or the
// first-user bootstrap, so only user and worker are assignable here.
func (s *UserService) SetRole(ctx context.Context, actor domain.Actor, userID uint, role string) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if role != string(domain.RoleUser) && role != string(domain.RoleWorker) {
		return nil, ErrInvalidRole
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == string(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// Force re-login so the new role lands in fresh tokens
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return nil, err
	}

	log.Printf("✅ Role changed: user %d -> %s by %s", userID, role, actor.Username)

	return user, nil
}

// Deactivate disables a user account and revokes its sessions
func (s *UserService) Deactivate(ctx context.Context, actor domain.Actor, userID uint) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if userID == actor.UserID {
		return domain.ErrInvalidInput
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ User deactivated: %d by %s", userID, actor.Username)

	return nil
}

func (s *UserService) getUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
