package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safaiwalay/dispatch/internal/apperrors"
	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/repository"
	"github.com/safaiwalay/dispatch/internal/service/auth"
)

type CreateParams struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Address  string
	Role     string
}

type UpdateParams struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Role    string
}

type UserService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
	now     func() time.Time
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
		now:     time.Now,
	}
}

// CreateUser creates a user with the given role
// A cleaner profile is created alongside when the role is cleaner
func (s *UserService) CreateUser(ctx context.Context, p CreateParams) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	role := p.Role
	if role == "" {
		role = models.RoleUser
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error
		user, err = st.User().CreateUser(ctx, repository.CreateUserParams{
			Email:          p.Email,
			Name:           p.Name,
			Phone:          p.Phone,
			Address:        p.Address,
			HashedPassword: hash,
			Role:           role,
		})
		if err != nil {
			return err
		}

		if role == models.RoleCleaner {
			_, err = st.Cleaner().CreateCleaner(ctx, user.ID)
		}
		return err
	})
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

// UpdateUser updates profile fields and role (admin operation)
// Switching a user to the cleaner role creates the missing cleaner profile
func (s *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, p UpdateParams) (models.User, error) {
	var user models.User

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error
		user, err = st.User().UpdateUser(ctx, userID, repository.UpdateUserParams{
			Name:    p.Name,
			Email:   p.Email,
			Phone:   p.Phone,
			Address: p.Address,
			Role:    p.Role,
		})
		if err != nil {
			return err
		}

		if user.Role == models.RoleCleaner {
			_, err = st.Cleaner().GetCleanerByUserID(ctx, user.ID)
			if errors.Is(err, apperrors.ErrCleanerNotFound) {
				_, err = st.Cleaner().CreateCleaner(ctx, user.ID)
			}
		}
		return err
	})
	if err != nil {
		return user, err
	}

	return user, nil
}

// GetCleaner returns the cleaner profile backing a user account
// If the user has no profile apperrors.ErrCleanerNotFound is returned
func (s *UserService) GetCleaner(ctx context.Context, userID uuid.UUID) (models.Cleaner, error) {
	return s.storage.Cleaner().GetCleanerByUserID(ctx, userID)
}

func (s *UserService) SoftDeleteUser(ctx context.Context, userID uuid.UUID) error {
	return s.storage.User().SoftDeleteUser(ctx, userID, s.now().UTC())
}

func (s *UserService) RestoreUser(ctx context.Context, userID uuid.UUID) error {
	return s.storage.User().RestoreUser(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context, deleted bool) ([]models.User, error) {
	return s.storage.User().ListUsers(ctx, deleted)
}
