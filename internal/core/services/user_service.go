package services

import (
	"context"
	"errors"
	"log"

	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/core/domain"
	"club-membership/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrOldPasswordWrong    = errors.New("old password is incorrect")
	ErrCannotDeleteSelf    = errors.New("cannot delete your own account")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
	ErrInvalidRole         = errors.New("invalid role")
)

// UserService handles officer account management
type UserService struct {
	userRepo         repositories.UserRepository
	orgRepo          repositories.OrganizationRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	orgRepo repositories.OrganizationRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		orgRepo:          orgRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// endSessions signs the account out everywhere; the access token lives until it expires
func (s *UserService) endSessions(ctx context.Context, userID uint, reason string) {
	n, err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID)
	if err != nil {
		log.Printf("⚠️ Failed to end sessions of user ID %d (%s): %v", userID, reason, err)
		return
	}
	if n > 0 {
		log.Printf("🔒 Ended %d sessions of user ID %d (%s)", n, userID, reason)
	}
}

// CreateOfficerInput represents create officer input
type CreateOfficerInput struct {
	OrganizationID *uint  `json:"organization_id"`
	Username       string `json:"username" validate:"required,min=3,max=50"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	Role           string `json:"role" validate:"required,oneof=OFFICER ADMIN"`
}

// UpdateUserByAdminInput represents update user input (for admin)
type UpdateUserByAdminInput struct {
	OrganizationID *uint   `json:"organization_id"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Role           *string `json:"role" validate:"omitempty,oneof=OFFICER ADMIN"`
	IsActive       *bool   `json:"is_active"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// CreateOfficer creates an officer or admin account
func (s *UserService) CreateOfficer(ctx context.Context, input *CreateOfficerInput) (*models.UserResponse, error) {
	if input.Role != string(domain.RoleOfficer) && input.Role != string(domain.RoleAdmin) {
		return nil, ErrInvalidRole
	}

	if input.OrganizationID != nil {
		if _, err := s.orgRepo.GetByID(ctx, *input.OrganizationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, err
		}
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		OrganizationID: input.OrganizationID,
		Username:       input.Username,
		Email:          input.Email,
		Password:       hashed,
		Role:           input.Role,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// ListUsers lists officer accounts with pagination
func (s *UserService) ListUsers(ctx context.Context, filter repositories.UserFilter, offset, limit int) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*models.UserResponse, len(users))
	for i, user := range users {
		out[i] = user.ToResponse()
	}
	return out, total, nil
}

// GetUserByID gets a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateUserByAdmin updates a user by admin
func (s *UserService) UpdateUserByAdmin(ctx context.Context, id, adminID uint, input *UpdateUserByAdminInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if id == adminID && input.Role != nil {
		return nil, ErrCannotChangeOwnRole
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *input.Email
	}

	if input.Role != nil {
		if *input.Role != string(domain.RoleOfficer) && *input.Role != string(domain.RoleAdmin) {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}

	if input.OrganizationID != nil {
		if _, err := s.orgRepo.GetByID(ctx, *input.OrganizationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, err
		}
		user.OrganizationID = input.OrganizationID
	}

	deactivated := false
	if input.IsActive != nil {
		deactivated = user.IsActive && !*input.IsActive
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if deactivated {
		s.endSessions(ctx, user.ID, "deactivated")
	}

	return user.ToResponse(), nil
}

// DeleteUser soft deletes a user
func (s *UserService) DeleteUser(ctx context.Context, id, adminID uint) error {
	if id == adminID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.endSessions(ctx, id, "deleted")
	return nil
}

// ChangePassword changes the user's own password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.endSessions(ctx, user.ID, "password changed")
	return nil
}
