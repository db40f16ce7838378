package services

import (
	"context"
	"errors"
	"log"
	"time"

	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/adapters/persistence/repositories"
	"club-membership/internal/config"
	"club-membership/internal/pkg/jwt"
	"club-membership/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user account is inactive")
)

// AuthService handles officer authentication
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Login authenticates an officer
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if password.NeedsRehash(user.Password) {
		if hashed, err := password.Hash(input.Password); err == nil {
			user.Password = hashed
			if err := s.userRepo.Update(ctx, user); err != nil {
				log.Printf("⚠️ Failed to upgrade password hash for %s: %v", user.Username, err)
			}
		}
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokenRepo.Create(ctx, s.storedToken(user.ID, tokens.RefreshToken)); err != nil {
		return nil, err
	}
	s.capSessions(ctx, user.ID)

	if err := s.userRepo.TouchLogin(ctx, user.ID, time.Now()); err != nil {
		log.Printf("⚠️ Failed to record login time for %s: %v", user.Username, err)
	}

	log.Printf("✅ User logged in: %s", user.Username)
	return s.respond(user, tokens), nil
}

// RefreshToken rotates the refresh token and issues a new access token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if storedToken.IsRevoked() {
		// a rotated token came back: assume it leaked and end every session of its owner
		if n, err := s.refreshTokenRepo.RevokeAllByUserID(ctx, storedToken.UserID); err == nil {
			log.Printf("🚨 Refresh token reuse for user ID %d, revoked %d sessions", storedToken.UserID, n)
		}
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}
	if storedToken.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokenRepo.Rotate(ctx, storedToken.ID, s.storedToken(user.ID, tokens.RefreshToken)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.Username)
	return s.respond(user, tokens), nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
		return err
	}

	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	n, err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID)
	if err != nil {
		return err
	}

	log.Printf("✅ %d sessions revoked for user ID: %d", n, userID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// storedToken builds the persisted form of a refresh token; only its hash is kept
func (s *AuthService) storedToken(userID uint, refreshToken string) *models.RefreshToken {
	return &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
}

// capSessions revokes the oldest sessions beyond the configured limit
func (s *AuthService) capSessions(ctx context.Context, userID uint) {
	if s.cfg.JWT.MaxSessions <= 0 {
		return
	}
	n, err := s.refreshTokenRepo.RevokeExcess(ctx, userID, s.cfg.JWT.MaxSessions)
	if err != nil {
		log.Printf("⚠️ Failed to cap sessions for user ID %d: %v", userID, err)
		return
	}
	if n > 0 {
		log.Printf("🔒 Revoked %d old sessions for user ID %d", n, userID)
	}
}

func (s *AuthService) respond(user *models.User, tokens *TokenPair) *AuthResponse {
	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	var orgID uint
	if user.OrganizationID != nil {
		orgID = *user.OrganizationID
	}

	accessToken, err := jwt.GenerateAccessToken(jwt.AccessInput{
		UserID:         user.ID,
		OrganizationID: orgID,
		Username:       user.Username,
		Role:           user.Role,
	}, s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
