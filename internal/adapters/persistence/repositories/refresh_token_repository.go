package repositories

import (
	"context"
	"time"

	"club-membership/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// liveTokens limits a query to tokens that can still be exchanged
func liveTokens(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("revoked_at IS NULL AND expires_at > ?", now)
	}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return conn(ctx, r.db).Create(token).Error
}

func (r *refreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := conn(ctx, r.db).Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// Rotate fails with gorm.ErrRecordNotFound when the spent token was already revoked,
// so two concurrent refreshes of one token cannot both succeed.
func (r *refreshTokenRepository) Rotate(ctx context.Context, spentID uint, next *models.RefreshToken) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", spentID).
			Update("revoked_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(next).Error
	})
}

func (r *refreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	return conn(ctx, r.db).
		Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Update("revoked_at", time.Now()).Error
}

func (r *refreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID uint) (int64, error) {
	res := conn(ctx, r.db).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now())
	return res.RowsAffected, res.Error
}

func (r *refreshTokenRepository) RevokeExcess(ctx context.Context, userID uint, keep int) (int64, error) {
	now := time.Now()
	db := conn(ctx, r.db)

	var keepIDs []uint
	err := db.Model(&models.RefreshToken{}).
		Scopes(liveTokens(now)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(keep).
		Pluck("id", &keepIDs).Error
	if err != nil {
		return 0, err
	}

	q := db.Model(&models.RefreshToken{}).
		Scopes(liveTokens(now)).
		Where("user_id = ?", userID)
	if len(keepIDs) > 0 {
		q = q.Where("id NOT IN ?", keepIDs)
	}
	res := q.Update("revoked_at", now)
	return res.RowsAffected, res.Error
}

// DeleteExpired removes tokens that expired before the cutoff, revoked or not
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := conn(ctx, r.db).Where("expires_at < ?", before).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
