package repositories

import (
	"context"
	"time"

	"club-membership/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// exemptionRepository implements ExemptionRepository interface
type exemptionRepository struct {
	db *gorm.DB
}

// NewExemptionRepository creates a new exemption repository
func NewExemptionRepository(db *gorm.DB) ExemptionRepository {
	return &exemptionRepository{db: db}
}

// Create creates an exemption
func (r *exemptionRepository) Create(ctx context.Context, exemption *models.Exemption) error {
	return conn(ctx, r.db).Create(exemption).Error
}

// GetByID gets an exemption by ID
func (r *exemptionRepository) GetByID(ctx context.Context, id uint) (*models.Exemption, error) {
	var exemption models.Exemption
	if err := conn(ctx, r.db).Preload("StartSemester").First(&exemption, id).Error; err != nil {
		return nil, err
	}
	return &exemption, nil
}

// GetOpen gets the member's exemption that has not been ended
func (r *exemptionRepository) GetOpen(ctx context.Context, orgID, memberID uint) (*models.Exemption, error) {
	var exemption models.Exemption
	err := conn(ctx, r.db).
		Preload("StartSemester").
		Where("organization_id = ? AND member_id = ?", orgID, memberID).
		Where("ended_at IS NULL").
		Order("id DESC").
		First(&exemption).Error
	if err != nil {
		return nil, err
	}
	return &exemption, nil
}

// End marks an exemption as ended
func (r *exemptionRepository) End(ctx context.Context, id uint, at time.Time) error {
	return conn(ctx, r.db).
		Model(&models.Exemption{}).
		Where("id = ?", id).
		Update("ended_at", &at).Error
}

// ListOpen lists every exemption that has not been ended
func (r *exemptionRepository) ListOpen(ctx context.Context) ([]*models.Exemption, error) {
	var exemptions []*models.Exemption
	err := conn(ctx, r.db).
		Preload("StartSemester").
		Where("ended_at IS NULL").
		Order("id ASC").
		Find(&exemptions).Error
	return exemptions, err
}

// ListByOrganization lists an organization's exemptions, newest first
func (r *exemptionRepository) ListByOrganization(ctx context.Context, orgID uint) ([]*models.Exemption, error) {
	var exemptions []*models.Exemption
	err := conn(ctx, r.db).
		Preload("StartSemester").
		Preload("Member").
		Where("organization_id = ?", orgID).
		Order("id DESC").
		Find(&exemptions).Error
	return exemptions, err
}
