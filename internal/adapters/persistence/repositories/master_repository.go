package repositories

import (
	"context"

	"club-membership/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ============================================================
// Organization
// ============================================================

// organizationRepository implements OrganizationRepository interface
type organizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

// Create creates a new organization
func (r *organizationRepository) Create(ctx context.Context, org *models.Organization) error {
	return conn(ctx, r.db).Create(org).Error
}

// GetByID gets an organization by ID
func (r *organizationRepository) GetByID(ctx context.Context, id uint) (*models.Organization, error) {
	var org models.Organization
	if err := conn(ctx, r.db).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// GetByName gets an organization by name
func (r *organizationRepository) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	var org models.Organization
	if err := conn(ctx, r.db).Where("name = ?", name).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// List lists all organizations
func (r *organizationRepository) List(ctx context.Context) ([]*models.Organization, error) {
	var orgs []*models.Organization
	err := conn(ctx, r.db).Order("name ASC").Find(&orgs).Error
	return orgs, err
}

// ============================================================
// Semester
// ============================================================

// semesterRepository implements SemesterRepository interface
type semesterRepository struct {
	db *gorm.DB
}

// NewSemesterRepository creates a new semester repository
func NewSemesterRepository(db *gorm.DB) SemesterRepository {
	return &semesterRepository{db: db}
}

// Create creates a new semester
func (r *semesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	return conn(ctx, r.db).Create(semester).Error
}

// GetByID gets a semester by ID
func (r *semesterRepository) GetByID(ctx context.Context, id uint) (*models.Semester, error) {
	var semester models.Semester
	if err := conn(ctx, r.db).First(&semester, id).Error; err != nil {
		return nil, err
	}
	return &semester, nil
}

// GetByTermCode gets a semester by term code
func (r *semesterRepository) GetByTermCode(ctx context.Context, termCode string) (*models.Semester, error) {
	var semester models.Semester
	if err := conn(ctx, r.db).Where("term_code = ?", termCode).First(&semester).Error; err != nil {
		return nil, err
	}
	return &semester, nil
}

// GetNext gets the semester that starts right after current
func (r *semesterRepository) GetNext(ctx context.Context, current *models.Semester) (*models.Semester, error) {
	var next models.Semester
	err := conn(ctx, r.db).
		Where("start_date > ?", current.StartDate).
		Order("start_date ASC").
		First(&next).Error
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// ListFrom lists semesters starting at start, in start date order
func (r *semesterRepository) ListFrom(ctx context.Context, start *models.Semester, limit int) ([]*models.Semester, error) {
	var semesters []*models.Semester
	err := conn(ctx, r.db).
		Where("start_date >= ?", start.StartDate).
		Order("start_date ASC").
		Limit(limit).
		Find(&semesters).Error
	return semesters, err
}

// List lists all semesters in start date order
func (r *semesterRepository) List(ctx context.Context) ([]*models.Semester, error) {
	var semesters []*models.Semester
	err := conn(ctx, r.db).Order("start_date ASC").Find(&semesters).Error
	return semesters, err
}
