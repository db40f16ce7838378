package repositories

import (
	"context"
	"time"

	"club-membership/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new officer account repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (f UserFilter) scope(db *gorm.DB) *gorm.DB {
	if f.OrganizationID != nil {
		db = db.Where("organization_id = ?", *f.OrganizationID)
	}
	if f.Role != "" {
		db = db.Where("role = ?", f.Role)
	}
	if f.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	return db
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return conn(ctx, r.db).Create(user).Error
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where(query, arg).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return conn(ctx, r.db).Save(user).Error
}

func (r *userRepository) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	return conn(ctx, r.db).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// Delete soft deletes the account
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Delete(&models.User{}, id).Error
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, int64, error) {
	var (
		users []*models.User
		total int64
	)

	q := filter.scope(conn(ctx, r.db).Model(&models.User{}))
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("username ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) exists(ctx context.Context, column, value string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.User{}).Where(column+" = ?", value).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}
