package repositories

import (
	"context"
	"strings"

	"club-membership/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return conn(ctx, r.db).Create(member).Error
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	if err := conn(ctx, r.db).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	if err := conn(ctx, r.db).Where("email = ?", strings.ToLower(email)).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Update writes the editable profile columns
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return conn(ctx, r.db).
		Model(member).
		Select("first_name", "last_name", "graduation_semester").
		Updates(member).Error
}

// likeEscaper makes user input match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search matches a fragment of the first name, last name or email
func (r *memberRepository) Search(ctx context.Context, query string, limit int) ([]*models.Member, error) {
	var members []*models.Member

	db := conn(ctx, r.db)
	if query != "" {
		pattern := "%" + likeEscaper.Replace(query) + "%"
		db = db.Where("first_name LIKE ? ESCAPE '!' OR last_name LIKE ? ESCAPE '!' OR email LIKE ? ESCAPE '!'",
			pattern, pattern, pattern)
	}

	err := db.Order("last_name ASC, first_name ASC").Limit(limit).Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
