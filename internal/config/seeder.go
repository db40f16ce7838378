package config

import (
	"fmt"
	"log"
	"strings"

	"club-membership/internal/adapters/persistence/models"
	"club-membership/internal/core/domain"
	"club-membership/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder fills an empty database with accounts and, optionally, a rules file
type Seeder struct {
	db  *gorm.DB
	cfg SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders. Existing accounts and master rows are left alone.
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdmin(); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if s.cfg.RulesFile != "" {
		seed, err := LoadMasterSeedFile(s.cfg.RulesFile)
		if err != nil {
			return err
		}
		if err := SeedMasterData(s.db, seed); err != nil {
			return err
		}
		if err := s.seedOfficers(seed); err != nil {
			return fmt.Errorf("seed officers: %w", err)
		}
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdmin creates the first admin when no admin exists yet
func (s *Seeder) seedAdmin() error {
	var admins int64
	if err := s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&admins).Error; err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	admin := &models.User{
		Username: s.cfg.AdminUsername,
		Email:    s.cfg.AdminUsername + "@club.local",
		Role:     string(domain.RoleAdmin),
		IsActive: true,
	}
	created, err := s.ensureAccount(s.db, admin, s.cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Printf("✅ Admin user created: %s (change the seeded password)", admin.Username)
	}
	return nil
}

// seedOfficers creates the officer accounts listed per organization in the rules file
func (s *Seeder) seedOfficers(seed *MasterSeed) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, o := range seed.Organizations {
			if len(o.Officers) == 0 {
				continue
			}

			var org models.Organization
			if err := tx.Where("name = ?", o.Name).First(&org).Error; err != nil {
				return fmt.Errorf("organization %s: %w", o.Name, err)
			}

			for _, username := range o.Officers {
				username = strings.TrimSpace(username)
				officer := &models.User{
					OrganizationID: &org.ID,
					Username:       username,
					Email:          username + "@club.local",
					Role:           string(domain.RoleOfficer),
					IsActive:       true,
				}
				created, err := s.ensureAccount(tx, officer, s.cfg.OfficerPassword)
				if err != nil {
					return err
				}
				if created {
					log.Printf("   Created officer: %s (%s)", username, o.Name)
				}
			}
		}
		return nil
	})
}

// ensureAccount inserts the account unless its username is taken
func (s *Seeder) ensureAccount(db *gorm.DB, user *models.User, plain string) (bool, error) {
	var existing int64
	if err := db.Unscoped().Model(&models.User{}).Where("username = ?", user.Username).Count(&existing).Error; err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}

	hashed, err := password.Hash(plain)
	if err != nil {
		return false, err
	}
	user.Password = hashed

	if err := db.Create(user).Error; err != nil {
		return false, err
	}
	return true, nil
}
