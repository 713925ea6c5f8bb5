package config

import (
	"log"

	"moimhub/internal/adapters/persistence/models"
	"moimhub/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminMember(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminMember seeds a default organization, generation and admin member.
// Development/testing only; production admins are created through a secure
// process.
func (s *Seeder) seedAdminMember() error {
	var count int64
	s.db.Model(&models.Affiliation{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		org := &models.Organization{Name: "Moimhub HQ"}
		if err := tx.Create(org).Error; err != nil {
			return err
		}

		gen := &models.Generation{
			OrganizationID: org.ID,
			Name:           "1기",
			IsPrimary:      true,
		}
		if err := tx.Create(gen).Error; err != nil {
			return err
		}

		admin := &models.Member{
			LoginID:  "admin",
			Name:     "관리자",
			Phone:    "01000000000",
			Password: hashedPassword,
		}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}

		aff := &models.Affiliation{
			MemberID:       admin.ID,
			OrganizationID: org.ID,
			GenerationID:   gen.ID,
			Role:           models.RoleAdmin,
			Status:         models.AffiliationActive,
		}
		if err := tx.Create(aff).Error; err != nil {
			return err
		}

		log.Printf("✅ Admin member created: %s", admin.LoginID)
		return nil
	})
}
