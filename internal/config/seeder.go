package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/core/domain"
	"lawdesk-api/internal/pkg/password"
)

// adminRoleLevel sits above the bypass level so the seeded role is both
// unrestricted and protected from deletion.
const adminRoleLevel = 10

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg SeedConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	slog.Info("running database seeders")

	role, err := s.seedAdminRole(ctx)
	if err != nil {
		return err
	}
	if err := s.seedAdminUser(ctx, role); err != nil {
		return err
	}

	slog.Info("database seeding completed")
	return nil
}

func (s *Seeder) seedAdminRole(ctx context.Context) (*models.Role, error) {
	role := &models.Role{
		Name:        domain.AdminRoleName,
		Description: "Full access",
		Level:       adminRoleLevel,
	}
	err := s.db.WithContext(ctx).
		Where(models.Role{Name: domain.AdminRoleName}).
		Attrs(role).
		FirstOrCreate(role).Error
	return role, err
}

// seedAdminUser creates the first administrator when none holds the admin
// role yet. Without SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD it does nothing.
func (s *Seeder) seedAdminUser(ctx context.Context, role *models.Role) error {
	email := strings.ToLower(strings.TrimSpace(s.cfg.AdminEmail))
	if email == "" || s.cfg.AdminPassword == "" {
		slog.Warn("admin seed skipped: SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set")
		return nil
	}
	if !password.ValidatePassword(s.cfg.AdminPassword) {
		return errors.New("SEED_ADMIN_PASSWORD is too short")
	}

	db := s.db.WithContext(ctx)

	var holders int64
	if err := db.Table("user_roles").Where("role_id = ?", role.ID).Count(&holders).Error; err != nil {
		return err
	}
	if holders > 0 {
		return nil
	}

	hashed, err := password.Hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		user := &models.User{Email: email}
		err := tx.Where("email = ?", email).
			Attrs(models.User{Name: s.cfg.AdminName, Password: hashed, IsActive: true}).
			FirstOrCreate(user).Error
		if err != nil {
			return err
		}
		if err := tx.Model(user).Association("Roles").Append(role); err != nil {
			return err
		}
		slog.Info("admin user seeded", "email", email)
		return nil
	})
}
