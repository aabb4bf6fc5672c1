// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/pkg/password"
)

// NewDB opens a private in-memory sqlite database with every table migrated
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// Permission creates a permission
func Permission(t *testing.T, db *gorm.DB, name string) *models.Permission {
	t.Helper()
	p := &models.Permission{Name: name}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Role creates a role holding perms
func Role(t *testing.T, db *gorm.DB, name string, level int, perms ...*models.Permission) *models.Role {
	t.Helper()
	role := &models.Role{Name: name, Level: level}
	for _, p := range perms {
		role.Permissions = append(role.Permissions, *p)
	}
	require.NoError(t, db.Create(role).Error)
	return role
}

// User creates an active user holding roles. The password is "secret123".
func User(t *testing.T, db *gorm.DB, email string, roles ...*models.Role) *models.User {
	t.Helper()
	hash, err := password.HashWithCost("secret123", 4)
	require.NoError(t, err)

	user := &models.User{Name: email, Email: email, Password: hash, IsActive: true}
	for _, r := range roles {
		user.Roles = append(user.Roles, *r)
	}
	require.NoError(t, db.Omit("Roles.*").Create(user).Error)
	return user
}

// Process creates an open case owned by responsibleID
func Process(t *testing.T, db *gorm.DB, title string, responsibleID uint) *models.Process {
	t.Helper()
	p := &models.Process{Title: title, Workflow: "judicial", ResponsibleID: responsibleID}
	require.NoError(t, db.Create(p).Error)
	return p
}
