package repositories

import (
	"context"

	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
)

// PermissionRepository handles permission data access
type PermissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *PermissionRepository) WithTx(tx *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: tx}
}

// List lists every permission ordered by name
func (r *PermissionRepository) List(ctx context.Context) ([]*models.Permission, error) {
	var perms []*models.Permission
	err := r.db.WithContext(ctx).Order("name ASC").Find(&perms).Error
	return perms, err
}

// FindByIDs returns the permissions among ids that exist
func (r *PermissionRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Permission, error) {
	var perms []models.Permission
	if len(ids) == 0 {
		return perms, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&perms).Error
	return perms, err
}

// FirstOrCreate ensures a permission named name exists.
// created is true when a row was inserted.
func (r *PermissionRepository) FirstOrCreate(ctx context.Context, name, description string) (perm *models.Permission, created bool, err error) {
	perm = &models.Permission{}
	res := r.db.WithContext(ctx).
		Where(models.Permission{Name: name}).
		Attrs(models.Permission{Description: description}).
		FirstOrCreate(perm)
	if res.Error != nil {
		return nil, false, res.Error
	}
	return perm, res.RowsAffected > 0, nil
}
