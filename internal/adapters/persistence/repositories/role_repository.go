package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lawdesk-api/internal/adapters/persistence/models"
)

// RoleRepository handles role data access
type RoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *RoleRepository) WithTx(tx *gorm.DB) *RoleRepository {
	return &RoleRepository{db: tx}
}

func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(role).Error
}

// GetByID gets a role with its permissions
func (r *RoleRepository) GetByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Preload("Permissions").First(&role, id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByIDs returns the roles among ids that exist
func (r *RoleRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Role, error) {
	var roles []models.Role
	if len(ids) == 0 {
		return roles, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&roles).Error
	return roles, err
}

// List lists every role with its permissions
func (r *RoleRepository) List(ctx context.Context) ([]*models.Role, error) {
	var roles []*models.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		Order("level DESC, name ASC").
		Find(&roles).Error
	return roles, err
}

// ExistsByName checks if another role already uses name
func (r *RoleRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Role{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// Update saves role columns, never associations
func (r *RoleRepository) Update(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(role).Error
}

// ReplacePermissions sets the role's permissions to exactly perms
func (r *RoleRepository) ReplacePermissions(ctx context.Context, role *models.Role, perms []models.Permission) error {
	assoc := r.db.WithContext(ctx).Model(role).Association("Permissions")
	if len(perms) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(perms)
}

// CountHolders counts live users holding the role
func (r *RoleRepository) CountHolders(ctx context.Context, roleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("user_roles").
		Joins("JOIN users ON users.id = user_roles.user_id AND users.deleted_at IS NULL").
		Where("user_roles.role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

// Delete removes the role and its permission links
func (r *RoleRepository) Delete(ctx context.Context, role *models.Role) error {
	if err := r.db.WithContext(ctx).Model(role).Association("Permissions").Clear(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(role).Error
}
