package services

import (
	"context"

	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/core/domain"
)

// Role service errors
var (
	ErrRoleNotFound      = domain.NotFound("role")
	ErrRoleNameTaken     = domain.Validation("invalid role",
		domain.FieldError{Field: "name", Message: "already exists"})
	ErrRoleProtected     = domain.Constraint("this role is protected and cannot be deleted")
	ErrRoleInUse         = domain.Constraint("role is assigned to users and cannot be deleted")
	ErrUnknownPermission = domain.Validation("unknown permission",
		domain.FieldError{Field: "permission_ids", Message: "contains ids that do not exist"})
)

// RoleService manages roles and their permission sets
type RoleService struct {
	db       *gorm.DB
	roleRepo *repositories.RoleRepository
	permRepo *repositories.PermissionRepository
}

// NewRoleService creates a new role service
func NewRoleService(db *gorm.DB, roleRepo *repositories.RoleRepository, permRepo *repositories.PermissionRepository) *RoleService {
	return &RoleService{db: db, roleRepo: roleRepo, permRepo: permRepo}
}

// RoleInput is the payload for creating or updating a role
type RoleInput struct {
	Name          string `json:"name" validate:"required,max=50"`
	Description   string `json:"description" validate:"max=255"`
	Level         int    `json:"level" validate:"gte=0"`
	PermissionIDs []uint `json:"permission_ids"`
}

func (s *RoleService) List(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.roleRepo.List(ctx)
	return roles, unexpected(err)
}

func (s *RoleService) Get(ctx context.Context, id uint) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrRoleNotFound)
	}
	return role, nil
}

// Create creates a role with its permissions in one transaction
func (s *RoleService) Create(ctx context.Context, input *RoleInput) (*models.Role, error) {
	if input.Level < 0 {
		return nil, domain.Validation("invalid role", domain.FieldError{Field: "level", Message: "must not be negative"})
	}

	role := &models.Role{Name: input.Name, Description: input.Description, Level: input.Level}
	err := inTx(ctx, s.db, "role.create", func(tx *gorm.DB) error {
		roles := s.roleRepo.WithTx(tx)

		taken, err := roles.ExistsByName(ctx, input.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrRoleNameTaken
		}

		perms, err := s.resolvePermissions(ctx, tx, input.PermissionIDs)
		if err != nil {
			return err
		}
		if err := roles.Create(ctx, role); err != nil {
			return duplicate(err, ErrRoleNameTaken)
		}
		return roles.ReplacePermissions(ctx, role, perms)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, role.ID)
}

// Update changes a role and replaces its permission set atomically
func (s *RoleService) Update(ctx context.Context, id uint, input *RoleInput) (*models.Role, error) {
	if input.Level < 0 {
		return nil, domain.Validation("invalid role", domain.FieldError{Field: "level", Message: "must not be negative"})
	}

	err := inTx(ctx, s.db, "role.update", func(tx *gorm.DB) error {
		roles := s.roleRepo.WithTx(tx)

		role, err := roles.GetByID(ctx, id)
		if err != nil {
			return lookup(err, ErrRoleNotFound)
		}
		taken, err := roles.ExistsByName(ctx, input.Name, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrRoleNameTaken
		}

		perms, err := s.resolvePermissions(ctx, tx, input.PermissionIDs)
		if err != nil {
			return err
		}

		role.Name = input.Name
		role.Description = input.Description
		role.Level = input.Level
		if err := roles.Update(ctx, role); err != nil {
			return duplicate(err, ErrRoleNameTaken)
		}
		return roles.ReplacePermissions(ctx, role, perms)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a role unless it is protected or still held by a user
func (s *RoleService) Delete(ctx context.Context, id uint) error {
	return inTx(ctx, s.db, "role.delete", func(tx *gorm.DB) error {
		roles := s.roleRepo.WithTx(tx)

		role, err := roles.GetByID(ctx, id)
		if err != nil {
			return lookup(err, ErrRoleNotFound)
		}
		if role.Name == domain.AdminRoleName || role.Level >= domain.ProtectedLevel {
			return ErrRoleProtected
		}

		holders, err := roles.CountHolders(ctx, id)
		if err != nil {
			return err
		}
		if holders > 0 {
			return ErrRoleInUse
		}
		return roles.Delete(ctx, role)
	})
}

func (s *RoleService) resolvePermissions(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Permission, error) {
	ids = uniqueIDs(ids)
	perms, err := s.permRepo.WithTx(tx).FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(perms) != len(ids) {
		return nil, ErrUnknownPermission
	}
	return perms, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
