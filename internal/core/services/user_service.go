package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/core/domain"
	"lawdesk-api/internal/pkg/pagination"
	"lawdesk-api/internal/pkg/password"
)

// User service errors
var (
	ErrUserNotFound       = domain.NotFound("user")
	ErrEmailAlreadyExists = domain.Constraint("email already exists")
	ErrCannotDeleteSelf   = domain.Constraint("cannot delete your own account")
	ErrUnknownRole        = domain.Validation("unknown role",
		domain.FieldError{Field: "role_ids", Message: "contains ids that do not exist"})
)

// UserService handles user management business logic
type UserService struct {
	db         *gorm.DB
	userRepo   repositories.UserRepository
	roleRepo   *repositories.RoleRepository
	permRepo   *repositories.PermissionRepository
	bcryptCost int
}

// NewUserService creates a new user service
func NewUserService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	roleRepo *repositories.RoleRepository,
	permRepo *repositories.PermissionRepository,
) *UserService {
	return &UserService{
		db:         db,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		permRepo:   permRepo,
		bcryptCost: password.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost, used by tests
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

// CreateUserInput represents create user input
type CreateUserInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	RoleIDs  []uint `json:"role_ids"`
}

// UpdateUserInput represents update user input
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	IsActive *bool   `json:"is_active"`
}

// List lists users with pagination
func (s *UserService) List(ctx context.Context, search string, page *pagination.Params) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, search, page.Offset, page.Limit)
	if err != nil {
		return nil, 0, domain.Unexpected(err)
	}

	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out, total, nil
}

// Get gets a user by ID
func (s *UserService) Get(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrUserNotFound)
	}
	return user.ToResponse(), nil
}

// Create creates an active user with the given roles
func (s *UserService) Create(ctx context.Context, input *CreateUserInput) (*models.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	hash, err := password.HashWithCost(input.Password, s.bcryptCost)
	if err != nil {
		return nil, domain.Unexpected(err)
	}

	user := &models.User{Name: input.Name, Email: email, Password: hash, IsActive: true}
	err = inTx(ctx, s.db, "user.create", func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		exists, err := users.ExistsByEmail(ctx, email, 0)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailAlreadyExists
		}
		if err := users.Create(ctx, user); err != nil {
			return duplicate(err, ErrEmailAlreadyExists)
		}
		if len(input.RoleIDs) == 0 {
			return nil
		}
		roles, err := s.resolveRoles(ctx, tx, input.RoleIDs)
		if err != nil {
			return err
		}
		return users.ReplaceRoles(ctx, user, roles)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, user.ID)
}

// Update updates profile fields of a user
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrUserNotFound)
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email, id)
			if err != nil {
				return nil, domain.Unexpected(err)
			}
			if exists {
				return nil, ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}
	if input.Password != nil {
		hash, err := password.HashWithCost(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, domain.Unexpected(err)
		}
		user.Password = hash
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, unexpected(duplicate(err, ErrEmailAlreadyExists))
	}
	return user.ToResponse(), nil
}

// Delete soft deletes a user other than the actor
func (s *UserService) Delete(ctx context.Context, id, actorID uint) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return lookup(err, ErrUserNotFound)
	}
	return unexpected(s.userRepo.Delete(ctx, id))
}

// SyncRoles replaces the user's roles with exactly roleIDs. Repeating the
// call with the same ids leaves the same set.
func (s *UserService) SyncRoles(ctx context.Context, id uint, roleIDs []uint) (*models.UserResponse, error) {
	err := inTx(ctx, s.db, "user.sync_roles", func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		user, err := users.GetByID(ctx, id)
		if err != nil {
			return lookup(err, ErrUserNotFound)
		}
		roles, err := s.resolveRoles(ctx, tx, roleIDs)
		if err != nil {
			return err
		}
		return users.ReplaceRoles(ctx, user, roles)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SyncPermissions replaces the user's direct permissions with exactly permissionIDs
func (s *UserService) SyncPermissions(ctx context.Context, id uint, permissionIDs []uint) (*models.UserResponse, error) {
	err := inTx(ctx, s.db, "user.sync_permissions", func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		user, err := users.GetByID(ctx, id)
		if err != nil {
			return lookup(err, ErrUserNotFound)
		}
		ids := uniqueIDs(permissionIDs)
		perms, err := s.permRepo.WithTx(tx).FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(perms) != len(ids) {
			return ErrUnknownPermission
		}
		return users.ReplacePermissions(ctx, user, perms)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *UserService) resolveRoles(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Role, error) {
	ids = uniqueIDs(ids)
	roles, err := s.roleRepo.WithTx(tx).FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(roles) != len(ids) {
		return nil, ErrUnknownRole
	}
	return roles, nil
}
