package services

import (
	"context"
	"log/slog"
	"strings"

	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/adapters/persistence/repositories"
	"lawdesk-api/internal/core/domain"
)

// PermissionService manages the permission catalogue
type PermissionService struct {
	permRepo *repositories.PermissionRepository
}

// NewPermissionService creates a new permission service
func NewPermissionService(permRepo *repositories.PermissionRepository) *PermissionService {
	return &PermissionService{permRepo: permRepo}
}

// List returns every permission
func (s *PermissionService) List(ctx context.Context) ([]*models.Permission, error) {
	perms, err := s.permRepo.List(ctx)
	return perms, unexpected(err)
}

// SyncFromRoutes makes sure a permission exists for every route name.
// Existing permissions are left alone; it returns how many were created.
func (s *PermissionService) SyncFromRoutes(ctx context.Context, names []string) (int, error) {
	seen := make(map[string]struct{}, len(names))
	created := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		_, isNew, err := s.permRepo.FirstOrCreate(ctx, name, describe(name))
		if err != nil {
			return created, domain.Unexpected(err)
		}
		if isNew {
			created++
		}
	}
	if created > 0 {
		slog.InfoContext(ctx, "permissions synced from routes", "created", created, "routes", len(seen))
	}
	return created, nil
}

// describe turns "processes.payments.store" into "processes payments store"
func describe(name string) string {
	return strings.ReplaceAll(name, ".", " ")
}
