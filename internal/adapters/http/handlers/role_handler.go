package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lawdesk-api/internal/core/services"
	"lawdesk-api/internal/pkg/response"
)

// RoleHandler handles roles and the permission catalogue
type RoleHandler struct {
	roleService       *services.RoleService
	permissionService *services.PermissionService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleService *services.RoleService, permissionService *services.PermissionService) *RoleHandler {
	return &RoleHandler{
		roleService:       roleService,
		permissionService: permissionService,
	}
}

// List handles listing roles
// @Summary List roles
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /roles [get]
func (h *RoleHandler) List(c *fiber.Ctx) error {
	roles, err := h.roleService.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Roles retrieved successfully", roles)
}

// Get handles getting a role with its permissions
// @Summary Get role
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /roles/{id} [get]
func (h *RoleHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	role, err := h.roleService.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Role retrieved successfully", role)
}

// Create handles creating a role
// @Summary Create role
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RoleInput true "Role data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /roles [post]
func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var input services.RoleInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	role, err := h.roleService.Create(c.UserContext(), &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Role created successfully", role)
}

// Update handles updating a role and replacing its permissions
// @Summary Update role
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Param body body services.RoleInput true "Role data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /roles/{id} [put]
func (h *RoleHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input services.RoleInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	role, err := h.roleService.Update(c.UserContext(), id, &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Role updated successfully", role)
}

// Delete handles deleting a role
// @Summary Delete role
// @Description Admin and high level roles, and roles still held by a user, cannot be deleted
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /roles/{id} [delete]
func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.roleService.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Role deleted successfully", nil)
}

// Permissions lists the permission catalogue
// @Summary List permissions
// @Description Every permission; names match API route names
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /permissions [get]
func (h *RoleHandler) Permissions(c *fiber.Ctx) error {
	perms, err := h.permissionService.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Permissions retrieved successfully", perms)
}
