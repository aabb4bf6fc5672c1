package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lawdesk-api/internal/core/services"
	"lawdesk-api/internal/pkg/pagination"
	"lawdesk-api/internal/pkg/response"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SyncRolesRequest is the complete set of roles a user should hold
type SyncRolesRequest struct {
	RoleIDs []uint `json:"role_ids"`
}

// SyncPermissionsRequest is the complete set of direct permissions of a user
type SyncPermissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids"`
}

// List handles listing users
// @Summary List users
// @Description Get a paginated list of users, optionally filtered by name or email
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or email"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	page := pagination.GetParams(c)

	users, total, err := h.userService.List(c.UserContext(), c.Query("search"), page)
	if err != nil {
		return response.FromError(c, err)
	}

	return paginated(c, "Users retrieved successfully", users, page, total)
}

// Get handles getting a user by ID
// @Summary Get user by ID
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	user, err := h.userService.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "User retrieved successfully", user)
}

// Create handles creating a user
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	user, err := h.userService.Create(c.UserContext(), &input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "User created successfully", user)
}

// Update handles updating a user
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input services.UpdateUserInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	user, err := h.userService.Update(c.UserContext(), id, &input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "User updated successfully", user)
}

// Delete handles deleting a user
// @Summary Delete user
// @Description Soft delete a user. Users cannot delete themselves.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.userService.Delete(c.UserContext(), id, actor(c).UserID); err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "User deleted successfully", nil)
}

// SyncRoles replaces the roles of a user
// @Summary Sync user roles
// @Description Replace the user's roles with exactly the given set
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SyncRolesRequest true "Role IDs"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/roles [put]
func (h *UserHandler) SyncRoles(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req SyncRolesRequest
	if err := bind(c, &req); err != nil {
		return response.FromError(c, err)
	}

	user, err := h.userService.SyncRoles(c.UserContext(), id, req.RoleIDs)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "User roles updated", user)
}

// SyncPermissions replaces the direct permissions of a user
// @Summary Sync user permissions
// @Description Replace the user's direct permissions with exactly the given set
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SyncPermissionsRequest true "Permission IDs"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/permissions [put]
func (h *UserHandler) SyncPermissions(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req SyncPermissionsRequest
	if err := bind(c, &req); err != nil {
		return response.FromError(c, err)
	}

	user, err := h.userService.SyncPermissions(c.UserContext(), id, req.PermissionIDs)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "User permissions updated", user)
}
