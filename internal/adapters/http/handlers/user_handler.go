package handlers

import (
	"errors"
	"strconv"

	"libraria/internal/adapters/http/middleware"
	"libraria/internal/adapters/persistence/models"
	"libraria/internal/core/domain"
	"libraria/internal/core/services"
	"libraria/internal/pkg/pagination"
	"libraria/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles admin user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers handles listing all users (Admin only)
// @Summary List all users
// @Description Get a paginated list of all users (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.userService.ListUsers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	items := make([]*models.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, user.ToResponse())
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(items, params, total))
}

// SetRoleRequest represents set role request body
type SetRoleRequest struct {
	Role string `json:"role"`
}

// SetRole handles changing a user's role (Admin only)
// @Summary Set user role
// @Description Promote or demote a user between user and worker (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetRoleRequest true "Role data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/role [put]
func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	actor := middleware.Actor(c)
	if uint(id) == actor.UserID {
		return response.BadRequest(c, "Cannot change your own role")
	}

	user, err := h.userService.SetRole(c.Context(), actor, uint(id), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Role must be user or worker")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Cannot change this user's role")
		default:
			return response.InternalServerError(c, "Failed to set user role")
		}
	}

	return response.Success(c, "User role updated successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// Deactivate handles disabling a user account (Admin only)
// @Summary Deactivate user
// @Description Disable a user account and revoke its sessions (Admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	actor := middleware.Actor(c)

	if err := h.userService.Deactivate(c.Context(), actor, uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Cannot deactivate your own account")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Admin access required")
		default:
			return response.InternalServerError(c, "Failed to deactivate user")
		}
	}

	return response.Success(c, "User deactivated successfully", nil)
}
