package handler

import (
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.CreateUser(c.UserContext(), middleware.TenantID(c), middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return created(c, "User created successfully", user)
}

// UpdateUserPrivileges handles privilege assignment
// PUT /api/v1/users/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdatePrivilegesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateUserPrivileges(c.UserContext(), middleware.TenantID(c), userID, middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(Response{Success: true, Message: "Privileges updated successfully", Data: user})
}

// GetUsers returns all users of the tenant
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.UserContext(), middleware.TenantID(c))
	if err != nil {
		return err
	}
	return ok(c, users)
}

// GetUser returns a single user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.userService.GetUserByID(c.UserContext(), middleware.TenantID(c), userID)
	if err != nil {
		return err
	}
	return ok(c, user)
}

// UpdateUser handles user update
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateUser(c.UserContext(), middleware.TenantID(c), userID, middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(Response{Success: true, Message: "User updated successfully", Data: user})
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.userService.DeleteUser(c.UserContext(), middleware.TenantID(c), userID, middleware.CurrentActor(c)); err != nil {
		return err
	}
	return message(c, "User deleted successfully")
}
