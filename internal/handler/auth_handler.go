package handler

import (
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/service"
	"go-retail-pos/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	response, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return ok(c, response)
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Token == "" {
		return apperror.Validation(map[string]string{"token": "required"})
	}

	response, err := h.authService.ValidateToken(c.UserContext(), req.Token)
	if err != nil {
		return err
	}
	return ok(c, response)
}

// Me returns the caller's profile
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	response, err := h.authService.Me(c.UserContext(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return err
	}
	return ok(c, response)
}

// POST /api/v1/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return apperror.ErrAuthRequired
	}
	if err := h.authService.Heartbeat(c.UserContext(), user); err != nil {
		return err
	}
	return c.JSON(Response{Success: true, Message: "Heartbeat received", Data: fiber.Map{"status": "online"}})
}

// ChangePassword handles password change
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.authService.ChangePassword(c.UserContext(), middleware.CurrentActor(c).UserID, &req); err != nil {
		return err
	}
	return message(c, "Password updated successfully")
}
