package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gatelaunch/internal/api/dto"
	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/service"
)

// AuthHandler exposes signup, login and session endpoints.
type AuthHandler struct {
	auth       *service.AuthService
	middleware *auth.AuthMiddleware
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, middleware *auth.AuthMiddleware) *AuthHandler {
	return &AuthHandler{auth: authService, middleware: middleware}
}

// Signup handles POST /api/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Signup(c.UserContext(), service.Credentials{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		IP:       c.IP(),
	})
	if err != nil {
		return err
	}
	h.middleware.SetSessionCookie(c, res.Session)
	return c.JSON(dto.UserResponse{User: res.User.Public()})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Login(c.UserContext(), service.Credentials{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.IP(),
	})
	if err != nil {
		return err
	}
	h.middleware.SetSessionCookie(c, res.Session)
	return c.JSON(dto.UserResponse{User: res.User.Public()})
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(h.middleware.TokenFromRequest(c))
	h.middleware.ClearSessionCookie(c)
	return c.JSON(fiber.Map{"success": true})
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserResponse{User: principal.User.Public()})
}
