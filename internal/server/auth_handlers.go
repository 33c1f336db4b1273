package server

import (
	"ajayblog/internal/middleware"
	"ajayblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/auth/login and POST /api/admin/login
// @Summary Admin login
// @Description Exchange admin credentials for a bearer token valid for 24 hours
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	resp, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}

// GetCurrentAdmin handles GET /api/auth/me
// @Summary Current admin
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AdminIdentity
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) GetCurrentAdmin(c *fiber.Ctx) error {
	adminID, _ := c.Locals(middleware.LocalsAdminID).(string)

	admin, err := s.authService.CurrentAdmin(c.UserContext(), adminID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(admin.Identity())
}

// CreateAdmin handles POST /api/admin/admins
// @Summary Create an admin account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateAdminRequest true "New admin"
// @Success 201 {object} models.AdminIdentity
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/admins [post]
func (s *Server) CreateAdmin(c *fiber.Ctx) error {
	var req models.CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	admin, err := s.authService.CreateAdmin(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(admin.Identity())
}
