package server

import (
	"github.com/gofiber/fiber/v2"
)

type rankRequest struct {
	Rank string `json:"rank"`
}

type roleRequest struct {
	Role string `json:"role"`
}

// GetUserProfile handles GET /auth/users/:id
// @Summary Public profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} service.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(profile)
}

// SetUserRank handles PATCH /auth/users/:id/rank
// @Summary Change a user's rank
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body rankRequest true "Rank"
// @Success 200 {object} object{user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/users/{id}/rank [patch]
func (s *Server) SetUserRank(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req rankRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := s.userService.SetRank(c.UserContext(), id, req.Rank)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// SetUserRole handles PATCH /auth/users/:id/role
// @Summary Change a user's role
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body roleRequest true "Role"
// @Success 200 {object} object{user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/users/{id}/role [patch]
func (s *Server) SetUserRole(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := s.userService.SetRole(c.UserContext(), id, req.Role)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}
