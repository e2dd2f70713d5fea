package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/users
// @Summary Register a user
// @Description Create an account and its empty profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Account"
// @Success 201 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}

	user, err := s.userService.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewUserResponse(user))
}

// GetUsers handles GET /api/users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.userService.ListUsers(c.UserContext(), page)
	if err != nil {
		return respondError(c, err)
	}
	return writePage(c, res, userResponse)
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewUserResponse(user))
}

// UpdateUser handles PUT /api/users/:id
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}
	var in service.UpdateUserInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}

	user, err := s.userService.UpdateUser(c.UserContext(), principal(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewUserResponse(user))
}

// DeleteUser handles DELETE /api/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.UserContext(), principal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetProfile handles GET /api/profiles/:id
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewProfileResponse(profile, profile.Username))
}

// UpdateProfile handles PUT /api/profiles/:id
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}
	var in service.UpdateProfileInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}

	profile, err := s.userService.UpdateProfile(c.UserContext(), principal(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewProfileResponse(profile, profile.Username))
}
