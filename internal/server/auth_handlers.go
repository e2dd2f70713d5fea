package server

import (
	"agora/internal/auth"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// ObtainToken handles POST /api/token
// @Summary Obtain a token pair
// @Description Exchange email and password for an access and a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} models.TokenPairResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /token [post]
func (s *Server) ObtainToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(pair)
}

// RefreshToken handles POST /api/token/refresh
// @Summary Rotate a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} models.TokenPairResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /token/refresh [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req refreshRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Refresh == "" {
		return respondError(c, models.NewValidationError("refresh is required"))
	}

	pair, err := s.tokens.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pair)
}

// RevokeToken handles POST /api/token/revoke. The refresh token stops working
// immediately; outstanding access tokens expire on their own.
func (s *Server) RevokeToken(c *fiber.Ctx) error {
	var req refreshRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Refresh == "" {
		return respondError(c, models.NewValidationError("refresh is required"))
	}

	claims, err := s.tokens.Parse(c.UserContext(), req.Refresh, auth.TokenRefresh)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.tokens.Revoke(c.UserContext(), claims); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
