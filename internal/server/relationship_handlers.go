package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := parseID(c)
	if err != nil {
		return nil
	}

	like, err := s.likeService.Like(c.UserContext(), principal(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewLikeResponse(like))
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := parseID(c)
	if err != nil {
		return nil
	}

	if err := s.likeService.Unlike(c.UserContext(), principal(c), postID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMyLikes handles GET /api/likes
func (s *Server) GetMyLikes(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.likeService.ListMine(c.UserContext(), principal(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return writePage(c, res, likeResponse)
}

// DeleteLike handles DELETE /api/likes/:id
func (s *Server) DeleteLike(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	if err := s.likeService.DeleteLike(c.UserContext(), principal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// FollowUser handles POST /api/users/:id/follow
// @Summary Follow a user
// @Tags follows
// @Produce json
// @Param id path int true "User to follow"
// @Success 201 {object} models.FollowResponse
// @Failure 400 {object} models.ErrorResponse "self-follow"
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "already following"
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c)
	if err != nil {
		return nil
	}

	uid := principal(c)
	follow, err := s.followService.Follow(c.UserContext(), uid, targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewFollowResponse(follow, uid))
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c)
	if err != nil {
		return nil
	}

	if err := s.followService.Unfollow(c.UserContext(), principal(c), targetID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteFollow handles DELETE /api/follows/:id
func (s *Server) DeleteFollow(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	if err := s.followService.DeleteFollow(c.UserContext(), principal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserFollowers handles GET /api/users/:id/followers
func (s *Server) GetUserFollowers(c *fiber.Ctx) error {
	userID, err := parseID(c)
	if err != nil {
		return nil
	}
	return s.listFollowers(c, userID)
}

// GetUserFollowing handles GET /api/users/:id/following
func (s *Server) GetUserFollowing(c *fiber.Ctx) error {
	userID, err := parseID(c)
	if err != nil {
		return nil
	}
	return s.listFollowing(c, userID)
}

// GetMyFollowers handles GET /api/followers
func (s *Server) GetMyFollowers(c *fiber.Ctx) error {
	return s.listFollowers(c, principal(c))
}

// GetMyFollowing handles GET /api/following
func (s *Server) GetMyFollowing(c *fiber.Ctx) error {
	return s.listFollowing(c, principal(c))
}

func (s *Server) listFollowers(c *fiber.Ctx, userID uint) error {
	page, err := parsePage(c)
	if err != nil {
		return respondError(c, err)
	}
	res, err := s.followService.ListFollowers(c.UserContext(), userID, page)
	if err != nil {
		return respondError(c, err)
	}
	return writePage(c, res, followResponses(principal(c)))
}

func (s *Server) listFollowing(c *fiber.Ctx, userID uint) error {
	page, err := parsePage(c)
	if err != nil {
		return respondError(c, err)
	}
	res, err := s.followService.ListFollowing(c.UserContext(), userID, page)
	if err != nil {
		return respondError(c, err)
	}
	return writePage(c, res, followResponses(principal(c)))
}
