package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content"`
}

// GetPostComments handles GET /api/posts/:id/comments
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := parseID(c)
	if err != nil {
		return nil
	}
	page, err := parsePage(c)
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.commentService.ListForPost(c.UserContext(), postID, page)
	if err != nil {
		return respondError(c, err)
	}
	return writePage(c, res, commentResponse)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c)
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), principal(c), postID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewCommentResponse(comment))
}

// GetMyComments handles GET /api/comments
func (s *Server) GetMyComments(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.commentService.ListMine(c.UserContext(), principal(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return writePage(c, res, commentResponse)
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), principal(c), id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewCommentResponse(comment))
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), principal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
