package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.postService.ListPosts(c.UserContext(), page, principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return writePage(c, res, postResponse)
}

// SearchPosts handles GET /api/posts/search?q=...&date=YYYY-MM-DD&time=HH:MM
// @Summary Search posts
// @Description Every given filter must match; without filters all posts are returned
// @Tags posts
// @Produce json
// @Param q query string false "Substring of the content, case-insensitive"
// @Param date query string false "Creation date (UTC), YYYY-MM-DD"
// @Param time query string false "Creation time of day (UTC), HH:MM"
// @Param page query int false "Page number"
// @Success 200 {object} models.Page[models.PostResponse]
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	filter, err := models.ParsePostSearch(c.Query("q"), c.Query("date"), c.Query("time"))
	if err != nil {
		return respondError(c, err)
	}
	page, err := parsePage(c)
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.postService.SearchPosts(c.UserContext(), filter, page, principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return writePage(c, res, postResponse)
}

// GetFeed handles GET /api/posts/feed?sort=likes|comments
func (s *Server) GetFeed(c *fiber.Ctx) error {
	sort, err := models.ParseFeedSort(c.Query("sort"))
	if err != nil {
		return respondError(c, err)
	}
	page, err := parsePage(c)
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.feedService.Feed(c.UserContext(), principal(c), sort, page)
	if err != nil {
		return respondError(c, err)
	}
	return writePage(c, res, postResponse)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id, principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewPostResponse(post))
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.CreatePostInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), principal(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewPostResponse(post))
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}
	var in service.UpdatePostInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), principal(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewPostResponse(post))
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), principal(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
