package server

import (
	"errors"
	"net/url"
	"strconv"

	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID reads the :id route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePage reads ?page=N (1-based, default 1).
func parsePage(c *fiber.Ctx) (models.PageRequest, error) {
	raw := c.Query("page")
	if raw == "" {
		return models.PageRequest{Page: 1}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return models.PageRequest{}, models.NewValidationError("page must be a positive integer")
	}
	return models.NewPageRequest(n)
}

// principal returns the authenticated user id, or 0 for anonymous callers.
func principal(c *fiber.Ctx) uint {
	uid, _ := middleware.Principal(c)
	return uid
}

// respondError writes err with the status its code maps to. Unexpected
// errors are logged before being masked as 500.
func respondError(c *fiber.Ctx, err error) error {
	status := models.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			"method", c.Method(), "path", c.Path(), "error", err.Error())
		if models.ErrorCode(err) == "" {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// writePage renders one page of results in the standard envelope. A page
// past the last one is a 404, except page 1 which is always valid.
func writePage[E any, R any](c *fiber.Ctx, res models.Result[E], project func(E) R) error {
	if len(res.Items) == 0 && res.Page.Page > 1 {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Page", res.Page.Page))
	}

	var links models.PageLinks
	if res.HasNext() {
		next := pageURL(c, res.Page.Page+1)
		links.Next = &next
	}
	if res.HasPrevious() {
		prev := pageURL(c, res.Page.Page-1)
		links.Previous = &prev
	}

	return c.JSON(models.Page[R]{
		Links:   links,
		Count:   res.Total,
		Results: models.Map(res.Items, project),
	})
}

// pageURL rebuilds the request URL with page set to n. The link to the first
// page omits the parameter.
func pageURL(c *fiber.Ctx, n int) string {
	query, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	if n <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(n))
	}

	link := c.BaseURL() + c.Path()
	if encoded := query.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return link
}

func userResponse(u models.User) models.UserResponse { return models.NewUserResponse(&u) }

func postResponse(p models.Post) models.PostResponse { return models.NewPostResponse(&p) }

func commentResponse(cm models.Comment) models.CommentResponse {
	return models.NewCommentResponse(&cm)
}

func likeResponse(l models.Like) models.LikeResponse { return models.NewLikeResponse(&l) }

func notificationResponse(n models.Notification) models.NotificationResponse {
	return models.NewNotificationResponse(&n)
}

// followResponses phrases each edge's detail from the viewer's side.
func followResponses(viewerID uint) func(models.Follow) models.FollowResponse {
	return func(f models.Follow) models.FollowResponse {
		return models.NewFollowResponse(&f, viewerID)
	}
}
