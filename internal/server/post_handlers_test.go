package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, page models.PageRequest, viewerID uint) ([]models.Post, int64, error) {
	args := m.Called(ctx, page, viewerID)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) Search(ctx context.Context, filter models.PostSearch, page models.PageRequest, viewerID uint) ([]models.Post, int64, error) {
	args := m.Called(ctx, filter, page, viewerID)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) Feed(ctx context.Context, viewerID uint, sort models.FeedSort, page models.PageRequest) ([]models.Post, int64, error) {
	args := m.Called(ctx, viewerID, sort, page)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type noFanOut struct{}

func (noFanOut) FanOut(context.Context, uint, models.NotificationType, uint) {}

func TestGetPost_ErrorMapping(t *testing.T) {
	mockRepo := new(MockPostRepository)
	s := &Server{postService: service.NewPostService(mockRepo, noFanOut{})}

	app := fiber.New()
	app.Get("/posts/:id", s.GetPost)

	mockRepo.On("GetByID", mock.Anything, uint(1), uint(0)).Return(&models.Post{ID: 1, Content: "hi"}, nil)
	mockRepo.On("GetByID", mock.Anything, uint(2), uint(0)).Return(nil, models.NewNotFoundError("Post", 2))
	mockRepo.On("GetByID", mock.Anything, uint(3), uint(0)).Return(nil, errors.New("connection reset by peer"))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedCode   string
	}{
		{"found", "/posts/1", http.StatusOK, ""},
		{"missing", "/posts/2", http.StatusNotFound, models.CodeNotFound},
		{"store failure is masked", "/posts/3", http.StatusInternalServerError, models.CodeInternal},
		{"invalid id", "/posts/0", http.StatusBadRequest, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := doJSON(t, app, http.MethodGet, tt.path, "", nil)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedCode != "" {
				body := decode[models.ErrorResponse](t, data)
				assert.Equal(t, tt.expectedCode, body.Code)
				assert.NotContains(t, body.Error, "connection reset")
			}
		})
	}
	mockRepo.AssertExpectations(t)
}

func TestCreatePost_UsesPrincipalFromLocals(t *testing.T) {
	mockRepo := new(MockPostRepository)
	s := &Server{postService: service.NewPostService(mockRepo, noFanOut{})}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(7))
		return c.Next()
	})
	app.Post("/posts", s.CreatePost)

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.UserID == 7 && p.Content == "Hello world"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Post).ID = 42
	}).Return(nil)
	mockRepo.On("GetByID", mock.Anything, uint(42), uint(7)).
		Return(&models.Post{ID: 42, UserID: 7, Content: "Hello world"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"content":"Hello world","user_id":99}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	mockRepo.AssertExpectations(t)
}

func TestPost_OwnerOnly(t *testing.T) {
	_, app := newTestServer(t, nil)
	alice := signUp(t, app, "alice")
	bob := signUp(t, app, "bob")
	post := createPost(t, app, alice, "original")
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	resp, _ := doJSON(t, app, http.MethodPut, path, bob.Access, map[string]string{"content": "defaced"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodDelete, path, bob.Access, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, data := doJSON(t, app, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "original", decode[models.PostResponse](t, data).Content, "entity is unchanged")

	resp, data = doJSON(t, app, http.MethodPut, path, alice.Access, map[string]string{"content": "edited"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	updated := decode[models.PostResponse](t, data)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, alice.ID, updated.AuthorID)
	assert.True(t, updated.CreatedAt.Equal(post.CreatedAt), "creation time is immutable")
}

func TestDeletePost_Cascades(t *testing.T) {
	s, app := newTestServer(t, nil)
	alice := signUp(t, app, "alice")
	bob := signUp(t, app, "bob")
	follow(t, app, bob, alice.ID)

	post := createPost(t, app, alice, "short lived")
	likePost(t, app, bob, post.ID)
	resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID), bob.Access,
		map[string]string{"content": "first"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), alice.Access, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	for _, model := range []interface{}{&models.Like{}, &models.Comment{}, &models.Notification{}} {
		var n int64
		require.NoError(t, s.db.Model(model).Where("post_id = ?", post.ID).Count(&n).Error)
		assert.Zero(t, n, "%T rows still reference the post", model)
	}

	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", post.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListPosts_Pagination(t *testing.T) {
	_, app := newTestServer(t, nil)
	alice := signUp(t, app, "alice")
	for i := 0; i < models.PageSize+1; i++ {
		createPost(t, app, alice, fmt.Sprintf("post %d", i))
	}

	resp, data := doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[pageBody[models.PostResponse]](t, data)
	assert.Equal(t, int64(models.PageSize+1), first.Count)
	assert.Len(t, first.Results, models.PageSize)
	assert.Nil(t, first.Links.Previous)
	require.NotNil(t, first.Links.Next)
	assert.True(t, strings.HasSuffix(*first.Links.Next, "/api/posts?page=2"), *first.Links.Next)
	assert.Equal(t, "post 10", first.Results[0].Content, "newest first")

	resp, data = doJSON(t, app, http.MethodGet, "/api/posts?page=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decode[pageBody[models.PostResponse]](t, data)
	assert.Len(t, second.Results, 1)
	assert.Nil(t, second.Links.Next)
	require.NotNil(t, second.Links.Previous)
	assert.True(t, strings.HasSuffix(*second.Links.Previous, "/api/posts"), *second.Links.Previous)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/posts?page=3", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/posts?page=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/posts?page=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchPosts(t *testing.T) {
	_, app := newTestServer(t, nil)
	alice := signUp(t, app, "alice")
	createPost(t, app, alice, "Learning Go generics")
	createPost(t, app, alice, "Weekend hike")

	resp, data := doJSON(t, app, http.MethodGet, "/api/posts/search?q=go", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[pageBody[models.PostResponse]](t, data)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Learning Go generics", res.Results[0].Content)

	resp, data = doJSON(t, app, http.MethodGet, "/api/posts/search?q=go&date=1999-01-01", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, decode[pageBody[models.PostResponse]](t, data).Count, "filters are combined")

	for _, bad := range []string{"date=2024-13-01", "time=25:00", "date=yesterday"} {
		resp, _ = doJSON(t, app, http.MethodGet, "/api/posts/search?"+bad, "", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
	}
}

func TestFeed_SortedByLikes(t *testing.T) {
	_, app := newTestServer(t, nil)
	viewer := signUp(t, app, "viewer")
	author := signUp(t, app, "author")
	stranger := signUp(t, app, "stranger")
	fans := []testUser{signUp(t, app, "fan1"), signUp(t, app, "fan2"), viewer}

	follow(t, app, viewer, author.ID)

	p1 := createPost(t, app, author, "p1")
	p2 := createPost(t, app, author, "p2")
	p3 := createPost(t, app, author, "p3")
	own := createPost(t, app, viewer, "mine")
	createPost(t, app, stranger, "invisible")

	for _, f := range fans {
		likePost(t, app, f, p1.ID)
		likePost(t, app, f, p3.ID)
	}
	likePost(t, app, fans[0], p2.ID)

	resp, data := doJSON(t, app, http.MethodGet, "/api/posts/feed?sort=likes", viewer.Access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	feed := decode[pageBody[models.PostResponse]](t, data)

	got := make([]uint, 0, len(feed.Results))
	for _, p := range feed.Results {
		got = append(got, p.ID)
	}
	// equal counts fall back to newest first
	assert.Equal(t, []uint{p3.ID, p1.ID, p2.ID, own.ID}, got)
	assert.Equal(t, 3, feed.Results[0].LikesCount)
	assert.True(t, feed.Results[0].Liked)

	resp, data = doJSON(t, app, http.MethodGet, "/api/posts/feed", viewer.Access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recent := decode[pageBody[models.PostResponse]](t, data)
	require.Len(t, recent.Results, 4)
	assert.Equal(t, own.ID, recent.Results[0].ID)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/posts/feed?sort=views", viewer.Access, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
