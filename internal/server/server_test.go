package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agora/internal/config"
	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "CorrectHorse1!"

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		AllowedOrigins:  "http://localhost:5173",
		JWTSecret:       "test-secret-key-12345678901234567890123456789012",
		JWTIssuer:       "agora-api",
		JWTAudience:     "agora-client",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	}
}

// newTestServer wires the full stack on an in-memory SQLite database.
func newTestServer(t *testing.T, rdb *redis.Client) (*Server, *fiber.App) {
	t.Helper()
	s, err := NewServerWithDeps(testConfig(), testutil.NewTestDB(t), rdb)
	require.NoError(t, err)
	s.userService.WithHashCost(bcrypt.MinCost)
	return s, s.NewApp()
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

type testUser struct {
	ID     uint
	Access string
	Pair   models.TokenPairResponse
}

// signUp registers name and logs it in.
func signUp(t *testing.T, app *fiber.App, name string) testUser {
	t.Helper()

	resp, data := doJSON(t, app, http.MethodPost, "/api/users", "", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	user := decode[models.UserResponse](t, data)

	resp, data = doJSON(t, app, http.MethodPost, "/api/token", "", map[string]string{
		"email":    name + "@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	pair := decode[models.TokenPairResponse](t, data)

	return testUser{ID: user.ID, Access: pair.Access, Pair: pair}
}

func createPost(t *testing.T, app *fiber.App, u testUser, content string) models.PostResponse {
	t.Helper()
	resp, data := doJSON(t, app, http.MethodPost, "/api/posts", u.Access, map[string]string{"content": content})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	return decode[models.PostResponse](t, data)
}

func likePost(t *testing.T, app *fiber.App, u testUser, postID uint) {
	t.Helper()
	resp, data := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", postID), u.Access, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
}

func follow(t *testing.T, app *fiber.App, u testUser, targetID uint) models.FollowResponse {
	t.Helper()
	resp, data := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", targetID), u.Access, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	return decode[models.FollowResponse](t, data)
}

type pageBody[T any] struct {
	Links   models.PageLinks `json:"links"`
	Count   int64            `json:"count"`
	Results []T              `json:"results"`
}
