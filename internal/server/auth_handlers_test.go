package server

import (
	"net/http"
	"testing"

	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObtainToken(t *testing.T) {
	_, app := newTestServer(t, nil)
	alice := signUp(t, app, "alice")

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{"wrong password", map[string]string{"email": "alice@example.com", "password": "WrongHorse1!"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "nobody@example.com", "password": testPassword}, http.StatusUnauthorized},
		{"missing fields", map[string]string{"email": ""}, http.StatusBadRequest},
		{"email is case-insensitive", map[string]string{"email": "ALICE@example.com", "password": testPassword}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := doJSON(t, app, http.MethodPost, "/api/token", "", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode, string(data))
		})
	}

	resp, _ := doJSON(t, app, http.MethodGet, "/api/notifications", alice.Access, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := doJSON(t, app, http.MethodGet, "/api/notifications", alice.Pair.Refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "a refresh token is not an access token")
	assert.Equal(t, models.CodeUnauthorized, decode[models.ErrorResponse](t, data).Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, app := newTestServer(t, nil)

	for _, path := range []string{"/api/posts/feed", "/api/notifications", "/api/likes", "/api/followers"} {
		resp, _ := doJSON(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
	resp, _ := doJSON(t, app, http.MethodPost, "/api/posts", "not-a-token", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshAndRevoke(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	_, app := newTestServer(t, rdb)
	alice := signUp(t, app, "alice")

	resp, data := doJSON(t, app, http.MethodPost, "/api/token/refresh", "", map[string]string{"refresh": alice.Pair.Refresh})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	rotated := decode[models.TokenPairResponse](t, data)
	assert.NotEmpty(t, rotated.Access)
	assert.NotEqual(t, alice.Pair.Refresh, rotated.Refresh)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/token/refresh", "", map[string]string{"refresh": alice.Pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "a used refresh token is revoked")

	resp, _ = doJSON(t, app, http.MethodPost, "/api/token/revoke", "", map[string]string{"refresh": rotated.Refresh})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/token/refresh", "", map[string]string{"refresh": rotated.Refresh})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/token/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
