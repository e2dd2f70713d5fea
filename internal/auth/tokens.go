// Package auth issues and verifies the bearer tokens used by the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"agora/internal/config"
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

const blacklistPrefix = "blacklist:"

// Claims is the verified content of a token.
type Claims struct {
	UserID    uint
	Type      TokenType
	JTI       string
	ExpiresAt time.Time
}

// TokenManager signs HS256 tokens and checks them against the Redis blacklist.
// A nil Redis client disables revocation.
type TokenManager struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	redis      *redis.Client
	now        func() time.Time
}

// NewTokenManager builds a TokenManager from cfg.
func NewTokenManager(cfg *config.Config, rdb *redis.Client) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		redis:      rdb,
		now:        time.Now,
	}
}

// IssuePair returns a fresh access and refresh token for userID.
func (m *TokenManager) IssuePair(userID uint) (models.TokenPairResponse, error) {
	access, err := m.issue(userID, TokenAccess, m.accessTTL)
	if err != nil {
		return models.TokenPairResponse{}, err
	}
	refresh, err := m.issue(userID, TokenRefresh, m.refreshTTL)
	if err != nil {
		return models.TokenPairResponse{}, err
	}
	return models.TokenPairResponse{Access: access, Refresh: refresh}, nil
}

func (m *TokenManager) issue(userID uint, typ TokenType, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}

	now := m.now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": m.issuer,
		"aud": m.audience,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
		"typ": string(typ),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies tokenString and checks that it is of the expected type and
// not revoked. Every failure is reported as an UNAUTHORIZED AppError.
func (m *TokenManager) Parse(ctx context.Context, tokenString string, expected TokenType) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	if typ, _ := mc["typ"].(string); TokenType(typ) != expected {
		return nil, models.NewUnauthorizedError(fmt.Sprintf("%s token required", expected))
	}

	sub, _ := mc["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	jti, _ := mc["jti"].(string)
	if jti == "" {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	if m.isRevoked(ctx, jti) {
		return nil, models.NewUnauthorizedError("Token has been revoked")
	}

	return &Claims{
		UserID:    uint(userID),
		Type:      expected,
		JTI:       jti,
		ExpiresAt: exp.Time,
	}, nil
}

// Refresh exchanges a valid refresh token for a new pair and revokes the old
// refresh token.
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (models.TokenPairResponse, error) {
	claims, err := m.Parse(ctx, refreshToken, TokenRefresh)
	if err != nil {
		return models.TokenPairResponse{}, err
	}
	if err := m.Revoke(ctx, claims); err != nil {
		return models.TokenPairResponse{}, err
	}
	return m.IssuePair(claims.UserID)
}

// Revoke blacklists the token's jti until it would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.redis == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	if err := m.redis.Set(ctx, blacklistPrefix+claims.JTI, "1", ttl).Err(); err != nil {
		return models.NewInternalError(fmt.Errorf("revoke token: %w", err))
	}
	return nil
}

// Revocation checks fail open so a Redis outage does not lock every user out.
func (m *TokenManager) isRevoked(ctx context.Context, jti string) bool {
	if m.redis == nil {
		return false
	}
	n, err := m.redis.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("exists").Inc()
		return false
	}
	return n > 0
}
