package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/config"
	"auction-backend/internal/logger"
	"auction-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	UserIDKey = "user_id"
	// AccessTokenParam carries the bearer token for websocket upgrades, where
	// browsers cannot set an Authorization header.
	AccessTokenParam = "access_token"
)

var errNoToken = errors.New("missing authorization header")

// AuthMiddleware rejects requests without a valid Supabase access token and
// stores the caller's user id under UserIDKey.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c, cfg.SupabaseJWTSecret)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a token is present and
// lets anonymous requests through. A present but invalid token is rejected.
func OptionalAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c, cfg.SupabaseJWTSecret)
		switch {
		case errors.Is(err, errNoToken):
		case err != nil:
			abortUnauthorized(c, err)
			return
		default:
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// UserID returns the authenticated caller, or uuid.Nil for anonymous requests.
func UserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func authenticate(c *gin.Context, secret string) (uuid.UUID, error) {
	tokenString, err := bearerToken(c)
	if err != nil {
		return uuid.Nil, err
	}
	return ParseUserID(tokenString, secret)
}

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query(AccessTokenParam); token != "" {
			return token, nil
		}
		return "", errNoToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header format")
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", errors.New("empty token")
	}
	return tokenString, nil
}

// ParseUserID verifies an HS256 Supabase access token and returns its subject.
func ParseUserID(tokenString, secret string) (uuid.UUID, error) {
	if secret == "" {
		return uuid.Nil, errors.New("token verification is not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Supabase JWT secret is used directly as the signing key
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, errors.New("token has expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return uuid.Nil, errors.New("token signature is invalid")
		case errors.Is(err, jwt.ErrTokenMalformed):
			return uuid.Nil, errors.New("token is malformed")
		default:
			return uuid.Nil, err
		}
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, errors.New("missing user id in token")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, errors.New("user id in token is not a uuid")
	}
	return userID, nil
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   string(apperrors.KindAuthenticationRequired),
		Message: err.Error(),
	})
}

// AdminChecker reports whether a user holds the admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin(admins AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == uuid.Nil {
			abortUnauthorized(c, errNoToken)
			return
		}
		ok, err := admins.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			logger.Error("admin lookup failed", map[string]any{"user_id": userID.String(), "error": err.Error()})
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
				Error: string(apperrors.KindInternal),
			})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Error:   string(apperrors.KindForbidden),
				Message: "admin role required",
			})
			return
		}
		c.Next()
	}
}
