package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"logbook-backend/internal/config"
	"logbook-backend/internal/models"
	"logbook-backend/internal/supabase"
)

const (
	UserIDKey      = "user_id"
	AccessTokenKey = "access_token"
)

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.Failure[struct{}](models.CodeUnauthorized, message))
}

// AuthMiddleware verifies the bearer token issued by Supabase Auth. With a
// JWT secret configured the signature is checked locally; otherwise the
// token is sent to the Auth server through client.
func AuthMiddleware(cfg *config.Config, client *supabase.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			abortUnauthorized(c, "empty token")
			return
		}

		var (
			userID string
			err    error
		)
		if cfg.SupabaseJWTSecret != "" {
			userID, err = verifyLocal(tokenString, cfg.SupabaseJWTSecret)
		} else {
			userID, err = verifyRemote(tokenString, client)
		}
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(AccessTokenKey, tokenString)
		c.Next()
	}
}

func verifyLocal(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Supabase signs access tokens with HS256 using the project JWT secret
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", errors.New("token signature is invalid")
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", errors.New("token has expired")
		default:
			return "", errors.New("invalid token: " + err.Error())
		}
	}

	if !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing user id in token")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return "", errors.New("user id in token is not a UUID")
	}

	return userID.String(), nil
}

func verifyRemote(tokenString string, client *supabase.Client) (string, error) {
	if client == nil || !client.Configured() {
		return "", errors.New("token verification is not available")
	}

	user, err := client.Supabase.Auth.WithToken(tokenString).GetUser()
	if err != nil {
		return "", errors.New("invalid token: " + err.Error())
	}

	return user.ID.String(), nil
}
