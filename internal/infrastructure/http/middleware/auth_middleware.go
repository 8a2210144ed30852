package middleware

import (
	"context"
	stdErrors "errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
)

// SessionValidator resolves a session token to its user
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*entities.User, error)
}

// EchoAuth returns an Echo middleware that validates the session token and sets
// "user_id" (string) and "user" (*entities.User) into Echo context
func EchoAuth(validator SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c.Request())
			if token == "" {
				return reject(c, errors.ErrUnauthenticated())
			}

			user, err := validator.ValidateSession(c.Request().Context(), token)
			if err != nil {
				return reject(c, err)
			}

			// set into echo context: user and user_id
			c.Set("user", user)
			c.Set("user_id", user.ID)

			return next(c)
		}
	}
}

// Helper functions

func extractToken(r *http.Request) string {
	// Try Authorization header first
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// Try cookie as fallback
	cookie, err := r.Cookie("access_token")
	if err == nil {
		return cookie.Value
	}

	return ""
}

func reject(c echo.Context, err error) error {
	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) {
		appErr = errors.ErrInvalidToken()
	}
	status := appErr.HTTPCode
	if status == 0 {
		status = http.StatusUnauthorized
	}
	return c.JSON(status, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
