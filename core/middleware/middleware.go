package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"resource-scheduler/core/errors"
	"resource-scheduler/core/utils"
)

const userIDContextKey = "user_id"

type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller's user id on the echo context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := utils.GetTokenFromHeader(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"error": "missing or invalid authorization header",
					"code":  errors.ErrUnauthorized,
				})
			}

			tokenData, err := utils.ValidateAndParseToken(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"error": "invalid or expired token",
					"code":  errors.ErrUnauthorized,
				})
			}

			c.Set(userIDContextKey, tokenData.UserID)
			return next(c)
		}
	}
}

// UserIDFromContext returns the authenticated caller's id set by
// AuthMiddleware.
func UserIDFromContext(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(userIDContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "no authenticated user", nil)
	}
	return id, nil
}
