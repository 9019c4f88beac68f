package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"resource-scheduler/core/config"
	"resource-scheduler/core/constants"
	"resource-scheduler/core/errors"

	"github.com/labstack/echo/v4"
)

type TokenData struct {
	UserID uuid.UUID
	Scope  string
}

type tokenClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// GenerateToken issues an application JWT for the given user.
func GenerateToken(userID uuid.UUID, scope string) (string, error) {
	cfg, ok := config.GetSafe()
	if !ok {
		return "", fmt.Errorf("config not initialized")
	}

	ttl := 24 * time.Hour
	if scope == constants.ScopeTokenRefresh {
		ttl = 30 * 24 * time.Hour
	}

	claims := tokenClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

// ValidateAndParseToken verifies the signature and expiry and returns the
// embedded user identity.
func ValidateAndParseToken(tokenString string) (*TokenData, error) {
	cfg, ok := config.GetSafe()
	if !ok {
		return nil, fmt.Errorf("config not initialized")
	}

	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid or expired token", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid token subject", err)
	}

	return &TokenData{UserID: userID, Scope: claims.Scope}, nil
}

// GetTokenFromHeader extracts the bearer token from the Authorization header.
func GetTokenFromHeader(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", errors.NewAppError(errors.ErrUnauthorized, "missing authorization header", nil)
	}
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:], nil
	}
	return "", errors.NewAppError(errors.ErrUnauthorized, "invalid authorization header format", nil)
}
