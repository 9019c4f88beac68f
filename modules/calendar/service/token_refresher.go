package service

import (
	"context"
	"time"

	"resource-scheduler/core/crypto"
	"resource-scheduler/core/errors"
	"resource-scheduler/core/logger"
	"resource-scheduler/modules/calendar/entity"
	"resource-scheduler/modules/calendar/provider"
	"resource-scheduler/modules/calendar/repository"
)

// tokenExpiryMargin keeps a request from racing a token that expires
// mid-flight to the provider: anything within five minutes of expiry is
// refreshed before use.
const tokenExpiryMargin = 5 * time.Minute

// TokenRefresher decides per request whether the stored access token is
// still usable and performs the refresh exchange when it is not. It holds
// no per-connection state; concurrent refreshes for the same connection are
// resolved by a compare-and-swap on the stored expiry.
type TokenRefresher struct {
	repo   repository.CalendarRepository
	cipher *crypto.Cipher
}

func NewTokenRefresher(repo repository.CalendarRepository, cipher *crypto.Cipher) *TokenRefresher {
	return &TokenRefresher{repo: repo, cipher: cipher}
}

// EnsureAccessToken returns a decrypted access token that is valid for at
// least the expiry margin. On refresh failure the stored connection is left
// untouched and the caller gets TOKEN_EXPIRED, instructing re-authentication.
func (t *TokenRefresher) EnsureAccessToken(ctx context.Context, conn *entity.CalendarConnection, adapter provider.Adapter) (string, *errors.AppError) {
	if time.Now().Before(conn.TokenExpiresAt.Add(-tokenExpiryMargin)) {
		accessToken, err := conn.AccessToken().Reveal(t.cipher)
		if err != nil {
			logger.Error("TokenRefresher:EnsureAccessToken:DecryptAccess:Error", "error", err, "user_id", conn.UserID, "provider", conn.Provider)
			return "", errors.NewAppError(errors.ErrDecrypt, "stored access token could not be decrypted, please reconnect your calendar", err)
		}
		return accessToken, nil
	}

	logger.Info("TokenRefresher:EnsureAccessToken:Refreshing", "user_id", conn.UserID, "provider", conn.Provider)

	// The refresh token is only decrypted on this branch.
	refreshToken, err := conn.RefreshToken().Reveal(t.cipher)
	if err != nil {
		logger.Error("TokenRefresher:EnsureAccessToken:DecryptRefresh:Error", "error", err, "user_id", conn.UserID, "provider", conn.Provider)
		return "", errors.NewAppError(errors.ErrDecrypt, "stored refresh token could not be decrypted, please reconnect your calendar", err)
	}
	if refreshToken == "" {
		return "", errors.NewAppError(errors.ErrTokenExpired, "session expired, please reconnect your calendar", nil)
	}

	result, err := adapter.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		logger.Error("TokenRefresher:EnsureAccessToken:Refresh:Error", "error", err, "user_id", conn.UserID, "provider", conn.Provider)
		return "", errors.NewAppError(errors.ErrTokenExpired, "session expired, please reconnect your calendar", err)
	}

	ciphertext, iv, err := t.cipher.Encrypt(result.AccessToken)
	if err != nil {
		logger.Error("TokenRefresher:EnsureAccessToken:Encrypt:Error", "error", err, "user_id", conn.UserID)
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to encrypt refreshed token", err)
	}

	newExpiry := time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	updated, err := t.repo.UpdateAccessToken(ctx, conn.UserID, conn.Provider, ciphertext, iv, newExpiry, conn.TokenExpiresAt)
	if err != nil {
		// The refreshed token is still good for this request even when the
		// write fails; the next request will refresh again.
		logger.Error("TokenRefresher:EnsureAccessToken:Persist:Error", "error", err, "user_id", conn.UserID, "provider", conn.Provider)
	} else if !updated {
		// A concurrent request refreshed first and its write wins. Logged so
		// the race is visible in practice.
		logger.Warn("TokenRefresher:EnsureAccessToken:RefreshRaceLost", "user_id", conn.UserID, "provider", conn.Provider)
	}

	conn.AccessTokenCiphertext = &ciphertext
	conn.AccessTokenIV = &iv
	conn.TokenExpiresAt = newExpiry

	return result.AccessToken, nil
}
