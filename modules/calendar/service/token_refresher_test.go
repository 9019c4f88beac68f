package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resource-scheduler/core/crypto"
	coreerrors "resource-scheduler/core/errors"
	"resource-scheduler/modules/calendar/entity"
	"resource-scheduler/modules/calendar/provider"
)

func testConnection(t *testing.T, c *crypto.Cipher, expiresAt time.Time) *entity.CalendarConnection {
	t.Helper()
	accessCT, accessIV := encryptedColumns(t, c, "stored-access")
	refreshCT, refreshIV := encryptedColumns(t, c, "stored-refresh")
	return &entity.CalendarConnection{
		ID:                     uuid.New(),
		UserID:                 uuid.New(),
		Provider:               provider.Google,
		AccessTokenCiphertext:  accessCT,
		AccessTokenIV:          accessIV,
		RefreshTokenCiphertext: refreshCT,
		RefreshTokenIV:         refreshIV,
		TokenExpiresAt:         expiresAt,
		CalendarID:             "user@example.com",
	}
}

func TestEnsureAccessTokenFresh(t *testing.T) {
	cipher := newTestCipher(t)
	repo := newFakeRepo()
	refresher := NewTokenRefresher(repo, cipher)

	// Comfortably outside the five minute margin.
	conn := testConnection(t, cipher, time.Now().Add(30*time.Minute))
	adapter := &fakeAdapter{name: provider.Google}

	token, appErr := refresher.EnsureAccessToken(context.Background(), conn, adapter)
	require.Nil(t, appErr)
	assert.Equal(t, "stored-access", token)
	assert.Zero(t, adapter.refreshCalls)
	assert.Zero(t, repo.updateCalls)
}

func TestEnsureAccessTokenFreshnessBoundary(t *testing.T) {
	cipher := newTestCipher(t)
	repo := newFakeRepo()
	refresher := NewTokenRefresher(repo, cipher)
	adapter := &fakeAdapter{
		name:          provider.Google,
		refreshResult: &provider.RefreshResult{AccessToken: "fresh-access", ExpiresIn: 3600},
	}

	// Just outside the margin: the stored token is still used.
	outside := testConnection(t, cipher, time.Now().Add(tokenExpiryMargin+5*time.Second))
	token, appErr := refresher.EnsureAccessToken(context.Background(), outside, adapter)
	require.Nil(t, appErr)
	assert.Equal(t, "stored-access", token)
	assert.Zero(t, adapter.refreshCalls)

	// One second inside the margin: refresh is mandatory.
	inside := testConnection(t, cipher, time.Now().Add(tokenExpiryMargin-time.Second))
	require.NoError(t, repo.UpsertConnection(context.Background(), inside))
	token, appErr = refresher.EnsureAccessToken(context.Background(), inside, adapter)
	require.Nil(t, appErr)
	assert.Equal(t, "fresh-access", token)
	assert.Equal(t, 1, adapter.refreshCalls)
}

func TestEnsureAccessTokenInsideMarginRefreshes(t *testing.T) {
	cipher := newTestCipher(t)
	repo := newFakeRepo()
	refresher := NewTokenRefresher(repo, cipher)

	// Not yet expired, but within the margin; must refresh.
	prevExpiry := time.Now().Add(3 * time.Minute)
	conn := testConnection(t, cipher, prevExpiry)
	require.NoError(t, repo.UpsertConnection(context.Background(), conn))

	adapter := &fakeAdapter{
		name:          provider.Google,
		refreshResult: &provider.RefreshResult{AccessToken: "fresh-access", ExpiresIn: 3600},
	}

	token, appErr := refresher.EnsureAccessToken(context.Background(), conn, adapter)
	require.Nil(t, appErr)
	assert.Equal(t, "fresh-access", token)
	assert.Equal(t, 1, adapter.refreshCalls)

	// Stored row carries the new token and a later expiry.
	stored, err := repo.GetConnection(context.Background(), conn.UserID, conn.Provider)
	require.NoError(t, err)
	assert.True(t, stored.TokenExpiresAt.After(prevExpiry))
	plaintext, err := stored.AccessToken().Reveal(cipher)
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", plaintext)
}

func TestEnsureAccessTokenExpiredRefreshes(t *testing.T) {
	cipher := newTestCipher(t)
	repo := newFakeRepo()
	refresher := NewTokenRefresher(repo, cipher)

	conn := testConnection(t, cipher, time.Now().Add(-time.Hour))
	require.NoError(t, repo.UpsertConnection(context.Background(), conn))

	adapter := &fakeAdapter{
		name:          provider.Google,
		refreshResult: &provider.RefreshResult{AccessToken: "fresh-access", ExpiresIn: 3600},
	}

	token, appErr := refresher.EnsureAccessToken(context.Background(), conn, adapter)
	require.Nil(t, appErr)
	assert.Equal(t, "fresh-access", token)
}

func TestEnsureAccessTokenRefreshFailureLeavesRowUntouched(t *testing.T) {
	cipher := newTestCipher(t)
	repo := newFakeRepo()
	refresher := NewTokenRefresher(repo, cipher)

	prevExpiry := time.Now().Add(-time.Minute)
	conn := testConnection(t, cipher, prevExpiry)
	require.NoError(t, repo.UpsertConnection(context.Background(), conn))

	adapter := &fakeAdapter{
		name:       provider.Google,
		refreshErr: errors.New("invalid_grant"),
	}

	_, appErr := refresher.EnsureAccessToken(context.Background(), conn, adapter)
	require.NotNil(t, appErr)
	assert.Equal(t, coreerrors.ErrTokenExpired, appErr.Code)
	assert.Contains(t, appErr.Message, "reconnect")

	// Nothing was written; the connection still holds the old tokens.
	assert.Zero(t, repo.updateCalls)
	stored, err := repo.GetConnection(context.Background(), conn.UserID, conn.Provider)
	require.NoError(t, err)
	assert.True(t, stored.TokenExpiresAt.Equal(prevExpiry))
	plaintext, err := stored.AccessToken().Reveal(cipher)
	require.NoError(t, err)
	assert.Equal(t, "stored-access", plaintext)
}

func TestEnsureAccessTokenMissingRefreshToken(t *testing.T) {
	cipher := newTestCipher(t)
	repo := newFakeRepo()
	refresher := NewTokenRefresher(repo, cipher)

	conn := testConnection(t, cipher, time.Now().Add(-time.Minute))
	conn.RefreshTokenCiphertext = nil
	conn.RefreshTokenIV = nil

	adapter := &fakeAdapter{name: provider.Google}
	_, appErr := refresher.EnsureAccessToken(context.Background(), conn, adapter)
	require.NotNil(t, appErr)
	assert.Equal(t, coreerrors.ErrTokenExpired, appErr.Code)
	assert.Zero(t, adapter.refreshCalls)
}

func TestEnsureAccessTokenDecryptFailure(t *testing.T) {
	cipher := newTestCipher(t)
	repo := newFakeRepo()
	refresher := NewTokenRefresher(repo, cipher)

	// Ciphertext encrypted under a different key is unrecoverable.
	otherKeyRaw := "10234567890123456789012345678901"
	otherCipher, err := crypto.NewCipher(encodeKey(otherKeyRaw))
	require.NoError(t, err)

	conn := testConnection(t, cipher, time.Now().Add(30*time.Minute))
	badCT, badIV := encryptedColumns(t, otherCipher, "stored-access")
	conn.AccessTokenCiphertext = badCT
	conn.AccessTokenIV = badIV

	adapter := &fakeAdapter{name: provider.Google}
	_, appErr := refresher.EnsureAccessToken(context.Background(), conn, adapter)
	require.NotNil(t, appErr)
	assert.Equal(t, coreerrors.ErrDecrypt, appErr.Code)
}

func TestEnsureAccessTokenRaceLostStillReturnsToken(t *testing.T) {
	cipher := newTestCipher(t)
	repo := newFakeRepo()
	repo.casLoses = true
	refresher := NewTokenRefresher(repo, cipher)

	conn := testConnection(t, cipher, time.Now().Add(-time.Minute))
	require.NoError(t, repo.UpsertConnection(context.Background(), conn))

	adapter := &fakeAdapter{
		name:          provider.Google,
		refreshResult: &provider.RefreshResult{AccessToken: "fresh-access", ExpiresIn: 3600},
	}

	// A concurrent refresher won the write; this request still proceeds
	// with its own valid token.
	token, appErr := refresher.EnsureAccessToken(context.Background(), conn, adapter)
	require.Nil(t, appErr)
	assert.Equal(t, "fresh-access", token)
	assert.Equal(t, 1, repo.updateCalls)
}

func TestEnsureAccessTokenPersistErrorStillReturnsToken(t *testing.T) {
	cipher := newTestCipher(t)
	repo := newFakeRepo()
	repo.updateErr = errors.New("connection reset")
	refresher := NewTokenRefresher(repo, cipher)

	conn := testConnection(t, cipher, time.Now().Add(-time.Minute))
	require.NoError(t, repo.UpsertConnection(context.Background(), conn))

	adapter := &fakeAdapter{
		name:          provider.Google,
		refreshResult: &provider.RefreshResult{AccessToken: "fresh-access", ExpiresIn: 3600},
	}

	token, appErr := refresher.EnsureAccessToken(context.Background(), conn, adapter)
	require.Nil(t, appErr)
	assert.Equal(t, "fresh-access", token)
}
