package entity

import (
	"time"

	"github.com/google/uuid"

	"resource-scheduler/core/crypto"
)

// CalendarConnection stores a user's calendar provider credential. Unique
// per (user_id, provider). Token columns hold ciphertext with a separate IV;
// rows written before encryption was introduced have a NULL IV and are read
// as plaintext.
type CalendarConnection struct {
	ID       uuid.UUID `db:"id" json:"id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Provider string    `db:"provider" json:"provider"` // "google" | "microsoft"

	AccessTokenCiphertext  *string `db:"access_token_ciphertext" json:"-"`
	AccessTokenIV          *string `db:"access_token_iv" json:"-"`
	RefreshTokenCiphertext *string `db:"refresh_token_ciphertext" json:"-"`
	RefreshTokenIV         *string `db:"refresh_token_iv" json:"-"`

	// TokenExpiresAt always reflects the current access token, never the
	// refresh token's lifetime.
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`

	CalendarID    string `db:"calendar_id" json:"calendar_id"`
	CalendarEmail string `db:"calendar_email" json:"calendar_email"`
	CalendarName  string `db:"calendar_name" json:"calendar_name"`

	ConnectedAt   time.Time  `db:"connected_at" json:"connected_at"`
	LastSyncedAt  *time.Time `db:"last_synced_at" json:"last_synced_at,omitempty"`
	LastRefreshAt *time.Time `db:"last_refresh_at" json:"last_refresh_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (CalendarConnection) TableName() string {
	return "calendar_connections"
}

// AccessToken returns the stored access token as a read-time tagged value.
func (c *CalendarConnection) AccessToken() crypto.StoredToken {
	return crypto.TokenFromColumns(c.AccessTokenCiphertext, c.AccessTokenIV)
}

// RefreshToken returns the stored refresh token as a read-time tagged value.
func (c *CalendarConnection) RefreshToken() crypto.StoredToken {
	return crypto.TokenFromColumns(c.RefreshTokenCiphertext, c.RefreshTokenIV)
}
