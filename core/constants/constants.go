package constants

import "time"

const (
	DefaultTimeout      = 30 * time.Second
	ProviderHTTPTimeout = 30 * time.Second

	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes

	RedisKeyOAuthState = "oauth_state:"
	OAuthStateTTL      = 10 * time.Minute

	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"

	// TaskMigrateTokens re-encrypts legacy plaintext token rows.
	TaskMigrateTokens = "calendar:migrate_tokens"
)
