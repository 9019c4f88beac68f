package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"resource-scheduler/core/database"
	"resource-scheduler/core/logger"
	"resource-scheduler/modules/calendar/entity"
)

// ErrNotFound is returned when no row matches. Callers distinguish this
// from decryption failures because the recovery action differs.
var ErrNotFound = sql.ErrNoRows

type CalendarRepository interface {
	// Calendar connections
	GetConnection(ctx context.Context, userID uuid.UUID, provider string) (*entity.CalendarConnection, error)
	UpsertConnection(ctx context.Context, conn *entity.CalendarConnection) error
	// UpdateAccessToken persists a refreshed access token without touching
	// the refresh-token columns. The update only applies when the stored
	// expiry still equals prevExpiry; a false return means another request
	// refreshed concurrently and won the write.
	UpdateAccessToken(ctx context.Context, userID uuid.UUID, provider, ciphertext, iv string, newExpiry, prevExpiry time.Time) (bool, error)
	DeleteConnection(ctx context.Context, userID uuid.UUID, provider string) error
	// ListLegacyConnections returns connections still carrying plaintext
	// token columns (NULL IV), for the one-time encryption migration.
	ListLegacyConnections(ctx context.Context, limit int) ([]entity.CalendarConnection, error)
	ReplaceTokens(ctx context.Context, connID uuid.UUID, accessCiphertext, accessIV, refreshCiphertext, refreshIV *string) error

	// Event mirrors
	CreateEvent(ctx context.Context, event *entity.CalendarEvent) error
	GetEventByID(ctx context.Context, userID, eventID uuid.UUID) (*entity.CalendarEvent, error)
	DeleteEventByID(ctx context.Context, userID, eventID uuid.UUID) error
	ListEventsByUser(ctx context.Context, userID uuid.UUID) ([]entity.CalendarEvent, error)
}

type calendarRepository struct {
	db database.IDatabase
}

func NewCalendarRepository(db database.IDatabase) CalendarRepository {
	return &calendarRepository{db: db}
}

func (r *calendarRepository) GetConnection(ctx context.Context, userID uuid.UUID, provider string) (*entity.CalendarConnection, error) {
	var conn entity.CalendarConnection
	query := `
		SELECT id, user_id, provider,
		       access_token_ciphertext, access_token_iv,
		       refresh_token_ciphertext, refresh_token_iv,
		       token_expires_at, calendar_id, calendar_email, calendar_name,
		       connected_at, last_synced_at, last_refresh_at, created_at, updated_at
		FROM calendar_connections
		WHERE user_id = $1 AND provider = $2
	`
	err := r.db.GetContext(ctx, &conn, query, userID, provider)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		logger.Error("CalendarRepository:GetConnection:Error", "error", err, "user_id", userID, "provider", provider)
		return nil, err
	}
	return &conn, nil
}

// UpsertConnection atomically replaces the connection for (user, provider),
// so a second connect overwrites the first one's tokens.
func (r *calendarRepository) UpsertConnection(ctx context.Context, conn *entity.CalendarConnection) error {
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	query := `
		INSERT INTO calendar_connections (
			id, user_id, provider,
			access_token_ciphertext, access_token_iv,
			refresh_token_ciphertext, refresh_token_iv,
			token_expires_at, calendar_id, calendar_email, calendar_name,
			connected_at, created_at, updated_at
		)
		VALUES (
			:id, :user_id, :provider,
			:access_token_ciphertext, :access_token_iv,
			:refresh_token_ciphertext, :refresh_token_iv,
			:token_expires_at, :calendar_id, :calendar_email, :calendar_name,
			:connected_at, NOW(), NOW()
		)
		ON CONFLICT (user_id, provider)
		DO UPDATE SET
			access_token_ciphertext = EXCLUDED.access_token_ciphertext,
			access_token_iv = EXCLUDED.access_token_iv,
			refresh_token_ciphertext = EXCLUDED.refresh_token_ciphertext,
			refresh_token_iv = EXCLUDED.refresh_token_iv,
			token_expires_at = EXCLUDED.token_expires_at,
			calendar_id = EXCLUDED.calendar_id,
			calendar_email = EXCLUDED.calendar_email,
			calendar_name = EXCLUDED.calendar_name,
			connected_at = EXCLUDED.connected_at,
			updated_at = NOW()
	`
	_, err := r.db.NamedExecContext(ctx, query, conn)
	if err != nil {
		logger.Error("CalendarRepository:UpsertConnection:Error", "error", err, "user_id", conn.UserID, "provider", conn.Provider)
		return err
	}
	return nil
}

func (r *calendarRepository) UpdateAccessToken(ctx context.Context, userID uuid.UUID, provider, ciphertext, iv string, newExpiry, prevExpiry time.Time) (bool, error) {
	query := `
		UPDATE calendar_connections
		SET access_token_ciphertext = $1,
		    access_token_iv = $2,
		    token_expires_at = $3,
		    last_refresh_at = NOW(),
		    updated_at = NOW()
		WHERE user_id = $4 AND provider = $5 AND token_expires_at = $6
	`
	result, err := r.db.SQLx().ExecContext(ctx, query, ciphertext, iv, newExpiry, userID, provider, prevExpiry)
	if err != nil {
		logger.Error("CalendarRepository:UpdateAccessToken:Error", "error", err, "user_id", userID, "provider", provider)
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *calendarRepository) DeleteConnection(ctx context.Context, userID uuid.UUID, provider string) error {
	query := `DELETE FROM calendar_connections WHERE user_id = $1 AND provider = $2`
	if err := r.db.ExecContext(ctx, query, userID, provider); err != nil {
		logger.Error("CalendarRepository:DeleteConnection:Error", "error", err, "user_id", userID, "provider", provider)
		return err
	}
	return nil
}

func (r *calendarRepository) ListLegacyConnections(ctx context.Context, limit int) ([]entity.CalendarConnection, error) {
	var connections []entity.CalendarConnection
	query := `
		SELECT id, user_id, provider,
		       access_token_ciphertext, access_token_iv,
		       refresh_token_ciphertext, refresh_token_iv,
		       token_expires_at, calendar_id, calendar_email, calendar_name,
		       connected_at, last_synced_at, last_refresh_at, created_at, updated_at
		FROM calendar_connections
		WHERE (access_token_ciphertext IS NOT NULL AND access_token_iv IS NULL)
		   OR (refresh_token_ciphertext IS NOT NULL AND refresh_token_iv IS NULL)
		ORDER BY created_at
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &connections, query, limit); err != nil {
		logger.Error("CalendarRepository:ListLegacyConnections:Error", "error", err)
		return nil, err
	}
	return connections, nil
}

func (r *calendarRepository) ReplaceTokens(ctx context.Context, connID uuid.UUID, accessCiphertext, accessIV, refreshCiphertext, refreshIV *string) error {
	query := `
		UPDATE calendar_connections
		SET access_token_ciphertext = $1,
		    access_token_iv = $2,
		    refresh_token_ciphertext = $3,
		    refresh_token_iv = $4,
		    updated_at = NOW()
		WHERE id = $5
	`
	if err := r.db.ExecContext(ctx, query, accessCiphertext, accessIV, refreshCiphertext, refreshIV, connID); err != nil {
		logger.Error("CalendarRepository:ReplaceTokens:Error", "error", err, "connection_id", connID)
		return err
	}
	return nil
}

func (r *calendarRepository) CreateEvent(ctx context.Context, event *entity.CalendarEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	query := `
		INSERT INTO calendar_events (
			id, user_id, resource_id, provider, external_event_id, calendar_id,
			event_title, event_start, event_end, event_notes, event_url, created_at
		)
		VALUES (
			:id, :user_id, :resource_id, :provider, :external_event_id, :calendar_id,
			:event_title, :event_start, :event_end, :event_notes, :event_url, NOW()
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		logger.Error("CalendarRepository:CreateEvent:Error", "error", err, "user_id", event.UserID)
		return err
	}
	return nil
}

func (r *calendarRepository) GetEventByID(ctx context.Context, userID, eventID uuid.UUID) (*entity.CalendarEvent, error) {
	var event entity.CalendarEvent
	query := `
		SELECT id, user_id, resource_id, provider, external_event_id, calendar_id,
		       event_title, event_start, event_end, event_notes, event_url, created_at
		FROM calendar_events
		WHERE id = $1 AND user_id = $2
	`
	err := r.db.GetContext(ctx, &event, query, eventID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		logger.Error("CalendarRepository:GetEventByID:Error", "error", err, "event_id", eventID, "user_id", userID)
		return nil, err
	}
	return &event, nil
}

func (r *calendarRepository) DeleteEventByID(ctx context.Context, userID, eventID uuid.UUID) error {
	query := `DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`
	if err := r.db.ExecContext(ctx, query, eventID, userID); err != nil {
		logger.Error("CalendarRepository:DeleteEventByID:Error", "error", err, "event_id", eventID, "user_id", userID)
		return err
	}
	return nil
}

func (r *calendarRepository) ListEventsByUser(ctx context.Context, userID uuid.UUID) ([]entity.CalendarEvent, error) {
	var events []entity.CalendarEvent
	query := `
		SELECT id, user_id, resource_id, provider, external_event_id, calendar_id,
		       event_title, event_start, event_end, event_notes, event_url, created_at
		FROM calendar_events
		WHERE user_id = $1
		ORDER BY event_start DESC
	`
	if err := r.db.SelectContext(ctx, &events, query, userID); err != nil {
		logger.Error("CalendarRepository:ListEventsByUser:Error", "error", err, "user_id", userID)
		return nil, err
	}
	return events, nil
}
