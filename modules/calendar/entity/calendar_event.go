package entity

import (
	"time"

	"github.com/google/uuid"
)

// CalendarEvent is the local mirror of an event created on a provider
// calendar, kept for display and deletion without re-querying the provider.
// Unique per (provider, external_event_id); created only after the provider
// confirms creation.
type CalendarEvent struct {
	ID              uuid.UUID `db:"id" json:"id"`
	UserID          uuid.UUID `db:"user_id" json:"user_id"`
	ResourceID      string    `db:"resource_id" json:"resource_id"`
	Provider        string    `db:"provider" json:"provider"`
	ExternalEventID string    `db:"external_event_id" json:"external_event_id"`
	CalendarID      string    `db:"calendar_id" json:"calendar_id"`

	EventTitle string    `db:"event_title" json:"event_title"`
	EventStart time.Time `db:"event_start" json:"event_start"`
	EventEnd   time.Time `db:"event_end" json:"event_end"`
	EventNotes string    `db:"event_notes" json:"event_notes"`
	EventURL   string    `db:"event_url" json:"event_url"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}
