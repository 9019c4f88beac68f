package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"resource-scheduler/core/config"
	"resource-scheduler/core/constants"
)

const (
	Google    = "google"
	Microsoft = "microsoft"
)

// providerTimeFormat is the wall-clock dateTime both APIs accept when the
// timezone is carried in its own field.
const providerTimeFormat = "2006-01-02T15:04:05"

// EventPayload is the provider-agnostic event to create; each adapter maps
// it to its own JSON field names.
type EventPayload struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Timezone    string
}

type EventResult struct {
	EventID string
	// WebLink is the provider's shareable URL for the event (htmlLink for
	// Google, webLink for Microsoft).
	WebLink string
}

type CalendarInfo struct {
	ID    string
	Email string
	Name  string
}

type RefreshResult struct {
	AccessToken string
	ExpiresIn   int
}

// APIError is any non-2xx response from a provider's API for the primary
// requested action.
type APIError struct {
	Provider   string
	StatusCode int
	Details    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Details)
}

// Adapter abstracts one calendar back end. Implementations never swallow a
// failed create/delete of the primary requested action; best-effort
// secondary actions are the caller's concern.
type Adapter interface {
	Name() string
	OAuthConfig() *oauth2.Config
	// PrimaryCalendar returns (nil, nil) when the provider reports no
	// usable primary calendar.
	PrimaryCalendar(ctx context.Context, accessToken string) (*CalendarInfo, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshResult, error)
	CreateEvent(ctx context.Context, accessToken, calendarID string, ev *EventPayload) (*EventResult, error)
	// DeleteEvent treats a 404 as success: the event is already gone.
	DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error
	// RevokeToken is a no-op for providers without a revoke endpoint.
	RevokeToken(ctx context.Context, accessToken string) error
	// EventEditLink builds the direct-open URL for the created event.
	EventEditLink(calendarID, eventID, webLink string) string
}

// Resolver maps a provider name to its adapter. Unknown names are an error,
// never a silent fallthrough to another provider's branch.
type Resolver func(name string) (Adapter, error)

// ForName is the production resolver, reading credentials from config.
func ForName(name string) (Adapter, error) {
	cfg, ok := config.GetSafe()
	if !ok {
		return nil, fmt.Errorf("config not initialized")
	}
	switch name {
	case Google:
		return NewGoogleAdapter(cfg.GoogleAPI), nil
	case Microsoft:
		return NewMicrosoftAdapter(cfg.Microsoft), nil
	default:
		return nil, fmt.Errorf("unknown calendar provider %q", name)
	}
}

// Known reports whether name is a supported provider, for input validation
// at the boundary.
func Known(name string) bool {
	return name == Google || name == Microsoft
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: constants.ProviderHTTPTimeout}
}
