package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"resource-scheduler/core/config"
	"resource-scheduler/core/logger"
)

type GoogleAdapter struct {
	cfg    config.ProviderAPIConfig
	client *http.Client

	// Endpoints are fields so tests can point the adapter at a fake server.
	CalendarAPIBase string
	TokenEndpoint   string
	RevokeEndpoint  string
}

func NewGoogleAdapter(cfg config.ProviderAPIConfig) *GoogleAdapter {
	return &GoogleAdapter{
		cfg:             cfg,
		client:          newHTTPClient(),
		CalendarAPIBase: "https://www.googleapis.com/calendar/v3",
		TokenEndpoint:   "https://oauth2.googleapis.com/token",
		RevokeEndpoint:  "https://oauth2.googleapis.com/revoke",
	}
}

func (a *GoogleAdapter) Name() string {
	return Google
}

func (a *GoogleAdapter) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		RedirectURL:  a.cfg.RedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/calendar.events",
			"https://www.googleapis.com/auth/userinfo.email",
		},
		Endpoint: google.Endpoint,
	}
}

func (a *GoogleAdapter) PrimaryCalendar(ctx context.Context, accessToken string) (*CalendarInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", a.CalendarAPIBase+"/users/me/calendarList/primary", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Provider: Google, StatusCode: resp.StatusCode, Details: string(body)}
	}

	var cal struct {
		ID      string `json:"id"`
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cal); err != nil {
		return nil, fmt.Errorf("failed to decode calendar response: %w", err)
	}
	if cal.ID == "" {
		return nil, nil
	}

	// The primary calendar id is the account's email address.
	return &CalendarInfo{ID: cal.ID, Email: cal.ID, Name: cal.Summary}, nil
}

func (a *GoogleAdapter) RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	data := url.Values{}
	data.Set("client_id", a.cfg.ClientID)
	data.Set("client_secret", a.cfg.ClientSecret)
	data.Set("refresh_token", refreshToken)
	data.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, "POST", a.TokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken      string `json:"access_token"`
		ExpiresIn        int    `json:"expires_in"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("google token refresh error: %s - %s", result.Error, result.ErrorDescription)
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("no access_token in refresh response")
	}
	if result.ExpiresIn <= 0 {
		result.ExpiresIn = 3600 // Default 1 hour
	}

	return &RefreshResult{AccessToken: result.AccessToken, ExpiresIn: result.ExpiresIn}, nil
}

func (a *GoogleAdapter) CreateEvent(ctx context.Context, accessToken, calendarID string, ev *EventPayload) (*EventResult, error) {
	event := map[string]any{
		"summary":     ev.Title,
		"description": ev.Description,
		"start": map[string]string{
			"dateTime": ev.Start.Format(providerTimeFormat),
			"timeZone": ev.Timezone,
		},
		"end": map[string]string{
			"dateTime": ev.End.Format(providerTimeFormat),
			"timeZone": ev.Timezone,
		},
	}

	eventJSON, _ := json.Marshal(event)
	endpoint := fmt.Sprintf("%s/calendars/%s/events", a.CalendarAPIBase, url.PathEscape(calendarID))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(string(eventJSON)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Provider: Google, StatusCode: resp.StatusCode, Details: string(body)}
	}

	var result struct {
		ID       string `json:"id"`
		HTMLLink string `json:"htmlLink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode event response: %w", err)
	}

	return &EventResult{EventID: result.ID, WebLink: result.HTMLLink}, nil
}

func (a *GoogleAdapter) DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		a.CalendarAPIBase, url.PathEscape(calendarID), url.PathEscape(eventID))
	req, err := http.NewRequestWithContext(ctx, "DELETE", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 404 means the event is already gone; the delete is idempotent.
	if resp.StatusCode == http.StatusNotFound {
		logger.Info("GoogleAdapter:DeleteEvent:AlreadyGone", "event_id", eventID)
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Provider: Google, StatusCode: resp.StatusCode, Details: string(body)}
	}
	return nil
}

func (a *GoogleAdapter) RevokeToken(ctx context.Context, accessToken string) error {
	data := url.Values{}
	data.Set("token", accessToken)

	req, err := http.NewRequestWithContext(ctx, "POST", a.RevokeEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Provider: Google, StatusCode: resp.StatusCode, Details: string(body)}
	}
	return nil
}

// EventEditLink builds the calendar.google.com event-edit deep link from
// the base64url encoding of "<eventID> <calendarID>".
func (a *GoogleAdapter) EventEditLink(calendarID, eventID, _ string) string {
	eid := base64.RawURLEncoding.EncodeToString([]byte(eventID + " " + calendarID))
	return "https://calendar.google.com/calendar/u/0/r/eventedit/" + eid
}
