package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"resource-scheduler/core/config"
	"resource-scheduler/core/logger"
)

type MicrosoftAdapter struct {
	cfg    config.ProviderAPIConfig
	client *http.Client

	GraphAPIBase  string
	TokenEndpoint string
}

func NewMicrosoftAdapter(cfg config.ProviderAPIConfig) *MicrosoftAdapter {
	return &MicrosoftAdapter{
		cfg:           cfg,
		client:        newHTTPClient(),
		GraphAPIBase:  "https://graph.microsoft.com/v1.0",
		TokenEndpoint: "https://login.microsoftonline.com/common/oauth2/v2.0/token",
	}
}

func (a *MicrosoftAdapter) Name() string {
	return Microsoft
}

func (a *MicrosoftAdapter) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		RedirectURL:  a.cfg.RedirectURI,
		Scopes: []string{
			"offline_access",
			"Calendars.ReadWrite",
			"User.Read",
		},
		Endpoint: microsoft.AzureADEndpoint("common"),
	}
}

func (a *MicrosoftAdapter) PrimaryCalendar(ctx context.Context, accessToken string) (*CalendarInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", a.GraphAPIBase+"/me/calendar", nil)
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
		return nil, &APIError{Provider: Microsoft, StatusCode: resp.StatusCode, Details: string(body)}
	}

	var cal struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Owner struct {
			Address string `json:"address"`
		} `json:"owner"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cal); err != nil {
		return nil, fmt.Errorf("failed to decode calendar response: %w", err)
	}
	if cal.ID == "" {
		return nil, nil
	}

	email := cal.Owner.Address
	if email == "" {
		email = a.fetchUserEmail(ctx, accessToken)
	}

	return &CalendarInfo{ID: cal.ID, Email: email, Name: cal.Name}, nil
}

// fetchUserEmail is best-effort display metadata; failures leave the email
// empty rather than failing the connect.
func (a *MicrosoftAdapter) fetchUserEmail(ctx context.Context, accessToken string) string {
	req, err := http.NewRequestWithContext(ctx, "GET", a.GraphAPIBase+"/me", nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		logger.Warn("MicrosoftAdapter:fetchUserEmail:Error", "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var me struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return ""
	}
	if me.Mail != "" {
		return me.Mail
	}
	return me.UserPrincipalName
}

func (a *MicrosoftAdapter) RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshResult, error) {
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
		return nil, fmt.Errorf("microsoft token refresh error: %s - %s", result.Error, result.ErrorDescription)
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("no access_token in refresh response")
	}
	if result.ExpiresIn <= 0 {
		result.ExpiresIn = 3600
	}

	return &RefreshResult{AccessToken: result.AccessToken, ExpiresIn: result.ExpiresIn}, nil
}

func (a *MicrosoftAdapter) CreateEvent(ctx context.Context, accessToken, calendarID string, ev *EventPayload) (*EventResult, error) {
	tz := ev.Timezone
	if tz == "" {
		tz = "UTC"
	}

	event := map[string]any{
		"subject": ev.Title,
		"body": map[string]string{
			"contentType": "text",
			"content":     ev.Description,
		},
		"start": map[string]string{
			"dateTime": ev.Start.Format(providerTimeFormat),
			"timeZone": tz,
		},
		"end": map[string]string{
			"dateTime": ev.End.Format(providerTimeFormat),
			"timeZone": tz,
		},
	}

	jsonBody, _ := json.Marshal(event)
	endpoint := a.eventsEndpoint(calendarID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonBody))
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
		return nil, &APIError{Provider: Microsoft, StatusCode: resp.StatusCode, Details: string(body)}
	}

	var result struct {
		ID      string `json:"id"`
		WebLink string `json:"webLink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode event response: %w", err)
	}

	return &EventResult{EventID: result.ID, WebLink: result.WebLink}, nil
}

func (a *MicrosoftAdapter) DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error {
	endpoint := a.eventsEndpoint(calendarID) + "/" + url.PathEscape(eventID)
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

	if resp.StatusCode == http.StatusNotFound {
		logger.Info("MicrosoftAdapter:DeleteEvent:AlreadyGone", "event_id", eventID)
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Provider: Microsoft, StatusCode: resp.StatusCode, Details: string(body)}
	}
	return nil
}

// RevokeToken is a no-op: Microsoft Graph has no token revocation call.
// The absence is not an error; tokens lapse on their own.
func (a *MicrosoftAdapter) RevokeToken(_ context.Context, _ string) error {
	return nil
}

// EventEditLink returns the Graph webLink, which already opens the event in
// Outlook's calendar UI.
func (a *MicrosoftAdapter) EventEditLink(_, _, webLink string) string {
	return webLink
}

func (a *MicrosoftAdapter) eventsEndpoint(calendarID string) string {
	if calendarID == "" {
		return a.GraphAPIBase + "/me/events"
	}
	return a.GraphAPIBase + "/me/calendars/" + url.PathEscape(calendarID) + "/events"
}
