package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resource-scheduler/core/config"
)

func testGoogleAdapter(serverURL string) *GoogleAdapter {
	a := NewGoogleAdapter(config.ProviderAPIConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURI:  "http://localhost/callback",
	})
	a.CalendarAPIBase = serverURL
	a.TokenEndpoint = serverURL + "/token"
	a.RevokeEndpoint = serverURL + "/revoke"
	return a
}

func TestGoogleCreateEventPayload(t *testing.T) {
	var captured map[string]any
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/calendars/user@example.com/events", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"evt123","htmlLink":"https://www.google.com/calendar/event?eid=abc"}`))
	}))
	defer srv.Close()

	a := testGoogleAdapter(srv.URL)
	start := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	result, err := a.CreateEvent(context.Background(), "tok", "user@example.com", &EventPayload{
		Title:       "Library Study Room (Resource Booking)",
		Description: "Quiet room on the 3rd floor",
		Start:       start,
		End:         start.Add(45 * time.Minute),
		Timezone:    "Asia/Seoul",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "evt123", result.EventID)
	assert.Equal(t, "https://www.google.com/calendar/event?eid=abc", result.WebLink)

	assert.Equal(t, "Library Study Room (Resource Booking)", captured["summary"])
	assert.Equal(t, "Quiet room on the 3rd floor", captured["description"])

	startField := captured["start"].(map[string]any)
	assert.Equal(t, "2026-03-01T14:00:00", startField["dateTime"])
	assert.Equal(t, "Asia/Seoul", startField["timeZone"])
	endField := captured["end"].(map[string]any)
	assert.Equal(t, "2026-03-01T14:45:00", endField["dateTime"])
}

func TestGoogleCreateEventAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"insufficient permissions"}}`))
	}))
	defer srv.Close()

	a := testGoogleAdapter(srv.URL)
	_, err := a.CreateEvent(context.Background(), "tok", "cal", &EventPayload{Title: "x"})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, Google, apiErr.Provider)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Details, "insufficient permissions")
}

func TestGoogleDeleteEventGoneIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := testGoogleAdapter(srv.URL)
	err := a.DeleteEvent(context.Background(), "tok", "cal", "missing-event")
	assert.NoError(t, err)
}

func TestGoogleDeleteEventFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	a := testGoogleAdapter(srv.URL)
	err := a.DeleteEvent(context.Background(), "tok", "cal", "evt")
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestGoogleRefreshAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.Form.Get("refresh_token"))
		assert.Equal(t, "test-client", r.Form.Get("client_id"))
		w.Write([]byte(`{"access_token":"new-access","expires_in":3599}`))
	}))
	defer srv.Close()

	a := testGoogleAdapter(srv.URL)
	result, err := a.RefreshAccessToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", result.AccessToken)
	assert.Equal(t, 3599, result.ExpiresIn)
}

func TestGoogleRefreshAccessTokenDefaultExpiry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"new-access"}`))
	}))
	defer srv.Close()

	a := testGoogleAdapter(srv.URL)
	result, err := a.RefreshAccessToken(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, 3600, result.ExpiresIn)
}

func TestGoogleRefreshAccessTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`))
	}))
	defer srv.Close()

	a := testGoogleAdapter(srv.URL)
	_, err := a.RefreshAccessToken(context.Background(), "revoked")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestGooglePrimaryCalendar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me/calendarList/primary", r.URL.Path)
		w.Write([]byte(`{"id":"user@example.com","summary":"user@example.com"}`))
	}))
	defer srv.Close()

	a := testGoogleAdapter(srv.URL)
	cal, err := a.PrimaryCalendar(context.Background(), "tok")
	require.NoError(t, err)
	require.NotNil(t, cal)
	assert.Equal(t, "user@example.com", cal.ID)
	assert.Equal(t, "user@example.com", cal.Email)
}

func TestGooglePrimaryCalendarMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := testGoogleAdapter(srv.URL)
	cal, err := a.PrimaryCalendar(context.Background(), "tok")
	require.NoError(t, err)
	assert.Nil(t, cal)
}

func TestGoogleRevokeToken(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotToken = r.Form.Get("token")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := testGoogleAdapter(srv.URL)
	require.NoError(t, a.RevokeToken(context.Background(), "live-token"))
	assert.Equal(t, "live-token", gotToken)
}

func TestGoogleEventEditLink(t *testing.T) {
	a := NewGoogleAdapter(config.ProviderAPIConfig{})
	link := a.EventEditLink("user@example.com", "evt123", "ignored")

	const prefix = "https://calendar.google.com/calendar/u/0/r/eventedit/"
	require.True(t, len(link) > len(prefix))
	decoded, err := base64.RawURLEncoding.DecodeString(link[len(prefix):])
	require.NoError(t, err)
	assert.Equal(t, "evt123 user@example.com", string(decoded))
}
