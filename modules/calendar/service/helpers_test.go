package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"resource-scheduler/core/crypto"
	"resource-scheduler/modules/calendar/entity"
	"resource-scheduler/modules/calendar/provider"
	"resource-scheduler/modules/calendar/repository"
)

var testKey = encodeKey("01234567890123456789012345678901")

func encodeKey(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func newTestCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	c, err := crypto.NewCipher(testKey)
	require.NoError(t, err)
	return c
}

func encryptedColumns(t *testing.T, c *crypto.Cipher, plaintext string) (*string, *string) {
	t.Helper()
	ciphertext, iv, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	return &ciphertext, &iv
}

// fakeRepo is an in-memory CalendarRepository keyed the way the table is.
type fakeRepo struct {
	connections map[string]*entity.CalendarConnection
	events      map[uuid.UUID]*entity.CalendarEvent

	updateCalls    int
	updateErr      error
	casLoses       bool
	deletedConns   []string
	replacedTokens []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		connections: map[string]*entity.CalendarConnection{},
		events:      map[uuid.UUID]*entity.CalendarEvent{},
	}
}

func connKey(userID uuid.UUID, provider string) string {
	return userID.String() + "/" + provider
}

func (f *fakeRepo) GetConnection(_ context.Context, userID uuid.UUID, provider string) (*entity.CalendarConnection, error) {
	conn, ok := f.connections[connKey(userID, provider)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *conn
	return &copied, nil
}

func (f *fakeRepo) UpsertConnection(_ context.Context, conn *entity.CalendarConnection) error {
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	copied := *conn
	f.connections[connKey(conn.UserID, conn.Provider)] = &copied
	return nil
}

func (f *fakeRepo) UpdateAccessToken(_ context.Context, userID uuid.UUID, provider, ciphertext, iv string, newExpiry, prevExpiry time.Time) (bool, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return false, f.updateErr
	}
	if f.casLoses {
		return false, nil
	}
	conn, ok := f.connections[connKey(userID, provider)]
	if !ok || !conn.TokenExpiresAt.Equal(prevExpiry) {
		return false, nil
	}
	conn.AccessTokenCiphertext = &ciphertext
	conn.AccessTokenIV = &iv
	conn.TokenExpiresAt = newExpiry
	now := time.Now()
	conn.LastRefreshAt = &now
	return true, nil
}

func (f *fakeRepo) DeleteConnection(_ context.Context, userID uuid.UUID, provider string) error {
	delete(f.connections, connKey(userID, provider))
	f.deletedConns = append(f.deletedConns, provider)
	return nil
}

func (f *fakeRepo) ListLegacyConnections(_ context.Context, limit int) ([]entity.CalendarConnection, error) {
	var out []entity.CalendarConnection
	for _, conn := range f.connections {
		if conn.AccessTokenIV == nil && conn.AccessTokenCiphertext != nil {
			out = append(out, *conn)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) ReplaceTokens(_ context.Context, connID uuid.UUID, accessCiphertext, accessIV, refreshCiphertext, refreshIV *string) error {
	for _, conn := range f.connections {
		if conn.ID == connID {
			conn.AccessTokenCiphertext = accessCiphertext
			conn.AccessTokenIV = accessIV
			conn.RefreshTokenCiphertext = refreshCiphertext
			conn.RefreshTokenIV = refreshIV
			f.replacedTokens = append(f.replacedTokens, connID)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) CreateEvent(_ context.Context, event *entity.CalendarEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeRepo) GetEventByID(_ context.Context, userID, eventID uuid.UUID) (*entity.CalendarEvent, error) {
	event, ok := f.events[eventID]
	if !ok || event.UserID != userID {
		return nil, repository.ErrNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeRepo) DeleteEventByID(_ context.Context, userID, eventID uuid.UUID) error {
	if event, ok := f.events[eventID]; ok && event.UserID == userID {
		delete(f.events, eventID)
	}
	return nil
}

func (f *fakeRepo) ListEventsByUser(_ context.Context, userID uuid.UUID) ([]entity.CalendarEvent, error) {
	var out []entity.CalendarEvent
	for _, event := range f.events {
		if event.UserID == userID {
			out = append(out, *event)
		}
	}
	return out, nil
}

// fakeCache stores OAuth states in a plain map; Consume removes on read.
type fakeCache struct {
	states map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{states: map[string]string{}}
}

func (f *fakeCache) SaveOAuthState(_ context.Context, state, payload string) error {
	f.states[state] = payload
	return nil
}

func (f *fakeCache) ConsumeOAuthState(_ context.Context, state string) (string, error) {
	payload := f.states[state]
	delete(f.states, state)
	return payload, nil
}

func (f *fakeCache) Close() error { return nil }

// fakeAdapter scripts provider behavior per test.
type fakeAdapter struct {
	name string

	// tokenURL points the code exchange at an httptest server.
	tokenURL string

	refreshResult *provider.RefreshResult
	refreshErr    error
	refreshCalls  int

	createResult *provider.EventResult
	createErr    error
	createCalls  int
	lastPayload  *provider.EventPayload
	lastToken    string

	deleteErr     error
	deleteCalls   int
	deletedEvents []string

	revokeErr    error
	revokeCalls  int
	revokedToken string

	calendar *provider.CalendarInfo
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/cb",
		Endpoint:     oauth2.Endpoint{TokenURL: f.tokenURL},
	}
}

func (f *fakeAdapter) PrimaryCalendar(_ context.Context, _ string) (*provider.CalendarInfo, error) {
	return f.calendar, nil
}

func (f *fakeAdapter) RefreshAccessToken(_ context.Context, _ string) (*provider.RefreshResult, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshResult, nil
}

func (f *fakeAdapter) CreateEvent(_ context.Context, accessToken, _ string, ev *provider.EventPayload) (*provider.EventResult, error) {
	f.createCalls++
	f.lastToken = accessToken
	f.lastPayload = ev
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeAdapter) DeleteEvent(_ context.Context, _, _, eventID string) error {
	f.deleteCalls++
	f.deletedEvents = append(f.deletedEvents, eventID)
	return f.deleteErr
}

func (f *fakeAdapter) RevokeToken(_ context.Context, accessToken string) error {
	f.revokeCalls++
	f.revokedToken = accessToken
	return f.revokeErr
}

func (f *fakeAdapter) EventEditLink(_, eventID, webLink string) string {
	if webLink != "" {
		return webLink
	}
	return "https://fake.example/edit/" + eventID
}

func resolverFor(adapters map[string]provider.Adapter) provider.Resolver {
	return func(name string) (provider.Adapter, error) {
		a, ok := adapters[name]
		if !ok {
			return nil, fmt.Errorf("unknown calendar provider %q", name)
		}
		return a, nil
	}
}
