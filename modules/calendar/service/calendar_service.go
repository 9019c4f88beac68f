package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"resource-scheduler/core/cache"
	"resource-scheduler/core/crypto"
	"resource-scheduler/core/errors"
	"resource-scheduler/core/logger"
	"resource-scheduler/core/utils"
	"resource-scheduler/modules/calendar/dto"
	"resource-scheduler/modules/calendar/entity"
	"resource-scheduler/modules/calendar/provider"
	"resource-scheduler/modules/calendar/repository"
)

// eventTitleSuffix tags provider-side events created through the scheduler
// so they are recognizable in the user's calendar.
const eventTitleSuffix = " (Resource Booking)"

const defaultEventDuration = 30 * time.Minute

type CalendarService interface {
	// Connection lifecycle
	GetAuthURL(ctx context.Context, userID uuid.UUID, providerName string) (string, *errors.AppError)
	HandleCallback(ctx context.Context, state, code string) (string, *errors.AppError)
	Disconnect(ctx context.Context, userID uuid.UUID, providerName string) *errors.AppError
	GetConnections(ctx context.Context, userID uuid.UUID) ([]dto.ConnectionResponse, *errors.AppError)

	// Event lifecycle
	CreateEvent(ctx context.Context, userID uuid.UUID, req *dto.CreateEventRequest) (*dto.CreateEventResponse, *errors.AppError)
	DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) *errors.AppError

	// MigrateLegacyTokens converts plaintext token rows to ciphertext.
	// Invoked by the background migration task.
	MigrateLegacyTokens(ctx context.Context) (int, error)
}

type calendarService struct {
	repo      repository.CalendarRepository
	cache     cache.Cache
	cipher    *crypto.Cipher
	refresher *TokenRefresher
	providers provider.Resolver
}

func NewCalendarService(repo repository.CalendarRepository, c cache.Cache, cipher *crypto.Cipher, providers provider.Resolver) CalendarService {
	return &calendarService{
		repo:      repo,
		cache:     c,
		cipher:    cipher,
		refresher: NewTokenRefresher(repo, cipher),
		providers: providers,
	}
}

// GetAuthURL builds the provider consent URL and stores a one-time state
// binding the callback to the current user.
func (s *calendarService) GetAuthURL(ctx context.Context, userID uuid.UUID, providerName string) (string, *errors.AppError) {
	adapter, err := s.providers(providerName)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInvalidInput, "unknown calendar provider", err)
	}

	oauthConfig := adapter.OAuthConfig()
	if oauthConfig.ClientID == "" || oauthConfig.ClientSecret == "" || oauthConfig.RedirectURL == "" {
		return "", errors.NewAppError(errors.ErrInternalServer, "OAuth configuration is missing for provider "+providerName, nil)
	}

	state := utils.GenerateRandomString(32)
	if err := s.cache.SaveOAuthState(ctx, state, userID.String()+"|"+providerName); err != nil {
		logger.Error("CalendarService:GetAuthURL:SaveOAuthState:Error", "error", err, "user_id", userID)
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to store state token", err)
	}

	return oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// HandleCallback finishes the connect flow: validates the one-time state,
// exchanges the authorization code, resolves the primary calendar and
// upserts the connection. Returns the provider name for the redirect.
func (s *calendarService) HandleCallback(ctx context.Context, state, code string) (string, *errors.AppError) {
	payload, err := s.cache.ConsumeOAuthState(ctx, state)
	if err != nil {
		logger.Error("CalendarService:HandleCallback:ConsumeOAuthState:Error", "error", err)
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to validate state token", err)
	}
	if payload == "" {
		return "", errors.NewAppError(errors.ErrUnauthorized, "invalid or expired state token", nil)
	}

	userIDStr, providerName, found := strings.Cut(payload, "|")
	if !found {
		return "", errors.NewAppError(errors.ErrInternalServer, "malformed state payload", nil)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "malformed state payload", err)
	}

	adapter, err := s.providers(providerName)
	if err != nil {
		return providerName, errors.NewAppError(errors.ErrInvalidInput, "unknown calendar provider", err)
	}

	token, err := adapter.OAuthConfig().Exchange(ctx, code)
	if err != nil {
		logger.Error("CalendarService:HandleCallback:Exchange:Error", "error", err, "provider", providerName)
		return providerName, errors.NewAppError(errors.ErrProviderAPI, "failed to exchange authorization code", err)
	}

	calendar, err := adapter.PrimaryCalendar(ctx, token.AccessToken)
	if err != nil {
		logger.Error("CalendarService:HandleCallback:PrimaryCalendar:Error", "error", err, "provider", providerName)
		return providerName, errors.NewAppError(errors.ErrProviderAPI, "failed to fetch primary calendar", err)
	}
	if calendar == nil {
		return providerName, errors.NewAppError(errors.ErrNoPrimaryCalendar, "the provider returned no usable calendar", nil)
	}

	accessCiphertext, accessIV, err := s.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return providerName, errors.NewAppError(errors.ErrInternalServer, "failed to encrypt access token", err)
	}
	refreshCiphertext, refreshIV, err := s.cipher.Encrypt(token.RefreshToken)
	if err != nil {
		return providerName, errors.NewAppError(errors.ErrInternalServer, "failed to encrypt refresh token", err)
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}

	conn := &entity.CalendarConnection{
		UserID:                 userID,
		Provider:               providerName,
		AccessTokenCiphertext:  &accessCiphertext,
		AccessTokenIV:          &accessIV,
		RefreshTokenCiphertext: &refreshCiphertext,
		RefreshTokenIV:         &refreshIV,
		TokenExpiresAt:         expiresAt,
		CalendarID:             calendar.ID,
		CalendarEmail:          calendar.Email,
		CalendarName:           calendar.Name,
		ConnectedAt:            time.Now(),
	}

	if err := s.repo.UpsertConnection(ctx, conn); err != nil {
		logger.Error("CalendarService:HandleCallback:Upsert:Error", "error", err, "user_id", userID, "provider", providerName)
		return providerName, errors.NewAppError(errors.ErrInternalServer, "failed to save calendar connection", err)
	}

	logger.Info("CalendarService:HandleCallback:Connected",
		"user_id", userID,
		"provider", providerName,
		"calendar_id", calendar.ID,
		"expires_at", expiresAt,
	)
	return providerName, nil
}

func (s *calendarService) CreateEvent(ctx context.Context, userID uuid.UUID, req *dto.CreateEventRequest) (*dto.CreateEventResponse, *errors.AppError) {
	if appErr := validateCreateEvent(req); appErr != nil {
		return nil, appErr
	}

	conn, err := s.repo.GetConnection(ctx, userID, req.Provider)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NewAppError(errors.ErrNotConnected, "Calendar not connected", nil)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load calendar connection", err)
	}

	adapter, err := s.providers(req.Provider)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "unknown calendar provider", err)
	}

	accessToken, appErr := s.refresher.EnsureAccessToken(ctx, conn, adapter)
	if appErr != nil {
		return nil, appErr
	}

	start, err := time.Parse("2006-01-02T15:04", req.EventDate+"T"+req.EventTime)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid eventDate or eventTime", err)
	}
	duration := defaultEventDuration
	if req.Duration > 0 {
		duration = time.Duration(req.Duration) * time.Minute
	}
	end := start.Add(duration)

	payload := &provider.EventPayload{
		Title:       req.ResourceTitle + eventTitleSuffix,
		Description: buildEventDescription(req),
		Start:       start,
		End:         end,
		Timezone:    req.Timezone,
	}

	result, err := adapter.CreateEvent(ctx, accessToken, conn.CalendarID, payload)
	if err != nil {
		if apiErr, ok := err.(*provider.APIError); ok {
			logger.Error("CalendarService:CreateEvent:ProviderError",
				"provider", apiErr.Provider, "status", apiErr.StatusCode, "details", apiErr.Details, "user_id", userID)
			return nil, errors.NewAppError(errors.ErrProviderAPI,
				fmt.Sprintf("%s rejected the event (status %d)", apiErr.Provider, apiErr.StatusCode), apiErr)
		}
		logger.Error("CalendarService:CreateEvent:Error", "error", err, "user_id", userID)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create calendar event", err)
	}

	// Mirror the provider event locally so deletion works without
	// re-querying the provider. Best-effort: the provider-side event is
	// already created and is not rolled back on a mirror failure.
	mirror := &entity.CalendarEvent{
		UserID:          userID,
		ResourceID:      req.ResourceID,
		Provider:        req.Provider,
		ExternalEventID: result.EventID,
		CalendarID:      conn.CalendarID,
		EventTitle:      payload.Title,
		EventStart:      start,
		EventEnd:        end,
		EventNotes:      req.Notes,
		EventURL:        result.WebLink,
	}
	if err := s.repo.CreateEvent(ctx, mirror); err != nil {
		logger.Error("CalendarService:CreateEvent:Mirror:Error", "error", err, "user_id", userID, "external_event_id", result.EventID)
	}

	return &dto.CreateEventResponse{
		Success:      true,
		EventID:      result.EventID,
		EventURL:     result.WebLink,
		CalendarLink: adapter.EventEditLink(conn.CalendarID, result.EventID, result.WebLink),
	}, nil
}

// DeleteEvent removes the local mirror and best-effort deletes the
// provider-side event. Local deletion is the authoritative final step and
// succeeds regardless of the provider-side outcome.
func (s *calendarService) DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) *errors.AppError {
	event, err := s.repo.GetEventByID(ctx, userID, eventID)
	if err != nil {
		if err == repository.ErrNotFound {
			return errors.NewAppError(errors.ErrNotFound, "event not found", nil)
		}
		return errors.NewAppError(errors.ErrInternalServer, "failed to load event", err)
	}

	s.deleteProviderEvent(ctx, userID, event)

	if err := s.repo.DeleteEventByID(ctx, userID, eventID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to delete event", err)
	}
	return nil
}

// deleteProviderEvent attempts the provider-side delete. Failures are
// logged and never surfaced: a stale token skips the call rather than
// blocking the deletion on a refresh round trip.
func (s *calendarService) deleteProviderEvent(ctx context.Context, userID uuid.UUID, event *entity.CalendarEvent) {
	conn, err := s.repo.GetConnection(ctx, userID, event.Provider)
	if err != nil {
		logger.Info("CalendarService:DeleteEvent:NoConnection", "user_id", userID, "provider", event.Provider, "event_id", event.ID)
		return
	}

	if !time.Now().Before(conn.TokenExpiresAt.Add(-tokenExpiryMargin)) {
		logger.Info("CalendarService:DeleteEvent:TokenStale", "user_id", userID, "provider", event.Provider, "event_id", event.ID)
		return
	}

	accessToken, err := conn.AccessToken().Reveal(s.cipher)
	if err != nil {
		logger.Warn("CalendarService:DeleteEvent:Decrypt:Error", "error", err, "user_id", userID, "provider", event.Provider)
		return
	}

	adapter, err := s.providers(event.Provider)
	if err != nil {
		logger.Warn("CalendarService:DeleteEvent:UnknownProvider", "error", err, "provider", event.Provider)
		return
	}

	if err := adapter.DeleteEvent(ctx, accessToken, event.CalendarID, event.ExternalEventID); err != nil {
		logger.Warn("CalendarService:DeleteEvent:ProviderDelete:Error", "error", err, "user_id", userID, "external_event_id", event.ExternalEventID)
	}
}

// Disconnect revokes the provider token where the provider supports it and
// deletes the connection. The delete is the only step that can fail the
// operation.
func (s *calendarService) Disconnect(ctx context.Context, userID uuid.UUID, providerName string) *errors.AppError {
	conn, err := s.repo.GetConnection(ctx, userID, providerName)
	if err != nil && err != repository.ErrNotFound {
		return errors.NewAppError(errors.ErrInternalServer, "failed to load calendar connection", err)
	}

	if conn != nil {
		s.revokeToken(ctx, conn)
	}

	if err := s.repo.DeleteConnection(ctx, userID, providerName); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to delete calendar connection", err)
	}

	logger.Info("CalendarService:Disconnect:Done", "user_id", userID, "provider", providerName)
	return nil
}

func (s *calendarService) revokeToken(ctx context.Context, conn *entity.CalendarConnection) {
	adapter, err := s.providers(conn.Provider)
	if err != nil {
		logger.Warn("CalendarService:Disconnect:UnknownProvider", "error", err, "provider", conn.Provider)
		return
	}

	accessToken, err := conn.AccessToken().Reveal(s.cipher)
	if err != nil || accessToken == "" {
		logger.Warn("CalendarService:Disconnect:Decrypt:Error", "error", err, "user_id", conn.UserID, "provider", conn.Provider)
		return
	}

	if err := adapter.RevokeToken(ctx, accessToken); err != nil {
		logger.Warn("CalendarService:Disconnect:Revoke:Error", "error", err, "user_id", conn.UserID, "provider", conn.Provider)
	}
}

func (s *calendarService) GetConnections(ctx context.Context, userID uuid.UUID) ([]dto.ConnectionResponse, *errors.AppError) {
	var result []dto.ConnectionResponse
	for _, name := range []string{provider.Google, provider.Microsoft} {
		conn, err := s.repo.GetConnection(ctx, userID, name)
		if err != nil {
			if err == repository.ErrNotFound {
				continue
			}
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load calendar connections", err)
		}
		resp := dto.ConnectionResponse{
			ID:            conn.ID.String(),
			Provider:      conn.Provider,
			CalendarEmail: conn.CalendarEmail,
			CalendarName:  conn.CalendarName,
			ConnectedAt:   conn.ConnectedAt.Format(time.RFC3339),
		}
		if conn.LastRefreshAt != nil {
			formatted := conn.LastRefreshAt.Format(time.RFC3339)
			resp.LastRefreshAt = &formatted
		}
		result = append(result, resp)
	}
	return result, nil
}

// MigrateLegacyTokens encrypts plaintext token rows in place, page by page.
func (s *calendarService) MigrateLegacyTokens(ctx context.Context) (int, error) {
	migrated := 0
	for {
		if err := ctx.Err(); err != nil {
			return migrated, err
		}
		connections, err := s.repo.ListLegacyConnections(ctx, 100)
		if err != nil {
			return migrated, err
		}
		if len(connections) == 0 {
			return migrated, nil
		}

		for i := range connections {
			conn := &connections[i]
			if err := s.encryptLegacyRow(ctx, conn); err != nil {
				logger.Error("CalendarService:MigrateLegacyTokens:Row:Error", "error", err, "connection_id", conn.ID)
				return migrated, err
			}
			migrated++
		}
	}
}

func (s *calendarService) encryptLegacyRow(ctx context.Context, conn *entity.CalendarConnection) error {
	accessCiphertext, accessIV := conn.AccessTokenCiphertext, conn.AccessTokenIV
	refreshCiphertext, refreshIV := conn.RefreshTokenCiphertext, conn.RefreshTokenIV

	// Empty-string columns are nulled out rather than encrypted so the row
	// stops matching the legacy predicate and the page loop can advance.
	if tok := conn.AccessToken(); !tok.Encrypted() {
		if tok.Empty() {
			accessCiphertext, accessIV = nil, nil
		} else {
			plaintext, _ := tok.Reveal(s.cipher)
			ciphertext, iv, err := s.cipher.Encrypt(plaintext)
			if err != nil {
				return err
			}
			accessCiphertext, accessIV = &ciphertext, &iv
		}
	}
	if tok := conn.RefreshToken(); !tok.Encrypted() {
		if tok.Empty() {
			refreshCiphertext, refreshIV = nil, nil
		} else {
			plaintext, _ := tok.Reveal(s.cipher)
			ciphertext, iv, err := s.cipher.Encrypt(plaintext)
			if err != nil {
				return err
			}
			refreshCiphertext, refreshIV = &ciphertext, &iv
		}
	}

	return s.repo.ReplaceTokens(ctx, conn.ID, accessCiphertext, accessIV, refreshCiphertext, refreshIV)
}

func validateCreateEvent(req *dto.CreateEventRequest) *errors.AppError {
	if !provider.Known(req.Provider) {
		return errors.NewAppError(errors.ErrInvalidInput, "provider must be google or microsoft", nil)
	}
	var missing []string
	if req.ResourceID == "" {
		missing = append(missing, "resourceId")
	}
	if req.ResourceTitle == "" {
		missing = append(missing, "resourceTitle")
	}
	if req.EventDate == "" {
		missing = append(missing, "eventDate")
	}
	if req.EventTime == "" {
		missing = append(missing, "eventTime")
	}
	if len(missing) > 0 {
		return errors.NewAppError(errors.ErrInvalidInput, "missing required fields: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

func buildEventDescription(req *dto.CreateEventRequest) string {
	var b strings.Builder
	b.WriteString(req.ResourceDescription)
	if req.ResourceURL != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(req.ResourceURL)
	}
	if req.Notes != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Notes: " + req.Notes)
	}
	return b.String()
}
