package controller

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"resource-scheduler/core/config"
	"resource-scheduler/core/controller"
	"resource-scheduler/core/errors"
	"resource-scheduler/core/logger"
	"resource-scheduler/core/middleware"
	"resource-scheduler/modules/calendar/dto"
	"resource-scheduler/modules/calendar/provider"
	"resource-scheduler/modules/calendar/service"
)

type CalendarController struct {
	controller.BaseController
	service service.CalendarService
}

func NewCalendarController(service service.CalendarService) *CalendarController {
	return &CalendarController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

// Connect starts the OAuth flow for a provider
// @Summary Start calendar connection
// @Description Returns the provider consent URL for the caller to open
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Param provider path string true "Calendar provider (google or microsoft)"
// @Success 200 {object} dto.ConnectResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /private/calendar/connect/{provider} [get]
func (c *CalendarController) Connect(ctx echo.Context) error {
	userID, err := middleware.UserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(ctx, "invalid user")
	}

	providerName := ctx.Param("provider")
	if !provider.Known(providerName) {
		return c.BadRequest(ctx, "provider must be google or microsoft")
	}

	authURL, appErr := c.service.GetAuthURL(ctx.Request().Context(), userID, providerName)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return ctx.JSON(http.StatusOK, dto.ConnectResponse{AuthURL: authURL})
}

// Callback is the provider redirect target. It always redirects to the
// frontend settings page; errors are carried as a machine-readable reason
// code in the query string, never as a JSON body.
// @Summary OAuth provider callback
// @Description Exchanges the authorization code and redirects to the frontend settings page
// @Tags Calendar
// @Param state query string true "Opaque state issued by the connect endpoint"
// @Param code query string true "Authorization code from the provider"
// @Success 302
// @Router /public/calendar/callback [get]
func (c *CalendarController) Callback(ctx echo.Context) error {
	state := ctx.QueryParam("state")
	code := ctx.QueryParam("code")

	if errParam := ctx.QueryParam("error"); errParam != "" {
		logger.Warn("CalendarController:Callback:ProviderDenied", "error", errParam)
		return redirectToSettings(ctx, "", errors.ErrUnauthorized)
	}
	if state == "" || code == "" {
		return redirectToSettings(ctx, "", errors.ErrInvalidInput)
	}

	providerName, appErr := c.service.HandleCallback(ctx.Request().Context(), state, code)
	if appErr != nil {
		logger.Error("CalendarController:Callback:Error", "code", appErr.Code, "message", appErr.Message)
		return redirectToSettings(ctx, providerName, appErr.Code)
	}

	return redirectToSettings(ctx, providerName, "")
}

// CreateEvent schedules a resource booking on the user's calendar
// @Summary Create a booking event
// @Description Creates the event on the connected provider calendar and mirrors it locally
// @Tags Calendar
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Booking details"
// @Success 200 {object} dto.CreateEventResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 401 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Failure 502 {object} controller.ErrorResponse
// @Router /private/calendar/events [post]
func (c *CalendarController) CreateEvent(ctx echo.Context) error {
	userID, err := middleware.UserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(ctx, "invalid user")
	}

	var req dto.CreateEventRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(ctx, "invalid request body")
	}

	resp, appErr := c.service.CreateEvent(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return ctx.JSON(http.StatusOK, resp)
}

// DeleteEvent removes a scheduled booking
// @Summary Delete a booking event
// @Description Removes the event from the provider calendar and the local mirror
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.DeleteEventResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 401 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /private/calendar/events/{id} [delete]
func (c *CalendarController) DeleteEvent(ctx echo.Context) error {
	userID, err := middleware.UserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(ctx, "invalid user")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(ctx, "invalid event id")
	}

	if appErr := c.service.DeleteEvent(ctx.Request().Context(), userID, eventID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return ctx.JSON(http.StatusOK, dto.DeleteEventResponse{Success: true, Message: "event deleted"})
}

// Disconnect removes the provider connection
// @Summary Disconnect a calendar
// @Description Revokes the provider token where supported and deletes the stored connection
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Param provider path string true "Calendar provider (google or microsoft)"
// @Success 200 {object} dto.DisconnectResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 401 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /private/calendar/connections/{provider} [delete]
func (c *CalendarController) Disconnect(ctx echo.Context) error {
	userID, err := middleware.UserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(ctx, "invalid user")
	}

	providerName := ctx.Param("provider")
	if !provider.Known(providerName) {
		return c.BadRequest(ctx, "provider must be google or microsoft")
	}

	if appErr := c.service.Disconnect(ctx.Request().Context(), userID, providerName); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return ctx.JSON(http.StatusOK, dto.DisconnectResponse{Success: true, Message: "calendar disconnected"})
}

// GetConnections lists the user's connections for the settings page
// @Summary List calendar connections
// @Description Returns the caller's connected calendars without token material
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ConnectionListResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /private/calendar/connections [get]
func (c *CalendarController) GetConnections(ctx echo.Context) error {
	userID, err := middleware.UserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(ctx, "invalid user")
	}

	connections, appErr := c.service.GetConnections(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return ctx.JSON(http.StatusOK, dto.ConnectionListResponse{Connections: connections})
}

// redirectToSettings sends the browser back to the frontend settings page.
// Success: ?calendar=connected&provider=<p>. Failure: ?calendar=error&reason=<code>.
func redirectToSettings(ctx echo.Context, providerName string, reason errors.ErrorCode) error {
	cfg, ok := config.GetSafe()
	base := "/settings"
	if ok && cfg.App.FrontendURL != "" {
		base = cfg.App.FrontendURL + "/settings"
	}

	q := url.Values{}
	if reason == "" {
		q.Set("calendar", "connected")
		if providerName != "" {
			q.Set("provider", providerName)
		}
	} else {
		q.Set("calendar", "error")
		q.Set("reason", string(reason))
	}

	return ctx.Redirect(http.StatusFound, base+"?"+q.Encode())
}
