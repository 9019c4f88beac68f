package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"resource-scheduler/core/errors"
	"resource-scheduler/core/logger"
)

// ErrorResponse is the wire shape of every error body. Success bodies are
// the module DTOs themselves, serialized flat.
type ErrorResponse struct {
	Error string           `json:"error"`
	Code  errors.ErrorCode `json:"code"`
}

// BaseController maps service-level AppErrors to the wire contract: every
// error body carries a machine-readable code so the calling UI can decide
// between forcing reconnection and showing a generic failure.
type BaseController interface {
	ErrorResponse(c echo.Context, err error) error
	BadRequest(c echo.Context, message string) error
	Unauthorized(c echo.Context, message string) error
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

func (h *responseHandler) BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: errors.ErrInvalidInput})
}

func (h *responseHandler) Unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: message, Code: errors.ErrUnauthorized})
}

func (h *responseHandler) ErrorResponse(c echo.Context, err error) error {
	httpStatus := http.StatusInternalServerError
	appCode := errors.ErrInternalServer
	msg := "internal server error"

	if ae, ok := err.(*errors.AppError); ok && ae != nil {
		appCode = ae.Code
		if ae.Message != "" {
			msg = ae.Message
		}
		httpStatus = StatusForCode(appCode)
	} else if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	logger.Error("BaseController:ErrorResponse",
		"status", httpStatus,
		"code", appCode,
		"message", msg,
	)
	return c.JSON(httpStatus, ErrorResponse{Error: msg, Code: appCode})
}

func StatusForCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidInput, errors.ErrInvalidRequestData:
		return http.StatusBadRequest
	case errors.ErrUnauthorized, errors.ErrTokenExpired, errors.ErrDecrypt:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrNotFound, errors.ErrNotConnected:
		return http.StatusNotFound
	case errors.ErrAlreadyExists:
		return http.StatusConflict
	case errors.ErrProviderAPI:
		return http.StatusBadGateway
	case errors.ErrNoPrimaryCalendar:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
