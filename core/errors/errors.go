package errors

import "fmt"

// ErrorCode is the machine-readable code returned to clients so the UI can
// decide between "reconnect your calendar" and a generic failure message.
type ErrorCode string

const (
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrForbidden          ErrorCode = "FORBIDDEN"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"

	// Calendar OAuth lifecycle codes.
	ErrNotConnected      ErrorCode = "NOT_CONNECTED"
	ErrTokenExpired      ErrorCode = "TOKEN_EXPIRED"
	ErrDecrypt           ErrorCode = "DECRYPT_ERROR"
	ErrNoPrimaryCalendar ErrorCode = "NO_PRIMARY_CALENDAR"
	ErrProviderAPI       ErrorCode = "PROVIDER_API_ERROR"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}
