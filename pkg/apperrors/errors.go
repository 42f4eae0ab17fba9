package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Error carries a user-facing message on top of a wrapped cause.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with a message only.
func New(message string) error {
	return &Error{Message: message}
}

// Wrap wraps err with a message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Message: message, Err: err}
}

// WrapWithCode wraps err with a machine readable code and a message.
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// Invalid returns an ErrInvalidInput carrying message.
func Invalid(message string) error {
	return &Error{Message: message, Err: ErrInvalidInput}
}

// NotFound returns an ErrNotFound naming the missing thing.
func NotFound(what string) error {
	return &Error{Message: what + " not found", Err: ErrNotFound}
}

// Forbidden returns an ErrForbidden carrying message.
func Forbidden(message string) error {
	return &Error{Message: message, Err: ErrForbidden}
}

// GetCode returns the error code if it exists
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetMessage returns the outermost message, without the wrapped cause.
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps the sentinel in err's chain to a status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
