package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error kinds surfaced to clients. Every rejection carries one of these plus
// a human-readable message.
const (
	ErrKindBadRequest        = "bad_request"
	ErrKindEmptyMessage      = "empty_message"
	ErrKindMessageTooLong    = "message_too_long"
	ErrKindRateLimited       = "rate_limited"
	ErrKindNotFound          = "not_found"
	ErrKindConversationLimit = "conversation_limit"
	ErrKindSessionTimeout    = "session_timeout"
	ErrKindUnavailable       = "unavailable"
)

// AppError is a rejection with a machine-readable kind and an HTTP status.
// Handlers and services return it; the error middleware renders it.
type AppError struct {
	Status  int                    `json:"-"`
	Kind    string                 `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, kind, message string) *AppError {
	return &AppError{Status: status, Kind: kind, Message: message}
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

type errorBody struct {
	Status  string                 `json:"status"`
	Kind    string                 `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandlerMiddleware renders returned errors as JSON. AppErrors keep
// their status and kind; anything else becomes an opaque 500 so internal
// detail never reaches the client.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return ctx.Status(appErr.Status).JSON(errorBody{
				Status:  "error",
				Kind:    appErr.Kind,
				Message: appErr.Message,
				Details: appErr.Details,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(errorBody{
				Status:  "error",
				Kind:    ErrKindBadRequest,
				Message: fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(errorBody{
			Status:  "error",
			Kind:    ErrKindUnavailable,
			Message: "Something went wrong. Please try again later.",
		})
	}
}
