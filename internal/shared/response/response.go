// Package response shapes every API reply into the {success, data|error} envelope.
package response

import (
	"errors"

	apperrors "edwin/internal/shared/errors"
	"edwin/internal/shared/logger"
	"edwin/internal/shared/pagination"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the wire shape of every JSON response.
type Envelope struct {
	Success bool                   `json:"success"`
	Data    interface{}            `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Page wraps a paginated listing.
type Page struct {
	Items      interface{}           `json:"items"`
	Pagination pagination.Pagination `json:"pagination"`
}

// OK writes a 200 success envelope.
func OK(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data})
}

// Created writes a 201 success envelope.
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

// Paginated writes a 200 envelope around items and their pagination block.
func Paginated(c *fiber.Ctx, items interface{}, p pagination.Pagination) error {
	return OK(c, Page{Items: items, Pagination: p})
}

// Fail writes an error envelope with an explicit status.
func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Error: message})
}

// Error maps err to its HTTP status and writes the error envelope.
// Server-side failures are logged with the request context.
func Error(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	env := Envelope{Success: false, Error: err.Error()}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		env.Error = appErr.Message
		if len(appErr.Details) > 0 {
			env.Details = appErr.Details
		}
	}

	if status >= fiber.StatusInternalServerError {
		logger.WithContext(c.UserContext()).WithFields(map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"status": status,
		}).Errorf("request failed: %v", err)
	}
	return c.Status(status).JSON(env)
}

// ErrorHandler is installed as fiber.Config.ErrorHandler so errors returned
// from handlers, and recovered panics, leave through the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return Fail(c, fe.Code, fe.Message)
	}
	return Error(c, err)
}
