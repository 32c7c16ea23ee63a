package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/neverbeen/internal/core/domain"
	"github.com/samirrijal/neverbeen/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, invalid_coordinate, not_found, internal_error, ...
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// writeError maps a service error onto a status and code.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate):
		return newError(c, fiber.StatusBadRequest, "invalid_coordinate", err.Error())
	case errors.Is(err, domain.ErrInvalidRadius):
		return newError(c, fiber.StatusBadRequest, "invalid_radius", err.Error())
	case errors.Is(err, domain.ErrInvalidUnit):
		return newError(c, fiber.StatusBadRequest, "invalid_unit", err.Error())
	case errors.Is(err, usecases.ErrEmptyQuery), errors.Is(err, usecases.ErrInvalidLimit):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		return errNotFound(c, "session not found")
	case errors.Is(err, domain.ErrLocationUnavailable):
		return newError(c, fiber.StatusServiceUnavailable, "service_unavailable", err.Error())
	case errors.Is(err, domain.ErrSamplingFailure):
		slog.ErrorContext(c.UserContext(), "sampling failed", "error", err)
		return newError(c, fiber.StatusInternalServerError, "sampling_failure", "could not generate a destination, please try again")
	}
	slog.ErrorContext(c.UserContext(), "request failed", slog.String("path", c.Path()), slog.Any("error", err))
	return errInternal(c, "internal server error")
}
