package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"photomap-service/internal/apperr"
	"photomap-service/internal/log"
)

const InvalidUuidError = "invalid UUID"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotAuthenticated:
		return fiber.StatusUnauthorized
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindStorage:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err with the status of its kind. Server side failures
// are logged with their cause; the body only carries the user message.
func writeError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed", log.SourceHTTP,
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:   true,
		Kind:    kind.String(),
		Message: apperr.Message(err),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return writeError(c, apperr.Validation(message))
}
