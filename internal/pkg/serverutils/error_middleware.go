// FILE: internal/pkg/serverutils/error_middleware.go
package serverutils

import (
	"errors"

	"govllminer-be/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// JSON error envelope. AppError carries its own status and machine-readable
// code; fiber.Error keeps its status; everything else is a generic 500 with
// no internal detail.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return ctx.Status(appErr.Status).JSON(
				ErrorResponseWithCode(appErr.Status, appErr.Code, appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(
				ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(
			ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
