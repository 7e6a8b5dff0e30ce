package serverutils

import (
	"errors"
	"time"

	"onboarding-assistant-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const moduleName = "http"

// ErrorHandler renders errors returned by handlers as the error envelope. Only
// *fiber.Error messages reach the client; anything else becomes a plain 500.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			log.Error(moduleName, "Unhandled request error", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err,
			})
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// RequestLogger logs one line per request through the application logger
func RequestLogger(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		details := map[string]interface{}{
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": ctx.GetRespHeader(fiber.HeaderXRequestID),
		}
		if status >= fiber.StatusInternalServerError {
			log.Warn(moduleName, "Request failed", details)
		} else {
			log.Info(moduleName, "Request handled", details)
		}
		return err
	}
}
