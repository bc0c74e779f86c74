package middleware

import (
	"log/slog"

	"snapgram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the application's terminal error handler. Every error a
// handler returns ends up here and is written as {"message", "code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if status, _ := models.Resolve(err); status >= fiber.StatusInternalServerError {
		Logger.ErrorContext(c.UserContext(), "unhandled error",
			slog.String("path", c.Path()),
			slog.String("method", c.Method()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, err)
}
