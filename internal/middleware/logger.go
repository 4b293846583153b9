package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-go/internal/api/v1/handlers"
	"todo-go/pkg/logger"
)

// ErrorHandler memulihkan panic menjadi 500 dan mencatat setiap request.
// Pasang setelah middleware requestid supaya id request ikut tercatat.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				errMsg := fmt.Sprintf("Recovered from panic: %v", r)
				stack := string(debug.Stack())
				logger.ErrorLogger.Error(errMsg, zap.String("stack", stack), zap.String("request_id", handlers.RequestID(c)))
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": errMsg,
					"success": false,
					"status":  fiber.StatusInternalServerError,
				})
			}
		}()

		err = c.Next()

		// Logging request yang sudah selesai
		logger.RequestLogger.Info("Handled request",
			zap.String("method", c.Method()),
			zap.String("url", logger.RedactURL(c.OriginalURL())),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", handlers.RequestID(c)),
		)
		return err
	}
}
