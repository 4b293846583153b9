package v1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"todo-go/internal/api/v1/handlers"
	"todo-go/internal/middleware"
	"todo-go/internal/repository"
)

// NewApp merakit app fiber lengkap dengan middleware. rateLimit adalah
// jumlah request per menit per IP, 0 mematikan limiter.
func NewApp(store repository.Store, rateLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "todo-api",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-ID",
		ExposeHeaders: "X-Request-ID",
	}))
	if rateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        rateLimit,
			Expiration: 1 * time.Minute,
		}))
	}

	RegisterRoutes(app, handlers.New(store))
	return app
}
