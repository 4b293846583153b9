package v1

import (
	"github.com/gofiber/fiber/v2"

	"todo-go/internal/api/v1/handlers"
)

// RegisterRoutes memasang resource ala json-server di root app.
func RegisterRoutes(app fiber.Router, h *handlers.Handler) {
	// User
	app.Get("/users", h.FindUsers)
	app.Post("/users", h.CreateUser)

	// Todo
	todos := app.Group("/todos")
	todos.Get("", h.ListTasks)
	todos.Post("", h.CreateTask)
	todos.Get("/:id", h.GetTask)
	todos.Put("/:id", h.UpdateTask)
	todos.Delete("/:id", h.DeleteTask)
}
