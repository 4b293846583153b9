package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-go/internal/config"
	"todo-go/internal/models"
	"todo-go/internal/repository"
	"todo-go/pkg/logger"
)

// TaskRequest adalah body POST dan PUT /todos. Field id di body diabaikan,
// id selalu dari server atau dari path.
type TaskRequest struct {
	UserID      int         `json:"userId" validate:"required,gt=0"`
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description" validate:"required"`
	DueDate     models.Date `json:"dueDate" validate:"required"`
	Status      string      `json:"status" validate:"required,taskstatus"`
}

func (r TaskRequest) task(id int) models.Task {
	return models.Task{
		ID:          id,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Status:      models.Status(r.Status),
	}
}

// bindTask mengisi req dari body. Jika ok false, respons error sudah ditulis
// dan err adalah hasil penulisan itu.
func bindTask(c *fiber.Ctx, req *TaskRequest) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		logger.ErrorLogger.Error("Bad request in todo body", zap.String("request_id", RequestID(c)), zap.Error(err))
		return false, respondError(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := config.Validate.Struct(req); err != nil {
		logger.ErrorLogger.Error("Validation error in todo body", zap.String("request_id", RequestID(c)), zap.Error(err))
		return false, respondValidation(c, err)
	}
	return true, nil
}

func taskID(c *fiber.Ctx) (int, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ListTasks menangani GET /todos dengan filter opsional ?userId=.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	userID := 0
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "Invalid userId")
		}
		userID = id
	}

	tasks, err := h.store.ListTasks(c.UserContext(), userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching todos", zap.String("request_id", RequestID(c)), zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Error fetching todos")
	}
	return c.JSON(tasks)
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return respondError(c, fiber.StatusNotFound, "Todo not found")
	}

	task, err := h.store.GetTask(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return respondError(c, fiber.StatusNotFound, "Todo not found")
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching todo", zap.Int("task_id", id), zap.String("request_id", RequestID(c)), zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Error fetching todo")
	}
	return c.JSON(task)
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var req TaskRequest
	if ok, err := bindTask(c, &req); !ok {
		return err
	}

	task, err := h.store.CreateTask(c.UserContext(), req.task(0))
	if err != nil {
		logger.ErrorLogger.Error("Error creating todo", zap.String("request_id", RequestID(c)), zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Error creating todo")
	}

	logger.AuditLogger.Info("Todo created successfully", zap.Int("task_id", task.ID), zap.Int("user_id", task.UserID))
	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask menangani PUT /todos/:id, mengganti seluruh todo.
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return respondError(c, fiber.StatusNotFound, "Todo not found")
	}
	var req TaskRequest
	if ok, err := bindTask(c, &req); !ok {
		return err
	}

	task, err := h.store.UpdateTask(c.UserContext(), req.task(id))
	if errors.Is(err, repository.ErrNotFound) {
		return respondError(c, fiber.StatusNotFound, "Todo not found")
	}
	if err != nil {
		logger.ErrorLogger.Error("Error updating todo", zap.Int("task_id", id), zap.String("request_id", RequestID(c)), zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Error updating todo")
	}

	logger.AuditLogger.Info("Todo updated successfully", zap.Int("task_id", id), zap.Int("user_id", task.UserID))
	return c.JSON(task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return respondError(c, fiber.StatusNotFound, "Todo not found")
	}

	err := h.store.DeleteTask(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return respondError(c, fiber.StatusNotFound, "Todo not found")
	}
	if err != nil {
		logger.ErrorLogger.Error("Error deleting todo", zap.Int("task_id", id), zap.String("request_id", RequestID(c)), zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Error deleting todo")
	}

	logger.AuditLogger.Info("Todo deleted successfully", zap.Int("task_id", id))
	return c.JSON(fiber.Map{})
}
