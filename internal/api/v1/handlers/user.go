package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"todo-go/internal/config"
	"todo-go/internal/models"
	"todo-go/internal/repository"
	"todo-go/pkg/logger"
)

// queryFilter mengembalikan nil jika parameter tidak ada sama sekali, dan
// pointer ke nilainya (boleh kosong) jika ada.
func queryFilter(c *fiber.Ctx, key string) *string {
	if !c.Context().QueryArgs().Has(key) {
		return nil
	}
	value := c.Query(key)
	return &value
}

// FindUsers menangani GET /users?email=&password=. Hasil kosong tetap 200
// dengan array kosong.
func (h *Handler) FindUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		Email:    queryFilter(c, "email"),
		Password: queryFilter(c, "password"),
	}
	users, err := h.store.FindUsers(c.UserContext(), filter)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching users", zap.String("request_id", RequestID(c)), zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Error fetching users")
	}

	if filter.Email != nil && len(users) == 0 {
		// kredensial salah, jangan catat passwordnya
		logger.SecurityLogger.Warn("User lookup without match", zap.String("email", *filter.Email), zap.String("request_id", RequestID(c)))
	}
	return c.JSON(users)
}

// CreateUser menangani POST /users (registrasi).
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	type UserRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		Name     string `json:"name"`
	}

	var req UserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create user", zap.String("request_id", RequestID(c)), zap.Error(err))
		return respondError(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := config.Validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	user, err := h.store.CreateUser(c.UserContext(), models.User{Email: req.Email, Password: req.Password, Name: req.Name})
	if errors.Is(err, repository.ErrDuplicate) {
		logger.SecurityLogger.Warn("Duplicate email", zap.String("email", req.Email))
		return respondError(c, fiber.StatusConflict, "Email already exists")
	}
	if err != nil {
		logger.ErrorLogger.Error("Error creating user", zap.String("request_id", RequestID(c)), zap.Error(err))
		return respondError(c, fiber.StatusInternalServerError, "Error creating user")
	}

	logger.AuditLogger.Info("User registered successfully", zap.Int("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(user)
}
