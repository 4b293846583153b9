// Package repository menyimpan user dan todo untuk backend pengembangan.
package repository

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"todo-go/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// UserFilter adalah filter GET /users. Field nil berarti filter itu tidak
// dipakai. String kosong tetap filter: email harus kosong juga, dan password
// kosong tidak pernah cocok dengan hash manapun.
type UserFilter struct {
	Email    *string
	Password *string
}

// Store adalah kontrak penyimpanan yang dipakai handler.
type Store interface {
	// FindUsers mengembalikan user yang cocok persis dengan filter, urut id.
	FindUsers(ctx context.Context, filter UserFilter) ([]models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// ListTasks mengembalikan todo milik userID, atau semua todo jika
	// userID 0, urut berdasarkan id.
	ListTasks(ctx context.Context, userID int) ([]models.Task, error)
	GetTask(ctx context.Context, id int) (models.Task, error)
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) (models.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

// HashCost dipakai saat menyimpan password. Test boleh menurunkannya.
var HashCost = bcrypt.DefaultCost

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func passwordMatches(hash string, password *string) bool {
	if password == nil {
		return true
	}
	if *password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(*password)) == nil
}
