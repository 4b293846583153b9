package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"todo-go/internal/models"
	"todo-go/pkg/logger"
)

func CreateTableIfNotExists(ctx context.Context, db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    name VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS todos (
    id SERIAL PRIMARY KEY,
    user_id INT NOT NULL,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    due_date DATE,
    status VARCHAR(32) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS todos_user_id_idx ON todos (user_id);
`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	logger.SystemLogger.Info("Table 'users', 'todos' are ready")
	return nil
}

// SeedDemoUser membuat akun demo jika emailnya belum terdaftar.
func SeedDemoUser(ctx context.Context, store Store, user models.User) error {
	existing, err := store.FindUsers(ctx, UserFilter{Email: &user.Email})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	created, err := store.CreateUser(ctx, user)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	logger.SystemLogger.Info("Demo user is created", zap.String("email", created.Email), zap.Int("user_id", created.ID))
	return nil
}

func DeleteAllTable(ctx context.Context, db *sql.DB) error {
	query := `
    DROP TABLE IF EXISTS todos;
    DROP TABLE IF EXISTS users;
    `

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	logger.SystemLogger.Info("Table 'users', 'todos' are deleted")
	return nil
}
