package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"todo-go/internal/models"
)

// Postgres menyimpan data di tabel yang dibuat CreateTableIfNotExists.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) FindUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	// filter.Email nil dikirim sebagai NULL
	rows, err := p.db.QueryContext(ctx,
		"SELECT id, email, password, name FROM users WHERE ($1::text IS NULL OR email = $1::text) ORDER BY id", filter.Email)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	// tutup rows supaya koneksi kembali ke pool
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		var hash string
		if err := rows.Scan(&u.ID, &u.Email, &hash, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if !passwordMatches(hash, filter.Password) {
			continue
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (p *Postgres) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	hash, err := hashPassword(user.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	err = p.db.QueryRowContext(ctx,
		"INSERT INTO users (email, password, name) VALUES ($1, $2, $3) RETURNING id",
		user.Email, hash, user.Name,
	).Scan(&user.ID)
	if err != nil {
		// 23505 = unique_violation, email sudah terdaftar
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	user.Password = ""
	return user, nil
}

const taskColumns = "id, user_id, title, description, due_date, status"

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var t models.Task
	var status string
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.DueDate, &status); err != nil {
		return models.Task{}, err
	}
	t.Status = models.Status(status)
	return t, nil
}

func (p *Postgres) ListTasks(ctx context.Context, userID int) ([]models.Task, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM todos WHERE ($1::int = 0 OR user_id = $1::int) ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return tasks, nil
}

func (p *Postgres) GetTask(ctx context.Context, id int) (models.Task, error) {
	t, err := scanTask(p.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM todos WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	return t, nil
}

func (p *Postgres) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	err := p.db.QueryRowContext(ctx,
		"INSERT INTO todos (user_id, title, description, due_date, status) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		task.UserID, task.Title, task.Description, task.DueDate, string(task.Status),
	).Scan(&task.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert todo: %w", err)
	}
	return task, nil
}

func (p *Postgres) UpdateTask(ctx context.Context, task models.Task) (models.Task, error) {
	res, err := p.db.ExecContext(ctx,
		"UPDATE todos SET user_id = $1, title = $2, description = $3, due_date = $4, status = $5 WHERE id = $6",
		task.UserID, task.Title, task.Description, task.DueDate, string(task.Status), task.ID,
	)
	if err != nil {
		return models.Task{}, fmt.Errorf("update todo %d: %w", task.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Task{}, ErrNotFound
	}
	return task, nil
}

func (p *Postgres) DeleteTask(ctx context.Context, id int) error {
	res, err := p.db.ExecContext(ctx, "DELETE FROM todos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
