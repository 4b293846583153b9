package repository

import (
	"context"
	"sort"
	"sync"

	"todo-go/internal/models"
)

type memUser struct {
	models.User
	hash string
}

// Memory adalah Store di memori, dipakai untuk development dan test.
type Memory struct {
	mu       sync.Mutex
	users    map[int]memUser
	tasks    map[int]models.Task
	lastUser int
	lastTask int
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[int]memUser),
		tasks: make(map[int]models.Task),
	}
}

func (m *Memory) FindUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	m.mu.Lock()
	candidates := make([]memUser, 0, len(m.users))
	for _, u := range m.users {
		if filter.Email == nil || u.Email == *filter.Email {
			candidates = append(candidates, u)
		}
	}
	m.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	users := []models.User{}
	for _, u := range candidates {
		if !passwordMatches(u.hash, filter.Password) {
			continue
		}
		users = append(users, u.User)
	}
	return users, nil
}

func (m *Memory) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	hash, err := hashPassword(user.Password)
	if err != nil {
		return models.User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return models.User{}, ErrDuplicate
		}
	}
	m.lastUser++
	user.ID = m.lastUser
	user.Password = ""
	m.users[user.ID] = memUser{User: user, hash: hash}
	return user, nil
}

func (m *Memory) ListTasks(ctx context.Context, userID int) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := []models.Task{}
	for _, t := range m.tasks {
		if userID == 0 || t.UserID == userID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (m *Memory) GetTask(ctx context.Context, id int) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTask++
	task.ID = m.lastTask
	m.tasks[task.ID] = task
	return task, nil
}

func (m *Memory) UpdateTask(ctx context.Context, task models.Task) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return models.Task{}, ErrNotFound
	}
	m.tasks[task.ID] = task
	return task, nil
}

func (m *Memory) DeleteTask(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}
