// Package presenter turns the current user's tasks into a display-ready list.
package presenter

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"todo-go/internal/models"
	"todo-go/internal/ui"
	"todo-go/pkg/logger"
)

const (
	confirmDelete    = "Are you sure you want to delete this todo?"
	alertDeleteError = "Failed to delete todo"
	loadErrorMessage = "Failed to load todos"
	defaultUserName  = "User"
)

// Session is the part of the session store the presenter reads.
type Session interface {
	CurrentUser() (models.User, bool)
	CurrentUserID() (int, bool)
	Logout(ctx context.Context) error
}

// TaskAPI is the part of the repository client the presenter uses.
type TaskAPI interface {
	ListTasksByUser(ctx context.Context, userID int) ([]models.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

// TaskView is a task plus its derived display flags.
type TaskView struct {
	models.Task
	Overdue     bool
	StatusClass string
}

type TaskList struct {
	session Session
	tasks   TaskAPI
	prompt  ui.Prompter
	nav     ui.Navigator
	now     func() time.Time

	mu       sync.Mutex
	list     []models.Task
	userName string
	errMsg   string
}

type Option func(*TaskList)

// WithClock overrides time.Now for overdue checks.
func WithClock(now func() time.Time) Option {
	return func(p *TaskList) { p.now = now }
}

func New(session Session, tasks TaskAPI, prompt ui.Prompter, nav ui.Navigator, opts ...Option) *TaskList {
	p := &TaskList{
		session: session,
		tasks:   tasks,
		prompt:  prompt,
		nav:     nav,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Activate prepares the view. Without a session nothing is fetched.
func (p *TaskList) Activate(ctx context.Context) error {
	name := defaultUserName
	if user, ok := p.session.CurrentUser(); ok && user.Name != "" {
		name = user.Name
	}
	p.mu.Lock()
	p.userName = name
	p.mu.Unlock()

	return p.Refresh(ctx)
}

// Refresh replaces the displayed list with the session user's tasks ordered
// by due date. Overlapping calls are not coordinated: the last one to finish
// wins. On failure the previous list stays on screen.
func (p *TaskList) Refresh(ctx context.Context) error {
	userID, ok := p.session.CurrentUserID()
	if !ok {
		return nil
	}

	tasks, err := p.tasks.ListTasksByUser(ctx, userID)
	if err != nil {
		logger.ErrorLogger.Error("Error loading todos", zap.Int("user_id", userID), zap.Error(err))
		p.mu.Lock()
		p.errMsg = loadErrorMessage
		p.mu.Unlock()
		return err
	}

	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DueDate.Before(sorted[j].DueDate)
	})

	p.mu.Lock()
	p.list = sorted
	p.errMsg = ""
	p.mu.Unlock()
	return nil
}

// Tasks returns a snapshot of the displayed list.
func (p *TaskList) Tasks() []TaskView {
	p.mu.Lock()
	defer p.mu.Unlock()

	views := make([]TaskView, 0, len(p.list))
	for _, t := range p.list {
		views = append(views, TaskView{
			Task:        t,
			Overdue:     p.IsOverdue(t),
			StatusClass: StatusClass(t.Status),
		})
	}
	return views
}

func (p *TaskList) UserName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userName
}

// ErrorMessage is the message of the last failed refresh, if any.
func (p *TaskList) ErrorMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// IsOverdue is true when the task is not completed and its due date lies
// before the current moment.
func (p *TaskList) IsOverdue(t models.Task) bool {
	if t.DueDate.IsZero() {
		return false
	}
	return t.DueDate.Time().Before(p.now()) && t.Status != models.StatusCompleted
}

func StatusClass(status models.Status) string {
	switch status {
	case models.StatusCompleted:
		return "status-completed"
	case models.StatusInProgress:
		return "status-in-progress"
	default:
		return "status-pending"
	}
}

// Delete removes a task after the user confirms. A failed delete raises an
// alert and leaves the list untouched.
func (p *TaskList) Delete(ctx context.Context, id int) error {
	if id == 0 || !p.prompt.Confirm(confirmDelete) {
		return nil
	}

	if err := p.tasks.DeleteTask(ctx, id); err != nil {
		logger.ErrorLogger.Error("Error deleting todo", zap.Int("task_id", id), zap.Error(err))
		p.prompt.Alert(alertDeleteError)
		return err
	}

	logger.AuditLogger.Info("Todo deleted", zap.Int("task_id", id))
	return p.Refresh(ctx)
}

func (p *TaskList) Add() {
	p.nav.ToAdd()
}

func (p *TaskList) Edit(id int) {
	if id != 0 {
		p.nav.ToEdit(id)
	}
}

func (p *TaskList) Logout(ctx context.Context) error {
	err := p.session.Logout(ctx)
	p.nav.ToLogin()
	return err
}
