// Package form implements the create/edit workflow for a single task.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"todo-go/internal/config"
	"todo-go/internal/models"
	"todo-go/internal/ui"
	"todo-go/pkg/logger"
)

type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	msgNotAuthenticated = "User not authenticated"
	msgLoadFailed       = "Failed to load todo"
	msgCreateFailed     = "Failed to create todo"
	msgUpdateFailed     = "Failed to update todo"
)

var (
	ErrNotAuthenticated = errors.New(msgNotAuthenticated)
	ErrNotReady         = errors.New("form is not ready for submission")
)

// Input is the raw form, one string per field.
type Input struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=10"`
	DueDate     string `json:"dueDate" validate:"required,datetime=2006-01-02,notpast"`
	Status      string `json:"status" validate:"required,taskstatus"`
}

// ValidationError maps a field name to its message. It never reaches the
// network layer.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range []string{"title", "description", "dueDate", "status"} {
		if msg, ok := e.Fields[name]; ok {
			parts = append(parts, name+": "+msg)
		}
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Session is the part of the session store the form reads.
type Session interface {
	CurrentUserID() (int, bool)
}

// TaskAPI is the part of the repository client the form uses.
type TaskAPI interface {
	GetTask(ctx context.Context, id int) (models.Task, error)
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, id int, task models.Task) (models.Task, error)
}

type Controller struct {
	session Session
	tasks   TaskAPI
	nav     ui.Navigator
	now     func() time.Time
	onState func(from, to State)

	mu     sync.Mutex
	state  State
	taskID int
	input  Input
	errMsg string
}

type Option func(*Controller)

// OnTransition registers fn to be called on every state change. fn runs
// with the controller locked and must not call back into it.
func OnTransition(fn func(from, to State)) Option {
	return func(c *Controller) { c.onState = fn }
}

// WithClock overrides time.Now for the due date check.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func New(session Session, tasks TaskAPI, nav ui.Navigator, opts ...Option) *Controller {
	c := &Controller{
		session: session,
		tasks:   tasks,
		nav:     nav,
		now:     time.Now,
		state:   StateEmpty,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultInput() Input {
	return Input{Status: string(models.StatusPending)}
}

func (c *Controller) setStateLocked(to State) {
	from := c.state
	c.state = to
	if c.onState != nil && from != to {
		c.onState(from, to)
	}
}

// Activate starts the workflow. A positive taskID loads that task for
// editing; otherwise the form starts empty in create mode.
func (c *Controller) Activate(ctx context.Context, taskID int) error {
	c.mu.Lock()
	c.input = defaultInput()
	c.errMsg = ""
	c.taskID = 0
	if taskID <= 0 {
		c.setStateLocked(StateReady)
		c.mu.Unlock()
		return nil
	}
	c.taskID = taskID
	c.setStateLocked(StateLoading)
	c.mu.Unlock()

	task, err := c.tasks.GetTask(ctx, taskID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStateLocked(StateReady)
	if err != nil {
		logger.ErrorLogger.Error("Error loading todo", zap.Int("task_id", taskID), zap.Error(err))
		c.errMsg = msgLoadFailed
		return err
	}
	c.input = Input{
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate.String(),
		Status:      string(task.Status),
	}
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) EditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.taskID > 0
}

func (c *Controller) Input() Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

func (c *Controller) SetInput(in Input) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = in
}

// ErrorMessage is the message left by the last failed load or submit.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Validate checks the current input without submitting it.
func (c *Controller) Validate(ctx context.Context) error {
	return c.validate(ctx, c.Input())
}

func (c *Controller) validate(ctx context.Context, in Input) error {
	err := config.Validate.StructCtx(config.WithClock(ctx, c.now), in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "notpast":
		return "must not be in the past"
	case "taskstatus":
		return "must be one of pending, in-progress, completed"
	default:
		return "is invalid"
	}
}

// Submit validates the form and sends it. The owner is always the session
// user; in edit mode the loaded task id is attached and the task replaced.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return ErrNotReady
	}
	in := c.input
	taskID := c.taskID

	if err := c.validate(ctx, in); err != nil {
		c.mu.Unlock()
		return err
	}

	userID, ok := c.session.CurrentUserID()
	if !ok {
		c.errMsg = msgNotAuthenticated
		c.mu.Unlock()
		return ErrNotAuthenticated
	}

	due, err := models.ParseDate(in.DueDate)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	task := models.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     due,
		Status:      models.Status(in.Status),
	}
	c.setStateLocked(StateSubmitting)
	c.mu.Unlock()

	var saved models.Task
	failMsg := msgCreateFailed
	if taskID > 0 {
		task.ID = taskID
		failMsg = msgUpdateFailed
		saved, err = c.tasks.UpdateTask(ctx, taskID, task)
	} else {
		saved, err = c.tasks.CreateTask(ctx, task)
	}

	c.mu.Lock()
	if err != nil {
		c.setStateLocked(StateFailed)
		c.errMsg = failMsg
		logger.ErrorLogger.Error(failMsg, zap.Int("user_id", userID), zap.Int("task_id", taskID), zap.Error(err))
		// Failed settles back to Ready so the user can retry.
		c.setStateLocked(StateReady)
		c.mu.Unlock()
		return err
	}
	c.setStateLocked(StateSuccess)
	c.errMsg = ""
	c.mu.Unlock()

	logger.AuditLogger.Info("Todo saved", zap.Int("user_id", userID), zap.Int("task_id", saved.ID))
	c.nav.ToList()
	return nil
}

// Cancel drops unsaved edits and returns to the list.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.input = defaultInput()
	c.errMsg = ""
	c.mu.Unlock()
	c.nav.ToList()
}
