// Package client talks to the todo REST backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo-go/internal/models"
	"todo-go/pkg/logger"
)

// ErrNotFound matches a RemoteError caused by a 404 response.
var ErrNotFound = errors.New("not found")

// RemoteError is any failure from the backend transport: network errors,
// non-2xx responses and payloads that do not decode.
type RemoteError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	RequestID  string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s %s: status %d", e.Op, e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindUsers returns the users matching both email and password exactly.
func (c *Client) FindUsers(ctx context.Context, email, password string) ([]models.User, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("password", password)

	var users []models.User
	if err := c.do(ctx, "find users", http.MethodGet, "/users?"+q.Encode(), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	var created models.User
	if err := c.do(ctx, "create user", http.MethodPost, "/users", user, &created); err != nil {
		return models.User{}, err
	}
	return created, nil
}

// ListTasksByUser returns the tasks owned by userID in backend order.
func (c *Client) ListTasksByUser(ctx context.Context, userID int) ([]models.Task, error) {
	var tasks []models.Task
	path := "/todos?userId=" + strconv.Itoa(userID)
	if err := c.do(ctx, "list tasks", http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id int) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, "get task", http.MethodGet, taskPath(id), nil, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (c *Client) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	var created models.Task
	if err := c.do(ctx, "create task", http.MethodPost, "/todos", task, &created); err != nil {
		return models.Task{}, err
	}
	return created, nil
}

// UpdateTask replaces the task stored under id with task.
func (c *Client) UpdateTask(ctx context.Context, id int, task models.Task) (models.Task, error) {
	task.ID = id
	var updated models.Task
	if err := c.do(ctx, "update task", http.MethodPut, taskPath(id), task, &updated); err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, "delete task", http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int) string {
	return "/todos/" + strconv.Itoa(id)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	requestID := uuid.NewString()
	loggedPath := logger.RedactURL(path)
	fail := func(status int, err error) error {
		rerr := &RemoteError{
			Op:         op,
			Method:     method,
			URL:        c.baseURL + loggedPath,
			StatusCode: status,
			RequestID:  requestID,
			Err:        err,
		}
		logger.ErrorLogger.Error("Remote call failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", loggedPath),
			zap.Int("status", status),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return rerr
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fail(resp.StatusCode, fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(msg)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
