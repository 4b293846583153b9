package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"todo-go/internal/models"
	"todo-go/pkg/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestFindUsersSendsCredentialsAsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "a+b@x.com", r.URL.Query().Get("email"))
		assert.Equal(t, "p&w=1", r.URL.Query().Get("password"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`[{"id":3,"email":"a+b@x.com","name":"Ann"}]`))
	})

	users, err := c.FindUsers(context.Background(), "a+b@x.com", "p&w=1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 3, users[0].ID)
}

func TestFailedLookupKeepsPasswordOutOfErrorsAndLogs(t *testing.T) {
	saved := []*zap.Logger{logger.ErrorLogger, logger.AuditLogger, logger.RequestLogger, logger.SecurityLogger, logger.SystemLogger}
	t.Cleanup(func() {
		logger.ErrorLogger, logger.AuditLogger, logger.RequestLogger = saved[0], saved[1], saved[2]
		logger.SecurityLogger, logger.SystemLogger = saved[3], saved[4]
	})
	dir := t.TempDir()
	require.NoError(t, logger.InitLoggers(dir))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FindUsers(context.Background(), "ann@example.com", "s3cret!")
	var rerr *RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.NotContains(t, rerr.URL, "s3cret")
	assert.Contains(t, rerr.URL, "password=REDACTED")
	assert.NotContains(t, err.Error(), "s3cret")

	logger.SyncLoggers()
	raw, err := os.ReadFile(filepath.Join(dir, "errors.log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Remote call failed")
	assert.NotContains(t, string(raw), "s3cret")
}

func TestCreateUserDuplicateIsRemoteError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Email already exists"}`))
	})

	_, err := c.CreateUser(context.Background(), models.User{Email: "a@x.com", Password: "pw1", Name: "A"})
	var rerr *RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusConflict, rerr.StatusCode)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestListTasksByUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/todos", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("userId"))
		_, _ = w.Write([]byte(`[
			{"id":2,"userId":7,"title":"later","description":"0123456789","dueDate":"2030-01-02","status":"pending"},
			{"id":1,"userId":7,"title":"sooner","description":"0123456789","dueDate":"2030-01-01","status":"completed"}
		]`))
	})

	tasks, err := c.ListTasksByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	// Backend order is kept.
	assert.Equal(t, 2, tasks[0].ID)
	assert.Equal(t, models.NewDate(2030, time.January, 1), tasks[1].DueDate)
	assert.Equal(t, models.StatusCompleted, tasks[1].Status)
}

func TestGetTaskNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/todos/99", r.URL.Path)
		http.NotFound(w, r)
	})

	_, err := c.GetTask(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTaskReturnsAssignedID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var got models.Task
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, 7, got.UserID)
		got.ID = 42
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(got)
	})

	created, err := c.CreateTask(context.Background(), models.Task{
		UserID:      7,
		Title:       "Buy milk",
		Description: "2% milk, 1 gallon",
		DueDate:     models.NewDate(2099, time.January, 1),
		Status:      models.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, created.ID)
}

func TestUpdateTaskForcesPathID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/todos/5", r.URL.Path)
		var got models.Task
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, 5, got.ID)
		_ = json.NewEncoder(w).Encode(got)
	})

	updated, err := c.UpdateTask(context.Background(), 5, models.Task{ID: 9, Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.ID)
}

func TestDeleteTask(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/todos/42" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.NotFound(w, r)
	})

	require.NoError(t, c.DeleteTask(context.Background(), 42))
	assert.ErrorIs(t, c.DeleteTask(context.Background(), 43), ErrNotFound)
	assert.Equal(t, 2, calls, "no retries")
}

func TestMalformedPayloadIsRemoteError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	})

	_, err := c.GetTask(context.Background(), 1)
	var rerr *RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Zero(t, rerr.StatusCode)
	assert.Contains(t, err.Error(), "decode response")
}

func TestTransportFailureIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New(srv.URL).ListTasksByUser(context.Background(), 1)
	var rerr *RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.NotEmpty(t, rerr.RequestID)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListTasksByUser(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
