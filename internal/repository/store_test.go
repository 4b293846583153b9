package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"todo-go/internal/models"
)

func TestMain(m *testing.M) {
	HashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func credentials(email, password string) UserFilter {
	return UserFilter{Email: &email, Password: &password}
}

// exerciseStore runs the behaviour every Store implementation shares.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	ann, err := s.CreateUser(ctx, models.User{Email: "ann@example.com", Password: "secret1", Name: "Ann"})
	require.NoError(t, err)
	assert.NotZero(t, ann.ID)
	assert.Empty(t, ann.Password, "hash never leaves the store")

	_, err = s.CreateUser(ctx, models.User{Email: "ann@example.com", Password: "other", Name: "Imposter"})
	assert.ErrorIs(t, err, ErrDuplicate)

	bob, err := s.CreateUser(ctx, models.User{Email: "bob@example.com", Password: "secret2", Name: "Bob"})
	require.NoError(t, err)

	found, err := s.FindUsers(ctx, credentials("ann@example.com", "secret1"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, models.User{ID: ann.ID, Email: "ann@example.com", Name: "Ann"}, found[0])

	found, err = s.FindUsers(ctx, credentials("ann@example.com", "wrong"))
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.NotNil(t, found, "no match is an empty list")

	found, err = s.FindUsers(ctx, credentials("ANN@example.com", "secret1"))
	require.NoError(t, err)
	assert.Empty(t, found, "email match is exact")

	found, err = s.FindUsers(ctx, UserFilter{})
	require.NoError(t, err)
	assert.Len(t, found, 2, "no filter lists everyone")

	emptyPassword := ""
	found, err = s.FindUsers(ctx, UserFilter{Email: &ann.Email, Password: &emptyPassword})
	require.NoError(t, err)
	assert.Empty(t, found, "empty password never matches")

	found, err = s.FindUsers(ctx, credentials("", ""))
	require.NoError(t, err)
	assert.Empty(t, found, "empty email and password match nobody")

	found, err = s.FindUsers(ctx, UserFilter{Email: &bob.Email})
	require.NoError(t, err)
	assert.Equal(t, []models.User{{ID: bob.ID, Email: "bob@example.com", Name: "Bob"}}, found)

	due := models.NewDate(2027, time.March, 1)
	t1, err := s.CreateTask(ctx, models.Task{UserID: ann.ID, Title: "Buy milk", Description: "2% milk, 1 gallon", DueDate: due, Status: models.StatusPending})
	require.NoError(t, err)
	assert.NotZero(t, t1.ID)
	t2, err := s.CreateTask(ctx, models.Task{UserID: bob.ID, Title: "Walk dog", Description: "around the block", DueDate: due, Status: models.StatusInProgress})
	require.NoError(t, err)
	t3, err := s.CreateTask(ctx, models.Task{UserID: ann.ID, Title: "Pay rent", Description: "before the first", DueDate: models.NewDate(2027, time.February, 1), Status: models.StatusCompleted})
	require.NoError(t, err)

	list, err := s.ListTasks(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Task{t1, t3}, list)

	list, err = s.ListTasks(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.Task{t1, t2, t3}, list)

	list, err = s.ListTasks(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := s.GetTask(ctx, t2.ID)
	require.NoError(t, err)
	assert.Equal(t, t2, got)

	_, err = s.GetTask(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	t1.Status = models.StatusCompleted
	t1.Title = "Buy oat milk"
	updated, err := s.UpdateTask(ctx, t1)
	require.NoError(t, err)
	assert.Equal(t, t1, updated)
	got, err = s.GetTask(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, t1, got)

	_, err = s.UpdateTask(ctx, models.Task{ID: 999, UserID: ann.ID, Title: "ghost", Status: models.StatusPending})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteTask(ctx, t1.ID))
	assert.ErrorIs(t, s.DeleteTask(ctx, t1.ID), ErrNotFound)
	_, err = s.GetTask(ctx, t1.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSeedDemoUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	demo := models.User{Email: "demo@example.com", Password: "demo123", Name: "Demo"}

	require.NoError(t, SeedDemoUser(ctx, s, demo))
	require.NoError(t, SeedDemoUser(ctx, s, demo))

	users, err := s.FindUsers(ctx, credentials("demo@example.com", "demo123"))
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
