package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-go/internal/models"
)

type stubUsers struct {
	findFn   func(ctx context.Context, email, password string) ([]models.User, error)
	createFn func(ctx context.Context, user models.User) (models.User, error)
}

func (s *stubUsers) FindUsers(ctx context.Context, email, password string) ([]models.User, error) {
	if s.findFn == nil {
		return nil, errors.New("unexpected FindUsers call")
	}
	return s.findFn(ctx, email, password)
}

func (s *stubUsers) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if s.createFn == nil {
		return models.User{}, errors.New("unexpected CreateUser call")
	}
	return s.createFn(ctx, user)
}

// backendWith matches on exact, case-sensitive equality like the backend does.
func backendWith(users ...models.User) *stubUsers {
	return &stubUsers{findFn: func(ctx context.Context, email, password string) ([]models.User, error) {
		var out []models.User
		for _, u := range users {
			if u.Email == email && u.Password == password {
				out = append(out, u)
			}
		}
		return out, nil
	}}
}

var ann = models.User{ID: 11, Email: "a@x.com", Password: "pw1", Name: "Ann"}

func TestLoginSetsAndPersistsSession(t *testing.T) {
	ctx := context.Background()
	persister := &Memory{}
	store := Open(ctx, backendWith(ann), persister)
	require.False(t, store.IsLoggedIn())

	assert.True(t, store.Login(ctx, "a@x.com", "pw1"))

	id, ok := store.CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, 11, id)
	user, ok := store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Ann", user.Name)

	saved, err := persister.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, ann, *saved)
}

func TestLoginNoMatchIsFalse(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, backendWith(ann), &Memory{})

	assert.False(t, store.Login(ctx, "A@x.com", "pw1"), "email match is case-sensitive")
	assert.False(t, store.Login(ctx, "a@x.com", "PW1"))
	assert.False(t, store.IsLoggedIn())
}

func TestLoginTransportFailureIsFalse(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, &stubUsers{findFn: func(context.Context, string, string) ([]models.User, error) {
		return nil, errors.New("connection refused")
	}}, &Memory{})

	assert.False(t, store.Login(ctx, "a@x.com", "pw1"))
	_, ok := store.CurrentUserID()
	assert.False(t, ok)
}

func TestLogoutClearsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	persister := NewFilePersister(filepath.Join(t.TempDir(), "todo", "session.json"), "")
	users := backendWith(ann)

	store := Open(ctx, users, persister)
	require.True(t, store.Login(ctx, "a@x.com", "pw1"))

	restarted := Open(ctx, users, persister)
	assert.True(t, restarted.IsLoggedIn(), "session survives restart")

	require.NoError(t, restarted.Logout(ctx))
	assert.False(t, restarted.IsLoggedIn())
	require.NoError(t, restarted.Logout(ctx), "logout is idempotent")

	again := Open(ctx, users, persister)
	assert.False(t, again.IsLoggedIn())
}

func TestRegisterPropagatesBackendError(t *testing.T) {
	ctx := context.Background()
	dup := errors.New("409 conflict")
	store := Open(ctx, &stubUsers{createFn: func(ctx context.Context, u models.User) (models.User, error) {
		if u.Email == "taken@x.com" {
			return models.User{}, dup
		}
		u.ID = 5
		return u, nil
	}}, &Memory{})

	created, err := store.Register(ctx, models.User{Email: "new@x.com", Password: "pw", Name: "N"})
	require.NoError(t, err)
	assert.Equal(t, 5, created.ID)
	assert.False(t, store.IsLoggedIn(), "registration does not log in")

	_, err = store.Register(ctx, models.User{Email: "taken@x.com"})
	assert.Same(t, dup, err)
}

func TestUserWithoutIDHasNoUserID(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, backendWith(models.User{Email: "a@x.com", Password: "pw1"}), &Memory{})
	require.True(t, store.Login(ctx, "a@x.com", "pw1"))

	assert.True(t, store.IsLoggedIn())
	_, ok := store.CurrentUserID()
	assert.False(t, ok)
}

func TestFilePersisterSealsWithSecret(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	p := NewFilePersister(path, "s3cret")

	require.NoError(t, p.Save(ctx, ann))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "a@x.com")

	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ann, *got)

	_, err = NewFilePersister(path, "other").Load(ctx)
	assert.Error(t, err)
}

func TestCorruptSessionStartsLoggedOut(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := Open(ctx, backendWith(ann), NewFilePersister(path, ""))
	assert.False(t, store.IsLoggedIn())
}

func TestRedisPersister(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	p := NewRedisPersister(client, "")

	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	store := Open(ctx, backendWith(ann), p)
	require.True(t, store.Login(ctx, "a@x.com", "pw1"))
	assert.True(t, mr.Exists(Key))

	restarted := Open(ctx, backendWith(ann), p)
	id, ok := restarted.CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, 11, id)

	require.NoError(t, restarted.Logout(ctx))
	assert.False(t, mr.Exists(Key))
}
