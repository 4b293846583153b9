package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-redis/redis/v8"

	"todo-go/internal/models"
	"todo-go/pkg/crypto"
)

// Key is the well-known name the session record is stored under.
const Key = "currentUser"

// Persister keeps the session record across process restarts. Load returns
// (nil, nil) when nothing is stored.
type Persister interface {
	Load(ctx context.Context) (*models.User, error)
	Save(ctx context.Context, user models.User) error
	Clear(ctx context.Context) error
}

// codec serializes the record as JSON, sealed when a secret is configured.
type codec struct {
	secret string
}

func (c codec) encode(user models.User) ([]byte, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	if c.secret == "" {
		return raw, nil
	}
	sealed, err := crypto.Seal(raw, c.secret)
	if err != nil {
		return nil, fmt.Errorf("seal session: %w", err)
	}
	return []byte(sealed), nil
}

func (c codec) decode(data []byte) (*models.User, error) {
	raw := data
	if c.secret != "" {
		opened, err := crypto.Open(string(data), c.secret)
		if err != nil {
			return nil, fmt.Errorf("open session: %w", err)
		}
		raw = opened
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &user, nil
}

// FilePersister stores the session in a single file.
type FilePersister struct {
	path  string
	codec codec
}

// NewFilePersister stores the record at path. A non-empty secret seals the
// file contents with AES-GCM.
func NewFilePersister(path, secret string) *FilePersister {
	return &FilePersister{path: path, codec: codec{secret: secret}}
}

func (p *FilePersister) Load(ctx context.Context) (*models.User, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.codec.decode(data)
}

func (p *FilePersister) Save(ctx context.Context, user models.User) error {
	data, err := p.codec.encode(user)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}

	// Tulis ke file sementara lalu rename supaya file lama tidak pernah
	// setengah tertulis.
	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".session-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p.path)
}

func (p *FilePersister) Clear(ctx context.Context) error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RedisPersister stores the session under Key in Redis.
type RedisPersister struct {
	client *redis.Client
	key    string
	codec  codec
}

func NewRedisPersister(client *redis.Client, secret string) *RedisPersister {
	return &RedisPersister{client: client, key: Key, codec: codec{secret: secret}}
}

func (p *RedisPersister) Load(ctx context.Context) (*models.User, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.codec.decode(data)
}

func (p *RedisPersister) Save(ctx context.Context, user models.User) error {
	data, err := p.codec.encode(user)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, p.key, data, 0).Err()
}

func (p *RedisPersister) Clear(ctx context.Context) error {
	return p.client.Del(ctx, p.key).Err()
}

// Memory keeps the record in process memory. Useful in tests.
type Memory struct {
	mu   sync.Mutex
	user *models.User
}

func (m *Memory) Load(ctx context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, nil
	}
	u := *m.user
	return &u, nil
}

func (m *Memory) Save(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &user
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	return nil
}
