package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"todo-go/internal/models"
	"todo-go/pkg/logger"
)

// Cached membungkus Store dengan cache Redis untuk GetTask. Kegagalan Redis
// hanya dicatat, request tetap dilayani oleh Store di bawahnya.
//
// Pengisian cache dan eviction saat write memegang fill, jadi GetTask yang
// membaca baris lama tidak bisa menyimpannya setelah UpdateTask menghapus
// key. Ini hanya berlaku dalam satu proses.
type Cached struct {
	Store
	redis *redis.Client
	ttl   time.Duration
	fill  sync.Mutex
}

func NewCached(store Store, client *redis.Client, ttl time.Duration) *Cached {
	return &Cached{Store: store, redis: client, ttl: ttl}
}

func taskKey(id int) string {
	return fmt.Sprintf("todo:%d", id)
}

func (c *Cached) GetTask(ctx context.Context, id int) (models.Task, error) {
	key := taskKey(id)
	cached, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var task models.Task
		if err := json.Unmarshal(cached, &task); err == nil {
			return task, nil
		}
		logger.ErrorLogger.Error("Error decoding cached todo", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		logger.ErrorLogger.Error("Error reading todo cache", zap.String("key", key), zap.Error(err))
	}

	c.fill.Lock()
	defer c.fill.Unlock()

	task, err := c.Store.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	// Simpan ke Redis dengan waktu kadaluarsa ttl
	if data, err := json.Marshal(task); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logger.ErrorLogger.Error("Error caching todo", zap.String("key", key), zap.Error(err))
		}
	}
	return task, nil
}

func (c *Cached) UpdateTask(ctx context.Context, task models.Task) (models.Task, error) {
	c.fill.Lock()
	defer c.fill.Unlock()
	updated, err := c.Store.UpdateTask(ctx, task)
	c.evict(ctx, task.ID)
	return updated, err
}

func (c *Cached) DeleteTask(ctx context.Context, id int) error {
	c.fill.Lock()
	defer c.fill.Unlock()
	err := c.Store.DeleteTask(ctx, id)
	c.evict(ctx, id)
	return err
}

func (c *Cached) evict(ctx context.Context, id int) {
	if err := c.redis.Del(ctx, taskKey(id)).Err(); err != nil {
		logger.ErrorLogger.Error("Error evicting todo cache", zap.Int("task_id", id), zap.Error(err))
	}
}
