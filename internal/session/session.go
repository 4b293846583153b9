// Package session holds the identity of the logged-in user for the lifetime
// of the client process.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"todo-go/internal/models"
	"todo-go/pkg/logger"
)

// UserAPI is the backend surface the store needs.
type UserAPI interface {
	FindUsers(ctx context.Context, email, password string) ([]models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)
}

// Store is the single source of truth for who is logged in.
type Store struct {
	users     UserAPI
	persister Persister

	mu      sync.RWMutex
	current *models.User
}

// Open restores any persisted session before returning, so the first read
// already sees it. A record that cannot be read is treated as absent.
func Open(ctx context.Context, users UserAPI, persister Persister) *Store {
	s := &Store{users: users, persister: persister}

	user, err := persister.Load(ctx)
	if err != nil {
		logger.ErrorLogger.Error("Cannot restore session, starting logged out", zap.Error(err))
		return s
	}
	if user != nil {
		s.current = user
		logger.SystemLogger.Info("Session restored", zap.Int("user_id", user.ID))
	}
	return s
}

// Register creates the user on the backend. Backend rejections are returned
// unchanged.
func (s *Store) Register(ctx context.Context, candidate models.User) (models.User, error) {
	user, err := s.users.CreateUser(ctx, candidate)
	if err != nil {
		return models.User{}, err
	}
	logger.AuditLogger.Info("User registered", zap.Int("user_id", user.ID))
	return user, nil
}

// Login returns true when exactly one user matches email and password.
// Transport failures also report false.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	users, err := s.users.FindUsers(ctx, email, password)
	if err != nil {
		logger.SecurityLogger.Warn("Login failed", zap.String("email", email), zap.Error(err))
		return false
	}
	if len(users) != 1 {
		logger.SecurityLogger.Warn("Invalid credentials", zap.String("email", email), zap.Int("matches", len(users)))
		return false
	}

	user := users[0]
	if err := s.persister.Save(ctx, user); err != nil {
		// Sesi tetap aktif di memori, hanya tidak bertahan setelah restart.
		logger.ErrorLogger.Error("Cannot persist session", zap.Error(err))
	}

	s.mu.Lock()
	s.current = &user
	s.mu.Unlock()

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID))
	return true
}

// Logout clears the session. Calling it while logged out is fine.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.persister.Clear(ctx); err != nil {
		logger.ErrorLogger.Error("Cannot clear persisted session", zap.Error(err))
		return err
	}
	logger.AuditLogger.Info("Logout")
	return nil
}

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

func (s *Store) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.User{}, false
	}
	return *s.current, true
}

// CurrentUserID reports false when logged out or when the user has no id.
func (s *Store) CurrentUserID() (int, bool) {
	user, ok := s.CurrentUser()
	if !ok || user.ID == 0 {
		return 0, false
	}
	return user.ID, true
}
