package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"todo-go/configs"
	v1 "todo-go/internal/api/v1"
	"todo-go/internal/models"
	"todo-go/internal/repository"
	"todo-go/pkg/database"
	"todo-go/pkg/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "todo-api:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("todo-api", flag.ContinueOnError)
	seed := fs.Bool("seed", false, "create the demo@example.com / demo1234 account")
	reset := fs.Bool("reset", false, "drop the postgres tables before starting")
	rateLimit := fs.Int("rate-limit", 100, "requests per minute per IP, 0 disables")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Load config
	cfg := configs.LoadConfig()

	// Inisialisasi logger
	if err := logger.InitLoggers(cfg.LogDir); err != nil {
		return err
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx, cfg, *reset)
	if err != nil {
		logger.ErrorLogger.Error("Store setup failed", zap.Error(err))
		return err
	}
	defer cleanup()

	if *seed {
		demo := models.User{Email: "demo@example.com", Password: "demo1234", Name: "Demo"}
		if err := repository.SeedDemoUser(ctx, store, demo); err != nil {
			return err
		}
	}

	app := v1.NewApp(store, *rateLimit)

	go func() {
		<-ctx.Done()
		logger.SystemLogger.Info("Shutting down")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr), zap.String("store", cfg.BackendStore), zap.String("cache", cfg.BackendCache))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
		return err
	}
	return nil
}

// openStore memilih Store sesuai BACKEND_STORE dan BACKEND_CACHE.
func openStore(ctx context.Context, cfg configs.Config, reset bool) (repository.Store, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var store repository.Store
	switch cfg.BackendStore {
	case "memory":
		store = repository.NewMemory()
	case "postgres":
		db, err := database.ConnectDB(ctx, cfg)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { db.Close() })
		logger.SystemLogger.Info("Database Connected")

		if err := prepareTables(ctx, db, reset); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		store = repository.NewPostgres(db)
	default:
		return nil, cleanup, fmt.Errorf("unknown BACKEND_STORE %q", cfg.BackendStore)
	}

	switch cfg.BackendCache {
	case "", "none":
	case "redis":
		client, err := database.ConnectRedis(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, func() { client.Close() })
		store = repository.NewCached(store, client, cfg.CacheTTL)
	default:
		cleanup()
		return nil, func() {}, fmt.Errorf("unknown BACKEND_CACHE %q", cfg.BackendCache)
	}

	return store, cleanup, nil
}

func prepareTables(ctx context.Context, db *sql.DB, reset bool) error {
	// Jika ingin menghapus tabel:
	if reset {
		if err := repository.DeleteAllTable(ctx, db); err != nil {
			return err
		}
	}
	// Buat tabel jika belum ada:
	return repository.CreateTableIfNotExists(ctx, db)
}
