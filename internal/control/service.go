package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/courier/internal/core/backoff"
	"github.com/vietddude/courier/internal/core/config"
	"github.com/vietddude/courier/internal/delivery"
	"github.com/vietddude/courier/internal/infra/backup"
	"github.com/vietddude/courier/internal/infra/journal"
	"github.com/vietddude/courier/internal/infra/remote"
	"github.com/vietddude/courier/internal/service"
)

// MigrationsDir is where goose looks for journal schema migrations.
var MigrationsDir = "migrations"

// Service is the main application struct that wires and manages the
// delivery pipeline lifecycle.
type Service struct {
	cfg        *config.AppConfig
	coord      *delivery.Coordinator
	uploader   remote.Uploader
	jrnl       journal.Repository
	store      backup.Store
	redisStore *backup.RedisStore
	db         *journal.DB
	httpServer *service.Server
	log        *slog.Logger
}

// New creates a Service with all dependencies initialized.
func New(cfg *config.AppConfig) (*Service, error) {
	log := slog.Default()

	// 1. Backup store: Redis when configured, filesystem otherwise.
	var store backup.Store
	var redisStore *backup.RedisStore
	checks := make(map[string]service.Check)

	if cfg.Redis.URL != "" {
		rs, err := backup.NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis backup store: %w", err)
		}
		store = rs
		redisStore = rs
		checks["backup"] = rs.Ping
		slog.Info("Using Redis backup store")
	} else {
		fs, err := backup.NewFSStore(cfg.Backup)
		if err != nil {
			return nil, fmt.Errorf("failed to init filesystem backup store: %w", err)
		}
		store = fs
		checks["backup"] = fs.Ping
		slog.Info("Using filesystem backup store", "dir", cfg.Backup.Dir)
	}

	// 2. Delivery journal: PostgreSQL when configured, in-memory otherwise.
	var jrnl journal.Repository
	var db *journal.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = journal.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init journal db: %w", err)
		}
		if err := db.Migrate(MigrationsDir); err != nil {
			return nil, err
		}
		jrnl = journal.NewPostgresRepo(db)
		checks["journal"] = db.Health
		slog.Info("Using PostgreSQL journal")
	} else {
		jrnl = journal.NewMemoryRepo()
		slog.Info("Using in-memory journal")
	}

	// 3. Remote uploader.
	uploader, err := remote.NewHTTPUploader(cfg.Remote)
	if err != nil {
		return nil, fmt.Errorf("failed to init uploader: %w", err)
	}

	// 4. Coordinator.
	calc := backoff.NewExponential(cfg.Retry.Backoff, cfg.Retry.MaxAttempts)
	coord := delivery.NewCoordinator(store, calc, cfg.Retry, delivery.PromSink{}, log)

	// 5. HTTP surface.
	httpServer := service.NewServer(coord, uploader, jrnl, checks, cfg.Server.Port, log)

	return &Service{
		cfg:        cfg,
		coord:      coord,
		uploader:   uploader,
		jrnl:       jrnl,
		store:      store,
		redisStore: redisStore,
		db:         db,
		httpServer: httpServer,
		log:        log,
	}, nil
}

// Coordinator exposes the delivery coordinator for embedding callers.
func (s *Service) Coordinator() *delivery.Coordinator {
	return s.coord
}

// Uploader exposes the configured remote uploader.
func (s *Service) Uploader() remote.Uploader {
	return s.uploader
}

// Start launches the HTTP server and blocks until ctx is cancelled or the
// server stops.
func (s *Service) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Intake server listening", "port", s.cfg.Server.Port)
		errCh <- s.httpServer.Start()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Stop shuts the HTTP server down gracefully and closes infra connections.
func (s *Service) Stop(ctx context.Context) error {
	var firstErr error

	if err := s.httpServer.Stop(ctx); err != nil {
		firstErr = err
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.redisStore != nil {
		if err := s.redisStore.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
