package journal

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx via database/sql
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/vietddude/courier/internal/core/domain"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// DB wraps the journal database connection.
type DB struct {
	*sqlx.DB
}

// NewDB opens and verifies a connection.
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	db, err := sqlx.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate applies goose migrations from the given directory.
func (db *DB) Migrate(dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db.DB.DB, dir); err != nil {
		return fmt.Errorf("failed to migrate journal: %w", err)
	}
	return nil
}

// Health checks if the database is healthy.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// PostgresRepo implements Repository using PostgreSQL.
type PostgresRepo struct {
	db *DB
}

// NewPostgresRepo creates a PostgreSQL-backed journal.
func NewPostgresRepo(db *DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// Record persists a delivery record.
func (r *PostgresRepo) Record(ctx context.Context, rec *domain.DeliveryRecord) error {
	query := `
		INSERT INTO deliveries (id, payload_key, status, attempts_used, internal_status, transport_status, error_msg, started_at, finished_at)
		VALUES (:id, :payload_key, :status, :attempts_used, :internal_status, :transport_status, :error_msg, :started_at, :finished_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	return nil
}

// CountByStatus returns record counts grouped by terminal status.
func (r *PostgresRepo) CountByStatus(ctx context.Context) (map[domain.DeliveryStatus]int, error) {
	query := `SELECT status, COUNT(*) AS cnt FROM deliveries GROUP BY status`

	var rows []struct {
		Status string `db:"status"`
		Cnt    int    `db:"cnt"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count deliveries: %w", err)
	}

	counts := make(map[domain.DeliveryStatus]int, len(rows))
	for _, row := range rows {
		counts[domain.DeliveryStatus(row.Status)] = row.Cnt
	}
	return counts, nil
}

// Recent returns the latest delivery records.
func (r *PostgresRepo) Recent(ctx context.Context, limit int) ([]*domain.DeliveryRecord, error) {
	query := `
		SELECT id, payload_key, status, attempts_used, internal_status, transport_status, error_msg, started_at, finished_at
		FROM deliveries
		ORDER BY finished_at DESC
		LIMIT $1
	`
	var recs []*domain.DeliveryRecord
	if err := r.db.SelectContext(ctx, &recs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	return recs, nil
}
