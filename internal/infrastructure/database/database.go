package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/simgebenzerr/planner-core/internal/infrastructure/config"
)

// LocalDB wraps the on-device SQLite store holding tasks and settings.
// A failed open here aborts startup: the app cannot function without it.
type LocalDB struct {
	DB *sqlx.DB
}

// OpenLocal opens (creating if needed) the local SQLite store
func OpenLocal(cfg config.LocalStoreConfig) (*LocalDB, error) {
	db, err := sqlx.Open("sqlite3", cfg.Path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	// SQLite handles one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping local store: %w", err)
	}

	return &LocalDB{DB: db}, nil
}

// Close closes the local store
func (l *LocalDB) Close() error {
	if l.DB != nil {
		return l.DB.Close()
	}
	return nil
}

// RemoteDB wraps the connection to the remote document store
type RemoteDB struct {
	DB     *sqlx.DB
	config config.DocumentStoreConfig
}

// OpenRemote connects to the document store backend
func OpenRemote(cfg config.DocumentStoreConfig) (*RemoteDB, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open document store connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping document store: %w", err)
	}

	return &RemoteDB{
		DB:     db,
		config: cfg,
	}, nil
}

// Close closes the document store connection
func (r *RemoteDB) Close() error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}

// HealthCheck checks document store health
func (r *RemoteDB) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("document store health check failed: %w", err)
	}

	return nil
}

// GetConnectionInfo returns connection pool statistics
func (r *RemoteDB) GetConnectionInfo() map[string]interface{} {
	stats := r.DB.Stats()

	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
	}
}
