package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/simgebenzerr/planner-core/internal/ports"
)

// SettingsRepositoryImpl implements the local integer key-value collaborator
// over the SQLite store. Only the theme preference lives here today.
type SettingsRepositoryImpl struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sqlx.DB) ports.SettingsRepository {
	return &SettingsRepositoryImpl{db: db}
}

// GetInt returns the stored value for key, or 0 when the key is unset.
func (r *SettingsRepositoryImpl) GetInt(ctx context.Context, key string) (int, error) {
	query := `SELECT value FROM settings WHERE key = ?`

	var value int
	err := r.db.GetContext(ctx, &value, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get setting %q: %w", key, err)
	}

	return value, nil
}

func (r *SettingsRepositoryImpl) SetInt(ctx context.Context, key string, value int) error {
	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}

	return nil
}
