package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

// DocumentStoreImpl implements the remote document store collaborator on
// Postgres. Documents are JSONB rows addressed by (collection, id).
type DocumentStoreImpl struct {
	db *sqlx.DB
}

// NewDocumentStore creates a new document store adapter
func NewDocumentStore(db *sqlx.DB) ports.DocumentStore {
	return &DocumentStoreImpl{db: db}
}

func (r *DocumentStoreImpl) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	query := `SELECT fields FROM documents WHERE collection = $1 AND id = $2`

	var raw []byte
	err := r.db.GetContext(ctx, &raw, query, collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}

	return fields, nil
}

func (r *DocumentStoreImpl) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}

	query := `
		INSERT INTO documents (collection, id, fields)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET fields = EXCLUDED.fields`

	if _, err := r.db.ExecContext(ctx, query, collection, id, raw); err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}

	return nil
}

// Update merges the supplied fields into the stored document. The merge
// happens server-side so concurrent partial updates to different fields do
// not clobber each other.
func (r *DocumentStoreImpl) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}

	query := `
		UPDATE documents
		SET fields = fields || $3::jsonb
		WHERE collection = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, collection, id, raw)
	if err != nil {
		return fmt.Errorf("update document %s/%s: %w", collection, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrDocumentNotFound
	}

	return nil
}
