package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/simgebenzerr/planner-core/internal/domain/entities"
	"github.com/simgebenzerr/planner-core/internal/ports"
)

// AccountRepositoryImpl implements the AccountRepository interface on the
// identity provider's Postgres backend
type AccountRepositoryImpl struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sqlx.DB) ports.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

func (r *AccountRepositoryImpl) Create(ctx context.Context, account *entities.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, email_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		account.ID, strings.ToLower(account.Email), account.PasswordHash, account.EmailVerified,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return entities.ErrAccountExists
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *AccountRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	query := `
		SELECT id, email, password_hash, email_verified, verification_token, created_at, updated_at
		FROM accounts
		WHERE id = $1`

	var account entities.Account
	err := r.db.GetContext(ctx, &account, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}

	return &account, nil
}

func (r *AccountRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	query := `
		SELECT id, email, password_hash, email_verified, verification_token, created_at, updated_at
		FROM accounts
		WHERE email = $1`

	var account entities.Account
	err := r.db.GetContext(ctx, &account, query, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}

	return &account, nil
}

func (r *AccountRepositoryImpl) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `
		UPDATE accounts
		SET verification_token = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepositoryImpl) MarkVerified(ctx context.Context, token string) (*entities.Account, error) {
	query := `
		UPDATE accounts
		SET email_verified = TRUE, verification_token = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE verification_token = $1
		RETURNING id, email, password_hash, email_verified, verification_token, created_at, updated_at`

	var account entities.Account
	err := r.db.GetContext(ctx, &account, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrAccountNotFound
		}
		return nil, fmt.Errorf("mark account verified: %w", err)
	}

	return &account, nil
}
