package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/easypayhq/easypay/internal/domain/entity"
	"github.com/easypayhq/easypay/internal/domain/repository"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, email, password, provider_key)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, a.Username, a.Email, a.Password, a.ProviderKey)

	return row.Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*entity.Account, error) {
	a := &entity.Account{}

	row := r.pool.QueryRow(ctx, `
		SELECT username, email, password, provider_key, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`, username)

	if err := row.Scan(&a.Username, &a.Email, &a.Password, &a.ProviderKey,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return a, nil
}

func (r *AccountRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int
	row := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE username = $1`, username)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AccountRepository) UpdateEmail(ctx context.Context, username, newEmail string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts SET email = $1, updated_at = now() WHERE username = $2
	`, newEmail, username)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, username, ciphertext string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts SET password = $1, updated_at = now() WHERE username = $2
	`, ciphertext, username)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) UpdateProviderKey(ctx context.Context, username, ciphertext string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts SET provider_key = $1, updated_at = now() WHERE username = $2
	`, ciphertext, username)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Rename changes the account username and rewrites catalog ownership in one
// transaction so no catalog row can reference a username that no longer exists.
func (r *AccountRepository) Rename(ctx context.Context, currentUsername, newUsername string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		res, err := tx.Exec(ctx, `
			UPDATE accounts SET username = $1, updated_at = now() WHERE username = $2
		`, newUsername, currentUsername)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		_, err = tx.Exec(ctx, `
			UPDATE catalog_items SET owner_username = $1 WHERE owner_username = $2
		`, newUsername, currentUsername)
		return err
	})
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
