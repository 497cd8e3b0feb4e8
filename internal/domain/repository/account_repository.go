package repository

import (
	"context"
	"errors"

	"github.com/easypayhq/easypay/internal/domain/entity"
)

// ErrNotFound is returned when the targeted row does not exist.
var ErrNotFound = errors.New("not found")

// AccountRepository defines the interface for account-related database operations.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByUsername(ctx context.Context, username string) (*entity.Account, error)
	Exists(ctx context.Context, username string) (bool, error)
	UpdateEmail(ctx context.Context, username, newEmail string) error
	UpdatePassword(ctx context.Context, username, ciphertext string) error
	UpdateProviderKey(ctx context.Context, username, ciphertext string) error
	// Rename updates the account username and rewrites every catalog row owned
	// by the old username in a single transaction.
	Rename(ctx context.Context, currentUsername, newUsername string) error
}
