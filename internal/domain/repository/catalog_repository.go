package repository

import (
	"context"

	"github.com/easypayhq/easypay/internal/domain/entity"
)

// CatalogRepository defines the interface for catalog-related database operations.
type CatalogRepository interface {
	Insert(ctx context.Context, item *entity.CatalogItem) error
	ListByOwner(ctx context.Context, username string) ([]entity.CatalogItem, error)
	// Delete removes the item only when both id and owner match; it reports
	// whether a row was deleted.
	Delete(ctx context.Context, id int64, ownerUsername string) (bool, error)
}
