package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/easypayhq/easypay/internal/domain/entity"
	"github.com/easypayhq/easypay/internal/domain/repository"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) Insert(ctx context.Context, item *entity.CatalogItem) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO catalog_items (owner_username, name, price, currency, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, item.OwnerUsername, item.Name, item.Price, item.Currency, item.ImageURL)

	return row.Scan(&item.ID, &item.CreatedAt)
}

// ListByOwner returns the owner's catalog most recent first.
func (r *CatalogRepository) ListByOwner(ctx context.Context, username string) ([]entity.CatalogItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_username, name, price, currency, image_url, created_at
		FROM catalog_items
		WHERE owner_username = $1
		ORDER BY id DESC
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]entity.CatalogItem, 0)
	for rows.Next() {
		var it entity.CatalogItem
		if err := rows.Scan(&it.ID, &it.OwnerUsername, &it.Name, &it.Price,
			&it.Currency, &it.ImageURL, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Delete matches on both id and owner so a caller cannot remove another
// seller's item by guessing ids.
func (r *CatalogRepository) Delete(ctx context.Context, id int64, ownerUsername string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM catalog_items WHERE id = $1 AND owner_username = $2
	`, id, ownerUsername)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)
