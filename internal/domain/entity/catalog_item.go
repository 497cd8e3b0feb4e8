package entity

import "time"

// CatalogItem is a single sellable product entry owned by one Account.
// ImageURL references a blob in object storage; the item does not own it.
type CatalogItem struct {
	ID            int64
	OwnerUsername string
	Name          string
	Price         float64
	Currency      string
	ImageURL      string
	CreatedAt     time.Time
}
