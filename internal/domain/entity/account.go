package entity

import "time"

// Account is the aggregate root for the seller domain.
// Password and ProviderKey hold cipher output, never plaintext.
type Account struct {
	Username    string
	Email       string
	Password    string
	ProviderKey string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
