package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/easypayhq/easypay/config"
	"github.com/easypayhq/easypay/internal/infrastructure/secrets"
)

// Seeds a demo seller with one catalog item. Secrets go through the same
// cipher the server uses, so login works against the seeded row.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	cipher, err := secrets.Load(cfg.PublicKeyPath, "")
	if err != nil {
		log.Fatalf("failed to load public key: %v", err)
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	username := "demoseller"
	email := "demo@easypay.dev"
	password := "password123"
	providerKey := "sk_test_51DemoKey"

	encPassword, err := cipher.Encrypt(password)
	if err != nil {
		log.Fatalf("failed to encrypt password: %v", err)
	}
	encProviderKey, err := cipher.Encrypt(providerKey)
	if err != nil {
		log.Fatalf("failed to encrypt provider key: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO accounts (username, email, password, provider_key)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE SET email = EXCLUDED.email
	`, username, email, encPassword, encProviderKey); err != nil {
		log.Fatalf("failed to seed account: %v", err)
	}
	fmt.Printf("seeded account: username=%s email=%s password=%s\n", username, email, password)

	if _, err := db.Exec(`
		INSERT INTO catalog_items (owner_username, name, price, currency, image_url)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM catalog_items WHERE owner_username = $1 AND name = $2
		)
	`, username, "Demo Poster", 14.50, "usd", ""); err != nil {
		log.Fatalf("failed to seed catalog item: %v", err)
	}
	fmt.Println("seeded catalog item: Demo Poster (14.50 usd)")
}
