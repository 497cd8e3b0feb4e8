package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/easypayhq/easypay/internal/infrastructure/secrets"
)

// Generates the RSA key pair consumed by the secret cipher and writes it to
// PEM files. Run once per deployment; the server loads the files at startup.
func main() {
	var (
		bits    = flag.Int("bits", 2048, "RSA key size in bits")
		pubPath = flag.String("public", "keys/public.pem", "public key output path")
		prvPath = flag.String("private", "keys/private.pem", "private key output path")
	)
	flag.Parse()

	if *bits < 2048 {
		log.Fatalf("refusing to generate a %d-bit key; use at least 2048", *bits)
	}

	for _, p := range []string{*pubPath, *prvPath} {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Fatalf("create key directory: %v", err)
			}
		}
	}

	priv, pub, err := secrets.GenerateKeys(*bits)
	if err != nil {
		log.Fatalf("generate keys: %v", err)
	}
	if err := secrets.SavePrivateKey(priv, *prvPath); err != nil {
		log.Fatalf("write private key: %v", err)
	}
	if err := os.Chmod(*prvPath, 0o600); err != nil {
		log.Fatalf("chmod private key: %v", err)
	}
	if err := secrets.SavePublicKey(pub, *pubPath); err != nil {
		log.Fatalf("write public key: %v", err)
	}
	fmt.Printf("wrote %s and %s (%d bits)\n", *pubPath, *prvPath, *bits)
}
