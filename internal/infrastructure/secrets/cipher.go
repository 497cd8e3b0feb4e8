package secrets

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrKeyNotConfigured is returned when the key half required by the
	// operation was not supplied at construction time.
	ErrKeyNotConfigured = errors.New("cipher key not configured")
	// ErrDecryptionFailed is returned for malformed ciphertext or ciphertext
	// produced by a different key pair.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Cipher encrypts and decrypts short secrets (passwords, provider API keys)
// with a fixed RSA key pair held for the process lifetime. Either half may be
// absent: encrypt-only deployments carry just the public key.
type Cipher struct {
	public  *rsa.PublicKey
	private *rsa.PrivateKey
}

// New builds a Cipher from in-memory keys. Both arguments are optional.
func New(public *rsa.PublicKey, private *rsa.PrivateKey) *Cipher {
	return &Cipher{public: public, private: private}
}

// Load reads PEM key files and builds a Cipher. An empty path skips that key
// half; the corresponding operation then fails with ErrKeyNotConfigured.
func Load(publicKeyPath, privateKeyPath string) (*Cipher, error) {
	c := &Cipher{}
	if publicKeyPath != "" {
		pub, err := ReadPublicKey(publicKeyPath)
		if err != nil {
			return nil, err
		}
		c.public = pub
	}
	if privateKeyPath != "" {
		priv, err := ReadPrivateKey(privateKeyPath)
		if err != nil {
			return nil, err
		}
		c.private = priv
	}
	return c, nil
}

// Encrypt encrypts plaintext with the public key and returns base64 ciphertext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if c.public == nil {
		return "", ErrKeyNotConfigured
	}

	// PKCS#1 v1.5 caps each block at key size minus padding; chunk so that
	// secrets longer than one block still round-trip.
	maxSize := c.public.Size() - 11

	data := []byte(plaintext)
	var out []byte
	for len(data) > 0 {
		n := maxSize
		if len(data) < n {
			n = len(data)
		}
		block, err := rsa.EncryptPKCS1v15(rand.Reader, c.public, data[:n])
		if err != nil {
			return "", fmt.Errorf("encrypt: %w", err)
		}
		out = append(out, block...)
		data = data[n:]
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt using the private key.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if c.private == nil {
		return "", ErrKeyNotConfigured
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	blockSize := c.private.Size()
	var out []byte
	for len(raw) > 0 {
		n := blockSize
		if len(raw) < n {
			n = len(raw)
		}
		plain, err := rsa.DecryptPKCS1v15(rand.Reader, c.private, raw[:n])
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
		}
		out = append(out, plain...)
		raw = raw[n:]
	}
	return string(out), nil
}

// GenerateKeys creates a fresh RSA key pair. Recommended sizes: 2048 minimum.
func GenerateKeys(bits int) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("generate rsa keys: %w", err)
	}
	return priv, &priv.PublicKey, nil
}

// ReadPrivateKey reads an RSA private key from a PEM file (PKCS#1 or PKCS#8).
func ReadPrivateKey(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("no PEM block in private key file")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return key, nil
}

// ReadPublicKey reads an RSA public key from a PEM file (PKCS#1 or PKIX).
func ReadPublicKey(path string) (*rsa.PublicKey, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("no PEM block in public key file")
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return key, nil
}

// SavePrivateKey writes the private key to a PEM file (PKCS#1).
func SavePrivateKey(key *rsa.PrivateKey, path string) error {
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return writePEM(path, block)
}

// SavePublicKey writes the public key to a PEM file (PKIX).
func SavePublicKey(key *rsa.PublicKey, path string) error {
	b, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	return writePEM(path, &pem.Block{Type: "PUBLIC KEY", Bytes: b})
}

func writePEM(path string, block *pem.Block) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := pem.Encode(f, block); err != nil {
		return fmt.Errorf("encode key: %w", err)
	}
	return nil
}
