package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// key derivation parameters for the token sealing key
const (
	kdfTime    = 1
	kdfMemory  = 19 * 1024 // KiB
	kdfThreads = 2
	saltSize   = 16
	saltName   = "token_salt"
)

var errUnseal = errors.New("token cannot be decrypted")

// sealer encrypts backend tokens at rest. The session id is bound as
// additional data so a sealed token cannot be moved to another row.
type sealer struct {
	key []byte
}

func newSealer(secret string, salt []byte) (*sealer, error) {
	if secret == "" {
		key := make([]byte, chacha20poly1305.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate random key: %w", err)
		}
		return &sealer{key: key}, nil
	}
	key := argon2.IDKey([]byte(secret), salt, kdfTime, kdfMemory, kdfThreads, chacha20poly1305.KeySize)
	return &sealer{key: key}, nil
}

func (s *sealer) seal(plaintext, sessionID string) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, []byte(plaintext), []byte(sessionID)), nil
}

func (s *sealer) open(sealed []byte, sessionID string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return "", errUnseal
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(sessionID))
	if err != nil {
		return "", errUnseal
	}
	return string(plaintext), nil
}

// loadSealer derives the sealing key from secret and the store's persisted salt,
// creating the salt on first use.
func (s *Store) loadSealer(ctx context.Context, secret string) (*sealer, error) {
	if secret == "" {
		log.Printf("[DATABASE]: no session secret configured, sessions will not survive a restart")
		return newSealer("", nil)
	}

	var salt []byte
	err := retryableQueryRowScan(ctx, s.db, `SELECT value FROM store_meta WHERE name = ?`, []any{saltName}, &salt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		// a concurrent opener may have won; read back whatever is stored
		if _, err := retryableExec(ctx, s.db, `INSERT OR IGNORE INTO store_meta (name, value) VALUES (?, ?)`, saltName, salt); err != nil {
			return nil, fmt.Errorf("store salt: %w", err)
		}
		if err := retryableQueryRowScan(ctx, s.db, `SELECT value FROM store_meta WHERE name = ?`, []any{saltName}, &salt); err != nil {
			return nil, fmt.Errorf("read salt: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read salt: %w", err)
	}
	return newSealer(secret, salt)
}
