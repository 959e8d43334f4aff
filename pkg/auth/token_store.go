package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	sessionBucket = []byte("session")
	tokenKey      = []byte("token")
)

// TokenStore caches the current session token in a small bolt file so that a
// restart does not log the user out.
type TokenStore struct {
	db *bolt.DB
}

func OpenTokenStore(path string) (*TokenStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create token store directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open token store at %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not prepare token store: %w", err)
	}
	return &TokenStore{db: db}, nil
}

// Token returns the cached session token, or "" when none is stored.
func (s *TokenStore) Token() (string, error) {
	var token string
	err := s.db.View(func(tx *bolt.Tx) error {
		if value := tx.Bucket(sessionBucket).Get(tokenKey); value != nil {
			token = string(value)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("could not read session token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Store(token string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(tokenKey, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("could not store session token: %w", err)
	}
	return nil
}

func (s *TokenStore) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(tokenKey)
	})
	if err != nil {
		return fmt.Errorf("could not clear session token: %w", err)
	}
	return nil
}

func (s *TokenStore) Close() error {
	return s.db.Close()
}
