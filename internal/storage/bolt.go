package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/planhub/planhub/pkg/planner"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	plannerBucket = "planner"
	snapshotKey   = "events"
)

// BoltStore persists the whole event collection as one JSON document in a
// bbolt bucket. This is the default backend for a single-process install.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the snapshot database at path.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create storage directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open snapshot database: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(plannerBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create snapshot bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(_ context.Context) ([]planner.Event, error) {
	var payload []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(plannerBucket)).Get([]byte(snapshotKey))
		if value != nil {
			payload = append([]byte(nil), value...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not read snapshot: %w", err)
	}
	if payload == nil {
		return nil, planner.ErrNoSnapshot
	}

	var events []planner.Event
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, fmt.Errorf("could not decode snapshot: %w", err)
	}
	return events, nil
}

func (s *BoltStore) SaveAll(_ context.Context, events []planner.Event) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("could not encode snapshot: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(plannerBucket)).Put([]byte(snapshotKey), payload)
	})
	if err != nil {
		log.Errorf("could not write snapshot: %v", err)
		return fmt.Errorf("could not write snapshot: %w", err)
	}
	return nil
}

// Watch is a no-op for bolt: the file is held under an exclusive lock, so no
// other process can rewrite the snapshot while this one is running.
func (s *BoltStore) Watch(_ func([]planner.Event)) func() {
	return func() {}
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
