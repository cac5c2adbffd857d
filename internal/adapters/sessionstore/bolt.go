// Package sessionstore persists the current admin identity across process
// restarts in a small bbolt database: one bucket, one key. Logout clears the
// slot; a missing or empty slot just means no session to restore.
package sessionstore

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"faithconnect/internal/domain"
)

var (
	bucketName = []byte("session")
	slotKey    = []byte("identity")
)

type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the session database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("could not open session db %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create session bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(identity domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(slotKey, raw)
	})
}

func (s *Store) Load() (domain.Identity, bool, error) {
	var identity domain.Identity
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get(slotKey)
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &identity); err != nil {
			return fmt.Errorf("unmarshal identity: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return domain.Identity{}, false, err
	}
	return identity, found, nil
}

func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete(slotKey)
	})
}
