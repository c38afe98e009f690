package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// BoltStore keeps the identity in a local BoltDB file.
// Bucket: "session" -> key: userEmail, value: the e-mail address
type BoltStore struct {
	db *bbolt.DB
}

const sessionBucket = "session"

func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open state file %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Load() (string, error) {
	var email string
	err := b.db.View(func(tx *bbolt.Tx) error {
		if val := tx.Bucket([]byte(sessionBucket)).Get([]byte(Key)); val != nil {
			email = string(val)
		}
		return nil
	})
	return email, err
}

func (b *BoltStore) Save(email string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put([]byte(Key), []byte(email))
	})
}

func (b *BoltStore) Clear() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Delete([]byte(Key))
	})
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}

var _ Store = (*BoltStore)(nil)
