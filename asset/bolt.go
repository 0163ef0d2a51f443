package asset

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "assets"

// BoltStorage keeps assets in a single bbolt file, keyed by name.
type BoltStorage struct {
	db *bbolt.DB
}

// NewBoltStorage opens (or creates) the database at path.
func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStorage{db: db}, nil
}

// Fetch returns a copy of the stored bytes.
func (b *BoltStorage) Fetch(_ context.Context, ref string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(ref))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *BoltStorage) Save(ref string, data []byte) error {
	if ref == "" {
		return fmt.Errorf("invalid asset name %q", ref)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(ref), data)
	})
}

func (b *BoltStorage) Delete(ref string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(ref))
	})
}

// List returns the stored asset names.
func (b *BoltStorage) List() ([]string, error) {
	var names []string
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	return names, nil
}

func (b *BoltStorage) Close() error {
	return b.db.Close()
}
