package repositories

import (
	"context"
	"errors"
	"time"

	bolt "github.com/boltdb/bolt"
)

const sessionBucket = "session"

// boltRepository stores client state in a single BoltDB file
type boltRepository struct {
	db *bolt.DB
}

// NewBoltRepository opens (or creates) the BoltDB file at path and ensures
// the session bucket exists
func NewBoltRepository(path string) (KeyValueRepository, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &boltRepository{db: db}, nil
}

func (r *boltRepository) Get(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(sessionBucket)).Get([]byte(key))
		if v == nil {
			return nil
		}
		// v is only valid inside the transaction
		value, ok = string(v), true
		return nil
	})
	if err != nil {
		return "", false, mapBoltError(err)
	}
	return value, ok, nil
}

func (r *boltRepository) Set(_ context.Context, key, value string) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put([]byte(key), []byte(value))
	})
	return mapBoltError(err)
}

// Delete is a no-op for keys that do not exist
func (r *boltRepository) Delete(_ context.Context, key string) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Delete([]byte(key))
	})
	return mapBoltError(err)
}

// Close releases the database file lock
func (r *boltRepository) Close() error {
	return r.db.Close()
}

func mapBoltError(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ErrStoreClosed
	}
	return err
}
