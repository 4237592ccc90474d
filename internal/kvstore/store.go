// Package kvstore is the disk-backed ordered key/value map persisting
// form submissions. It wraps go.etcd.io/bbolt: create-if-absent open,
// overwrite-on-put, and a cursor with First/Next iteration. bbolt
// takes an flock on the database file, so concurrent worker processes
// opening the same path serialize their writes across processes too.
package kvstore

import (
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned by Get when the key has no record.
var ErrNotFound = errors.New("kvstore: key not found")

var bucketName = []byte("forkhttpd")

// Store is a single open handle onto the on-disk map.
type Store struct {
	db *bolt.DB
}

// Open creates the database file if absent and ensures the single
// bucket this server uses exists, returning a read-write handle.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kvstore: init bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing store without taking the write lock,
// for the offline query tool, which must never mutate. It fails
// if the store file does not already exist.
func OpenReadOnly(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s read-only: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Put overwrites (or creates) the record at key.
func (s *Store) Put(key, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, value)
	})
	if err != nil {
		return fmt.Errorf("kvstore: put: %w", err)
	}
	return nil
}

// Get returns the value for key, or ErrNotFound if it has no record.
func (s *Store) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(key)
		if v == nil {
			return ErrNotFound
		}
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Close releases the handle. Idempotent.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Cursor opens a dedicated read-only transaction for First/Next
// iteration. Close rolls it back; it never blocks a
// concurrent writer view, matching bbolt's MVCC model.
func (s *Store) Cursor() (*Cursor, error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("kvstore: begin cursor: %w", err)
	}
	b := tx.Bucket(bucketName)
	if b == nil {
		// No bucket yet (e.g. a fresh, never-written store opened
		// read-only): an empty cursor rather than a nil dereference.
		return &Cursor{tx: tx, c: nil}, nil
	}
	return &Cursor{tx: tx, c: b.Cursor()}, nil
}

// Cursor provides stable first/next iteration over all keys for the
// life of the underlying read transaction.
type Cursor struct {
	tx *bolt.Tx
	c  *bolt.Cursor
}

// First seeks to the first key and returns it, or ok=false if the store
// is empty.
func (c *Cursor) First() (key, value []byte, ok bool) {
	if c.c == nil {
		return nil, nil, false
	}
	k, v := c.c.First()
	if k == nil {
		return nil, nil, false
	}
	return append([]byte(nil), k...), append([]byte(nil), v...), true
}

// Next advances to the next key in iteration order.
func (c *Cursor) Next() (key, value []byte, ok bool) {
	if c.c == nil {
		return nil, nil, false
	}
	k, v := c.c.Next()
	if k == nil {
		return nil, nil, false
	}
	return append([]byte(nil), k...), append([]byte(nil), v...), true
}

// Close releases the cursor's read transaction. Idempotent.
func (c *Cursor) Close() error {
	if c.tx == nil {
		return nil
	}
	err := c.tx.Rollback()
	c.tx = nil
	return err
}
