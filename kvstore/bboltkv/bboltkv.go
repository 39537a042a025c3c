// Package bboltkv implements kvstore.KV on top of go.etcd.io/bbolt, an
// embedded ordered B+tree store. bbolt serializes every write transaction
// through its own single-writer lock, which is exactly the "one global
// lock serializes physical writes" requirement spec.md §5 places on the
// underlying KV layer — this package adds no lock of its own around
// Batch, Get, ScanFrom, or SeekForPrev.
package bboltkv

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/tectonic-sim/platetruth/kvstore"
)

var bucketName = []byte("truth")

// Store is a kvstore.KV backed by a single bbolt database file and a
// single bucket. All stream prefixes share that one bucket; isolation
// between streams is enforced entirely by key prefix, not by separate
// buckets, so a single ordered scan can never accidentally span bucket
// boundaries.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) a bbolt database at path and ensures
// the truth bucket exists.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("bboltkv: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)

		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("bboltkv: create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

var _ kvstore.KV = (*Store)(nil)

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get(key)
		if v != nil {
			value = append([]byte(nil), v...)
		}

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return value, value != nil, nil
}

func (s *Store) Batch(_ context.Context, ops []kvstore.Write) error {
	if len(ops) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		for _, op := range ops {
			if err := bucket.Put(op.Key, op.Value); err != nil {
				return fmt.Errorf("bboltkv: put %x: %w", op.Key, err)
			}
		}

		return nil
	})
}

func (s *Store) ScanFrom(ctx context.Context, start []byte, fn func(key, value []byte) (bool, error)) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bucketName).Cursor()
		for k, v := cursor.Seek(start); k != nil; k, v = cursor.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			more, err := fn(k, v)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}

		return nil
	})
}

func (s *Store) SeekForPrev(_ context.Context, key []byte) ([]byte, []byte, bool, error) {
	var foundKey, foundValue []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bucketName).Cursor()
		k, v := cursor.Seek(key)
		if k == nil {
			// Seek ran off the end of the bucket; the last key, if any, is
			// the greatest predecessor.
			k, v = cursor.Last()
		} else if string(k) > string(key) {
			k, v = cursor.Prev()
		}
		if k != nil {
			foundKey = append([]byte(nil), k...)
			foundValue = append([]byte(nil), v...)
		}

		return nil
	})
	if err != nil {
		return nil, nil, false, err
	}

	return foundKey, foundValue, foundKey != nil, nil
}
