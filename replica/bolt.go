package replica

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"student-scores/apperr"
)

var (
	studentsBucket = []byte("Students")
	pendingBucket  = []byte("Pending")
)

// BoltStore is a single-file replica for offline use.
type BoltStore struct {
	db *bbolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create replica dir")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open replica")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{studentsBucket, pendingBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create replica buckets")
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Get(ctx context.Context, identifier string) (*LocalRecord, error) {
	var rec LocalRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(studentsBucket).Get([]byte(identifier))
		if v == nil {
			return apperr.NotFoundf("no local record for %s", identifier)
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *BoltStore) Put(ctx context.Context, rec LocalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode local record")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(studentsBucket).Put([]byte(rec.Identifier), data)
	})
}

func (s *BoltStore) Delete(ctx context.Context, identifier string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(studentsBucket).Delete([]byte(identifier))
	})
}

func (s *BoltStore) List(ctx context.Context) ([]LocalRecord, error) {
	var out []LocalRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(studentsBucket).ForEach(func(_, v []byte) error {
			var rec LocalRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	return out, err
}

// Enqueue appends edit under the bucket's next sequence number so cursor
// order is queue order.
func (s *BoltStore) Enqueue(ctx context.Context, edit PendingEdit) error {
	data, err := json.Marshal(edit)
	if err != nil {
		return errors.Wrap(err, "encode pending edit")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(pendingBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, data)
	})
}

func (s *BoltStore) Pending(ctx context.Context) ([]PendingEdit, error) {
	var out []PendingEdit
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(pendingBucket).ForEach(func(_, v []byte) error {
			var edit PendingEdit
			if err := json.Unmarshal(v, &edit); err != nil {
				return err
			}
			out = append(out, edit)
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) Dequeue(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		c := tx.Bucket(pendingBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var edit PendingEdit
			if err := json.Unmarshal(v, &edit); err != nil {
				return err
			}
			if edit.ID == id {
				return c.Delete()
			}
		}
		return nil
	})
}
