package replica

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"student-scores/apperr"
)

// RedisStore shares one replica between several clients of the same
// installation. Records live in one hash keyed by identifier and the queue
// in a list.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
}

func NewRedisStore(opts *redis.Options, namespace string) (*RedisStore, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	return &RedisStore{rdb: redis.NewClient(opts), namespace: namespace}, nil
}

func (s *RedisStore) studentsKey() string { return "scores:" + s.namespace + ":students" }
func (s *RedisStore) pendingKey() string  { return "scores:" + s.namespace + ":pending" }

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, identifier string) (*LocalRecord, error) {
	data, err := s.rdb.HGet(ctx, s.studentsKey(), identifier).Bytes()
	if err == redis.Nil {
		return nil, apperr.NotFoundf("no local record for %s", identifier)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read local record")
	}
	var rec LocalRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "decode local record")
	}
	return &rec, nil
}

func (s *RedisStore) Put(ctx context.Context, rec LocalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode local record")
	}
	if err := s.rdb.HSet(ctx, s.studentsKey(), rec.Identifier, data).Err(); err != nil {
		return errors.Wrap(err, "write local record")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, identifier string) error {
	if err := s.rdb.HDel(ctx, s.studentsKey(), identifier).Err(); err != nil {
		return errors.Wrap(err, "delete local record")
	}
	return nil
}

// List returns records ordered by identifier, matching the bolt store.
func (s *RedisStore) List(ctx context.Context) ([]LocalRecord, error) {
	hash, err := s.rdb.HGetAll(ctx, s.studentsKey()).Result()
	if err != nil {
		return nil, errors.Wrap(err, "read local records")
	}
	ids := make([]string, 0, len(hash))
	for id := range hash {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]LocalRecord, 0, len(ids))
	for _, id := range ids {
		var rec LocalRecord
		if err := json.Unmarshal([]byte(hash[id]), &rec); err != nil {
			return nil, errors.Wrapf(err, "decode local record %s", id)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Enqueue(ctx context.Context, edit PendingEdit) error {
	data, err := json.Marshal(edit)
	if err != nil {
		return errors.Wrap(err, "encode pending edit")
	}
	if err := s.rdb.RPush(ctx, s.pendingKey(), data).Err(); err != nil {
		return errors.Wrap(err, "queue pending edit")
	}
	return nil
}

func (s *RedisStore) Pending(ctx context.Context) ([]PendingEdit, error) {
	raw, err := s.rdb.LRange(ctx, s.pendingKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "read pending edits")
	}
	out := make([]PendingEdit, 0, len(raw))
	for _, r := range raw {
		var edit PendingEdit
		if err := json.Unmarshal([]byte(r), &edit); err != nil {
			return nil, errors.Wrap(err, "decode pending edit")
		}
		out = append(out, edit)
	}
	return out, nil
}

// Dequeue removes the queued entry with the given id. The stored JSON is
// matched byte for byte so the element is removed with LREM.
func (s *RedisStore) Dequeue(ctx context.Context, id string) error {
	raw, err := s.rdb.LRange(ctx, s.pendingKey(), 0, -1).Result()
	if err != nil {
		return errors.Wrap(err, "read pending edits")
	}
	for _, r := range raw {
		var edit PendingEdit
		if err := json.Unmarshal([]byte(r), &edit); err != nil {
			return errors.Wrap(err, "decode pending edit")
		}
		if edit.ID == id {
			return errors.Wrap(s.rdb.LRem(ctx, s.pendingKey(), 1, r).Err(), "remove pending edit")
		}
	}
	return nil
}
