package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable reports a cache transport failure. Callers must treat it as
// "no cache", never as data loss: the store is not authoritative.
var ErrUnavailable = errors.New("cache unavailable")

// ErrMiss reports an absent key, a valid non-error outcome for readers.
var ErrMiss = errors.New("cache miss")

// Commands is the low-level key/value and sorted-set surface of the cache.
type Commands interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	AddToSortedSet(ctx context.Context, setKey, member string, score float64) error
	TrimSortedSet(ctx context.Context, setKey string, keepTopN int64) error
	RangeSortedSetDescending(ctx context.Context, setKey string, limit int64) ([]string, error)
	RemoveFromSortedSet(ctx context.Context, setKey string, members []string) error
	Cardinality(ctx context.Context, setKey string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Store implements Commands on Redis, namespacing every key with a fixed
// prefix.
type Store struct {
	rdb    *redis.Client
	prefix string
}

func NewStore(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.SetEx(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, nil
}

func (s *Store) AddToSortedSet(ctx context.Context, setKey, member string, score float64) error {
	err := s.rdb.ZAdd(ctx, s.key(setKey), redis.Z{Score: score, Member: member}).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// TrimSortedSet drops everything below the keepTopN highest-scored members.
func (s *Store) TrimSortedSet(ctx context.Context, setKey string, keepTopN int64) error {
	err := s.rdb.ZRemRangeByRank(ctx, s.key(setKey), 0, -(keepTopN + 1)).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Store) RangeSortedSetDescending(ctx context.Context, setKey string, limit int64) ([]string, error) {
	members, err := s.rdb.ZRevRange(ctx, s.key(setKey), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return members, nil
}

func (s *Store) RemoveFromSortedSet(ctx context.Context, setKey string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := s.rdb.ZRem(ctx, s.key(setKey), args...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Cardinality(ctx context.Context, setKey string) (int64, error) {
	count, err := s.rdb.ZCard(ctx, s.key(setKey)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return count, nil
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.rdb.Expire(ctx, s.key(key), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
