package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a key-value wrapper over a Redis client. All keys are namespaced
// with a prefix so several stores can share one database.
type Store struct {
	db            redis.UniversalClient
	prefix        string
	scanBatchSize int64
}

// NewStore wraps client. Keys are stored as prefix + key.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{db: client, prefix: prefix, scanBatchSize: 1000}
}

// NewStoreWithConfig is NewStore taking prefix and scan batch size from cfg.
func NewStoreWithConfig(client redis.UniversalClient, cfg Config) *Store {
	s := NewStore(client, cfg.KeyPrefix)
	if cfg.ScanBatchSize > 0 {
		s.scanBatchSize = cfg.ScanBatchSize
	}
	return s
}

// Get returns the value for key, or ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return val, err
}

// Set stores val under key. A zero ttl means no expiration.
func (s *Store) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.db.Set(ctx, s.prefix+key, val, ttl).Err()
}

// Delete removes keys. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			full = append(full, s.prefix+k)
		}
	}
	if len(full) == 0 {
		return nil
	}
	return s.db.Del(ctx, full...).Err()
}

// Keys returns every key in the namespace, without the prefix.
// It uses SCAN, so it does not block the server.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.db.Scan(ctx, cursor, s.prefix+"*", s.scanBatchSize).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, s.prefix))
		}
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// Reset deletes every key in the namespace.
func (s *Store) Reset(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	for i := 0; i < len(keys); i += int(s.scanBatchSize) {
		end := min(i+int(s.scanBatchSize), len(keys))
		if err := s.Delete(ctx, keys[i:end]...); err != nil {
			return err
		}
	}
	return nil
}

// Conn returns the underlying client.
func (s *Store) Conn() redis.UniversalClient {
	return s.db
}
