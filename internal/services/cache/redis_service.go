package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrMiss reports a key that is absent or expired. Misses also match redis.Nil.
var ErrMiss = errors.New("cache miss")

// Store keeps JSON-encoded values of one type in Redis under a shared key namespace.
type Store[T any] struct {
	rdb       redis.Cmdable
	namespace string
	ttl       time.Duration
	logger    zerolog.Logger
}

// NewStore returns a Store writing keys as "<namespace>:<key>". An empty
// namespace leaves keys as given.
func NewStore[T any](rdb redis.Cmdable, namespace string, ttl time.Duration, logger zerolog.Logger) *Store[T] {
	return &Store[T]{rdb: rdb, namespace: namespace, ttl: ttl, logger: logger}
}

func (s *Store[T]) fullKey(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

func (s *Store[T]) Set(ctx context.Context, key string, value T) error {
	full := s.fullKey(key)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", full, err)
	}

	if err := s.rdb.Set(ctx, full, data, s.ttl).Err(); err != nil {
		s.logger.Warn().
			Ctx(ctx).
			Str("key", full).
			Err(err).
			Msg("cache write failed")
		return fmt.Errorf("cache set %s: %w", full, err)
	}

	s.logger.Debug().
		Ctx(ctx).
		Str("key", full).
		Int("bytes", len(data)).
		Dur("ttl", s.ttl).
		Msg("cache entry stored")
	return nil
}

//nolint:ireturn
func (s *Store[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	full := s.fullKey(key)

	data, err := s.rdb.Get(ctx, full).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return zero, fmt.Errorf("%w: %s: %w", ErrMiss, full, err)
	case err != nil:
		s.logger.Warn().
			Ctx(ctx).
			Str("key", full).
			Err(err).
			Msg("cache read failed")
		return zero, fmt.Errorf("cache get %s: %w", full, err)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		s.logger.Error().
			Ctx(ctx).
			Str("key", full).
			Err(err).
			Msg("cache entry is not decodable")
		return zero, fmt.Errorf("cache decode %s: %w", full, err)
	}
	return value, nil
}
