// Package cache wraps a catalog.Store with a Redis read-through cache of
// Select. Every write invalidates the cached snapshot. Redis failures are
// logged and never fail a call; the wrapped store stays authoritative.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultKey is the Redis key holding the Select snapshot.
const DefaultKey = "vitrine:properties:all"

// DefaultTTL bounds how stale a snapshot can get when another process
// writes to the store behind this one's back.
const DefaultTTL = 5 * time.Minute

// Redis is the subset of *redis.Client the cache uses.
type Redis interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Store struct {
	next catalog.Store
	rdb  Redis
	key  string
	ttl  time.Duration
	log  *zap.Logger

	// writes counts invalidations. A Select that saw it move while
	// reading the wrapped store must not leave its snapshot behind.
	writes *atomic.Uint64
}

var _ catalog.Store = (*Store)(nil)

// New wraps next. A ttl <= 0 uses DefaultTTL.
func New(next catalog.Store, rdb Redis, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{next: next, rdb: rdb, key: DefaultKey, ttl: ttl, log: logger, writes: new(atomic.Uint64)}
}

// WithKey returns a copy that caches under key.
func (s *Store) WithKey(key string) *Store {
	cp := *s
	cp.key = key
	return &cp
}

func (s *Store) Select(ctx context.Context) ([]models.Property, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	switch {
	case err == nil:
		var out []models.Property
		jerr := json.Unmarshal(data, &out)
		if jerr == nil {
			for i := range out {
				out[i].TitleCI = text.Fold(out[i].Title)
			}
			return out, nil
		}
		s.log.Warn("discarding unreadable cache entry", zap.String("key", s.key), zap.Error(jerr))
	case !errors.Is(err, redis.Nil):
		s.log.Warn("cache read failed", zap.String("key", s.key), zap.Error(err))
	}

	gen := s.writes.Load()
	props, err := s.next.Select(ctx)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, props, gen)
	return props, nil
}

// fill caches props read at write generation gen. If an invalidation
// happened since, the snapshot is skipped or deleted again.
func (s *Store) fill(ctx context.Context, props []models.Property, gen uint64) {
	if s.writes.Load() != gen {
		return
	}
	data, err := json.Marshal(props)
	if err != nil {
		s.log.Warn("cache encode failed", zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		s.log.Warn("cache write failed", zap.String("key", s.key), zap.Error(err))
		return
	}
	if s.writes.Load() != gen {
		if err := s.rdb.Del(context.WithoutCancel(ctx), s.key).Err(); err != nil {
			s.log.Warn("cache invalidate failed", zap.String("key", s.key), zap.Error(err))
		}
	}
}

// Invalidate drops the cached snapshot. The write generation moves
// before the Del so a concurrent fill sees one or the other.
func (s *Store) Invalidate(ctx context.Context) {
	s.writes.Add(1)
	if err := s.rdb.Del(context.WithoutCancel(ctx), s.key).Err(); err != nil {
		s.log.Warn("cache invalidate failed", zap.String("key", s.key), zap.Error(err))
	}
}

func (s *Store) Insert(ctx context.Context, p models.Property) (models.Property, error) {
	saved, err := s.next.Insert(ctx, p)
	if err == nil {
		s.Invalidate(ctx)
	}
	return saved, err
}

func (s *Store) Update(ctx context.Context, id string, patch catalog.Patch, expectedVersion int64) (models.Property, error) {
	saved, err := s.next.Update(ctx, id, patch, expectedVersion)
	if err == nil {
		s.Invalidate(ctx)
	}
	return saved, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.next.Delete(ctx, id)
	if err == nil {
		s.Invalidate(ctx)
	}
	return err
}

// Ping checks only the wrapped store.
func (s *Store) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
