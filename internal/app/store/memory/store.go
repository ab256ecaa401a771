// Package memory is an in-process catalog.Store for local development and
// tests. It honours the same version and not-found contract as the
// database-backed stores.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
)

// ErrUnavailable is returned by every call while the store is down.
var ErrUnavailable = errors.New("memory store: unavailable")

// Store keeps properties in a map.
type Store struct {
	mu    sync.Mutex
	rows  map[string]models.Property
	seq   int64
	now   func() time.Time
	newID func() string
	down  bool
	fail  map[string]error
}

// New returns an empty store, optionally seeded with rows. Seeded rows
// without an ID get one; rows without a version start at 1.
func New(seed ...models.Property) *Store {
	s := &Store{
		rows:  map[string]models.Property{},
		now:   time.Now,
		newID: uuid.NewString,
		fail:  map[string]error{},
	}
	for _, p := range seed {
		if p.ID == "" {
			p.ID = s.newID()
		}
		if p.Version == 0 {
			p.Version = 1
		}
		s.seq++
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Unix(0, 0).Add(time.Duration(s.seq) * time.Second).UTC()
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		p.TitleCI = text.Fold(p.Title)
		s.rows[p.ID] = p.Clone()
	}
	return s
}

// SetDown makes every call fail with ErrUnavailable until cleared.
func (s *Store) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

// FailNext makes the next call to op ("select", "insert", "update",
// "delete", "ping") return err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

func (s *Store) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.down {
		return ErrUnavailable
	}
	if err, ok := s.fail[op]; ok {
		delete(s.fail, op)
		return err
	}
	return nil
}

// Select returns every row ordered by creation time, then id.
func (s *Store) Select(ctx context.Context) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "select"); err != nil {
		return nil, err
	}
	out := make([]models.Property, 0, len(s.rows))
	for _, p := range s.rows {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Insert stores p under a new id.
func (s *Store) Insert(ctx context.Context, p models.Property) (models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "insert"); err != nil {
		return models.Property{}, err
	}
	p.ID = s.newID()
	p.Version = 1
	now := s.stamp()
	p.CreatedAt, p.UpdatedAt = now, now
	p.TitleCI = text.Fold(p.Title)
	s.rows[p.ID] = p.Clone()
	return p.Clone(), nil
}

// Update applies patch to id.
func (s *Store) Update(ctx context.Context, id string, patch catalog.Patch, expectedVersion int64) (models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "update"); err != nil {
		return models.Property{}, err
	}
	p, ok := s.rows[id]
	if !ok {
		return models.Property{}, catalog.ErrNotFound
	}
	if expectedVersion != 0 && p.Version != expectedVersion {
		return models.Property{}, fmt.Errorf("%w: have %d, want %d", catalog.ErrConflict, p.Version, expectedVersion)
	}
	patch.ApplyTo(&p)
	p.Version++
	p.UpdatedAt = s.stamp()
	p.TitleCI = text.Fold(p.Title)
	s.rows[id] = p.Clone()
	return p.Clone(), nil
}

// Delete removes id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "delete"); err != nil {
		return err
	}
	if _, ok := s.rows[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// Ping reports whether the store is up.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check(ctx, "ping")
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Get returns the stored row for id.
func (s *Store) Get(id string) (models.Property, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	return p.Clone(), ok
}

// stamp returns a strictly increasing timestamp so Select order is stable
// even when the clock does not advance between inserts.
func (s *Store) stamp() time.Time {
	s.seq++
	return s.now().UTC().Add(time.Duration(s.seq))
}
