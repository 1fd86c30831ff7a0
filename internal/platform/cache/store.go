package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

var ErrNilLoader = errors.New("cache: nil loader")

// Purger is the maintenance view of a Store used by the scheduled jobs.
type Purger interface {
	PurgeExpired() int
	Stats() Stats
}

// Stats is a point in time snapshot of a Store.
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

type item[V any] struct {
	value V
	// deadline is zero when the store has no ttl.
	deadline time.Time
}

// Store is an in-process string keyed cache. Concurrent misses on the same
// key share one load.
type Store[V any] struct {
	ttl   time.Duration
	clock func() time.Time

	mu    sync.RWMutex
	items map[string]item[V]
	group singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewStore returns a store whose entries live for ttl. A ttl of zero keeps
// entries until they are deleted.
func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{ttl: ttl, clock: time.Now, items: make(map[string]item[V])}
}

func (s *Store[V]) live(it item[V], now time.Time) bool {
	return it.deadline.IsZero() || now.Before(it.deadline)
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()

	if ok && s.live(it, s.clock()) {
		s.hits.Add(1)
		return it.value, true
	}
	s.misses.Add(1)
	var zero V
	return zero, false
}

func (s *Store[V]) Set(_ context.Context, key string, value V) {
	it := item[V]{value: value}
	if s.ttl > 0 {
		it.deadline = s.clock().Add(s.ttl)
	}
	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
}

// Delete evicts key and detaches any load in flight for it, so the next
// reader goes back to the source.
func (s *Store[V]) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	s.group.Forget(key)
}

func (s *Store[V]) DeletePrefix(ctx context.Context, prefix string) int {
	s.mu.Lock()
	var keys []string
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	for _, key := range keys {
		delete(s.items, key)
	}
	s.mu.Unlock()

	for _, key := range keys {
		s.group.Forget(key)
	}
	return len(keys)
}

// GetOrLoad returns the cached value for key or calls load once for all
// concurrent callers. Failed loads are not cached.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if load == nil {
		var zero V
		return zero, ErrNilLoader
	}
	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	res, err, _ := s.group.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(ctx, key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// PurgeExpired removes entries past their deadline and reports how many
// went.
func (s *Store[V]) PurgeExpired() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, it := range s.items {
		if !s.live(it, now) {
			delete(s.items, key)
			n++
		}
	}
	return n
}

func (s *Store[V]) Stats() Stats {
	s.mu.RLock()
	n := len(s.items)
	s.mu.RUnlock()
	return Stats{Entries: n, Hits: s.hits.Load(), Misses: s.misses.Load()}
}
