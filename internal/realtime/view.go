package realtime

import (
	"context"
	"sync"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
)

// View keeps a client side copy of server state in step with a change feed.
// Notifications are treated as hints: every one of them (or every burst of
// them) triggers a full fetch, so a missed or reordered notification can only
// delay convergence, never corrupt it.
type View[T any] struct {
	fetch    func(context.Context) (T, error)
	onUpdate func(T)

	mu      sync.RWMutex
	current T
	fetches uint64
}

func NewView[T any](fetch func(context.Context) (T, error)) *View[T] {
	return &View[T]{fetch: fetch}
}

// OnUpdate registers fn to be called after every successful fetch.
func (v *View[T]) OnUpdate(fn func(T)) *View[T] {
	v.onUpdate = fn
	return v
}

func (v *View[T]) Refresh(ctx context.Context) error {
	state, err := v.fetch(ctx)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.current = state
	v.fetches++
	v.mu.Unlock()

	if v.onUpdate != nil {
		v.onUpdate(state)
	}
	return nil
}

// Current returns the last fetched state and how many fetches produced it.
func (v *View[T]) Current() (T, uint64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current, v.fetches
}

// Run fetches once, then again after each notification on changes. Pending
// notifications are coalesced into a single fetch. Run returns nil when
// changes is closed, so callers can resubscribe and call Run again.
func (v *View[T]) Run(ctx context.Context, changes <-chan claim.Change) error {
	if err := v.Refresh(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			drained := drain(changes)
			if err := v.Refresh(ctx); err != nil {
				return err
			}
			if !drained {
				return nil
			}
		}
	}
}

// drain empties whatever is already buffered. It reports false when the
// channel turned out to be closed.
func drain(changes <-chan claim.Change) bool {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}
