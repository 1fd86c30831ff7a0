package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
)

const DefaultBufferSize = 16

// Hub fans ledger changes out to the subscriptions of each game.
type Hub struct {
	mu     sync.RWMutex
	games  map[string]map[*Subscription]struct{}
	buffer int
	logger *logging.Logger

	published atomic.Uint64
	dropped   atomic.Uint64
}

// Stats is a point-in-time snapshot of hub activity.
type Stats struct {
	Games       int
	Subscribers int
	Published   uint64
	Dropped     uint64
}

func NewHub(buffer int, logger *logging.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Hub{
		games:  make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a new subscription for gameID. Callers must Close it.
func (h *Hub) Subscribe(gameID string) *Subscription {
	sub := &Subscription{
		hub:    h,
		gameID: gameID,
		ch:     make(chan claim.Change, h.buffer),
	}

	h.mu.Lock()
	subs, ok := h.games[gameID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.games[gameID] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish delivers change to every subscription of its game without blocking.
// A full subscription loses its oldest pending change, never the newest.
func (h *Hub) Publish(ctx context.Context, change claim.Change) {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.games[change.GameID]))
	for sub := range h.games[change.GameID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	h.published.Add(1)
	for _, sub := range subs {
		if sub.deliver(change) {
			h.dropped.Add(1)
		}
	}

	h.logger.DebugContext(ctx, "ledger change published",
		"game_id", change.GameID,
		"kind", string(change.Kind),
		"event_id", change.EventID,
		"subscribers", len(subs),
	)
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.games[sub.gameID]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.games, sub.gameID)
	}
}

func (h *Hub) SubscriberCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	stats := Stats{Games: len(h.games)}
	for _, subs := range h.games {
		stats.Subscribers += len(subs)
	}
	h.mu.RUnlock()

	stats.Published = h.published.Load()
	stats.Dropped = h.dropped.Load()
	return stats
}

// Close ends every subscription. Used at shutdown.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*Subscription, 0)
	for _, subs := range h.games {
		for sub := range subs {
			all = append(all, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range all {
		sub.Close()
	}
}
