package realtime

import (
	"sync"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
)

// Subscription receives the changes of one game. C is closed by Close.
type Subscription struct {
	hub    *Hub
	gameID string

	mu     sync.Mutex
	ch     chan claim.Change
	closed bool
}

func (s *Subscription) GameID() string {
	return s.gameID
}

func (s *Subscription) C() <-chan claim.Change {
	return s.ch
}

// deliver reports whether an older change had to be dropped to make room.
func (s *Subscription) deliver(change claim.Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- change:
		return false
	default:
	}

	dropped := false
	select {
	case <-s.ch:
		dropped = true
	default:
	}
	// senders are serialized by mu, so the slot freed above is still ours
	select {
	case s.ch <- change:
	default:
	}
	return dropped
}

func (s *Subscription) Close() {
	s.hub.remove(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
