package memory

import (
	"sync"
	"time"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
)

// Store holds every table of the in-memory backend behind one lock, so
// uniqueness checks and cascades are atomic with the writes they guard.
type Store struct {
	mu         sync.RWMutex
	games      map[string]game.Game
	players    map[string]player.Player
	challenges map[string]challenge.Challenge
	events     map[string]claim.Event
	claimed    map[claim.UniqueKey]string

	now  func() time.Time
	last time.Time
}

func NewStore() *Store {
	return &Store{
		games:      make(map[string]game.Game),
		players:    make(map[string]player.Player),
		challenges: make(map[string]challenge.Challenge),
		events:     make(map[string]claim.Event),
		claimed:    make(map[claim.UniqueKey]string),
		now:        time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
	return s
}

// tick returns a timestamp strictly after the previous one. Caller holds mu.
func (s *Store) tick() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// dropEventsLocked removes every event match accepts. Caller holds mu.
func (s *Store) dropEventsLocked(match func(claim.Event) bool) int {
	removed := 0
	for id, e := range s.events {
		if !match(e) {
			continue
		}
		delete(s.events, id)
		if s.claimed[e.UniqueKey()] == id {
			delete(s.claimed, e.UniqueKey())
		}
		removed++
	}
	return removed
}

func cloneChallenge(c challenge.Challenge) challenge.Challenge {
	if c.BonusPoints != nil {
		v := *c.BonusPoints
		c.BonusPoints = &v
	}
	return c
}
