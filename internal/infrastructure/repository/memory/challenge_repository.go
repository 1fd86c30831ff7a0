package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
)

type ChallengeRepository struct {
	store *Store
}

func NewChallengeRepository(store *Store) *ChallengeRepository {
	return &ChallengeRepository{store: store}
}

func (r *ChallengeRepository) Create(_ context.Context, c challenge.Challenge) (challenge.Challenge, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.games[c.GameID]; !ok {
		return challenge.Challenge{}, fmt.Errorf("game %s does not exist", c.GameID)
	}
	if _, exists := r.store.challenges[c.ID]; exists {
		return challenge.Challenge{}, fmt.Errorf("challenge %s already exists", c.ID)
	}

	now := r.store.tick()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.store.challenges[c.ID] = cloneChallenge(c)
	return cloneChallenge(c), nil
}

func (r *ChallengeRepository) GetByID(_ context.Context, gameID, challengeID string) (challenge.Challenge, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.challenges[challengeID]
	if !ok || c.GameID != gameID {
		return challenge.Challenge{}, false, nil
	}
	return cloneChallenge(c), true, nil
}

func (r *ChallengeRepository) ListByGame(_ context.Context, filter challenge.Filter) ([]challenge.Challenge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]challenge.Challenge, 0)
	for _, c := range r.store.challenges {
		if c.GameID != filter.GameID {
			continue
		}
		if filter.ActiveOnly && !c.IsActive {
			continue
		}
		out = append(out, cloneChallenge(c))
	}
	sort.Slice(out, func(i, j int) bool { return challenge.Less(out[i], out[j]) })
	return out, nil
}

func (r *ChallengeRepository) Update(_ context.Context, c challenge.Challenge) (challenge.Challenge, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.challenges[c.ID]
	if !ok || current.GameID != c.GameID {
		return challenge.Challenge{}, false, nil
	}

	if current.IsRepeatable && !c.IsRepeatable {
		if err := r.reindexLocked(c); err != nil {
			return challenge.Challenge{}, false, err
		}
	}
	if !current.IsRepeatable && c.IsRepeatable {
		for key := range r.store.claimed {
			if key.GameID == c.GameID && key.ChallengeID == c.ID {
				delete(r.store.claimed, key)
			}
		}
	}

	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = r.store.tick()
	r.store.challenges[c.ID] = cloneChallenge(c)
	return cloneChallenge(c), true, nil
}

// reindexLocked claims the uniqueness slots for every existing event of c,
// failing when two events would share one.
func (r *ChallengeRepository) reindexLocked(c challenge.Challenge) error {
	slots := make(map[claim.UniqueKey]string)
	for id, e := range r.store.events {
		if e.GameID != c.GameID || e.ChallengeID != c.ID {
			continue
		}
		if _, taken := slots[e.UniqueKey()]; taken {
			return challenge.ErrRepeatableConflict
		}
		slots[e.UniqueKey()] = id
	}
	for key, id := range slots {
		r.store.claimed[key] = id
	}
	return nil
}

func (r *ChallengeRepository) SetActive(_ context.Context, gameID, challengeID string, active bool) (challenge.Challenge, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.challenges[challengeID]
	if !ok || c.GameID != gameID {
		return challenge.Challenge{}, false, nil
	}
	c.IsActive = active
	c.UpdatedAt = r.store.tick()
	r.store.challenges[challengeID] = c
	return cloneChallenge(c), true, nil
}

func (r *ChallengeRepository) Delete(_ context.Context, gameID, challengeID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.challenges[challengeID]
	if !ok || c.GameID != gameID {
		return false, nil
	}
	delete(r.store.challenges, challengeID)
	r.store.dropEventsLocked(func(e claim.Event) bool {
		return e.GameID == gameID && e.ChallengeID == challengeID
	})
	return true, nil
}
