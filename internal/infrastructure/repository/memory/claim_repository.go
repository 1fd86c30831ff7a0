package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
)

type ClaimRepository struct {
	store *Store
}

func NewClaimRepository(store *Store) *ClaimRepository {
	return &ClaimRepository{store: store}
}

func (r *ClaimRepository) Append(_ context.Context, e claim.Event) (claim.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.players[e.PlayerID]
	if !ok || p.GameID != e.GameID {
		return claim.Event{}, fmt.Errorf("%w: player %s", claim.ErrReferential, e.PlayerID)
	}
	c, ok := r.store.challenges[e.ChallengeID]
	if !ok || c.GameID != e.GameID {
		return claim.Event{}, fmt.Errorf("%w: challenge %s", claim.ErrReferential, e.ChallengeID)
	}
	if !c.IsActive {
		return claim.Event{}, fmt.Errorf("%w: challenge %s", claim.ErrChallengeUnavailable, e.ChallengeID)
	}
	if _, exists := r.store.events[e.ID]; exists {
		return claim.Event{}, fmt.Errorf("claim event %s already exists", e.ID)
	}

	key := e.UniqueKey()
	if !c.IsRepeatable {
		if _, taken := r.store.claimed[key]; taken {
			return claim.Event{}, claim.ErrDuplicateClaim
		}
		r.store.claimed[key] = e.ID
	}

	e.CreatedAt = r.store.tick()
	r.store.events[e.ID] = e
	return e, nil
}

func (r *ClaimRepository) Remove(_ context.Context, gameID, eventID string) (claim.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.events[eventID]
	if !ok || e.GameID != gameID {
		return claim.Event{}, claim.ErrEventNotFound
	}
	delete(r.store.events, eventID)
	if r.store.claimed[e.UniqueKey()] == eventID {
		delete(r.store.claimed, e.UniqueKey())
	}
	return e, nil
}

func (r *ClaimRepository) GetByID(_ context.Context, gameID, eventID string) (claim.Event, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.events[eventID]
	if !ok || e.GameID != gameID {
		return claim.Event{}, false, nil
	}
	return e, true, nil
}

func (r *ClaimRepository) ListByGame(_ context.Context, filter claim.Filter) ([]claim.Event, error) {
	r.store.mu.RLock()
	out := make([]claim.Event, 0)
	for _, e := range r.store.events {
		if e.GameID != filter.GameID {
			continue
		}
		if filter.PlayerID != "" && e.PlayerID != filter.PlayerID {
			continue
		}
		out = append(out, e)
	}
	r.store.mu.RUnlock()

	claim.SortNewestFirst(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
