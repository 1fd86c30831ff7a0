package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
)

type PlayerRepository struct {
	store *Store
}

func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) Create(_ context.Context, p player.Player) (player.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.games[p.GameID]; !ok {
		return player.Player{}, fmt.Errorf("game %s does not exist", p.GameID)
	}
	key := player.NameKey(p.Name)
	for _, existing := range r.store.players {
		if existing.GameID == p.GameID && player.NameKey(existing.Name) == key {
			return player.Player{}, player.ErrNameTaken
		}
	}

	p.JoinedAt = r.store.tick()
	r.store.players[p.ID] = p
	return p, nil
}

func (r *PlayerRepository) GetByID(_ context.Context, gameID, playerID string) (player.Player, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.players[playerID]
	if !ok || p.GameID != gameID {
		return player.Player{}, false, nil
	}
	return p, true, nil
}

func (r *PlayerRepository) ListByGame(_ context.Context, gameID string) ([]player.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]player.Player, 0)
	for _, p := range r.store.players {
		if p.GameID == gameID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *PlayerRepository) Delete(_ context.Context, gameID, playerID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.players[playerID]
	if !ok || p.GameID != gameID {
		return false, nil
	}
	delete(r.store.players, playerID)
	r.store.dropEventsLocked(func(e claim.Event) bool {
		return e.GameID == gameID && e.PlayerID == playerID
	})
	return true, nil
}
