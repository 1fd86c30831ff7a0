package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/claim-ledger/internal/domain/game"
)

type GameRepository struct {
	store *Store
}

func NewGameRepository(store *Store) *GameRepository {
	return &GameRepository{store: store}
}

func (r *GameRepository) Create(_ context.Context, g game.Game) (game.Game, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.games[g.ID]; exists {
		return game.Game{}, fmt.Errorf("game %s already exists", g.ID)
	}
	g.CreatedAt = r.store.tick()
	r.store.games[g.ID] = g
	return g, nil
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	g, ok := r.store.games[gameID]
	return g, ok, nil
}

func (r *GameRepository) UpdateStatus(_ context.Context, gameID string, status game.Status) (game.Game, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	g, ok := r.store.games[gameID]
	if !ok {
		return game.Game{}, false, nil
	}
	g.Status = status
	r.store.games[gameID] = g
	return g, true, nil
}
