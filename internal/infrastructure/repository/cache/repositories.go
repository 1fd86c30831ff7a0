package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	basecache "github.com/riskibarqy/claim-ledger/internal/platform/cache"
)

const gameKeyPrefix = "game:"

// gameLookup remembers misses too, so polling an unknown game id does not
// reach storage on every request.
type gameLookup struct {
	game  game.Game
	found bool
}

// GameRepository caches game lookups, which every claim and scoreboard
// request performs. Status changes go through this decorator and evict.
type GameRepository struct {
	next  game.Repository
	store *basecache.Store[gameLookup]
}

func NewGameRepository(next game.Repository, ttl time.Duration) *GameRepository {
	return &GameRepository{next: next, store: basecache.NewStore[gameLookup](ttl)}
}

// Cache exposes the backing store to the purge job.
func (r *GameRepository) Cache() basecache.Purger {
	return r.store
}

func (r *GameRepository) Create(ctx context.Context, g game.Game) (game.Game, error) {
	created, err := r.next.Create(ctx, g)
	if err != nil {
		return game.Game{}, err
	}
	r.store.Set(ctx, gameKeyPrefix+created.ID, gameLookup{game: created, found: true})
	return created, nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	hit, err := r.store.GetOrLoad(ctx, gameKeyPrefix+gameID, func(ctx context.Context) (gameLookup, error) {
		g, found, err := r.next.GetByID(ctx, gameID)
		return gameLookup{game: g, found: found}, err
	})
	if err != nil {
		return game.Game{}, false, err
	}
	return hit.game, hit.found, nil
}

// UpdateStatus evicts on both sides of the write so a concurrent load that
// read the old row cannot repopulate it afterwards.
func (r *GameRepository) UpdateStatus(ctx context.Context, gameID string, status game.Status) (game.Game, bool, error) {
	key := gameKeyPrefix + gameID
	r.store.Delete(ctx, key)
	updated, ok, err := r.next.UpdateStatus(ctx, gameID, status)
	r.store.Delete(ctx, key)
	return updated, ok, err
}
