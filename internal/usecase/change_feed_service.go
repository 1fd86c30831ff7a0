package usecase

import (
	"context"

	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/realtime"
)

// ChangeFeedService hands out live subscriptions to a game's ledger changes.
type ChangeFeedService struct {
	gameRepo game.Repository
	hub      *realtime.Hub
}

func NewChangeFeedService(gameRepo game.Repository, hub *realtime.Hub) *ChangeFeedService {
	return &ChangeFeedService{gameRepo: gameRepo, hub: hub}
}

// SubscribeToGameChanges subscribes to gameID. The caller owns the returned
// subscription and must Close it; it should re-fetch state once on receipt
// and again after every notification.
func (s *ChangeFeedService) SubscribeToGameChanges(ctx context.Context, gameID string) (*realtime.Subscription, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChangeFeedService.SubscribeToGameChanges", gameAttr(gameID))
	defer span.End()

	g, err := loadGame(ctx, s.gameRepo, gameID)
	if err != nil {
		return nil, err
	}
	return s.hub.Subscribe(g.ID), nil
}
