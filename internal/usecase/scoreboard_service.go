package usecase

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
	"github.com/riskibarqy/claim-ledger/internal/domain/scoreboard"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
)

const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 200
)

// ActivityItem is a ledger row with the names a feed needs to render it.
type ActivityItem struct {
	Event          claim.Event
	PlayerName     string
	ChallengeTitle string
	ActorName      string
}

type ScoreboardService struct {
	gameRepo      game.Repository
	playerRepo    player.Repository
	challengeRepo challenge.Repository
	claimRepo     claim.Repository
	logger        *logging.Logger
}

func NewScoreboardService(
	gameRepo game.Repository,
	playerRepo player.Repository,
	challengeRepo challenge.Repository,
	claimRepo claim.Repository,
	logger *logging.Logger,
) *ScoreboardService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoreboardService{
		gameRepo:      gameRepo,
		playerRepo:    playerRepo,
		challengeRepo: challengeRepo,
		claimRepo:     claimRepo,
		logger:        logger,
	}
}

// GetScoreboard derives standings from the current ledger contents.
func (s *ScoreboardService) GetScoreboard(ctx context.Context, gameID string) ([]scoreboard.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreboardService.GetScoreboard", gameAttr(gameID))
	defer span.End()

	g, err := loadGame(ctx, s.gameRepo, gameID)
	if err != nil {
		return nil, err
	}

	var (
		players []player.Player
		events  []claim.Event
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := s.playerRepo.ListByGame(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		players = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.claimRepo.ListByGame(ctx, claim.Filter{GameID: g.ID})
		if err != nil {
			return fmt.Errorf("list claims: %w", err)
		}
		events = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return scoreboard.Compute(players, events), nil
}

// ActivityFeed returns the newest ledger rows with display names resolved.
// limit <= 0 means DefaultActivityLimit.
func (s *ScoreboardService) ActivityFeed(ctx context.Context, gameID string, limit int) ([]ActivityItem, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreboardService.ActivityFeed", gameAttr(gameID))
	defer span.End()

	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		return nil, fmt.Errorf("%w: limit must be <= %d", ErrInvalidInput, MaxActivityLimit)
	}

	g, err := loadGame(ctx, s.gameRepo, gameID)
	if err != nil {
		return nil, err
	}

	var (
		players    []player.Player
		challenges []challenge.Challenge
		events     []claim.Event
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := s.playerRepo.ListByGame(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		players = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.challengeRepo.ListByGame(ctx, challenge.Filter{GameID: g.ID})
		if err != nil {
			return fmt.Errorf("list challenges: %w", err)
		}
		challenges = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.claimRepo.ListByGame(ctx, claim.Filter{GameID: g.ID, Limit: limit})
		if err != nil {
			return fmt.Errorf("list claims: %w", err)
		}
		events = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(players))
	for _, pl := range players {
		names[pl.ID] = pl.Name
	}
	titles := make(map[string]string, len(challenges))
	for _, c := range challenges {
		titles[c.ID] = c.Title
	}

	out := make([]ActivityItem, 0, len(events))
	for _, e := range events {
		actor, ok := names[e.ActorID]
		if !ok {
			actor = e.ActorID
		}
		out = append(out, ActivityItem{
			Event:          e,
			PlayerName:     names[e.PlayerID],
			ChallengeTitle: titles[e.ChallengeID],
			ActorName:      actor,
		})
	}
	return out, nil
}
