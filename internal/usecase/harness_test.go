package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
	"github.com/riskibarqy/claim-ledger/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/claim-ledger/internal/infrastructure/repository/notify"
	"github.com/riskibarqy/claim-ledger/internal/realtime"
)

type sequenceIDs struct {
	n atomic.Int64
}

func (s *sequenceIDs) NewID() (string, error) {
	return fmt.Sprintf("id-%05d", s.n.Add(1)), nil
}

type harness struct {
	hub        *realtime.Hub
	games      *GameService
	players    *PlayerService
	challenges *ChallengeService
	claims     *ClaimService
	scoreboard *ScoreboardService
	feed       *ChangeFeedService
}

func newHarness(t *testing.T) harness {
	t.Helper()

	store := memory.NewStore()
	hub := realtime.NewHub(realtime.DefaultBufferSize, nil)
	ids := &sequenceIDs{}

	gameRepo := memory.NewGameRepository(store)
	playerRepo := notify.NewPlayerRepository(memory.NewPlayerRepository(store), hub)
	challengeRepo := notify.NewChallengeRepository(memory.NewChallengeRepository(store), hub)
	claimRepo := notify.NewClaimRepository(memory.NewClaimRepository(store), hub)

	return harness{
		hub:        hub,
		games:      NewGameService(gameRepo, ids, nil),
		players:    NewPlayerService(gameRepo, playerRepo, ids, nil),
		challenges: NewChallengeService(gameRepo, challengeRepo, ids, nil),
		claims:     NewClaimService(gameRepo, playerRepo, challengeRepo, claimRepo, ids, nil),
		scoreboard: NewScoreboardService(gameRepo, playerRepo, challengeRepo, claimRepo, nil),
		feed:       NewChangeFeedService(gameRepo, hub),
	}
}

func (h harness) game(t *testing.T) game.Game {
	t.Helper()
	g, err := h.games.CreateGame(context.Background(), CreateGameInput{Name: "Friday night"})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return g
}

func (h harness) player(t *testing.T, gameID, name string) player.Player {
	t.Helper()
	p, err := h.players.AddPlayer(context.Background(), AddPlayerInput{GameID: gameID, Name: name})
	if err != nil {
		t.Fatalf("add player %s: %v", name, err)
	}
	return p
}

func (h harness) challenge(t *testing.T, input ChallengeInput) challenge.Challenge {
	t.Helper()
	c, err := h.challenges.CreateChallenge(context.Background(), input)
	if err != nil {
		t.Fatalf("create challenge %s: %v", input.Title, err)
	}
	return c
}

func intPtr(v int) *int {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}
