package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/platform/id"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
)

type CreateGameInput struct {
	Name string
}

type GameService struct {
	gameRepo game.Repository
	idGen    id.Generator
	logger   *logging.Logger
}

func NewGameService(gameRepo game.Repository, idGen id.Generator, logger *logging.Logger) *GameService {
	if logger == nil {
		logger = logging.Default()
	}

	return &GameService{
		gameRepo: gameRepo,
		idGen:    idGen,
		logger:   logger,
	}
}

func (s *GameService) CreateGame(ctx context.Context, input CreateGameInput) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.CreateGame")
	defer span.End()

	gameID, err := s.idGen.NewID()
	if err != nil {
		return game.Game{}, fmt.Errorf("generate game id: %w", err)
	}

	g := game.Game{
		ID:     gameID,
		Name:   strings.TrimSpace(input.Name),
		Status: game.StatusActive,
	}
	if err := g.Validate(); err != nil {
		return game.Game{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.gameRepo.Create(ctx, g)
	if err != nil {
		return game.Game{}, fmt.Errorf("create game: %w", err)
	}

	s.logger.InfoContext(ctx, "game created", "game_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *GameService) GetGame(ctx context.Context, gameID string) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.GetGame")
	defer span.End()

	return loadGame(ctx, s.gameRepo, gameID)
}

func (s *GameService) SetGameStatus(ctx context.Context, gameID, status string) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.SetGameStatus")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.Game{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	parsed, err := game.ParseStatus(status)
	if err != nil {
		return game.Game{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	updated, exists, err := s.gameRepo.UpdateStatus(ctx, gameID, parsed)
	if err != nil {
		return game.Game{}, fmt.Errorf("update game status: %w", err)
	}
	if !exists {
		return game.Game{}, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}

	s.logger.InfoContext(ctx, "game status changed", "game_id", gameID, "status", string(parsed))
	return updated, nil
}

// loadGame resolves gameID or fails with ErrInvalidInput / ErrNotFound.
func loadGame(ctx context.Context, repo game.Repository, gameID string) (game.Game, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.Game{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	g, exists, err := repo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return game.Game{}, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}

	return g, nil
}
