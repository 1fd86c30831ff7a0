package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
	"github.com/riskibarqy/claim-ledger/internal/platform/id"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
)

type AddPlayerInput struct {
	GameID string
	Name   string
}

type PlayerService struct {
	gameRepo   game.Repository
	playerRepo player.Repository
	idGen      id.Generator
	logger     *logging.Logger
}

func NewPlayerService(gameRepo game.Repository, playerRepo player.Repository, idGen id.Generator, logger *logging.Logger) *PlayerService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PlayerService{
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		idGen:      idGen,
		logger:     logger,
	}
}

// ListPlayers returns the players of a game in join order.
func (s *PlayerService) ListPlayers(ctx context.Context, gameID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListPlayers")
	defer span.End()

	g, err := loadGame(ctx, s.gameRepo, gameID)
	if err != nil {
		return nil, err
	}

	players, err := s.playerRepo.ListByGame(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

func (s *PlayerService) AddPlayer(ctx context.Context, input AddPlayerInput) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.AddPlayer")
	defer span.End()

	g, err := loadGame(ctx, s.gameRepo, input.GameID)
	if err != nil {
		return player.Player{}, err
	}

	playerID, err := s.idGen.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}
	p := player.Player{
		ID:     playerID,
		GameID: g.ID,
		Name:   strings.Join(strings.Fields(input.Name), " "),
	}
	if err := p.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.playerRepo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, player.ErrNameTaken) {
			return player.Player{}, fmt.Errorf("%w: %w: name=%q", ErrConflict, player.ErrNameTaken, p.Name)
		}
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}

	s.logger.InfoContext(ctx, "player joined", "game_id", g.ID, "player_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, gameID, playerID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.GetPlayer")
	defer span.End()

	return loadPlayer(ctx, s.playerRepo, gameID, playerID)
}

// RemovePlayer deletes the player and, atomically with it, every claim the player holds.
func (s *PlayerService) RemovePlayer(ctx context.Context, gameID, playerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.RemovePlayer")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	playerID = strings.TrimSpace(playerID)
	if gameID == "" || playerID == "" {
		return fmt.Errorf("%w: game id and player id are required", ErrInvalidInput)
	}

	deleted, err := s.playerRepo.Delete(ctx, gameID, playerID)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}

	s.logger.InfoContext(ctx, "player removed", "game_id", gameID, "player_id", playerID)
	return nil
}

func loadPlayer(ctx context.Context, repo player.Repository, gameID, playerID string) (player.Player, error) {
	gameID = strings.TrimSpace(gameID)
	playerID = strings.TrimSpace(playerID)
	if gameID == "" || playerID == "" {
		return player.Player{}, fmt.Errorf("%w: game id and player id are required", ErrInvalidInput)
	}

	p, exists, err := repo.GetByID(ctx, gameID, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	return p, nil
}
