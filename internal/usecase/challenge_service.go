package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/platform/id"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
)

// ChallengeInput carries the host editable fields of a challenge.
// IsActive defaults to true when nil.
type ChallengeInput struct {
	GameID       string
	Title        string
	Description  string
	BasePoints   int
	BonusPoints  *int
	Category     string
	IsActive     *bool
	IsRepeatable bool
	SortOrder    int
}

type ListChallengesInput struct {
	GameID     string
	ActiveOnly bool
	Category   string
	Query      string
}

type ChallengeService struct {
	gameRepo      game.Repository
	challengeRepo challenge.Repository
	idGen         id.Generator
	logger        *logging.Logger
	importWorkers int
}

func NewChallengeService(
	gameRepo game.Repository,
	challengeRepo challenge.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *ChallengeService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ChallengeService{
		gameRepo:      gameRepo,
		challengeRepo: challengeRepo,
		idGen:         idGen,
		logger:        logger,
		importWorkers: defaultImportWorkers,
	}
}

// WithImportWorkers sets the catalog import concurrency. Values <= 0 are ignored.
func (s *ChallengeService) WithImportWorkers(n int) *ChallengeService {
	if n > 0 {
		s.importWorkers = n
	}
	return s
}

func (s *ChallengeService) ListChallenges(ctx context.Context, input ListChallengesInput) ([]challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.ListChallenges")
	defer span.End()

	g, err := loadGame(ctx, s.gameRepo, input.GameID)
	if err != nil {
		return nil, err
	}

	items, err := s.challengeRepo.ListByGame(ctx, challenge.Filter{GameID: g.ID, ActiveOnly: input.ActiveOnly})
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}

	category := challenge.CategoryKey(input.Category)
	if category == "" && strings.TrimSpace(input.Query) == "" {
		return items, nil
	}

	out := make([]challenge.Challenge, 0, len(items))
	for _, c := range items {
		if category != "" && c.CategoryKey() != category {
			continue
		}
		if !c.Matches(input.Query) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *ChallengeService) GetChallenge(ctx context.Context, gameID, challengeID string) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.GetChallenge")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	challengeID = strings.TrimSpace(challengeID)
	if gameID == "" || challengeID == "" {
		return challenge.Challenge{}, fmt.Errorf("%w: game id and challenge id are required", ErrInvalidInput)
	}

	c, exists, err := s.challengeRepo.GetByID(ctx, gameID, challengeID)
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}
	if !exists {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge=%s", ErrNotFound, challengeID)
	}
	return c, nil
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, input ChallengeInput) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.CreateChallenge")
	defer span.End()

	g, err := loadGame(ctx, s.gameRepo, input.GameID)
	if err != nil {
		return challenge.Challenge{}, err
	}

	challengeID, err := s.idGen.NewID()
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("generate challenge id: %w", err)
	}

	c := applyChallengeInput(challenge.Challenge{ID: challengeID, GameID: g.ID, IsActive: true}, input)
	if err := c.Validate(); err != nil {
		return challenge.Challenge{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.challengeRepo.Create(ctx, c)
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("create challenge: %w", err)
	}

	s.logger.InfoContext(ctx, "challenge created", "game_id", g.ID, "challenge_id", created.ID, "title", created.Title)
	return created, nil
}

// UpdateChallenge replaces the editable fields. Turning repeatable off fails
// with ErrConflict while the ledger still holds repeated claims for it.
func (s *ChallengeService) UpdateChallenge(ctx context.Context, challengeID string, input ChallengeInput) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.UpdateChallenge")
	defer span.End()

	current, err := s.GetChallenge(ctx, input.GameID, challengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}

	next := applyChallengeInput(current, input)
	if err := next.Validate(); err != nil {
		return challenge.Challenge{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	updated, exists, err := s.challengeRepo.Update(ctx, next)
	if err != nil {
		if errors.Is(err, challenge.ErrRepeatableConflict) {
			return challenge.Challenge{}, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return challenge.Challenge{}, fmt.Errorf("update challenge: %w", err)
	}
	if !exists {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge=%s", ErrNotFound, challengeID)
	}

	s.logger.InfoContext(ctx, "challenge updated", "game_id", updated.GameID, "challenge_id", updated.ID)
	return updated, nil
}

func (s *ChallengeService) SetChallengeActive(ctx context.Context, gameID, challengeID string, active bool) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.SetChallengeActive")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	challengeID = strings.TrimSpace(challengeID)
	if gameID == "" || challengeID == "" {
		return challenge.Challenge{}, fmt.Errorf("%w: game id and challenge id are required", ErrInvalidInput)
	}

	updated, exists, err := s.challengeRepo.SetActive(ctx, gameID, challengeID, active)
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("set challenge active: %w", err)
	}
	if !exists {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge=%s", ErrNotFound, challengeID)
	}

	s.logger.InfoContext(ctx, "challenge toggled", "game_id", gameID, "challenge_id", challengeID, "active", active)
	return updated, nil
}

// DeleteChallenge removes the challenge together with every claim against it.
func (s *ChallengeService) DeleteChallenge(ctx context.Context, gameID, challengeID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.DeleteChallenge")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	challengeID = strings.TrimSpace(challengeID)
	if gameID == "" || challengeID == "" {
		return fmt.Errorf("%w: game id and challenge id are required", ErrInvalidInput)
	}

	deleted, err := s.challengeRepo.Delete(ctx, gameID, challengeID)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: challenge=%s", ErrNotFound, challengeID)
	}

	s.logger.InfoContext(ctx, "challenge deleted", "game_id", gameID, "challenge_id", challengeID)
	return nil
}

func applyChallengeInput(c challenge.Challenge, input ChallengeInput) challenge.Challenge {
	c.Title = strings.TrimSpace(input.Title)
	c.Description = strings.TrimSpace(input.Description)
	c.BasePoints = input.BasePoints
	c.BonusPoints = nil
	if input.BonusPoints != nil {
		v := *input.BonusPoints
		c.BonusPoints = &v
	}
	c.Category = strings.TrimSpace(input.Category)
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	c.IsRepeatable = input.IsRepeatable
	c.SortOrder = input.SortOrder
	return c
}
