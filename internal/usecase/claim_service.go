package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
	"github.com/riskibarqy/claim-ledger/internal/platform/id"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
)

// SubmitClaimInput asks to record that PlayerID completed ChallengeID. ActorID
// is whoever pressed the button and defaults to the player.
type SubmitClaimInput struct {
	GameID      string
	PlayerID    string
	ChallengeID string
	Kind        string
	ActorID     string
}

type ListClaimsInput struct {
	GameID   string
	PlayerID string
	Limit    int
}

// ChallengeClaimStatus tells one player what they hold and can still claim on a challenge.
type ChallengeClaimStatus struct {
	Challenge     challenge.Challenge
	BaseCount     int
	BonusCount    int
	CanClaimBase  bool
	CanClaimBonus bool
}

type ClaimService struct {
	gameRepo      game.Repository
	playerRepo    player.Repository
	challengeRepo challenge.Repository
	claimRepo     claim.Repository
	idGen         id.Generator
	logger        *logging.Logger
}

func NewClaimService(
	gameRepo game.Repository,
	playerRepo player.Repository,
	challengeRepo challenge.Repository,
	claimRepo claim.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *ClaimService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ClaimService{
		gameRepo:      gameRepo,
		playerRepo:    playerRepo,
		challengeRepo: challengeRepo,
		claimRepo:     claimRepo,
		idGen:         idGen,
		logger:        logger,
	}
}

// SubmitClaim admits a claim into the ledger. Duplicate detection is left to
// the store's single atomic Append; there is no read-then-write check here,
// and the call is never retried.
func (s *ClaimService) SubmitClaim(ctx context.Context, input SubmitClaimInput) (claim.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClaimService.SubmitClaim",
		gameAttr(input.GameID),
		attribute.String("ledger.challenge_id", input.ChallengeID),
	)
	defer span.End()

	input, kind, err := validateSubmitClaimInput(input)
	if err != nil {
		return claim.Event{}, err
	}

	g, err := loadGame(ctx, s.gameRepo, input.GameID)
	if err != nil {
		return claim.Event{}, err
	}
	if !g.IsActive() {
		return claim.Event{}, fmt.Errorf("%w: game=%s", claim.ErrGameEnded, g.ID)
	}

	c, exists, err := s.challengeRepo.GetByID(ctx, g.ID, input.ChallengeID)
	if err != nil {
		return claim.Event{}, fmt.Errorf("get challenge: %w", err)
	}
	if !exists {
		return claim.Event{}, fmt.Errorf("%w: challenge=%s", claim.ErrReferential, input.ChallengeID)
	}
	if !c.IsActive {
		return claim.Event{}, fmt.Errorf("%w: challenge=%s", claim.ErrChallengeUnavailable, c.ID)
	}

	points, err := pointsFor(c, kind)
	if err != nil {
		return claim.Event{}, err
	}

	eventID, err := s.idGen.NewID()
	if err != nil {
		return claim.Event{}, fmt.Errorf("generate claim id: %w", err)
	}

	stored, err := s.claimRepo.Append(ctx, claim.Event{
		ID:          eventID,
		GameID:      g.ID,
		PlayerID:    input.PlayerID,
		ChallengeID: c.ID,
		Kind:        kind,
		Points:      points,
		ActorID:     input.ActorID,
	})
	if err != nil {
		if errors.Is(err, claim.ErrDuplicateClaim) {
			s.logger.DebugContext(ctx, "claim rejected as duplicate",
				"game_id", g.ID,
				"player_id", input.PlayerID,
				"challenge_id", c.ID,
				"kind", string(kind),
			)
			return claim.Event{}, err
		}
		if errors.Is(err, claim.ErrReferential) {
			return claim.Event{}, err
		}
		return claim.Event{}, fmt.Errorf("append claim: %w", err)
	}

	s.logger.InfoContext(ctx, "claim admitted",
		"game_id", stored.GameID,
		"event_id", stored.ID,
		"player_id", stored.PlayerID,
		"challenge_id", stored.ChallengeID,
		"kind", string(stored.Kind),
		"points", stored.Points,
		"actor_id", stored.ActorID,
	)
	return stored, nil
}

func validateSubmitClaimInput(input SubmitClaimInput) (SubmitClaimInput, claim.Kind, error) {
	input.GameID = strings.TrimSpace(input.GameID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.ChallengeID = strings.TrimSpace(input.ChallengeID)
	input.ActorID = strings.TrimSpace(input.ActorID)

	switch {
	case input.GameID == "":
		return input, "", fmt.Errorf("%w: game id is required", ErrInvalidInput)
	case input.PlayerID == "":
		return input, "", fmt.Errorf("%w: player id is required", ErrInvalidInput)
	case input.ChallengeID == "":
		return input, "", fmt.Errorf("%w: challenge id is required", ErrInvalidInput)
	}

	kind := claim.KindBase
	if strings.TrimSpace(input.Kind) != "" {
		parsed, err := claim.ParseKind(input.Kind)
		if err != nil {
			return input, "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		kind = parsed
	}
	if input.ActorID == "" {
		input.ActorID = input.PlayerID
	}

	return input, kind, nil
}

func pointsFor(c challenge.Challenge, kind claim.Kind) (int, error) {
	switch kind {
	case claim.KindBase:
		return c.BasePoints, nil
	case claim.KindBonus:
		if !c.HasBonus() {
			return 0, fmt.Errorf("%w: challenge %s has no bonus", claim.ErrInvalidClaimKind, c.ID)
		}
		return *c.BonusPoints, nil
	default:
		return 0, fmt.Errorf("%w: %q", claim.ErrInvalidClaimKind, kind)
	}
}

// ReverseClaim removes a ledger row. A second reversal of the same event
// reports claim.ErrEventNotFound, which callers may treat as success.
func (s *ClaimService) ReverseClaim(ctx context.Context, gameID, eventID, actorID string) (claim.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClaimService.ReverseClaim", gameAttr(gameID))
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	eventID = strings.TrimSpace(eventID)
	if gameID == "" || eventID == "" {
		return claim.Event{}, fmt.Errorf("%w: game id and claim id are required", ErrInvalidInput)
	}

	removed, err := s.claimRepo.Remove(ctx, gameID, eventID)
	if err != nil {
		if errors.Is(err, claim.ErrEventNotFound) {
			return claim.Event{}, err
		}
		return claim.Event{}, fmt.Errorf("remove claim: %w", err)
	}

	s.logger.InfoContext(ctx, "claim reversed",
		"game_id", gameID,
		"event_id", removed.ID,
		"player_id", removed.PlayerID,
		"points", removed.Points,
		"actor_id", strings.TrimSpace(actorID),
	)
	return removed, nil
}

// ListClaims returns ledger rows newest first.
func (s *ClaimService) ListClaims(ctx context.Context, input ListClaimsInput) ([]claim.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClaimService.ListClaims")
	defer span.End()

	g, err := loadGame(ctx, s.gameRepo, input.GameID)
	if err != nil {
		return nil, err
	}
	if input.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be >= 0", ErrInvalidInput)
	}

	events, err := s.claimRepo.ListByGame(ctx, claim.Filter{
		GameID:   g.ID,
		PlayerID: strings.TrimSpace(input.PlayerID),
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return events, nil
}

// PlayerClaimStatus reports, for every challenge of the game, what playerID
// already holds and what is still claimable.
func (s *ClaimService) PlayerClaimStatus(ctx context.Context, gameID, playerID string) ([]ChallengeClaimStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClaimService.PlayerClaimStatus", gameAttr(gameID))
	defer span.End()

	g, err := loadGame(ctx, s.gameRepo, gameID)
	if err != nil {
		return nil, err
	}
	p, err := loadPlayer(ctx, s.playerRepo, g.ID, playerID)
	if err != nil {
		return nil, err
	}

	challenges, err := s.challengeRepo.ListByGame(ctx, challenge.Filter{GameID: g.ID})
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	events, err := s.claimRepo.ListByGame(ctx, claim.Filter{GameID: g.ID, PlayerID: p.ID})
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	counts := make(map[claim.UniqueKey]int, len(events))
	for _, e := range events {
		counts[e.UniqueKey()]++
	}

	out := make([]ChallengeClaimStatus, 0, len(challenges))
	for _, c := range challenges {
		key := claim.UniqueKey{GameID: g.ID, PlayerID: p.ID, ChallengeID: c.ID}
		key.Kind = claim.KindBase
		base := counts[key]
		key.Kind = claim.KindBonus
		bonus := counts[key]

		open := g.IsActive() && c.IsActive
		out = append(out, ChallengeClaimStatus{
			Challenge:     c,
			BaseCount:     base,
			BonusCount:    bonus,
			CanClaimBase:  open && (c.IsRepeatable || base == 0),
			CanClaimBonus: open && c.HasBonus() && (c.IsRepeatable || bonus == 0),
		})
	}
	return out, nil
}
