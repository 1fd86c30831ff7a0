package notify

import (
	"context"
	"time"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
)

// ClaimRepository publishes a change for every committed Append and Remove
// before returning to the caller.
type ClaimRepository struct {
	next      claim.Repository
	publisher claim.Publisher
	now       func() time.Time
}

func NewClaimRepository(next claim.Repository, publisher claim.Publisher) *ClaimRepository {
	return &ClaimRepository{next: next, publisher: publisher, now: time.Now}
}

func (r *ClaimRepository) Append(ctx context.Context, e claim.Event) (claim.Event, error) {
	stored, err := r.next.Append(ctx, e)
	if err != nil {
		return claim.Event{}, err
	}

	r.publisher.Publish(ctx, claim.Change{
		GameID:     stored.GameID,
		Kind:       claim.ChangeInsert,
		EventID:    stored.ID,
		Reason:     claim.ReasonClaimed,
		OccurredAt: stored.CreatedAt,
	})
	return stored, nil
}

func (r *ClaimRepository) Remove(ctx context.Context, gameID, eventID string) (claim.Event, error) {
	removed, err := r.next.Remove(ctx, gameID, eventID)
	if err != nil {
		return claim.Event{}, err
	}

	r.publisher.Publish(ctx, claim.Change{
		GameID:     gameID,
		Kind:       claim.ChangeDelete,
		EventID:    removed.ID,
		Reason:     claim.ReasonReversed,
		OccurredAt: r.now().UTC(),
	})
	return removed, nil
}

func (r *ClaimRepository) GetByID(ctx context.Context, gameID, eventID string) (claim.Event, bool, error) {
	return r.next.GetByID(ctx, gameID, eventID)
}

func (r *ClaimRepository) ListByGame(ctx context.Context, filter claim.Filter) ([]claim.Event, error) {
	return r.next.ListByGame(ctx, filter)
}

// PlayerRepository publishes a delete when a player, and with it the
// player's ledger rows, is removed.
type PlayerRepository struct {
	player.Repository
	publisher claim.Publisher
	now       func() time.Time
}

func NewPlayerRepository(next player.Repository, publisher claim.Publisher) *PlayerRepository {
	return &PlayerRepository{Repository: next, publisher: publisher, now: time.Now}
}

func (r *PlayerRepository) Delete(ctx context.Context, gameID, playerID string) (bool, error) {
	deleted, err := r.Repository.Delete(ctx, gameID, playerID)
	if err != nil || !deleted {
		return deleted, err
	}

	r.publisher.Publish(ctx, claim.Change{
		GameID:     gameID,
		Kind:       claim.ChangeDelete,
		Reason:     claim.ReasonPlayerRemoved,
		OccurredAt: r.now().UTC(),
	})
	return true, nil
}

// ChallengeRepository publishes a delete when a challenge, and with it every
// claim against it, is removed.
type ChallengeRepository struct {
	challenge.Repository
	publisher claim.Publisher
	now       func() time.Time
}

func NewChallengeRepository(next challenge.Repository, publisher claim.Publisher) *ChallengeRepository {
	return &ChallengeRepository{Repository: next, publisher: publisher, now: time.Now}
}

func (r *ChallengeRepository) Delete(ctx context.Context, gameID, challengeID string) (bool, error) {
	deleted, err := r.Repository.Delete(ctx, gameID, challengeID)
	if err != nil || !deleted {
		return deleted, err
	}

	r.publish(ctx, gameID, claim.ChangeDelete, claim.ReasonChallengeRemoved)
	return true, nil
}

func (r *ChallengeRepository) publish(ctx context.Context, gameID string, kind claim.ChangeKind, reason string) {
	r.publisher.Publish(ctx, claim.Change{
		GameID:     gameID,
		Kind:       kind,
		Reason:     reason,
		OccurredAt: r.now().UTC(),
	})
}
