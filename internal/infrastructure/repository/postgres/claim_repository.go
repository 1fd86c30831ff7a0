package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	qb "github.com/riskibarqy/claim-ledger/internal/platform/querybuilder"
)

type ClaimRepository struct {
	db *sqlx.DB
}

func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Append reads is_repeatable and is_active from the challenge while holding it
// FOR SHARE, so a concurrent toggle either sees this row or waits for it.
// Uniqueness is enforced by the claim_events_unique_claim partial index.
func (r *ClaimRepository) Append(ctx context.Context, e claim.Event) (claim.Event, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return claim.Event{}, crerr.Wrap(err, "begin tx append claim")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery, lockArgs, err := challengeLockQuery(e.GameID, e.ChallengeID)
	if err != nil {
		return claim.Event{}, crerr.Wrap(err, "build lock challenge query")
	}

	var repeatable, active bool
	if err := tx.QueryRowxContext(ctx, lockQuery, lockArgs...).Scan(&repeatable, &active); err != nil {
		if isNotFound(err) {
			return claim.Event{}, crerr.Wrapf(claim.ErrReferential, "challenge %s", e.ChallengeID)
		}
		return claim.Event{}, crerr.Wrap(err, "lock challenge")
	}
	if !active {
		return claim.Event{}, crerr.Wrapf(claim.ErrChallengeUnavailable, "challenge %s", e.ChallengeID)
	}

	insertQuery, insertArgs, err := qb.InsertInto("claim_events").
		Set("id", e.ID).
		Set("game_id", e.GameID).
		Set("player_id", e.PlayerID).
		Set("challenge_id", e.ChallengeID).
		Set("kind", string(e.Kind)).
		Set("points", e.Points).
		Set("actor_id", e.ActorID).
		Set("is_repeatable", repeatable).
		Returning("created_at").
		ToSQL()
	if err != nil {
		return claim.Event{}, crerr.Wrap(err, "build insert claim query")
	}

	if err := tx.QueryRowxContext(ctx, insertQuery, insertArgs...).Scan(&e.CreatedAt); err != nil {
		switch {
		case isUniqueViolation(err, constraintClaimUnique):
			return claim.Event{}, crerr.Wrapf(claim.ErrDuplicateClaim, "player %s challenge %s %s", e.PlayerID, e.ChallengeID, e.Kind)
		case isForeignKeyViolation(err):
			return claim.Event{}, crerr.Wrapf(claim.ErrReferential, "player %s", e.PlayerID)
		default:
			return claim.Event{}, crerr.Wrap(err, "insert claim")
		}
	}

	if err := tx.Commit(); err != nil {
		return claim.Event{}, crerr.Wrap(err, "commit append claim tx")
	}
	return e, nil
}

func challengeLockQuery(gameID, challengeID string) (string, []any, error) {
	return qb.Select("is_repeatable", "is_active").From("challenges").
		Where(qb.Eq("game_id", gameID), qb.Eq("id", challengeID)).
		For("SHARE").
		ToSQL()
}

func (r *ClaimRepository) Remove(ctx context.Context, gameID, eventID string) (claim.Event, error) {
	query, args, err := qb.DeleteFrom("claim_events").
		Where(qb.Eq("game_id", gameID), qb.Eq("id", eventID)).
		Returning(claimColumns...).
		ToSQL()
	if err != nil {
		return claim.Event{}, crerr.Wrap(err, "build delete claim query")
	}

	var row claimTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return claim.Event{}, crerr.Wrapf(claim.ErrEventNotFound, "claim %s", eventID)
		}
		return claim.Event{}, crerr.Wrapf(err, "delete claim %s", eventID)
	}
	return row.toDomain(), nil
}

func (r *ClaimRepository) GetByID(ctx context.Context, gameID, eventID string) (claim.Event, bool, error) {
	query, args, err := qb.Select(claimColumns...).From("claim_events").
		Where(qb.Eq("game_id", gameID), qb.Eq("id", eventID)).
		ToSQL()
	if err != nil {
		return claim.Event{}, false, crerr.Wrap(err, "build get claim query")
	}

	var row claimTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return claim.Event{}, false, nil
		}
		return claim.Event{}, false, crerr.Wrapf(err, "get claim %s", eventID)
	}
	return row.toDomain(), true, nil
}

func (r *ClaimRepository) ListByGame(ctx context.Context, filter claim.Filter) ([]claim.Event, error) {
	conds := []qb.Condition{qb.Eq("game_id", filter.GameID)}
	if filter.PlayerID != "" {
		conds = append(conds, qb.Eq("player_id", filter.PlayerID))
	}
	query, args, err := qb.Select(claimColumns...).From("claim_events").
		Where(conds...).
		OrderBy("created_at DESC", "id DESC").
		Limit(filter.Limit).
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list claims query")
	}

	var rows []claimTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "list claims of game %s", filter.GameID)
	}

	out := make([]claim.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
