package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	qb "github.com/riskibarqy/claim-ledger/internal/platform/querybuilder"
)

type ChallengeRepository struct {
	db *sqlx.DB
}

func NewChallengeRepository(db *sqlx.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

func (r *ChallengeRepository) Create(ctx context.Context, c challenge.Challenge) (challenge.Challenge, error) {
	query, args, err := qb.InsertInto("challenges").
		Set("id", c.ID).
		Set("game_id", c.GameID).
		Set("title", c.Title).
		Set("description", nullString(c.Description)).
		Set("base_points", c.BasePoints).
		Set("bonus_points", nullInt(c.BonusPoints)).
		Set("category", nullString(c.Category)).
		Set("is_active", c.IsActive).
		Set("is_repeatable", c.IsRepeatable).
		Set("sort_order", c.SortOrder).
		Returning("created_at", "updated_at").
		ToSQL()
	if err != nil {
		return challenge.Challenge{}, crerr.Wrap(err, "build insert challenge query")
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return challenge.Challenge{}, crerr.Wrap(err, "insert challenge")
	}
	return c, nil
}

func (r *ChallengeRepository) GetByID(ctx context.Context, gameID, challengeID string) (challenge.Challenge, bool, error) {
	query, args, err := qb.Select(challengeColumns...).From("challenges").
		Where(qb.Eq("game_id", gameID), qb.Eq("id", challengeID)).
		ToSQL()
	if err != nil {
		return challenge.Challenge{}, false, crerr.Wrap(err, "build get challenge query")
	}

	var row challengeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return challenge.Challenge{}, false, nil
		}
		return challenge.Challenge{}, false, crerr.Wrapf(err, "get challenge %s", challengeID)
	}
	return row.toDomain(), true, nil
}

func (r *ChallengeRepository) ListByGame(ctx context.Context, filter challenge.Filter) ([]challenge.Challenge, error) {
	conds := []qb.Condition{qb.Eq("game_id", filter.GameID)}
	if filter.ActiveOnly {
		conds = append(conds, qb.Expr("is_active"))
	}
	query, args, err := qb.Select(challengeColumns...).From("challenges").
		Where(conds...).
		OrderBy("sort_order ASC", "created_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list challenges query")
	}

	var rows []challengeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "list challenges of game %s", filter.GameID)
	}

	out := make([]challenge.Challenge, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Update rewrites the challenge and, in the same transaction, the copy of
// is_repeatable kept on its claim rows. The partial unique index then rejects
// the switch to non-repeatable if duplicates already exist.
func (r *ChallengeRepository) Update(ctx context.Context, c challenge.Challenge) (challenge.Challenge, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return challenge.Challenge{}, false, crerr.Wrap(err, "begin tx update challenge")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Update("challenges").
		Set("title", c.Title).
		Set("description", nullString(c.Description)).
		Set("base_points", c.BasePoints).
		Set("bonus_points", nullInt(c.BonusPoints)).
		Set("category", nullString(c.Category)).
		Set("is_active", c.IsActive).
		Set("is_repeatable", c.IsRepeatable).
		Set("sort_order", c.SortOrder).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("game_id", c.GameID), qb.Eq("id", c.ID)).
		Returning(challengeColumns...).
		ToSQL()
	if err != nil {
		return challenge.Challenge{}, false, crerr.Wrap(err, "build update challenge query")
	}

	var row challengeTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return challenge.Challenge{}, false, nil
		}
		return challenge.Challenge{}, false, crerr.Wrapf(err, "update challenge %s", c.ID)
	}

	syncQuery, syncArgs, err := qb.Update("claim_events").
		Set("is_repeatable", c.IsRepeatable).
		Where(
			qb.Eq("game_id", c.GameID),
			qb.Eq("challenge_id", c.ID),
			qb.Expr("is_repeatable <> ?", c.IsRepeatable),
		).
		ToSQL()
	if err != nil {
		return challenge.Challenge{}, false, crerr.Wrap(err, "build sync claim repeatable query")
	}
	if _, err := tx.ExecContext(ctx, syncQuery, syncArgs...); err != nil {
		if isUniqueViolation(err, constraintClaimUnique) {
			return challenge.Challenge{}, false, crerr.Wrapf(challenge.ErrRepeatableConflict, "challenge %s", c.ID)
		}
		return challenge.Challenge{}, false, crerr.Wrap(err, "sync claim repeatable flag")
	}

	if err := tx.Commit(); err != nil {
		return challenge.Challenge{}, false, crerr.Wrap(err, "commit update challenge tx")
	}
	return row.toDomain(), true, nil
}

func (r *ChallengeRepository) SetActive(ctx context.Context, gameID, challengeID string, active bool) (challenge.Challenge, bool, error) {
	query, args, err := qb.Update("challenges").
		Set("is_active", active).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("game_id", gameID), qb.Eq("id", challengeID)).
		Returning(challengeColumns...).
		ToSQL()
	if err != nil {
		return challenge.Challenge{}, false, crerr.Wrap(err, "build set challenge active query")
	}

	var row challengeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return challenge.Challenge{}, false, nil
		}
		return challenge.Challenge{}, false, crerr.Wrapf(err, "set challenge %s active", challengeID)
	}
	return row.toDomain(), true, nil
}

// Delete relies on claim_events_challenge_fkey ON DELETE CASCADE for the events.
func (r *ChallengeRepository) Delete(ctx context.Context, gameID, challengeID string) (bool, error) {
	query, args, err := qb.DeleteFrom("challenges").
		Where(qb.Eq("game_id", gameID), qb.Eq("id", challengeID)).
		ToSQL()
	if err != nil {
		return false, crerr.Wrap(err, "build delete challenge query")
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, crerr.Wrapf(err, "delete challenge %s", challengeID)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, crerr.Wrap(err, "rows affected delete challenge")
	}
	return affected > 0, nil
}
