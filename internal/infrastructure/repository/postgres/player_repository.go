package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
	qb "github.com/riskibarqy/claim-ledger/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) (player.Player, error) {
	query, args, err := qb.InsertInto("players").
		Set("id", p.ID).
		Set("game_id", p.GameID).
		Set("name", p.Name).
		Set("name_key", player.NameKey(p.Name)).
		Returning("joined_at").
		ToSQL()
	if err != nil {
		return player.Player{}, crerr.Wrap(err, "build insert player query")
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&p.JoinedAt); err != nil {
		if isUniqueViolation(err, constraintPlayerNameUniq) {
			return player.Player{}, crerr.Wrapf(player.ErrNameTaken, "insert player %q", p.Name)
		}
		return player.Player{}, crerr.Wrap(err, "insert player")
	}
	return p, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, gameID, playerID string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(qb.Eq("game_id", gameID), qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, crerr.Wrap(err, "build get player query")
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, crerr.Wrapf(err, "get player %s", playerID)
	}
	return row.toDomain(), true, nil
}

func (r *PlayerRepository) ListByGame(ctx context.Context, gameID string) ([]player.Player, error) {
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("joined_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list players query")
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "list players of game %s", gameID)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Delete relies on claim_events_player_fkey ON DELETE CASCADE for the events.
func (r *PlayerRepository) Delete(ctx context.Context, gameID, playerID string) (bool, error) {
	query, args, err := qb.DeleteFrom("players").
		Where(qb.Eq("game_id", gameID), qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return false, crerr.Wrap(err, "build delete player query")
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, crerr.Wrapf(err, "delete player %s", playerID)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, crerr.Wrap(err, "rows affected delete player")
	}
	return affected > 0, nil
}
