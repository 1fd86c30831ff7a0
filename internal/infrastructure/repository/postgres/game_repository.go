package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	qb "github.com/riskibarqy/claim-ledger/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Create(ctx context.Context, g game.Game) (game.Game, error) {
	query, args, err := qb.InsertInto("games").
		Set("id", g.ID).
		Set("name", g.Name).
		Set("status", string(g.Status)).
		Returning("created_at").
		ToSQL()
	if err != nil {
		return game.Game{}, crerr.Wrap(err, "build insert game query")
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&g.CreatedAt); err != nil {
		return game.Game{}, crerr.Wrap(err, "insert game")
	}
	return g, nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	query, args, err := qb.Select(gameColumns...).From("games").
		Where(qb.Eq("id", gameID)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, crerr.Wrap(err, "build get game query")
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, crerr.Wrapf(err, "get game %s", gameID)
	}
	return row.toDomain(), true, nil
}

func (r *GameRepository) UpdateStatus(ctx context.Context, gameID string, status game.Status) (game.Game, bool, error) {
	query, args, err := qb.Update("games").
		Set("status", string(status)).
		Where(qb.Eq("id", gameID)).
		Returning(gameColumns...).
		ToSQL()
	if err != nil {
		return game.Game{}, false, crerr.Wrap(err, "build update game status query")
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, crerr.Wrapf(err, "update game %s status", gameID)
	}
	return row.toDomain(), true, nil
}
