package postgres

import (
	"database/sql"
	"errors"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

const (
	sqlstateUniqueViolation     = pq.ErrorCode("23505")
	sqlstateForeignKeyViolation = pq.ErrorCode("23503")

	constraintClaimUnique    = "claim_events_unique_claim"
	constraintPlayerNameUniq = "players_game_name_key"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// violation returns the SQLSTATE and constraint name carried by a driver error.
func violation(err error) (pq.ErrorCode, string, bool) {
	var pqErr *pq.Error
	if !crerr.As(err, &pqErr) {
		return "", "", false
	}
	return pqErr.Code, pqErr.Constraint, true
}

func isUniqueViolation(err error, constraint string) bool {
	code, name, ok := violation(err)
	return ok && code == sqlstateUniqueViolation && (constraint == "" || name == constraint)
}

func isForeignKeyViolation(err error) bool {
	code, _, ok := violation(err)
	return ok && code == sqlstateForeignKeyViolation
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}
