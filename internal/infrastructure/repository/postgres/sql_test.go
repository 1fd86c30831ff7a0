package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches named constraint through wrapping", func(t *testing.T) {
		err := crerr.Wrap(&pq.Error{Code: "23505", Constraint: constraintClaimUnique}, "insert claim")
		if !isUniqueViolation(err, constraintClaimUnique) {
			t.Fatalf("expected unique violation on %s", constraintClaimUnique)
		}
	})

	t.Run("ignores other constraints", func(t *testing.T) {
		err := &pq.Error{Code: "23505", Constraint: "claim_events_pkey"}
		if isUniqueViolation(err, constraintClaimUnique) {
			t.Fatalf("expected pkey violation not to match the claim index")
		}
	})

	t.Run("ignores non driver errors", func(t *testing.T) {
		if isUniqueViolation(errors.New("boom"), "") {
			t.Fatalf("expected plain error not to match")
		}
	})
}

func TestIsForeignKeyViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23503", Constraint: "claim_events_player_fkey"})
	if !isForeignKeyViolation(err) {
		t.Fatalf("expected foreign key violation")
	}
	if isForeignKeyViolation(&pq.Error{Code: "23505"}) {
		t.Fatalf("unique violation must not match foreign key check")
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(crerr.Wrap(sql.ErrNoRows, "get game")) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
}

func TestNullableConversions(t *testing.T) {
	if nullString("").Valid {
		t.Fatalf("expected empty string to be NULL")
	}
	if got := intPtr(nullInt(nil)); got != nil {
		t.Fatalf("expected nil bonus, got %v", *got)
	}
	v := 3
	if got := intPtr(nullInt(&v)); got == nil || *got != 3 {
		t.Fatalf("expected bonus 3, got %v", got)
	}
}

func TestChallengeLockQuery(t *testing.T) {
	query, args, err := challengeLockQuery("g1", "c1")
	if err != nil {
		t.Fatalf("build lock query: %v", err)
	}

	want := "SELECT is_repeatable, is_active FROM challenges WHERE game_id = $1 AND id = $2 FOR SHARE"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 2 || args[0] != "g1" || args[1] != "c1" {
		t.Fatalf("unexpected args: %v", args)
	}
}
