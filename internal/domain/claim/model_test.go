package claim

import (
	"errors"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	if k, err := ParseKind(" Bonus "); err != nil || k != KindBonus {
		t.Fatalf("expected bonus kind, got %q err=%v", k, err)
	}
	if _, err := ParseKind("triple"); !errors.Is(err, ErrInvalidClaimKind) {
		t.Fatalf("expected ErrInvalidClaimKind, got %v", err)
	}
}

func TestSortNewestFirst_BreaksTiesByID(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "a", CreatedAt: at},
		{ID: "c", CreatedAt: at.Add(-time.Second)},
		{ID: "b", CreatedAt: at},
	}

	SortNewestFirst(events)

	got := []string{events[0].ID, events[1].ID, events[2].ID}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got %v want %v", got, want)
		}
	}
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	ok := Event{ID: "e1", GameID: "g", PlayerID: "p", ChallengeID: "c", Kind: KindBase, Points: 2, ActorID: "p"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid event, got %v", err)
	}

	bad := ok
	bad.Kind = "x"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidClaimKind) {
		t.Fatalf("expected ErrInvalidClaimKind, got %v", err)
	}

	bad = ok
	bad.Points = -1
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for negative points")
	}
}
