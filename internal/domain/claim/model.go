package claim

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind tells which of a challenge's point values a claim collects.
type Kind string

const (
	KindBase  Kind = "base"
	KindBonus Kind = "bonus"
)

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindBase:
		return KindBase, nil
	case KindBonus:
		return KindBonus, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidClaimKind, raw)
	}
}

// Event is one immutable ledger row. Points are copied from the challenge at claim time.
type Event struct {
	ID          string
	GameID      string
	PlayerID    string
	ChallengeID string
	Kind        Kind
	Points      int
	ActorID     string
	CreatedAt   time.Time
}

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("claim event id is required")
	}
	if e.GameID == "" || e.PlayerID == "" || e.ChallengeID == "" {
		return fmt.Errorf("claim event game, player and challenge ids are required")
	}
	if e.Kind != KindBase && e.Kind != KindBonus {
		return fmt.Errorf("%w: %q", ErrInvalidClaimKind, e.Kind)
	}
	if e.Points < 0 {
		return fmt.Errorf("claim event points must be >= 0")
	}
	if e.ActorID == "" {
		return fmt.Errorf("claim event actor id is required")
	}

	return nil
}

// UniqueKey identifies the slot a non-repeatable claim occupies.
type UniqueKey struct {
	GameID      string
	PlayerID    string
	ChallengeID string
	Kind        Kind
}

func (e Event) UniqueKey() UniqueKey {
	return UniqueKey{GameID: e.GameID, PlayerID: e.PlayerID, ChallengeID: e.ChallengeID, Kind: e.Kind}
}

// Filter narrows ListByGame. PlayerID and Limit are optional; Limit <= 0 returns all rows.
type Filter struct {
	GameID   string
	PlayerID string
	Limit    int
}

// SortNewestFirst orders events by CreatedAt descending, then ID descending.
func SortNewestFirst(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.After(events[j].CreatedAt)
		}
		return events[i].ID > events[j].ID
	})
}

// ChangeKind is the ledger operation a Change reports.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeDelete ChangeKind = "delete"
)

const (
	ReasonClaimed          = "claimed"
	ReasonReversed         = "reversed"
	ReasonPlayerRemoved    = "player_removed"
	ReasonChallengeRemoved = "challenge_removed"
)

// Change tells subscribers that the ledger of a game moved. It is a hint:
// receivers re-fetch state instead of applying it.
type Change struct {
	GameID     string     `json:"game_id"`
	Kind       ChangeKind `json:"kind"`
	EventID    string     `json:"event_id,omitempty"`
	Reason     string     `json:"reason"`
	OccurredAt time.Time  `json:"occurred_at"`
}
