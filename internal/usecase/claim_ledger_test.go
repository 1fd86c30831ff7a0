package usecase

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
)

func TestClaimService_ReversalRestoresScoreboard(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	g := h.game(t)
	dave := h.player(t, g.ID, "Dave")
	pool := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Pool Predator", BasePoints: 2, BonusPoints: intPtr(2)})

	base, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: dave.ID, ChallengeID: pool.ID, Kind: "base"})
	if err != nil {
		t.Fatalf("base claim: %v", err)
	}
	bonus, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: dave.ID, ChallengeID: pool.ID, Kind: "bonus"})
	if err != nil {
		t.Fatalf("bonus claim: %v", err)
	}

	reversed, err := h.claims.ReverseClaim(ctx, g.ID, base.ID, "host")
	if err != nil {
		t.Fatalf("reverse base: %v", err)
	}
	if reversed.ID != base.ID || reversed.Kind != claim.KindBase {
		t.Fatalf("unexpected reversed event: %+v", reversed)
	}

	board, err := h.scoreboard.GetScoreboard(ctx, g.ID)
	if err != nil {
		t.Fatalf("scoreboard: %v", err)
	}
	if len(board) != 1 || board[0].PlayerID != dave.ID || board[0].TotalPoints != 2 || board[0].ClaimCount != 1 {
		t.Fatalf("expected Dave at 2 points from the bonus only, got %+v", board)
	}

	for _, filter := range []ListClaimsInput{{GameID: g.ID}, {GameID: g.ID, PlayerID: dave.ID}} {
		events, err := h.claims.ListClaims(ctx, filter)
		if err != nil {
			t.Fatalf("list claims %+v: %v", filter, err)
		}
		if len(events) != 1 || events[0].ID != bonus.ID {
			t.Fatalf("expected only the bonus event for %+v, got %+v", filter, events)
		}
	}
}

// ledgerModel tracks what the ledger must hold after a sequence of
// operations, independent of the store.
type ledgerModel struct {
	live   map[string]claim.Event
	totals map[string]int
}

func (m *ledgerModel) holds(playerID, challengeID string, kind claim.Kind) bool {
	for _, e := range m.live {
		if e.PlayerID == playerID && e.ChallengeID == challengeID && e.Kind == kind {
			return true
		}
	}
	return false
}

func TestClaimService_ScoreboardMatchesLedgerUnderRandomOperations(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	g := h.game(t)
	players := []player.Player{
		h.player(t, g.ID, "Ana"),
		h.player(t, g.ID, "Bo"),
		h.player(t, g.ID, "Cy"),
	}
	challenges := []challenge.Challenge{
		h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Pool Predator", BasePoints: 2, BonusPoints: intPtr(2)}),
		h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Karaoke", BasePoints: 1, BonusPoints: intPtr(3), IsRepeatable: true}),
		h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Dart Bullseye", BasePoints: 5}),
	}
	kinds := []claim.Kind{claim.KindBase, claim.KindBonus}

	model := &ledgerModel{live: map[string]claim.Event{}, totals: map[string]int{}}
	rng := rand.New(rand.NewSource(20261002))

	for step := 0; step < 400; step++ {
		if len(model.live) > 0 && rng.Intn(3) == 0 {
			ids := make([]string, 0, len(model.live))
			for id := range model.live {
				ids = append(ids, id)
			}
			slices.Sort(ids)
			victim := model.live[ids[rng.Intn(len(ids))]]

			if _, err := h.claims.ReverseClaim(ctx, g.ID, victim.ID, "host"); err != nil {
				t.Fatalf("step %d: reverse %s: %v", step, victim.ID, err)
			}
			delete(model.live, victim.ID)
			model.totals[victim.PlayerID] -= victim.Points
		} else {
			p := players[rng.Intn(len(players))]
			c := challenges[rng.Intn(len(challenges))]
			kind := kinds[rng.Intn(len(kinds))]

			e, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: p.ID, ChallengeID: c.ID, Kind: string(kind)})
			switch {
			case kind == claim.KindBonus && c.BonusPoints == nil:
				if !errors.Is(err, claim.ErrInvalidClaimKind) {
					t.Fatalf("step %d: expected ErrInvalidClaimKind, got %v", step, err)
				}
			case !c.IsRepeatable && model.holds(p.ID, c.ID, kind):
				if !errors.Is(err, claim.ErrDuplicateClaim) {
					t.Fatalf("step %d: expected ErrDuplicateClaim for %s/%s/%s, got %v", step, p.Name, c.Title, kind, err)
				}
			default:
				if err != nil {
					t.Fatalf("step %d: submit %s/%s/%s: %v", step, p.Name, c.Title, kind, err)
				}
				model.live[e.ID] = e
				model.totals[p.ID] += e.Points
			}
		}

		assertScoreboardMatchesLedger(t, h, g.ID, model, step)
	}
}

func assertScoreboardMatchesLedger(t *testing.T, h harness, gameID string, model *ledgerModel, step int) {
	t.Helper()
	ctx := context.Background()

	board, err := h.scoreboard.GetScoreboard(ctx, gameID)
	if err != nil {
		t.Fatalf("step %d: scoreboard: %v", step, err)
	}
	for _, row := range board {
		events, err := h.claims.ListClaims(ctx, ListClaimsInput{GameID: gameID, PlayerID: row.PlayerID})
		if err != nil {
			t.Fatalf("step %d: list claims: %v", step, err)
		}
		sum := 0
		for _, e := range events {
			sum += e.Points
		}
		if row.TotalPoints != sum || row.ClaimCount != len(events) {
			t.Fatalf("step %d: %s scoreboard %d/%d, ledger %d/%d", step, row.PlayerName, row.TotalPoints, row.ClaimCount, sum, len(events))
		}
		if row.TotalPoints != model.totals[row.PlayerID] {
			t.Fatalf("step %d: %s scoreboard %d, expected %d", step, row.PlayerName, row.TotalPoints, model.totals[row.PlayerID])
		}
	}
}
