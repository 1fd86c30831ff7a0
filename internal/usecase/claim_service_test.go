package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/realtime"
)

func TestClaimService_ScenarioBaseDuplicateBonus(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	g := h.game(t)
	ana := h.player(t, g.ID, "Ana")
	bo := h.player(t, g.ID, "Bo")
	pool := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Pool Predator", BasePoints: 2, BonusPoints: intPtr(2)})

	first, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: pool.ID, Kind: "base"})
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if first.Points != 2 || first.ActorID != ana.ID {
		t.Fatalf("unexpected stored event: %+v", first)
	}

	_, err = h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: pool.ID, Kind: "base"})
	if !errors.Is(err, claim.ErrDuplicateClaim) {
		t.Fatalf("expected ErrDuplicateClaim, got %v", err)
	}

	if _, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: pool.ID, Kind: "bonus"}); err != nil {
		t.Fatalf("bonus claim: %v", err)
	}

	board, err := h.scoreboard.GetScoreboard(ctx, g.ID)
	if err != nil {
		t.Fatalf("scoreboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 rows, got %+v", board)
	}
	if board[0].PlayerID != ana.ID || board[0].TotalPoints != 4 {
		t.Fatalf("unexpected leader: %+v", board[0])
	}
	if board[1].PlayerID != bo.ID || board[1].TotalPoints != 0 {
		t.Fatalf("unexpected second row: %+v", board[1])
	}
}

func TestClaimService_ConcurrentIdenticalClaimsAdmitExactlyOne(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	g := h.game(t)
	ana := h.player(t, g.ID, "Ana")
	pool := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Pool Predator", BasePoints: 2})

	const submitters = 50
	var (
		wg         sync.WaitGroup
		successes  atomic.Int32
		duplicates atomic.Int32
	)
	start := make(chan struct{})
	wg.Add(submitters)
	for i := 0; i < submitters; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err := h.claims.SubmitClaim(context.Background(), SubmitClaimInput{
				GameID: g.ID, PlayerID: ana.ID, ChallengeID: pool.ID, Kind: "base",
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, claim.ErrDuplicateClaim):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes.Load() != 1 || duplicates.Load() != submitters-1 {
		t.Fatalf("expected exactly one success, got successes=%d duplicates=%d", successes.Load(), duplicates.Load())
	}

	events, err := h.claims.ListClaims(context.Background(), ListClaimsInput{GameID: g.ID})
	if err != nil {
		t.Fatalf("list claims: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(events))
	}
}

func TestClaimService_ReverseTwice(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	g := h.game(t)
	ana := h.player(t, g.ID, "Ana")
	pool := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Pool Predator", BasePoints: 2})

	e, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: pool.ID})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := h.claims.ReverseClaim(ctx, g.ID, e.ID, "host"); err != nil {
		t.Fatalf("first reversal: %v", err)
	}
	if _, err := h.claims.ReverseClaim(ctx, g.ID, e.ID, "host"); !errors.Is(err, claim.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}

	board, _ := h.scoreboard.GetScoreboard(ctx, g.ID)
	if board[0].TotalPoints != 0 {
		t.Fatalf("expected score back to 0, got %d", board[0].TotalPoints)
	}
	if _, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: pool.ID}); err != nil {
		t.Fatalf("expected reversed slot to be claimable again: %v", err)
	}
}

func TestClaimService_AdmissionRejections(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	g := h.game(t)
	other := h.game(t)
	ana := h.player(t, g.ID, "Ana")
	zed := h.player(t, other.ID, "Zed")
	plain := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Karaoke", BasePoints: 3})
	paused := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Limbo", BasePoints: 1, IsActive: boolPtr(false)})

	cases := []struct {
		name  string
		input SubmitClaimInput
		want  error
	}{
		{"blank player", SubmitClaimInput{GameID: g.ID, ChallengeID: plain.ID}, ErrInvalidInput},
		{"unknown kind", SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: plain.ID, Kind: "triple"}, claim.ErrInvalidClaimKind},
		{"missing game", SubmitClaimInput{GameID: "nope", PlayerID: ana.ID, ChallengeID: plain.ID}, ErrNotFound},
		{"unknown challenge", SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: "nope"}, claim.ErrReferential},
		{"player of another game", SubmitClaimInput{GameID: g.ID, PlayerID: zed.ID, ChallengeID: plain.ID}, claim.ErrReferential},
		{"inactive challenge", SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: paused.ID}, claim.ErrChallengeUnavailable},
		{"bonus without bonus value", SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: plain.ID, Kind: "bonus"}, claim.ErrInvalidClaimKind},
	}
	for _, tc := range cases {
		if _, err := h.claims.SubmitClaim(ctx, tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if _, err := h.games.SetGameStatus(ctx, g.ID, "ended"); err != nil {
		t.Fatalf("end game: %v", err)
	}
	_, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: plain.ID})
	if !errors.Is(err, claim.ErrGameEnded) {
		t.Fatalf("expected ErrGameEnded, got %v", err)
	}
}

func TestClaimService_RepeatableChallengeAccumulates(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	g := h.game(t)
	ana := h.player(t, g.ID, "Ana")
	toast := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Toast", BasePoints: 1, IsRepeatable: true})

	for i := 0; i < 3; i++ {
		if _, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: toast.ID, ActorID: "host"}); err != nil {
			t.Fatalf("claim #%d: %v", i, err)
		}
	}

	board, _ := h.scoreboard.GetScoreboard(ctx, g.ID)
	if board[0].TotalPoints != 3 || board[0].ClaimCount != 3 {
		t.Fatalf("unexpected standing: %+v", board[0])
	}
}

func TestClaimService_PointsAreCopiedAtClaimTime(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	g := h.game(t)
	ana := h.player(t, g.ID, "Ana")
	c := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Dance", BasePoints: 2})

	if _, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: c.ID}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := h.challenges.UpdateChallenge(ctx, c.ID, ChallengeInput{GameID: g.ID, Title: "Dance", BasePoints: 10}); err != nil {
		t.Fatalf("update challenge: %v", err)
	}

	board, _ := h.scoreboard.GetScoreboard(ctx, g.ID)
	if board[0].TotalPoints != 2 {
		t.Fatalf("expected historical points to stay 2, got %d", board[0].TotalPoints)
	}
}

func TestClaimService_PublishesBeforeReturning(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	g := h.game(t)
	ana := h.player(t, g.ID, "Ana")
	c := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Dance", BasePoints: 2})

	sub, err := h.feed.SubscribeToGameChanges(ctx, g.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	e, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: ana.ID, ChallengeID: c.ID})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case change := <-sub.C():
		if change.Kind != claim.ChangeInsert || change.EventID != e.ID {
			t.Fatalf("unexpected change: %+v", change)
		}
	default:
		t.Fatalf("change was not published before SubmitClaim returned")
	}

	if _, err := h.claims.ReverseClaim(ctx, g.ID, e.ID, "host"); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	select {
	case change := <-sub.C():
		if change.Kind != claim.ChangeDelete || change.EventID != e.ID {
			t.Fatalf("unexpected change: %+v", change)
		}
	default:
		t.Fatalf("change was not published before ReverseClaim returned")
	}

	if _, err := h.feed.SubscribeToGameChanges(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown game, got %v", err)
	}
}

func TestClaimService_SubscribersConvergeToFinalScoreboard(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g := h.game(t)
	players := []string{h.player(t, g.ID, "Ana").ID, h.player(t, g.ID, "Bo").ID, h.player(t, g.ID, "Cy").ID}
	toast := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Toast", BasePoints: 1, IsRepeatable: true})

	type viewer struct {
		view *realtime.View[int]
		sub  *realtime.Subscription
	}
	total := func(ctx context.Context) (int, error) {
		board, err := h.scoreboard.GetScoreboard(ctx, g.ID)
		if err != nil {
			return 0, err
		}
		sum := 0
		for _, row := range board {
			sum += row.TotalPoints
		}
		return sum, nil
	}

	viewers := make([]viewer, 3)
	for i := range viewers {
		sub, err := h.feed.SubscribeToGameChanges(ctx, g.ID)
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		viewers[i] = viewer{view: realtime.NewView(total), sub: sub}
		go func(v viewer) { _ = v.view.Run(ctx, v.sub.C()) }(viewers[i])
	}

	var wg sync.WaitGroup
	for _, playerID := range players {
		wg.Add(1)
		go func(playerID string) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if _, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: playerID, ChallengeID: toast.ID}); err != nil {
					t.Errorf("submit: %v", err)
				}
			}
		}(playerID)
	}
	wg.Wait()

	want, _ := total(ctx)
	deadline := time.Now().Add(2 * time.Second)
	for i, v := range viewers {
		for {
			got, _ := v.view.Current()
			if got == want {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("viewer %d stuck at %d, want %d", i, got, want)
			}
			time.Sleep(5 * time.Millisecond)
		}
		v.sub.Close()
	}
	if want != 60 {
		t.Fatalf("expected 60 points, got %d", want)
	}
}

func TestClaimService_PlayerClaimStatus(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	g := h.game(t)
	ana := h.player(t, g.ID, "Ana")
	pool := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Pool", BasePoints: 2, BonusPoints: intPtr(2), SortOrder: 1})
	toast := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Toast", BasePoints: 1, IsRepeatable: true, SortOrder: 2})

	for _, in := range []SubmitClaimInput{
		{GameID: g.ID, PlayerID: ana.ID, ChallengeID: pool.ID, Kind: "base"},
		{GameID: g.ID, PlayerID: ana.ID, ChallengeID: toast.ID},
	} {
		if _, err := h.claims.SubmitClaim(ctx, in); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	status, err := h.claims.PlayerClaimStatus(ctx, g.ID, ana.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(status))
	}
	if s := status[0]; s.Challenge.ID != pool.ID || s.BaseCount != 1 || s.CanClaimBase || !s.CanClaimBonus {
		t.Fatalf("unexpected pool status: %+v", s)
	}
	if s := status[1]; s.Challenge.ID != toast.ID || s.BaseCount != 1 || !s.CanClaimBase || s.CanClaimBonus {
		t.Fatalf("unexpected toast status: %+v", s)
	}

	if _, err := h.claims.PlayerClaimStatus(ctx, g.ID, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown player, got %v", err)
	}
}

func TestClaimService_ListClaimsFiltersByPlayer(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	g := h.game(t)
	ana := h.player(t, g.ID, "Ana")
	bo := h.player(t, g.ID, "Bo")
	c := h.challenge(t, ChallengeInput{GameID: g.ID, Title: "Toast", BasePoints: 1, IsRepeatable: true})

	for i := 0; i < 4; i++ {
		playerID := ana.ID
		if i%2 == 1 {
			playerID = bo.ID
		}
		if _, err := h.claims.SubmitClaim(ctx, SubmitClaimInput{GameID: g.ID, PlayerID: playerID, ChallengeID: c.ID}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	events, err := h.claims.ListClaims(ctx, ListClaimsInput{GameID: g.ID, PlayerID: bo.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for bo, got %d", len(events))
	}
	for _, e := range events {
		if e.PlayerID != bo.ID {
			t.Fatalf("unexpected event %s", fmt.Sprint(e))
		}
	}
	if !events[0].CreatedAt.After(events[1].CreatedAt) {
		t.Fatalf("expected newest first")
	}
}
