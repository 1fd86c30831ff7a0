package scoreboard

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
)

var t0 = time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)

func testPlayers() []player.Player {
	return []player.Player{
		{ID: "p-bo", Name: "Bo", JoinedAt: t0.Add(time.Minute)},
		{ID: "p-ana", Name: "Ana", JoinedAt: t0},
		{ID: "p-cy", Name: "Cy", JoinedAt: t0.Add(2 * time.Minute)},
	}
}

func TestCompute_IncludesZeroScorePlayersInJoinOrder(t *testing.T) {
	t.Parallel()

	got := Compute(testPlayers(), nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(got))
	}
	for i, want := range []string{"p-ana", "p-bo", "p-cy"} {
		if got[i].PlayerID != want || got[i].TotalPoints != 0 || got[i].Rank != 1 {
			t.Fatalf("unexpected standing at %d: %+v", i, got[i])
		}
	}
}

func TestCompute_RanksByTotalWithCompetitionRanking(t *testing.T) {
	t.Parallel()

	events := []claim.Event{
		{ID: "e1", PlayerID: "p-cy", Points: 5},
		{ID: "e2", PlayerID: "p-bo", Points: 2},
		{ID: "e3", PlayerID: "p-ana", Points: 2},
		{ID: "e4", PlayerID: "p-ghost", Points: 100},
	}

	got := Compute(testPlayers(), events)

	wantOrder := []string{"p-cy", "p-ana", "p-bo"}
	wantRanks := []int{1, 2, 2}
	for i := range wantOrder {
		if got[i].PlayerID != wantOrder[i] || got[i].Rank != wantRanks[i] {
			t.Fatalf("unexpected standings: %+v", got)
		}
	}
	if got[0].TotalPoints != 5 || got[0].ClaimCount != 1 {
		t.Fatalf("unexpected leader totals: %+v", got[0])
	}
}

func TestCompute_MatchesScenarioA(t *testing.T) {
	t.Parallel()

	players := []player.Player{
		{ID: "ana", Name: "Ana", JoinedAt: t0},
		{ID: "bo", Name: "Bo", JoinedAt: t0.Add(time.Second)},
	}
	events := []claim.Event{
		{ID: "e1", PlayerID: "ana", ChallengeID: "c1", Kind: claim.KindBase, Points: 2},
		{ID: "e2", PlayerID: "ana", ChallengeID: "c1", Kind: claim.KindBonus, Points: 2},
	}

	got := Compute(players, events)
	if got[0].PlayerID != "ana" || got[0].TotalPoints != 4 || got[0].Rank != 1 {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[1].PlayerID != "bo" || got[1].TotalPoints != 0 || got[1].Rank != 2 {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
}

func TestTally_EquivalentToCompute(t *testing.T) {
	t.Parallel()

	players := testPlayers()
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		tally := NewTally()
		live := map[string]claim.Event{}

		for step := 0; step < 200; step++ {
			if len(live) > 0 && rng.Intn(3) == 0 {
				for id := range live {
					tally.Remove(id)
					delete(live, id)
					break
				}
				continue
			}
			e := claim.Event{
				ID:       fmt.Sprintf("r%d-e%d", round, step),
				PlayerID: players[rng.Intn(len(players))].ID,
				Points:   rng.Intn(6),
			}
			tally.Add(e)
			live[e.ID] = e
		}

		events := make([]claim.Event, 0, len(live))
		for _, e := range live {
			events = append(events, e)
		}

		want := Compute(players, events)
		got := tally.Standings(players)
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("round %d: tally diverged from compute\nwant: %+v\ngot:  %+v", round, want, got)
		}
	}
}

func TestTally_AddIsIdempotentPerEvent(t *testing.T) {
	t.Parallel()

	tally := NewTally()
	e := claim.Event{ID: "e1", PlayerID: "p-ana", Points: 3}
	if !tally.Add(e) {
		t.Fatalf("expected first add to apply")
	}
	if tally.Add(e) {
		t.Fatalf("expected second add to be ignored")
	}
	if tally.Remove("missing") {
		t.Fatalf("expected unknown remove to be ignored")
	}

	got := tally.Standings(testPlayers())
	if got[0].PlayerID != "p-ana" || got[0].TotalPoints != 3 {
		t.Fatalf("unexpected standings: %+v", got)
	}
}

func TestTally_DropPlayer(t *testing.T) {
	t.Parallel()

	tally := NewTally()
	tally.Add(claim.Event{ID: "e1", PlayerID: "p-bo", Points: 3})
	tally.Add(claim.Event{ID: "e2", PlayerID: "p-ana", Points: 1})
	tally.DropPlayer("p-bo")

	if tally.Len() != 1 {
		t.Fatalf("expected 1 remaining event, got %d", tally.Len())
	}
}

func TestTally_DropChallenge(t *testing.T) {
	t.Parallel()

	events := []claim.Event{
		{ID: "e1", PlayerID: "p-bo", ChallengeID: "c-pool", Points: 3},
		{ID: "e2", PlayerID: "p-bo", ChallengeID: "c-dart", Points: 2},
		{ID: "e3", PlayerID: "p-ana", ChallengeID: "c-pool", Points: 1},
	}
	tally := NewTally()
	for _, e := range events {
		tally.Add(e)
	}
	tally.DropChallenge("c-pool")

	if tally.Len() != 1 {
		t.Fatalf("expected 1 remaining event, got %d", tally.Len())
	}
	want := Compute(testPlayers(), events[1:2])
	got := tally.Standings(testPlayers())
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("tally diverged after drop\nwant: %+v\ngot:  %+v", want, got)
	}
}
