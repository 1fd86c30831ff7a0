package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
	"github.com/riskibarqy/claim-ledger/internal/infrastructure/repository/memory"
)

type recordingPublisher struct {
	mu      sync.Mutex
	changes []claim.Change
}

func (p *recordingPublisher) Publish(_ context.Context, change claim.Change) {
	p.mu.Lock()
	p.changes = append(p.changes, change)
	p.mu.Unlock()
}

func (p *recordingPublisher) all() []claim.Change {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]claim.Change(nil), p.changes...)
}

func setup(t *testing.T) (*memory.Store, *recordingPublisher) {
	t.Helper()

	store := memory.NewStore()
	ctx := context.Background()
	if _, err := memory.NewGameRepository(store).Create(ctx, game.Game{ID: "g1", Name: "Friday", Status: game.StatusActive}); err != nil {
		t.Fatalf("create game: %v", err)
	}
	if _, err := memory.NewPlayerRepository(store).Create(ctx, player.Player{ID: "ana", GameID: "g1", Name: "Ana"}); err != nil {
		t.Fatalf("create player: %v", err)
	}
	if _, err := memory.NewChallengeRepository(store).Create(ctx, challenge.Challenge{ID: "pool", GameID: "g1", Title: "Pool", BasePoints: 2, IsActive: true}); err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	return store, &recordingPublisher{}
}

func TestClaimRepository_PublishesOnSuccessOnly(t *testing.T) {
	t.Parallel()

	store, pub := setup(t)
	repo := NewClaimRepository(memory.NewClaimRepository(store), pub)
	ctx := context.Background()

	e := claim.Event{ID: "e1", GameID: "g1", PlayerID: "ana", ChallengeID: "pool", Kind: claim.KindBase, Points: 2, ActorID: "ana"}
	if _, err := repo.Append(ctx, e); err != nil {
		t.Fatalf("append: %v", err)
	}
	e.ID = "e2"
	if _, err := repo.Append(ctx, e); !errors.Is(err, claim.ErrDuplicateClaim) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if _, err := repo.Remove(ctx, "g1", "e1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := repo.Remove(ctx, "g1", "e1"); !errors.Is(err, claim.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}

	changes := pub.all()
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %+v", changes)
	}
	if changes[0].Kind != claim.ChangeInsert || changes[0].EventID != "e1" || changes[0].GameID != "g1" {
		t.Fatalf("unexpected insert change: %+v", changes[0])
	}
	if changes[1].Kind != claim.ChangeDelete || changes[1].Reason != claim.ReasonReversed {
		t.Fatalf("unexpected delete change: %+v", changes[1])
	}
}

func TestCascadingDeletesPublish(t *testing.T) {
	t.Parallel()

	store, pub := setup(t)
	ctx := context.Background()
	players := NewPlayerRepository(memory.NewPlayerRepository(store), pub)
	challenges := NewChallengeRepository(memory.NewChallengeRepository(store), pub)

	if deleted, err := players.Delete(ctx, "g1", "missing"); err != nil || deleted {
		t.Fatalf("expected no-op delete, got deleted=%v err=%v", deleted, err)
	}
	if deleted, err := players.Delete(ctx, "g1", "ana"); err != nil || !deleted {
		t.Fatalf("delete player: deleted=%v err=%v", deleted, err)
	}
	if deleted, err := challenges.Delete(ctx, "g1", "pool"); err != nil || !deleted {
		t.Fatalf("delete challenge: deleted=%v err=%v", deleted, err)
	}

	changes := pub.all()
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %+v", changes)
	}
	if changes[0].Reason != claim.ReasonPlayerRemoved || changes[1].Reason != claim.ReasonChallengeRemoved {
		t.Fatalf("unexpected reasons: %+v", changes)
	}
}

func TestFanout_PublishesToEveryPublisher(t *testing.T) {
	first, second := &recordingPublisher{}, &recordingPublisher{}
	fanout := NewFanout(first, nil, second)
	if len(fanout) != 2 {
		t.Fatalf("expected nil publisher to be skipped, got %d", len(fanout))
	}

	fanout.Publish(context.Background(), claim.Change{GameID: "g1", Kind: claim.ChangeInsert, EventID: "e1"})

	for i, p := range []*recordingPublisher{first, second} {
		if got := p.all(); len(got) != 1 || got[0].EventID != "e1" {
			t.Fatalf("publisher %d received %+v", i, got)
		}
	}
}
