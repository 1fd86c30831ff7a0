package scoreboard

import (
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
)

// Tally keeps running totals for a game so a scoreboard can be maintained
// from individual ledger inserts and deletes. Not safe for concurrent use.
type Tally struct {
	events map[string]claim.Event
	points map[string]int
	counts map[string]int
}

func NewTally() *Tally {
	return &Tally{
		events: make(map[string]claim.Event),
		points: make(map[string]int),
		counts: make(map[string]int),
	}
}

// Add records e. Adding an event ID twice is a no-op.
func (t *Tally) Add(e claim.Event) bool {
	if _, ok := t.events[e.ID]; ok {
		return false
	}
	t.events[e.ID] = e
	t.points[e.PlayerID] += e.Points
	t.counts[e.PlayerID]++
	return true
}

// Remove undoes a previously added event. Unknown IDs are ignored.
func (t *Tally) Remove(eventID string) bool {
	e, ok := t.events[eventID]
	if !ok {
		return false
	}
	delete(t.events, eventID)
	t.points[e.PlayerID] -= e.Points
	t.counts[e.PlayerID]--
	if t.counts[e.PlayerID] == 0 {
		delete(t.points, e.PlayerID)
		delete(t.counts, e.PlayerID)
	}
	return true
}

// DropPlayer forgets every event of playerID, mirroring a cascade delete.
func (t *Tally) DropPlayer(playerID string) {
	for id, e := range t.events {
		if e.PlayerID == playerID {
			delete(t.events, id)
		}
	}
	delete(t.points, playerID)
	delete(t.counts, playerID)
}

// DropChallenge forgets every event of challengeID, mirroring a cascade delete.
func (t *Tally) DropChallenge(challengeID string) {
	for id, e := range t.events {
		if e.ChallengeID == challengeID {
			t.Remove(id)
		}
	}
}

func (t *Tally) Len() int {
	return len(t.events)
}

func (t *Tally) Standings(players []player.Player) []Standing {
	out, _ := seed(players)
	for i := range out {
		out[i].TotalPoints = t.points[out[i].PlayerID]
		out[i].ClaimCount = t.counts[out[i].PlayerID]
	}

	rank(out)
	return out
}
