package scoreboard

import (
	"sort"
	"time"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
)

// Standing is one derived scoreboard row. Nothing here is persisted.
type Standing struct {
	Rank        int
	PlayerID    string
	PlayerName  string
	TotalPoints int
	ClaimCount  int
	JoinedAt    time.Time
}

// Compute folds a game's ledger into standings. Every player is listed, with
// zero when they have no events; events of unknown players are ignored.
// Ties keep join order and share a rank (1, 1, 3).
func Compute(players []player.Player, events []claim.Event) []Standing {
	out, index := seed(players)
	for _, e := range events {
		i, ok := index[e.PlayerID]
		if !ok {
			continue
		}
		out[i].TotalPoints += e.Points
		out[i].ClaimCount++
	}

	rank(out)
	return out
}

func seed(players []player.Player) ([]Standing, map[string]int) {
	ordered := append([]player.Player(nil), players...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].JoinedAt.Equal(ordered[j].JoinedAt) {
			return ordered[i].JoinedAt.Before(ordered[j].JoinedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	out := make([]Standing, 0, len(ordered))
	index := make(map[string]int, len(ordered))
	for _, p := range ordered {
		index[p.ID] = len(out)
		out = append(out, Standing{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			JoinedAt:   p.JoinedAt,
		})
	}
	return out, index
}

// rank expects rows in join order.
func rank(rows []Standing) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalPoints > rows[j].TotalPoints
	})
	for i := range rows {
		if i > 0 && rows[i].TotalPoints == rows[i-1].TotalPoints {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}
