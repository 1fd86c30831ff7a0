package player

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

const MaxNameLength = 50

// ErrNameTaken is returned by repositories when the folded name already exists in the game.
var ErrNameTaken = errors.New("player name already taken in this game")

// Player is a participant of a single game.
type Player struct {
	ID       string
	GameID   string
	Name     string
	JoinedAt time.Time
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.GameID == "" {
		return fmt.Errorf("player game id is required")
	}
	if NameKey(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if len([]rune(strings.TrimSpace(p.Name))) > MaxNameLength {
		return fmt.Errorf("player name must be at most %d characters", MaxNameLength)
	}

	return nil
}

// NameKey is the uniqueness key of a player name: trimmed, inner whitespace
// collapsed and Unicode case folded.
func NameKey(name string) string {
	collapsed := strings.Join(strings.Fields(name), " ")
	return cases.Fold().String(collapsed)
}
