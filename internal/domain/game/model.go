package game

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

const MaxNameLength = 80

// Game is one live session. Only its status changes after creation.
type Game struct {
	ID        string
	Name      string
	Status    Status
	CreatedAt time.Time
}

func (g Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("game id is required")
	}
	name := strings.TrimSpace(g.Name)
	if name == "" {
		return fmt.Errorf("game name is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return fmt.Errorf("game name must be at most %d characters", MaxNameLength)
	}
	if _, err := ParseStatus(string(g.Status)); err != nil {
		return err
	}

	return nil
}

func (g Game) IsActive() bool {
	return g.Status == StatusActive
}

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusActive:
		return StatusActive, nil
	case StatusEnded:
		return StatusEnded, nil
	default:
		return "", fmt.Errorf("invalid game status: %q", raw)
	}
}
