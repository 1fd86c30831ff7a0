package challenge

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 1000
)

// ErrRepeatableConflict is returned when a challenge cannot become
// non-repeatable because the ledger already holds duplicate claims for it.
var ErrRepeatableConflict = errors.New("challenge already has repeated claims")

// Challenge is a predefined task players claim points for.
type Challenge struct {
	ID           string
	GameID       string
	Title        string
	Description  string
	BasePoints   int
	BonusPoints  *int
	Category     string
	IsActive     bool
	IsRepeatable bool
	SortOrder    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c Challenge) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("challenge id is required")
	}
	if c.GameID == "" {
		return fmt.Errorf("challenge game id is required")
	}
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return fmt.Errorf("challenge title is required")
	}
	if len([]rune(title)) > MaxTitleLength {
		return fmt.Errorf("challenge title must be at most %d characters", MaxTitleLength)
	}
	if len([]rune(c.Description)) > MaxDescriptionLength {
		return fmt.Errorf("challenge description must be at most %d characters", MaxDescriptionLength)
	}
	if c.BasePoints < 0 {
		return fmt.Errorf("challenge base points must be >= 0")
	}
	if c.BonusPoints != nil && *c.BonusPoints < 0 {
		return fmt.Errorf("challenge bonus points must be >= 0")
	}

	return nil
}

func (c Challenge) HasBonus() bool {
	return c.BonusPoints != nil
}

// CategoryKey is the normalized category used for filtering ("Friday Night" -> "friday-night").
func (c Challenge) CategoryKey() string {
	return CategoryKey(c.Category)
}

func CategoryKey(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return ""
	}
	return slug.Make(category)
}

// Matches reports whether query occurs in the title or description, ignoring case.
func (c Challenge) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), query) ||
		strings.Contains(strings.ToLower(c.Description), query)
}

// Filter narrows ListByGame results. Zero value lists every challenge of the game.
type Filter struct {
	GameID     string
	ActiveOnly bool
}

// Less orders challenges by sort order, then creation time, then id.
func Less(a, b Challenge) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
