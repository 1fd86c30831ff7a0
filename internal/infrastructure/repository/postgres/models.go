package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
)

var (
	gameColumns      = []string{"id", "name", "status", "created_at"}
	playerColumns    = []string{"id", "game_id", "name", "joined_at"}
	challengeColumns = []string{
		"id", "game_id", "title", "description", "base_points", "bonus_points",
		"category", "is_active", "is_repeatable", "sort_order", "created_at", "updated_at",
	}
	claimColumns = []string{
		"id", "game_id", "player_id", "challenge_id", "kind", "points", "actor_id", "created_at",
	}
)

type gameTableModel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (m gameTableModel) toDomain() game.Game {
	return game.Game{
		ID:        m.ID,
		Name:      m.Name,
		Status:    game.Status(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

type playerTableModel struct {
	ID       string    `db:"id"`
	GameID   string    `db:"game_id"`
	Name     string    `db:"name"`
	JoinedAt time.Time `db:"joined_at"`
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:       m.ID,
		GameID:   m.GameID,
		Name:     m.Name,
		JoinedAt: m.JoinedAt,
	}
}

type challengeTableModel struct {
	ID           string         `db:"id"`
	GameID       string         `db:"game_id"`
	Title        string         `db:"title"`
	Description  sql.NullString `db:"description"`
	BasePoints   int            `db:"base_points"`
	BonusPoints  sql.NullInt64  `db:"bonus_points"`
	Category     sql.NullString `db:"category"`
	IsActive     bool           `db:"is_active"`
	IsRepeatable bool           `db:"is_repeatable"`
	SortOrder    int            `db:"sort_order"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (m challengeTableModel) toDomain() challenge.Challenge {
	return challenge.Challenge{
		ID:           m.ID,
		GameID:       m.GameID,
		Title:        m.Title,
		Description:  m.Description.String,
		BasePoints:   m.BasePoints,
		BonusPoints:  intPtr(m.BonusPoints),
		Category:     m.Category.String,
		IsActive:     m.IsActive,
		IsRepeatable: m.IsRepeatable,
		SortOrder:    m.SortOrder,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type claimTableModel struct {
	ID          string    `db:"id"`
	GameID      string    `db:"game_id"`
	PlayerID    string    `db:"player_id"`
	ChallengeID string    `db:"challenge_id"`
	Kind        string    `db:"kind"`
	Points      int       `db:"points"`
	ActorID     string    `db:"actor_id"`
	CreatedAt   time.Time `db:"created_at"`
}

func (m claimTableModel) toDomain() claim.Event {
	return claim.Event{
		ID:          m.ID,
		GameID:      m.GameID,
		PlayerID:    m.PlayerID,
		ChallengeID: m.ChallengeID,
		Kind:        claim.Kind(m.Kind),
		Points:      m.Points,
		ActorID:     m.ActorID,
		CreatedAt:   m.CreatedAt,
	}
}
