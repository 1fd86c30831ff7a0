package httpapi

import (
	"time"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
	"github.com/riskibarqy/claim-ledger/internal/domain/scoreboard"
	"github.com/riskibarqy/claim-ledger/internal/usecase"
)

type createGameRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

type setGameStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active ended"`
}

type addPlayerRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type challengeRequest struct {
	Title        string `json:"title" validate:"required,max=120"`
	Description  string `json:"description" validate:"max=1000"`
	BasePoints   int    `json:"base_points" validate:"gte=0"`
	BonusPoints  *int   `json:"bonus_points" validate:"omitempty,gte=0"`
	Category     string `json:"category" validate:"max=60"`
	IsActive     *bool  `json:"is_active"`
	IsRepeatable bool   `json:"is_repeatable"`
	SortOrder    int    `json:"sort_order"`
}

func (req challengeRequest) toInput(gameID string) usecase.ChallengeInput {
	return usecase.ChallengeInput{
		GameID:       gameID,
		Title:        req.Title,
		Description:  req.Description,
		BasePoints:   req.BasePoints,
		BonusPoints:  req.BonusPoints,
		Category:     req.Category,
		IsActive:     req.IsActive,
		IsRepeatable: req.IsRepeatable,
		SortOrder:    req.SortOrder,
	}
}

type setChallengeActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type submitClaimRequest struct {
	PlayerID    string `json:"player_id" validate:"required"`
	ChallengeID string `json:"challenge_id" validate:"required"`
	Kind        string `json:"kind"`
	ActorID     string `json:"actor_id"`
}

type gameDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func gameToDTO(g game.Game) gameDTO {
	return gameDTO{
		ID:        g.ID,
		Name:      g.Name,
		Status:    string(g.Status),
		CreatedAt: formatTime(g.CreatedAt),
	}
}

type playerDTO struct {
	ID       string `json:"id"`
	GameID   string `json:"game_id"`
	Name     string `json:"name"`
	JoinedAt string `json:"joined_at"`
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:       p.ID,
		GameID:   p.GameID,
		Name:     p.Name,
		JoinedAt: formatTime(p.JoinedAt),
	}
}

type challengeDTO struct {
	ID           string `json:"id"`
	GameID       string `json:"game_id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	BasePoints   int    `json:"base_points"`
	BonusPoints  *int   `json:"bonus_points,omitempty"`
	Category     string `json:"category,omitempty"`
	IsActive     bool   `json:"is_active"`
	IsRepeatable bool   `json:"is_repeatable"`
	SortOrder    int    `json:"sort_order"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func challengeToDTO(c challenge.Challenge) challengeDTO {
	return challengeDTO{
		ID:           c.ID,
		GameID:       c.GameID,
		Title:        c.Title,
		Description:  c.Description,
		BasePoints:   c.BasePoints,
		BonusPoints:  c.BonusPoints,
		Category:     c.Category,
		IsActive:     c.IsActive,
		IsRepeatable: c.IsRepeatable,
		SortOrder:    c.SortOrder,
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
	}
}

type claimEventDTO struct {
	ID          string `json:"id"`
	GameID      string `json:"game_id"`
	PlayerID    string `json:"player_id"`
	ChallengeID string `json:"challenge_id"`
	Kind        string `json:"kind"`
	Points      int    `json:"points"`
	ActorID     string `json:"actor_id"`
	CreatedAt   string `json:"created_at"`
}

func claimEventToDTO(e claim.Event) claimEventDTO {
	return claimEventDTO{
		ID:          e.ID,
		GameID:      e.GameID,
		PlayerID:    e.PlayerID,
		ChallengeID: e.ChallengeID,
		Kind:        string(e.Kind),
		Points:      e.Points,
		ActorID:     e.ActorID,
		CreatedAt:   formatTime(e.CreatedAt),
	}
}

type standingDTO struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	TotalPoints int    `json:"total_points"`
	ClaimCount  int    `json:"claim_count"`
}

func standingToDTO(s scoreboard.Standing) standingDTO {
	return standingDTO{
		Rank:        s.Rank,
		PlayerID:    s.PlayerID,
		PlayerName:  s.PlayerName,
		TotalPoints: s.TotalPoints,
		ClaimCount:  s.ClaimCount,
	}
}

type activityItemDTO struct {
	Claim          claimEventDTO `json:"claim"`
	PlayerName     string        `json:"player_name"`
	ChallengeTitle string        `json:"challenge_title"`
	ActorName      string        `json:"actor_name"`
}

type claimStatusDTO struct {
	Challenge     challengeDTO `json:"challenge"`
	BaseCount     int          `json:"base_count"`
	BonusCount    int          `json:"bonus_count"`
	CanClaimBase  bool         `json:"can_claim_base"`
	CanClaimBonus bool         `json:"can_claim_bonus"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
