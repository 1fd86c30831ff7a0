package game

import "context"

// Repository describes game persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, g Game) (Game, error)
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	UpdateStatus(ctx context.Context, gameID string, status Status) (Game, bool, error)
}
