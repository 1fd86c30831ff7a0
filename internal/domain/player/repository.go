package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	// Create stores p and returns it with JoinedAt set. ErrNameTaken when the name collides.
	Create(ctx context.Context, p Player) (Player, error)
	GetByID(ctx context.Context, gameID, playerID string) (Player, bool, error)
	// ListByGame returns players in join order.
	ListByGame(ctx context.Context, gameID string) ([]Player, error)
	// Delete removes the player together with every claim event it owns.
	Delete(ctx context.Context, gameID, playerID string) (bool, error)
}
