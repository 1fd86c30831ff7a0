package challenge

import "context"

// Repository describes challenge persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, c Challenge) (Challenge, error)
	GetByID(ctx context.Context, gameID, challengeID string) (Challenge, bool, error)
	ListByGame(ctx context.Context, filter Filter) ([]Challenge, error)
	// Update replaces the mutable fields. ErrRepeatableConflict when turning
	// repeatable off would leave duplicate claims behind.
	Update(ctx context.Context, c Challenge) (Challenge, bool, error)
	SetActive(ctx context.Context, gameID, challengeID string, active bool) (Challenge, bool, error)
	// Delete removes the challenge together with every claim event against it.
	Delete(ctx context.Context, gameID, challengeID string) (bool, error)
}
