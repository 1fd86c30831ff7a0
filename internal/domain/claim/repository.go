package claim

import "context"

// Repository is the ledger store. Append and Remove are atomic; uniqueness of
// non-repeatable claims is decided here and nowhere else.
type Repository interface {
	// Append stores e and returns it with CreatedAt assigned.
	// ErrDuplicateClaim or ErrReferential on constraint violations.
	Append(ctx context.Context, e Event) (Event, error)
	// Remove deletes the event and returns it. ErrEventNotFound when it is already gone.
	Remove(ctx context.Context, gameID, eventID string) (Event, error)
	GetByID(ctx context.Context, gameID, eventID string) (Event, bool, error)
	ListByGame(ctx context.Context, filter Filter) ([]Event, error)
}

// Publisher receives ledger changes after they are committed. Publish must not block.
type Publisher interface {
	Publish(ctx context.Context, change Change)
}
