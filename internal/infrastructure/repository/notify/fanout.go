package notify

import (
	"context"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
)

// Fanout hands every change to each publisher in order. Nil entries are skipped.
type Fanout []claim.Publisher

func NewFanout(publishers ...claim.Publisher) Fanout {
	out := make(Fanout, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (f Fanout) Publish(ctx context.Context, change claim.Change) {
	for _, p := range f {
		p.Publish(ctx, change)
	}
}
