package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
)

const defaultImportWorkers = 4

type ImportFailure struct {
	Index int
	Title string
	Err   error
}

type ImportCatalogResult struct {
	Created    int
	Failed     []ImportFailure
	DurationMs int64
}

// ImportCatalog creates every item of a challenge catalog in gameID. Items are
// independent: one invalid entry is reported in Failed and does not stop the rest.
func (s *ChallengeService) ImportCatalog(ctx context.Context, gameID string, items []ChallengeInput) (ImportCatalogResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.ImportCatalog",
		gameAttr(gameID),
		attribute.Int("ledger.catalog_size", len(items)),
	)
	defer span.End()

	g, err := loadGame(ctx, s.gameRepo, gameID)
	if err != nil {
		return ImportCatalogResult{}, err
	}
	if len(items) == 0 {
		return ImportCatalogResult{}, fmt.Errorf("%w: catalog is empty", ErrInvalidInput)
	}

	pool, err := ants.NewPool(s.importWorkers)
	if err != nil {
		return ImportCatalogResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	start := time.Now()
	var (
		mu      sync.Mutex
		result  ImportCatalogResult
		workers sync.WaitGroup
	)
	for i, item := range items {
		i, item := i, item
		item.GameID = g.ID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			_, createErr := s.CreateChallenge(ctx, item)

			mu.Lock()
			defer mu.Unlock()
			if createErr != nil {
				result.Failed = append(result.Failed, ImportFailure{Index: i, Title: item.Title, Err: createErr})
				return
			}
			result.Created++
		}); err != nil {
			workers.Done()
			workers.Wait()
			return ImportCatalogResult{}, fmt.Errorf("submit import task to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.Slice(result.Failed, func(a, b int) bool { return result.Failed[a].Index < result.Failed[b].Index })
	result.DurationMs = time.Since(start).Milliseconds()

	s.logger.InfoContext(ctx, "challenge catalog imported",
		"game_id", g.ID,
		"created", result.Created,
		"failed", len(result.Failed),
		"duration_ms", result.DurationMs,
	)
	return result, nil
}
