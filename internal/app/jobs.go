package app

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/riskibarqy/claim-ledger/internal/platform/cache"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
	"github.com/riskibarqy/claim-ledger/internal/realtime"
)

// JobOptions controls the periodic maintenance jobs. A zero interval
// disables the matching job.
type JobOptions struct {
	CachePurgeInterval time.Duration
	HubStatsInterval   time.Duration
}

// StartJobs schedules cache purging and hub statistics logging. The returned
// scheduler must be shut down by the caller.
func StartJobs(opts JobOptions, store cache.Purger, hub *realtime.Hub, logger *logging.Logger) (gocron.Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	if store != nil && opts.CachePurgeInterval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(opts.CachePurgeInterval),
			gocron.NewTask(func() { purgeCache(store, logger) }),
			gocron.WithName("cache-purge"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("schedule cache purge: %w", err)
		}
	}

	if hub != nil && opts.HubStatsInterval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(opts.HubStatsInterval),
			gocron.NewTask(func() { logHubStats(hub, logger) }),
			gocron.WithName("hub-stats"),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("schedule hub stats: %w", err)
		}
	}

	sched.Start()
	logger.Info("jobs scheduler started", "jobs", len(sched.Jobs()))

	return sched, nil
}

func purgeCache(store cache.Purger, logger *logging.Logger) {
	removed := store.PurgeExpired()
	if removed == 0 {
		return
	}
	stats := store.Stats()
	logger.Debug("cache purged",
		"removed", removed,
		"remaining", stats.Entries,
		"hits", stats.Hits,
		"misses", stats.Misses,
	)
}

func logHubStats(hub *realtime.Hub, logger *logging.Logger) {
	stats := hub.Stats()
	logger.Info("realtime hub stats",
		"games", stats.Games,
		"subscribers", stats.Subscribers,
		"published", stats.Published,
		"dropped", stats.Dropped,
	)
}
