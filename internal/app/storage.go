package app

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/claim-ledger/internal/config"
	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/game"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
	"github.com/riskibarqy/claim-ledger/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/claim-ledger/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/claim-ledger/internal/infrastructure/repository/notify"
	"github.com/riskibarqy/claim-ledger/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/claim-ledger/internal/platform/cache"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
)

const dbPingTimeout = 5 * time.Second

// Repositories is the storage seen by the services. Player, challenge and
// claim writes are already wrapped to publish ledger changes.
type Repositories struct {
	Games      game.Repository
	Players    player.Repository
	Challenges challenge.Repository
	Claims     claim.Repository

	// Cache is nil when caching is disabled.
	Cache basecache.Purger

	close func() error
}

func (r *Repositories) Close() error {
	if r == nil || r.close == nil {
		return nil
	}
	return r.close()
}

// OpenRepositories builds the configured storage driver and decorates it.
func OpenRepositories(ctx context.Context, cfg config.Config, publisher claim.Publisher, logger *logging.Logger) (*Repositories, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		games      game.Repository
		players    player.Repository
		challenges challenge.Repository
		claims     claim.Repository
		closeFn    func() error
	)

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		games = postgres.NewGameRepository(db)
		players = postgres.NewPlayerRepository(db)
		challenges = postgres.NewChallengeRepository(db)
		claims = postgres.NewClaimRepository(db)
		closeFn = db.Close
		logger.Info("storage ready", "driver", cfg.StorageDriver, "database", parsePostgresDSN(cfg.DBURL, false).database)
	default:
		store := memory.NewStore()
		games = memory.NewGameRepository(store)
		players = memory.NewPlayerRepository(store)
		challenges = memory.NewChallengeRepository(store)
		claims = memory.NewClaimRepository(store)
		logger.Info("storage ready", "driver", config.StorageMemory)
	}

	repos := &Repositories{
		Games:      games,
		Players:    notify.NewPlayerRepository(players, publisher),
		Challenges: notify.NewChallengeRepository(challenges, publisher),
		Claims:     notify.NewClaimRepository(claims, publisher),
		close:      closeFn,
	}
	if cfg.CacheEnabled {
		cached := cache.NewGameRepository(games, cfg.CacheTTL)
		repos.Games = cached
		repos.Cache = cached.Cache()
	}

	return repos, nil
}

func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := parsePostgresDSN(cfg.DBURL, cfg.DBBinaryParameters)

	db, err := otelsqlx.Open("postgres", dsn.conn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dsn.database),
		otelsql.WithQueryFormatter(compactQuery),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}
