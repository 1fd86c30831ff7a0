package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-co-op/gocron/v2"

	"github.com/riskibarqy/claim-ledger/internal/config"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/infrastructure/repository/notify"
	"github.com/riskibarqy/claim-ledger/internal/infrastructure/webhook"
	"github.com/riskibarqy/claim-ledger/internal/interfaces/httpapi"
	"github.com/riskibarqy/claim-ledger/internal/observability"
	idgen "github.com/riskibarqy/claim-ledger/internal/platform/id"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
	"github.com/riskibarqy/claim-ledger/internal/platform/resilience"
	"github.com/riskibarqy/claim-ledger/internal/realtime"
	"github.com/riskibarqy/claim-ledger/internal/usecase"
)

// App wires storage and the change hub to the HTTP server.
type App struct {
	cfg     config.Config
	logger  *logging.Logger
	hub     *realtime.Hub
	repos   *Repositories
	webhook *webhook.Publisher
	server  *http.Server
	runtime *observability.Runtime
	jobs    gocron.Scheduler
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg config.Config) *logging.Logger {
	var logger *logging.Logger
	if cfg.LogFormat == config.LogFormatConsole {
		logger = logging.NewConsole(cfg.LogLevel)
	} else {
		logger = logging.NewJSON(cfg.LogLevel)
	}
	return logger.With("service", cfg.ServiceName, "env", cfg.AppEnv)
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	obs, err := observability.Setup(cfg, logger)
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(cfg.RealtimeBufferSize, logger.Named("realtime"))
	var (
		publisher claim.Publisher = hub
		sink      *webhook.Publisher
	)
	if cfg.WebhookURL != "" {
		sink, err = webhook.NewPublisher(webhook.Config{
			URL:        cfg.WebhookURL,
			Token:      cfg.WebhookToken,
			Timeout:    cfg.WebhookTimeout,
			BufferSize: cfg.WebhookBufferSize,
			Retries:    cfg.WebhookRetries,
			Circuit: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenMax,
			},
		}, logger.Named("webhook"))
		if err != nil {
			_ = obs.Shutdown(ctx)
			return nil, err
		}
		publisher = notify.NewFanout(hub, sink)
		logger.Info("change webhook enabled", "retries", cfg.WebhookRetries, "circuit", cfg.WebhookCircuitEnabled)
	}

	repos, err := OpenRepositories(ctx, cfg, publisher, logger)
	if err != nil {
		if sink != nil {
			_ = sink.Close(ctx)
		}
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	gameSvc := usecase.NewGameService(repos.Games, ids, logger)
	playerSvc := usecase.NewPlayerService(repos.Games, repos.Players, ids, logger)
	challengeSvc := usecase.NewChallengeService(repos.Games, repos.Challenges, ids, logger).
		WithImportWorkers(cfg.ImportWorkers)
	claimSvc := usecase.NewClaimService(repos.Games, repos.Players, repos.Challenges, repos.Claims, ids, logger)
	scoreboardSvc := usecase.NewScoreboardService(repos.Games, repos.Players, repos.Challenges, repos.Claims, logger)
	changeFeedSvc := usecase.NewChangeFeedService(repos.Games, hub)

	handler := httpapi.NewHandler(gameSvc, playerSvc, challengeSvc, claimSvc, scoreboardSvc, changeFeedSvc, logger).
		WithPingInterval(cfg.RealtimePingInterval)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterOptions{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MutationTimeout:    cfg.MutationTimeout,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		hub:     hub,
		repos:   repos,
		webhook: sink,
		server:  server,
		runtime: obs,
	}, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP until ctx is cancelled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.JobsEnabled {
		jobs, err := StartJobs(JobOptions{
			CachePurgeInterval: a.cfg.JobCachePurgeInterval,
			HubStatsInterval:   a.cfg.JobHubStatsInterval,
		}, a.repos.Cache, a.hub, a.logger.Named("jobs"))
		if err != nil {
			return err
		}
		a.jobs = jobs
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.cfg.HTTPAddr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
	defer cancel()

	return errors.Join(runErr, a.Shutdown(shutdownCtx))
}

// Shutdown stops accepting requests, ends change streams and releases storage.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	// Streams are hijacked connections that http.Server.Shutdown does not wait for.
	a.hub.Close()
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("graceful shutdown: %w", err))
	}
	if a.webhook != nil {
		if err := a.webhook.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.jobs != nil {
		if err := a.jobs.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("stop jobs: %w", err))
		}
	}
	if err := a.repos.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	if err := a.runtime.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("http server stopped")
	return errors.Join(errs...)
}
