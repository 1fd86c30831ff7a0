package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/claim-ledger/internal/app"
	"github.com/riskibarqy/claim-ledger/internal/config"
	idgen "github.com/riskibarqy/claim-ledger/internal/platform/id"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
	"github.com/riskibarqy/claim-ledger/internal/realtime"
	"github.com/riskibarqy/claim-ledger/internal/usecase"
)

type catalogFile struct {
	GameName   string         `json:"game_name"`
	Challenges []catalogEntry `json:"challenges"`
}

type catalogEntry struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	BasePoints   int    `json:"base_points"`
	BonusPoints  *int   `json:"bonus_points"`
	Category     string `json:"category"`
	IsActive     *bool  `json:"is_active"`
	IsRepeatable bool   `json:"is_repeatable"`
	SortOrder    int    `json:"sort_order"`
}

func (e catalogEntry) toInput() usecase.ChallengeInput {
	return usecase.ChallengeInput{
		Title:        e.Title,
		Description:  e.Description,
		BasePoints:   e.BasePoints,
		BonusPoints:  e.BonusPoints,
		Category:     e.Category,
		IsActive:     e.IsActive,
		IsRepeatable: e.IsRepeatable,
		SortOrder:    e.SortOrder,
	}
}

func main() {
	logger := logging.NewConsole(logging.LevelInfo).Named("seed")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], logger); err != nil {
		logger.Error("seed failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, logger *logging.Logger) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	catalogPath := fs.String("catalog", "db/seed/challenges.json", "path to a JSON challenge catalog")
	gameID := fs.String("game", "", "existing game id; a new game is created when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("seeding in-memory storage; data is discarded on exit")
	}

	catalog, err := readCatalog(*catalogPath)
	if err != nil {
		return err
	}

	hub := realtime.NewHub(cfg.RealtimeBufferSize, logger)
	defer hub.Close()
	cfg.CacheEnabled = false
	repos, err := app.OpenRepositories(ctx, cfg, hub, logger)
	if err != nil {
		return err
	}
	defer repos.Close()

	ids := idgen.NewUUIDGenerator()
	games := usecase.NewGameService(repos.Games, ids, logger)
	challenges := usecase.NewChallengeService(repos.Games, repos.Challenges, ids, logger).
		WithImportWorkers(cfg.ImportWorkers)

	targetID := *gameID
	if targetID == "" {
		g, err := games.CreateGame(ctx, usecase.CreateGameInput{Name: catalog.GameName})
		if err != nil {
			return fmt.Errorf("create game: %w", err)
		}
		targetID = g.ID
		logger.Info("game created", "game_id", g.ID, "name", g.Name)
	}

	items := make([]usecase.ChallengeInput, 0, len(catalog.Challenges))
	for _, entry := range catalog.Challenges {
		items = append(items, entry.toInput())
	}

	result, err := challenges.ImportCatalog(ctx, targetID, items)
	if err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}
	for _, failure := range result.Failed {
		logger.Warn("catalog entry rejected", "index", failure.Index, "title", failure.Title, "error", failure.Err)
	}
	logger.Info("catalog imported",
		"game_id", targetID,
		"created", result.Created,
		"failed", len(result.Failed),
		"duration_ms", result.DurationMs,
	)

	if result.Created == 0 {
		return errors.New("no challenges were created")
	}
	return nil
}

func readCatalog(path string) (catalogFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return catalogFile{}, fmt.Errorf("read catalog: %w", err)
	}

	var catalog catalogFile
	if err := sonic.Unmarshal(raw, &catalog); err != nil {
		return catalogFile{}, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if catalog.GameName == "" {
		catalog.GameName = "Seeded game"
	}
	if len(catalog.Challenges) == 0 {
		return catalogFile{}, fmt.Errorf("catalog %s has no challenges", path)
	}

	return catalog, nil
}
