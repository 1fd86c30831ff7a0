package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
	"github.com/riskibarqy/claim-ledger/internal/realtime"
)

func main() {
	logger := logging.NewConsole(logging.LevelInfo).Named("watch")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watch failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, logger *logging.Logger) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	baseURL := fs.String("addr", "http://localhost:8080", "claim ledger base URL")
	gameID := fs.String("game", "", "game id to follow")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *gameID == "" {
		return errors.New("-game is required")
	}

	client := NewClient(*baseURL, *gameID, nil, logger)
	view := realtime.NewView(client.FetchScoreboard).OnUpdate(func(standings []standing) {
		render(out, standings)
	})

	return client.Follow(ctx, view)
}

func render(out io.Writer, standings []standing) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tPOINTS\tCLAIMS")
	for _, s := range standings {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", s.Rank, s.PlayerName, s.TotalPoints, s.ClaimCount)
	}
	_ = tw.Flush()
	fmt.Fprintln(out)
}
