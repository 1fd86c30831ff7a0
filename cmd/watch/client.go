package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	ws "github.com/coder/websocket"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
	"github.com/riskibarqy/claim-ledger/internal/realtime"
)

const (
	initialReconnectDelay = 250 * time.Millisecond
	maxReconnectDelay     = 10 * time.Second
	maxResponseBytes      = 1 << 20
)

type standing struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	TotalPoints int    `json:"total_points"`
	ClaimCount  int    `json:"claim_count"`
}

type scoreboardEnvelope struct {
	Data  []standing `json:"data"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client follows one game's scoreboard over the HTTP API.
type Client struct {
	baseURL    string
	gameID     string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewClient(baseURL, gameID string, httpClient *http.Client, logger *logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		gameID:     gameID,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) FetchScoreboard(ctx context.Context) ([]standing, error) {
	endpoint := c.baseURL + "/v1/games/" + url.PathEscape(c.gameID) + "/scoreboard"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build scoreboard request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scoreboard: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read scoreboard: %w", err)
	}

	var env scoreboardEnvelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode scoreboard (status %d): %w", resp.StatusCode, err)
	}
	if env.Error != nil {
		return nil, fmt.Errorf("scoreboard request failed: %d %s", env.Error.Code, env.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoreboard request failed: status %d", resp.StatusCode)
	}

	return env.Data, nil
}

func (c *Client) changesURL() string {
	u := c.baseURL + "/v1/games/" + url.PathEscape(c.gameID) + "/changes"
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// reconnectBackoff doubles the wait after each failed dial and starts over
// once a stream was established.
type reconnectBackoff struct {
	next time.Duration
}

func (b *reconnectBackoff) wait(connected bool) time.Duration {
	if connected || b.next == 0 {
		b.next = initialReconnectDelay
	}
	d := b.next
	b.next = min(b.next*2, maxReconnectDelay)
	return d
}

// Follow keeps view in step with the game until ctx ends, reconnecting
// with backoff whenever the stream drops.
func (c *Client) Follow(ctx context.Context, view *realtime.View[[]standing]) error {
	var backoff reconnectBackoff
	for {
		connected, err := c.followOnce(ctx, view)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := backoff.wait(connected)
		if err != nil {
			c.logger.Warn("change stream interrupted", "error", err, "retry_in", delay.String())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// followOnce reports whether the dial succeeded along with the error that
// ended the stream.
func (c *Client) followOnce(ctx context.Context, view *realtime.View[[]standing]) (bool, error) {
	conn, _, err := ws.Dial(ctx, c.changesURL(), nil)
	if err != nil {
		return false, fmt.Errorf("dial change stream: %w", err)
	}
	defer conn.CloseNow()

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes := make(chan claim.Change, realtime.DefaultBufferSize)
	readErr := make(chan error, 1)
	go func() {
		defer close(changes)
		readErr <- readFrames(streamCtx, conn, changes)
	}()

	if err := view.Run(streamCtx, changes); err != nil && !errors.Is(err, context.Canceled) {
		return true, err
	}

	cancel()
	if err := <-readErr; err != nil && !errors.Is(err, context.Canceled) {
		return true, err
	}
	return true, nil
}

// readFrames forwards every frame as a notification. Sync frames carry no
// change, so a placeholder is sent to trigger a full fetch.
func readFrames(ctx context.Context, conn *ws.Conn, out chan<- claim.Change) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ws.CloseStatus(err) == ws.StatusNormalClosure || ws.CloseStatus(err) == ws.StatusGoingAway {
				return nil
			}
			return err
		}

		frame, err := realtime.DecodeFrame(data)
		if err != nil {
			return fmt.Errorf("decode frame: %w", err)
		}

		change := claim.Change{}
		if frame.Change != nil {
			change = *frame.Change
		}
		select {
		case out <- change:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
