package webhook

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
	"github.com/riskibarqy/claim-ledger/internal/platform/resilience"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultBufferSize = 256
	retryBaseDelay    = 200 * time.Millisecond
	maxErrorBodyBytes = 4096

	HeaderEvent    = "X-Ledger-Event"
	HeaderAttempt  = "X-Ledger-Attempt"
	HeaderDelivery = "X-Ledger-Delivery"
)

var errTransient = crerr.New("webhook transient failure")

var tracer = otel.Tracer("claim-ledger/internal/infrastructure/webhook")

type Config struct {
	URL        string
	Token      string
	Timeout    time.Duration
	BufferSize int
	Retries    int
	Circuit    resilience.CircuitBreakerConfig
}

// Publisher forwards ledger changes to an HTTP endpoint in the background.
// Delivery is best effort: changes are dropped when the queue is full, after
// the last retry fails, and while the circuit breaker is open.
type Publisher struct {
	client  *http.Client
	url     string
	token   string
	retries int
	logger  *logging.Logger
	// breaker is nil when the circuit is disabled.
	breaker *resilience.CircuitBreaker

	mu     sync.RWMutex
	closed bool
	queue  chan claim.Change
	done   chan struct{}

	delivered atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
	rejected  atomic.Uint64
	sequence  atomic.Uint64
}

// Stats counts changes by outcome. Rejected changes were refused by the open
// circuit and are not part of Failed.
type Stats struct {
	Delivered uint64
	Failed    uint64
	Dropped   uint64
	Rejected  uint64
}

func NewPublisher(cfg Config, logger *logging.Logger) (*Publisher, error) {
	target, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid WEBHOOK_URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	if logger == nil {
		logger = logging.Default()
	}

	p := &Publisher{
		client:  &http.Client{Timeout: timeout},
		url:     target,
		token:   strings.TrimSpace(cfg.Token),
		retries: max(cfg.Retries, 0),
		logger:  logger,
		queue:   make(chan claim.Change, size),
		done:    make(chan struct{}),
	}
	if cfg.Circuit.Enabled {
		p.breaker = resilience.NewCircuitBreaker(cfg.Circuit)
	}
	go p.run()

	return p, nil
}

// Publish never blocks.
func (p *Publisher) Publish(_ context.Context, change claim.Change) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.queue <- change:
	default:
		p.dropped.Add(1)
		p.logger.Warn("webhook queue full, change dropped", "game_id", change.GameID, "kind", change.Kind)
	}
}

// Close stops accepting changes and waits for queued ones to be delivered
// or for ctx to end.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("webhook drain: %w", ctx.Err())
	}
}

func (p *Publisher) Stats() Stats {
	return Stats{
		Delivered: p.delivered.Load(),
		Failed:    p.failed.Load(),
		Dropped:   p.dropped.Load(),
		Rejected:  p.rejected.Load(),
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for change := range p.queue {
		err := p.deliver(context.Background(), change)
		switch {
		case err == nil:
			p.delivered.Add(1)
		case stderrors.Is(err, resilience.ErrCircuitOpen):
			p.rejected.Add(1)
			p.logger.Debug("webhook circuit open, change skipped", "game_id", change.GameID, "kind", change.Kind)
		default:
			p.failed.Add(1)
			p.logger.Error("webhook delivery failed", "game_id", change.GameID, "kind", change.Kind, "error", err)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, change claim.Change) error {
	ctx, span := tracer.Start(ctx, "webhook.Publisher.deliver")
	defer span.End()

	body, err := encodeChange(change)
	if err != nil {
		return crerr.Wrap(err, "marshal change")
	}
	deliveryID := strconv.FormatUint(p.sequence.Add(1), 10)
	span.SetAttributes(
		attribute.String("webhook.url", p.url),
		attribute.String("webhook.game_id", change.GameID),
		attribute.String("webhook.kind", string(change.Kind)),
		attribute.String("webhook.delivery_id", deliveryID),
	)

	var lastErr error
	for attempt := 1; attempt <= p.retries+1; attempt++ {
		lastErr = p.post(ctx, body, change, deliveryID, attempt)
		if lastErr == nil {
			return nil
		}
		if !stderrors.Is(lastErr, errTransient) || attempt > p.retries {
			break
		}
		time.Sleep(time.Duration(attempt) * retryBaseDelay)
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return lastErr
}

// post makes one attempt. With the breaker enabled the attempt is refused
// while the circuit is open, and transient failures count against it.
func (p *Publisher) post(ctx context.Context, body []byte, change claim.Change, deliveryID string, attempt int) error {
	if p.breaker != nil {
		if err := p.breaker.Allow(); err != nil {
			return fmt.Errorf("webhook %s unavailable (circuit %s): %w", p.url, p.breaker.State(), err)
		}
	}
	err := p.send(ctx, body, change, deliveryID, attempt)
	p.recordCircuitResult(err)
	return err
}

func (p *Publisher) recordCircuitResult(err error) {
	switch {
	case p.breaker == nil:
	case stderrors.Is(err, errTransient):
		p.breaker.RecordFailure()
	default:
		// A 4xx still proves the endpoint is up.
		p.breaker.RecordSuccess()
	}
}

func (p *Publisher) send(ctx context.Context, body []byte, change claim.Change, deliveryID string, attempt int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, string(change.Kind))
	req.Header.Set(HeaderDelivery, deliveryID)
	req.Header.Set(HeaderAttempt, strconv.Itoa(attempt))
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: post %s: %v", errTransient, p.url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if isRetryableStatus(resp.StatusCode) {
		return fmt.Errorf("%w: status=%d body=%s", errTransient, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return crerr.Newf("webhook rejected change status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
}

func encodeChange(change claim.Change) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(change); err != nil {
		return nil, err
	}
	return append([]byte(nil), bytes.TrimRight(buf.B, "\n")...), nil
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
