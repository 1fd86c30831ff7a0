package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
	"github.com/riskibarqy/claim-ledger/internal/realtime"
	"github.com/riskibarqy/claim-ledger/internal/usecase"
)

// actorHeader names the host device acting on a player's behalf.
const actorHeader = "X-Actor-ID"

const maxBodyBytes = 1 << 20

type Handler struct {
	gameService       *usecase.GameService
	playerService     *usecase.PlayerService
	challengeService  *usecase.ChallengeService
	claimService      *usecase.ClaimService
	scoreboardService *usecase.ScoreboardService
	changeFeedService *usecase.ChangeFeedService
	logger            *logging.Logger
	validator         *validator.Validate
	pingInterval      time.Duration
}

func NewHandler(
	gameService *usecase.GameService,
	playerService *usecase.PlayerService,
	challengeService *usecase.ChallengeService,
	claimService *usecase.ClaimService,
	scoreboardService *usecase.ScoreboardService,
	changeFeedService *usecase.ChangeFeedService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		gameService:       gameService,
		playerService:     playerService,
		challengeService:  challengeService,
		claimService:      claimService,
		scoreboardService: scoreboardService,
		changeFeedService: changeFeedService,
		logger:            logger,
		validator:         validator.New(),
		pingInterval:      realtime.DefaultPingInterval,
	}
}

// WithPingInterval sets how often change streams ping idle clients.
func (h *Handler) WithPingInterval(d time.Duration) *Handler {
	if d > 0 {
		h.pingInterval = d
	}
	return h
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, payload any) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput)
	}
	return v, nil
}

func parseBoolQuery(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", usecase.ErrInvalidInput, key)
	}
	return v, nil
}

func actorFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(actorHeader))
}
