package httpapi

import (
	"context"
	"errors"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/riskibarqy/claim-ledger/internal/realtime"
)

// StreamGameChanges upgrades to a websocket and forwards ledger change
// notifications of one game. The first frame always asks for a full sync.
func (h *Handler) StreamGameChanges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamGameChanges")
	defer span.End()

	gameID := r.PathValue("gameID")
	sub, err := h.changeFeedService.SubscribeToGameChanges(ctx, gameID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	defer sub.Close()

	conn, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.logger.WarnContext(ctx, "websocket accept failed", "game_id", gameID, "error", err)
		return
	}
	defer conn.CloseNow()

	h.logger.DebugContext(ctx, "change stream opened", "game_id", gameID)
	err = realtime.Serve(ctx, conn, sub, h.pingInterval)
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		ws.CloseStatus(err) == ws.StatusNormalClosure,
		ws.CloseStatus(err) == ws.StatusGoingAway:
		h.logger.DebugContext(ctx, "change stream closed", "game_id", gameID)
	default:
		h.logger.WarnContext(ctx, "change stream ended", "game_id", gameID, "error", err)
	}
}
