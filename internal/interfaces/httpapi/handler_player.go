package httpapi

import (
	"net/http"

	"github.com/riskibarqy/claim-ledger/internal/usecase"
)

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	gameID := r.PathValue("gameID")
	players, err := h.playerService.ListPlayers(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddPlayer")
	defer span.End()

	gameID := r.PathValue("gameID")
	var req addPlayerRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	p, err := h.playerService.AddPlayer(ctx, usecase.AddPlayerInput{GameID: gameID, Name: req.Name})
	if err != nil {
		h.logger.WarnContext(ctx, "add player failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(p))
}

func (h *Handler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemovePlayer")
	defer span.End()

	gameID := r.PathValue("gameID")
	playerID := r.PathValue("playerID")
	if err := h.playerService.RemovePlayer(ctx, gameID, playerID); err != nil {
		h.logger.WarnContext(ctx, "remove player failed", "game_id", gameID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": playerID, "status": "removed"})
}

func (h *Handler) GetPlayerClaimStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerClaimStatus")
	defer span.End()

	gameID := r.PathValue("gameID")
	playerID := r.PathValue("playerID")
	statuses, err := h.claimService.PlayerClaimStatus(ctx, gameID, playerID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]claimStatusDTO, 0, len(statuses))
	for _, s := range statuses {
		items = append(items, claimStatusDTO{
			Challenge:     challengeToDTO(s.Challenge),
			BaseCount:     s.BaseCount,
			BonusCount:    s.BonusCount,
			CanClaimBase:  s.CanClaimBase,
			CanClaimBonus: s.CanClaimBonus,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
