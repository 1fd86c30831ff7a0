package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/usecase"
)

func (h *Handler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitClaim")
	defer span.End()

	gameID := r.PathValue("gameID")
	var req submitClaimRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	actorID := strings.TrimSpace(req.ActorID)
	if actorID == "" {
		actorID = actorFromRequest(r)
	}

	e, err := h.claimService.SubmitClaim(ctx, usecase.SubmitClaimInput{
		GameID:      gameID,
		PlayerID:    req.PlayerID,
		ChallengeID: req.ChallengeID,
		Kind:        req.Kind,
		ActorID:     actorID,
	})
	if err != nil {
		if errors.Is(err, claim.ErrDuplicateClaim) {
			h.logger.InfoContext(ctx, "duplicate claim rejected", "game_id", gameID, "player_id", req.PlayerID, "challenge_id", req.ChallengeID)
		} else {
			h.logger.WarnContext(ctx, "submit claim failed", "game_id", gameID, "error", err)
		}
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, claimEventToDTO(e))
}

func (h *Handler) ReverseClaim(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReverseClaim")
	defer span.End()

	gameID := r.PathValue("gameID")
	claimID := r.PathValue("claimID")
	e, err := h.claimService.ReverseClaim(ctx, gameID, claimID, actorFromRequest(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, claimEventToDTO(e))
}

func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListClaims")
	defer span.End()

	gameID := r.PathValue("gameID")
	limit, err := parseLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	events, err := h.claimService.ListClaims(ctx, usecase.ListClaimsInput{
		GameID:   gameID,
		PlayerID: strings.TrimSpace(r.URL.Query().Get("player_id")),
		Limit:    limit,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]claimEventDTO, 0, len(events))
	for _, e := range events {
		items = append(items, claimEventToDTO(e))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
