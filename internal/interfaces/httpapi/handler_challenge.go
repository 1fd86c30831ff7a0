package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/claim-ledger/internal/usecase"
)

func (h *Handler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListChallenges")
	defer span.End()

	gameID := r.PathValue("gameID")
	activeOnly, err := parseBoolQuery(r, "active_only")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	challenges, err := h.challengeService.ListChallenges(ctx, usecase.ListChallengesInput{
		GameID:     gameID,
		ActiveOnly: activeOnly,
		Category:   strings.TrimSpace(r.URL.Query().Get("category")),
		Query:      strings.TrimSpace(r.URL.Query().Get("q")),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list challenges failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]challengeDTO, 0, len(challenges))
	for _, c := range challenges {
		items = append(items, challengeToDTO(c))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateChallenge")
	defer span.End()

	gameID := r.PathValue("gameID")
	var req challengeRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.challengeService.CreateChallenge(ctx, req.toInput(gameID))
	if err != nil {
		h.logger.WarnContext(ctx, "create challenge failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, challengeToDTO(c))
}

func (h *Handler) UpdateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateChallenge")
	defer span.End()

	gameID := r.PathValue("gameID")
	challengeID := r.PathValue("challengeID")
	var req challengeRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.challengeService.UpdateChallenge(ctx, challengeID, req.toInput(gameID))
	if err != nil {
		h.logger.WarnContext(ctx, "update challenge failed", "game_id", gameID, "challenge_id", challengeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeToDTO(c))
}

func (h *Handler) SetChallengeActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetChallengeActive")
	defer span.End()

	gameID := r.PathValue("gameID")
	challengeID := r.PathValue("challengeID")
	var req setChallengeActiveRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.challengeService.SetChallengeActive(ctx, gameID, challengeID, *req.IsActive)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeToDTO(c))
}

func (h *Handler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteChallenge")
	defer span.End()

	gameID := r.PathValue("gameID")
	challengeID := r.PathValue("challengeID")
	if err := h.challengeService.DeleteChallenge(ctx, gameID, challengeID); err != nil {
		h.logger.WarnContext(ctx, "delete challenge failed", "game_id", gameID, "challenge_id", challengeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": challengeID, "status": "deleted"})
}
