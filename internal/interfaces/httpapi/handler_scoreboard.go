package httpapi

import "net/http"

func (h *Handler) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScoreboard")
	defer span.End()

	gameID := r.PathValue("gameID")
	standings, err := h.scoreboardService.GetScoreboard(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get scoreboard failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]standingDTO, 0, len(standings))
	for _, s := range standings {
		items = append(items, standingToDTO(s))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListActivity")
	defer span.End()

	gameID := r.PathValue("gameID")
	limit, err := parseLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	feed, err := h.scoreboardService.ActivityFeed(ctx, gameID, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]activityItemDTO, 0, len(feed))
	for _, item := range feed {
		items = append(items, activityItemDTO{
			Claim:          claimEventToDTO(item.Event),
			PlayerName:     item.PlayerName,
			ChallengeTitle: item.ChallengeTitle,
			ActorName:      item.ActorName,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
