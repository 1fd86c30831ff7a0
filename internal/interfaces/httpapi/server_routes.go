package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/games", handler.CreateGame)
	mux.HandleFunc("GET /v1/games/{gameID}", handler.GetGame)
	mux.HandleFunc("PATCH /v1/games/{gameID}/status", handler.SetGameStatus)

	mux.HandleFunc("GET /v1/games/{gameID}/players", handler.ListPlayers)
	mux.HandleFunc("POST /v1/games/{gameID}/players", handler.AddPlayer)
	mux.HandleFunc("DELETE /v1/games/{gameID}/players/{playerID}", handler.RemovePlayer)
	mux.HandleFunc("GET /v1/games/{gameID}/players/{playerID}/claims", handler.GetPlayerClaimStatus)

	mux.HandleFunc("GET /v1/games/{gameID}/challenges", handler.ListChallenges)
	mux.HandleFunc("POST /v1/games/{gameID}/challenges", handler.CreateChallenge)
	mux.HandleFunc("PUT /v1/games/{gameID}/challenges/{challengeID}", handler.UpdateChallenge)
	mux.HandleFunc("DELETE /v1/games/{gameID}/challenges/{challengeID}", handler.DeleteChallenge)
	mux.HandleFunc("PATCH /v1/games/{gameID}/challenges/{challengeID}/active", handler.SetChallengeActive)
}

func registerLedgerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games/{gameID}/claims", handler.ListClaims)
	mux.HandleFunc("POST /v1/games/{gameID}/claims", handler.SubmitClaim)
	mux.HandleFunc("DELETE /v1/games/{gameID}/claims/{claimID}", handler.ReverseClaim)
	mux.HandleFunc("GET /v1/games/{gameID}/activity", handler.ListActivity)
	mux.HandleFunc("GET /v1/games/{gameID}/scoreboard", handler.GetScoreboard)
	mux.HandleFunc("GET /v1/games/{gameID}/changes", handler.StreamGameChanges)
}
