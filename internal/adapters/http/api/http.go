// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// maxBodyBytes bounds request bodies accepted by POST handlers.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CardsDependencies
	StatesDependencies
}

// Server wires HTTP routes for the card API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	cardsHandler  *CardsHandler
	statesHandler *StatesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		cardsHandler:  NewCardsHandler(deps),
		statesHandler: NewStatesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/cards", MetricsMiddleware(s.cardsHandler.HandleListCards, "cards"))
	mux.HandleFunc("/cards/", MetricsMiddleware(s.cardsHandler.HandleGetCard, "card"))
	mux.HandleFunc("/states", MetricsMiddleware(s.statesHandler.HandlePostState, "states"))
	mux.HandleFunc("/states/", MetricsMiddleware(s.statesHandler.HandleGetState, "state"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// pathParam returns the single path segment after prefix, or "" when there is none
// or more than one.
func pathParam(r *http.Request, prefix string) string {
	p := strings.TrimPrefix(r.URL.Path, prefix)
	if p == "" || strings.Contains(p, "/") {
		return ""
	}
	return p
}
