package api

import (
	"context"
	"net/http"

	"github.com/okian/plantcard/internal/domain/model"
)

// CardsDependencies defines the interface for card read operations.
type CardsDependencies interface {
	Cards() []model.CardConfig
	Evaluate(ctx context.Context, cardID string) (model.CardPresentation, error)
}

// CardsHandler handles card requests.
type CardsHandler struct {
	deps CardsDependencies
}

// NewCardsHandler creates a new cards handler.
func NewCardsHandler(deps CardsDependencies) *CardsHandler {
	return &CardsHandler{deps: deps}
}

type cardSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Entities int    `json:"entities"`
}

type cardsResponse struct {
	Cards []cardSummary `json:"cards"`
}

// HandleListCards handles GET /cards requests.
func (h *CardsHandler) HandleListCards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cards := h.deps.Cards()
	resp := cardsResponse{Cards: make([]cardSummary, 0, len(cards))}
	for _, c := range cards {
		resp.Cards = append(resp.Cards, cardSummary{ID: c.ID, Title: c.Title, Entities: len(c.Entities)})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetCard handles GET /cards/{id} requests.
func (h *CardsHandler) HandleGetCard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_card"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := pathParam(r, "/cards/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	pres, err := h.deps.Evaluate(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, pres)
}
