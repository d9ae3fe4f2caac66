package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/plantcard/internal/adapters/repository"
	"github.com/okian/plantcard/internal/domain/model"
	"github.com/okian/plantcard/internal/domain/relative"
)

// StatesDependencies defines the interface for live state operations.
type StatesDependencies interface {
	// RecordState queues a state and returns its update id.
	RecordState(ctx context.Context, st model.State) (string, error)
	State(ctx context.Context, entity string) (repository.Entry, error)
}

// StatesHandler handles state requests.
type StatesHandler struct {
	deps StatesDependencies
}

// NewStatesHandler creates a new states handler.
func NewStatesHandler(deps StatesDependencies) *StatesHandler {
	return &StatesHandler{deps: deps}
}

// stateRequest is the body of POST /states. State may be a JSON string or number.
type stateRequest struct {
	Entity      string `json:"entity"`
	State       any    `json:"state"`
	Unit        string `json:"unit"`
	LastChanged string `json:"last_changed"`
}

func (s stateRequest) validate() error {
	if strings.TrimSpace(s.Entity) == "" {
		return errors.New("missing entity")
	}
	switch s.State.(type) {
	case nil, string, json.Number:
	default:
		return errors.New("state must be a string or a number")
	}
	if s.LastChanged != "" {
		if _, ok := relative.Parse(s.LastChanged); !ok {
			return errors.New("invalid last_changed; must be RFC3339")
		}
	}
	return nil
}

func (s stateRequest) model() model.State {
	var value string
	switch v := s.State.(type) {
	case string:
		value = v
	case json.Number:
		value = v.String()
	}
	return model.State{
		Entity:      strings.TrimSpace(s.Entity),
		Value:       value,
		Unit:        strings.TrimSpace(s.Unit),
		LastChanged: s.LastChanged,
	}
}

type ackResponse struct {
	Status   string `json:"status"`
	UpdateID string `json:"update_id"`
}

// HandlePostState handles POST /states requests.
func (h *StatesHandler) HandlePostState(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_state"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	var req stateRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	id, err := h.deps.RecordState(r.Context(), req.model())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", UpdateID: id})
}

// HandleGetState handles GET /states/{entity} requests.
func (h *StatesHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_state"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	entity := pathParam(r, "/states/")
	if entity == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.State(r.Context(), entity)
	if err != nil {
		writeUpstreamError(w, fmt.Sprintf("%s %s", op, entity), err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
