package api

import (
	"errors"
	"fmt"
	"net/http"

	statequeue "github.com/okian/plantcard/internal/adapters/mq/queue"
	"github.com/okian/plantcard/internal/adapters/repository"
	service "github.com/okian/plantcard/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("service unavailable")
)

// NewKind tags kind with the operation that raised it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags kind and its cause with the operation that raised it.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// classify maps an upstream error to a status, a response code and an API kind.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, service.ErrInvalidState):
		return http.StatusBadRequest, "bad_request", ErrBadRequest
	case errors.Is(err, statequeue.ErrFull):
		return http.StatusTooManyRequests, "backpressure", ErrBackpressure
	case errors.Is(err, service.ErrUnknownCard), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found", ErrNotFound
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, statequeue.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable", ErrUnavailable
	default:
		return http.StatusInternalServerError, "internal_error", err
	}
}

func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	status, code, kind := classify(err)
	if kind == err {
		writeError(w, status, code, fmt.Errorf("%s: %w", op, err))
		return
	}
	writeError(w, status, code, WrapKind(op, kind, err))
}
