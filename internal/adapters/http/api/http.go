// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/idpscout/internal/app"
	"github.com/okian/idpscout/pkg/logger"
	"github.com/okian/idpscout/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Search(ctx context.Context, req service.SearchRequest) (service.SearchResult, error)
	Projection(ctx context.Context, req service.ProjectionRequest) (service.ProjectionResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	playersHandler    *PlayersHandler
	projectionHandler *ProjectionHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps
// ?limit on player searches.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		playersHandler:    NewPlayersHandler(deps, maxLimit),
		projectionHandler: NewProjectionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/idp/players", MetricsMiddleware(s.playersHandler.HandleSearch, "players"))
	mux.HandleFunc("/idp/players/{provider_id}/projection", MetricsMiddleware(s.projectionHandler.HandleProjection, "projection"))
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{
		Code:      code,
		Message:   msg,
		Retryable: status == http.StatusServiceUnavailable,
		RequestID: logger.RequestID(r.Context()),
	})
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, r, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrPlayerNotFound):
		writeError(w, r, http.StatusNotFound, "player_not_found", err)
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, "user_not_found", err)
	case errors.Is(err, service.ErrLeadersUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "upstream_unavailable", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "upstream_unavailable", err)
	default:
		logger.Default().Error(r.Context(), "unhandled service error", logger.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal_error", nil)
	}
}
