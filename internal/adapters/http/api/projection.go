package api

import (
	"net/http"
	"strings"

	service "github.com/okian/idpscout/internal/app"
	"github.com/okian/idpscout/internal/domain/model"
)

// ProjectionHandler handles single-player projection requests.
type ProjectionHandler struct {
	deps Dependencies
}

// NewProjectionHandler creates a new projection handler.
func NewProjectionHandler(deps Dependencies) *ProjectionHandler {
	return &ProjectionHandler{deps: deps}
}

// ProjectionResponse is the JSON body of a single-player projection.
type ProjectionResponse struct {
	RequestID  string           `json:"request_id"`
	Season     int              `json:"season"`
	Scoring    scoringView      `json:"scoring"`
	Player     playerView       `json:"player"`
	Projection model.Projection `json:"projection"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// HandleProjection handles GET /idp/players/{provider_id}/projection requests.
func (h *ProjectionHandler) HandleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimSpace(r.PathValue("provider_id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	season, err := intParam(r.URL.Query(), "season")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := h.deps.Projection(r.Context(), service.ProjectionRequest{
		Season:     season,
		LeagueID:   strings.TrimSpace(r.URL.Query().Get("league_id")),
		ProviderID: id,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NewProjectionResponse(res))
}

// NewProjectionResponse renders a projection result.
func NewProjectionResponse(res service.ProjectionResult) ProjectionResponse {
	return ProjectionResponse{
		RequestID:  res.RequestID,
		Season:     res.Season,
		Scoring:    scoringView{Source: res.ScoringSource, Rules: res.Rules},
		Player:     newPlayerView(res.Player, nil),
		Projection: res.Projection,
		Warnings:   res.Warnings,
	}
}
