package api

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	service "github.com/okian/idpscout/internal/app"
	"github.com/okian/idpscout/internal/domain/model"
	"github.com/okian/idpscout/internal/domain/scoring"
	"github.com/okian/idpscout/internal/domain/search"
)

// PlayersHandler handles IDP player searches.
type PlayersHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies, maxLimit int) *PlayersHandler {
	return &PlayersHandler{deps: deps, maxLimit: maxLimit}
}

type statsView struct {
	model.Stats
	AssistedTackles float64 `json:"assisted_tackles"`
}

type playerView struct {
	ProviderID       string            `json:"provider_id"`
	Name             string            `json:"name"`
	Team             string            `json:"team"`
	Position         model.Position    `json:"position"`
	PositionCode     string            `json:"position_code"`
	Tier             model.Tier        `json:"tier"`
	Season           int               `json:"season"`
	Age              int               `json:"age,omitempty"`
	Experience       int               `json:"experience,omitempty"`
	Jersey           string            `json:"jersey,omitempty"`
	PlatformPlayerID string            `json:"platform_player_id,omitempty"`
	OnRoster         bool              `json:"on_roster"`
	Stats            statsView         `json:"stats"`
	Projection       *model.Projection `json:"projection,omitempty"`
}

type scoringView struct {
	Source string        `json:"source"`
	Rules  scoring.Rules `json:"rules"`
}

// SearchResponse is the JSON body of a player search.
type SearchResponse struct {
	RequestID string       `json:"request_id"`
	Season    int          `json:"season"`
	Scoring   scoringView  `json:"scoring"`
	Resolved  int          `json:"resolved"`
	Matched   int          `json:"matched"`
	Count     int          `json:"count"`
	Warnings  []string     `json:"warnings,omitempty"`
	Players   []playerView `json:"players"`
}

func newPlayerView(p model.ResolvedPlayer, proj *model.Projection) playerView {
	return playerView{
		ProviderID:       p.ProviderID,
		Name:             p.Name,
		Team:             p.Team,
		Position:         p.Position,
		PositionCode:     p.PositionCode,
		Tier:             p.Tier,
		Season:           p.Season,
		Age:              p.Age,
		Experience:       p.Experience,
		Jersey:           p.Jersey,
		PlatformPlayerID: p.PlatformPlayerID,
		OnRoster:         p.IsOnUserRoster,
		Stats:            statsView{Stats: p.Stats, AssistedTackles: p.Stats.AssistedTackles()},
		Projection:       proj,
	}
}

// NewSearchResponse renders a search result.
func NewSearchResponse(res service.SearchResult) SearchResponse {
	out := SearchResponse{
		RequestID: res.RequestID,
		Season:    res.Season,
		Scoring:   scoringView{Source: res.ScoringSource, Rules: res.Rules},
		Resolved:  res.Resolved,
		Matched:   res.Matched,
		Count:     len(res.Rows),
		Warnings:  res.Warnings,
		Players:   make([]playerView, 0, len(res.Rows)),
	}
	for _, row := range res.Rows {
		out.Players = append(out.Players, rowView(row))
	}
	return out
}

func rowView(row search.Row) playerView {
	return newPlayerView(row.Player, row.Projection)
}

// HandleSearch handles GET /idp/players requests.
func (h *PlayersHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	req, err := ParseSearchQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", err)
		return
	}
	if h.maxLimit > 0 && req.Limit > h.maxLimit {
		writeError(w, r, http.StatusBadRequest, "limit_exceeded",
			fmt.Errorf("%w: limit %d exceeds %d", ErrLimitExceeded, req.Limit, h.maxLimit))
		return
	}

	res, err := h.deps.Search(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSearchResponse(res))
}

// ParseSearchQuery validates search parameters and builds the service request.
// Errors wrap ErrBadRequest.
func ParseSearchQuery(q url.Values) (service.SearchRequest, error) {
	var (
		req service.SearchRequest
		err error
	)
	if req.Season, err = intParam(q, "season"); err != nil {
		return req, err
	}
	if req.Limit, err = intParam(q, "limit"); err != nil {
		return req, err
	}
	if req.Limit < 0 {
		return req, fmt.Errorf("%w: limit must not be negative", ErrBadRequest)
	}
	req.LeagueID = strings.TrimSpace(q.Get("league_id"))
	req.Username = strings.TrimSpace(q.Get("username"))
	req.UserID = strings.TrimSpace(q.Get("user_id"))

	if req.Criteria, err = parseCriteria(q); err != nil {
		return req, err
	}
	if req.Sort, err = parseSort(q); err != nil {
		return req, err
	}
	if req.WithProjection, err = boolParam(q, "projection"); err != nil {
		return req, err
	}
	if req.Sort.Column == model.SortByProjection {
		req.WithProjection = true
	}
	return req, nil
}

func parseCriteria(q url.Values) (model.FilterCriteria, error) {
	var c model.FilterCriteria

	if raw := strings.TrimSpace(q.Get("positions")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			p, ok := model.ParsePosition(part)
			if !ok {
				return c, fmt.Errorf("%w: unknown position %q", ErrBadRequest, part)
			}
			c.Positions = append(c.Positions, p)
		}
	}

	mins := []struct {
		name string
		dst  *float64
	}{
		{"min_tackles", &c.MinTackles},
		{"min_sacks", &c.MinSacks},
		{"min_tfl", &c.MinTFL},
		{"min_ff", &c.MinForcedFumbles},
		{"min_pd", &c.MinPassesDefended},
	}
	for _, m := range mins {
		v, err := floatParam(q, m.name)
		if err != nil {
			return c, err
		}
		*m.dst = v
	}

	var err error
	if c.ExcludeRostered, err = boolParam(q, "exclude_rostered"); err != nil {
		return c, err
	}
	return c, nil
}

func parseSort(q url.Values) (model.SortSpec, error) {
	spec := model.DefaultSort()
	if col := strings.ToLower(strings.TrimSpace(q.Get("sort"))); col != "" {
		spec.Column = model.SortColumn(col)
		if !spec.Column.IsValid() {
			return spec, fmt.Errorf("%w: unknown sort column %q", ErrBadRequest, col)
		}
	}
	switch strings.ToLower(strings.TrimSpace(q.Get("order"))) {
	case "":
		spec.Descending = !spec.Column.Textual()
	case "desc":
		spec.Descending = true
	case "asc":
		spec.Descending = false
	default:
		return spec, fmt.Errorf("%w: order must be asc or desc", ErrBadRequest)
	}
	return spec, nil
}

func intParam(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, name)
	}
	return v, nil
}

func floatParam(q url.Values, name string) (float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a finite non-negative number", ErrBadRequest, name)
	}
	return v, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrBadRequest, name)
	}
	return v, nil
}
