// Package mcptools exposes IDP search and projection as Model Context
// Protocol tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/idpscout/internal/adapters/http/api"
	service "github.com/okian/idpscout/internal/app"
	"github.com/okian/idpscout/pkg/logger"
)

const (
	serverName    = "idpscout"
	serverVersion = "1.0.0"
)

// Tool names.
const (
	ToolSearch     = "search_idp_players"
	ToolProjection = "project_idp_player"
)

// SearchArgs are the arguments of the search tool.
type SearchArgs struct {
	Season          int      `json:"season,omitempty" jsonschema:"Season year (0 = current NFL season)"`
	LeagueID        string   `json:"league_id,omitempty" jsonschema:"Sleeper league whose IDP scoring is applied"`
	Username        string   `json:"username,omitempty" jsonschema:"Sleeper username used for roster flags"`
	UserID          string   `json:"user_id,omitempty" jsonschema:"Sleeper user id; takes precedence over username"`
	Positions       []string `json:"positions,omitempty" jsonschema:"Position buckets to keep: DL, LB, DB"`
	MinTackles      float64  `json:"min_tackles,omitempty" jsonschema:"Minimum total tackles"`
	MinSacks        float64  `json:"min_sacks,omitempty" jsonschema:"Minimum sacks"`
	MinTFL          float64  `json:"min_tfl,omitempty" jsonschema:"Minimum tackles for loss"`
	MinFF           float64  `json:"min_ff,omitempty" jsonschema:"Minimum forced fumbles"`
	MinPD           float64  `json:"min_pd,omitempty" jsonschema:"Minimum passes defended"`
	ExcludeRostered bool     `json:"exclude_rostered,omitempty" jsonschema:"Drop players already on the user's roster"`
	Sort            string   `json:"sort,omitempty" jsonschema:"Sort column: name, team, position, tier, projection or a stat key"`
	Order           string   `json:"order,omitempty" jsonschema:"asc or desc (default desc)"`
	Limit           int      `json:"limit,omitempty" jsonschema:"Maximum rows"`
	Projection      bool     `json:"projection,omitempty" jsonschema:"Include a projection per row"`
}

// ProjectionArgs are the arguments of the projection tool.
type ProjectionArgs struct {
	ProviderID string `json:"provider_id" jsonschema:"Provider athlete id (required)"`
	Season     int    `json:"season,omitempty" jsonschema:"Season year (0 = current NFL season)"`
	LeagueID   string `json:"league_id,omitempty" jsonschema:"Sleeper league whose IDP scoring is applied"`
}

// NewServer registers the IDP tools on a new MCP server.
func NewServer(deps api.Dependencies, maxLimit int) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	log := logger.Default().Named("mcp")

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolSearch,
		Description: "Search individual defensive players by position and stat thresholds, with optional league projections",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
		req, err := api.ParseSearchQuery(args.query())
		if err != nil {
			return toolError(err), nil, nil
		}
		if maxLimit > 0 && req.Limit > maxLimit {
			return toolError(fmt.Errorf("%w: limit %d exceeds %d", api.ErrLimitExceeded, req.Limit, maxLimit)), nil, nil
		}
		res, err := deps.Search(ctx, req)
		if err != nil {
			log.Warn(ctx, "search tool failed", logger.Error(err))
			return toolError(err), nil, nil
		}
		return toolJSON(api.NewSearchResponse(res)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolProjection,
		Description: "Project one defensive player's fantasy points under a league's IDP scoring",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args ProjectionArgs) (*mcp.CallToolResult, any, error) {
		id := strings.TrimSpace(args.ProviderID)
		if id == "" {
			return toolError(fmt.Errorf("%w: provider_id is required", api.ErrBadRequest)), nil, nil
		}
		res, err := deps.Projection(ctx, service.ProjectionRequest{
			Season:     args.Season,
			LeagueID:   strings.TrimSpace(args.LeagueID),
			ProviderID: id,
		})
		if err != nil {
			if !errors.Is(err, service.ErrPlayerNotFound) {
				log.Warn(ctx, "projection tool failed", logger.Error(err))
			}
			return toolError(err), nil, nil
		}
		return toolJSON(api.NewProjectionResponse(res)), nil, nil
	})

	return server
}

// NewHandler serves the tools over streamable HTTP.
func NewHandler(deps api.Dependencies, maxLimit int) http.Handler {
	server := NewServer(deps, maxLimit)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

// query renders the arguments as the HTTP query so both surfaces share one
// validation path.
func (a SearchArgs) query() url.Values {
	q := url.Values{}
	setInt := func(k string, v int) {
		if v != 0 {
			q.Set(k, strconv.Itoa(v))
		}
	}
	setFloat := func(k string, v float64) {
		if v != 0 {
			q.Set(k, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	setString := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			q.Set(k, v)
		}
	}

	setInt("season", a.Season)
	setString("league_id", a.LeagueID)
	setString("username", a.Username)
	setString("user_id", a.UserID)
	setString("positions", strings.Join(a.Positions, ","))
	setFloat("min_tackles", a.MinTackles)
	setFloat("min_sacks", a.MinSacks)
	setFloat("min_tfl", a.MinTFL)
	setFloat("min_ff", a.MinFF)
	setFloat("min_pd", a.MinPD)
	if a.ExcludeRostered {
		q.Set("exclude_rostered", "true")
	}
	setString("sort", a.Sort)
	setString("order", a.Order)
	setInt("limit", a.Limit)
	if a.Projection {
		q.Set("projection", "true")
	}
	return q
}

func toolJSON(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}
}
