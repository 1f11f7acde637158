// Package sleeper reads the player registry, rosters and league scoring from
// the Sleeper fantasy platform.
package sleeper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/okian/idpscout/internal/adapters/fetch"
	"github.com/okian/idpscout/internal/domain/model"
	"github.com/okian/idpscout/internal/domain/scoring"
)

const (
	BaseURL = "https://api.sleeper.app/v1"

	defaultRegistryTTL = 24 * time.Hour
	defaultLeagueTTL   = 15 * time.Minute
)

// Getter fetches and decodes JSON, possibly from cache.
type Getter interface {
	GetJSON(ctx context.Context, url string, ttl time.Duration, out any) error
}

// Client handles Sleeper API requests.
type Client struct {
	get         Getter
	baseURL     string
	registryTTL time.Duration
	leagueTTL   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTTLs sets cache lifetimes for the registry and league data.
func WithTTLs(registry, league time.Duration) Option {
	return func(c *Client) {
		if registry >= 0 {
			c.registryTTL = registry
		}
		if league >= 0 {
			c.leagueTTL = league
		}
	}
}

// New creates a new Sleeper API client.
func New(get Getter, opts ...Option) *Client {
	c := &Client{
		get:         get,
		baseURL:     BaseURL,
		registryTTL: defaultRegistryTTL,
		leagueTTL:   defaultLeagueTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type player struct {
	PlayerID  string  `json:"player_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	FullName  string  `json:"full_name"`
	Team      *string `json:"team"`
	Position  string  `json:"position"`
}

// FetchRegistry returns every NFL player known to the platform, ordered by id.
// Entries without a usable name are skipped.
func (c *Client) FetchRegistry(ctx context.Context) ([]model.PlatformPlayer, error) {
	var raw map[string]player
	if err := c.get.GetJSON(ctx, c.baseURL+"/players/nfl", c.registryTTL, &raw); err != nil {
		return nil, fmt.Errorf("player registry: %w", err)
	}

	out := make([]model.PlatformPlayer, 0, len(raw))
	for key, p := range raw {
		id := p.PlayerID
		if id == "" {
			id = key
		}
		pp := model.PlatformPlayer{
			ID:        id,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			FullName:  p.FullName,
			Position:  strings.ToUpper(p.Position),
		}
		if p.Team != nil {
			pp.Team = strings.ToUpper(*p.Team)
		}
		if pp.DisplayName() == "" {
			continue
		}
		out = append(out, pp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ResolveUserID maps a platform username to its user id.
func (c *Client) ResolveUserID(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: empty username", ErrUserNotFound)
	}
	var resp *struct {
		UserID string `json:"user_id"`
	}
	u := c.baseURL + "/user/" + url.PathEscape(username)
	if err := c.get.GetJSON(ctx, u, c.leagueTTL, &resp); err != nil {
		if notFound(err) {
			return "", fmt.Errorf("%w: %s", ErrUserNotFound, username)
		}
		return "", fmt.Errorf("user %s: %w", username, err)
	}
	if resp == nil || resp.UserID == "" {
		return "", fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return resp.UserID, nil
}

// FetchLeagueScoring returns the IDP part of a league's scoring settings.
func (c *Client) FetchLeagueScoring(ctx context.Context, leagueID string) (scoring.Rules, error) {
	var resp *struct {
		LeagueID        string             `json:"league_id"`
		ScoringSettings map[string]float64 `json:"scoring_settings"`
	}
	u := c.baseURL + "/league/" + url.PathEscape(leagueID)
	if err := c.get.GetJSON(ctx, u, c.leagueTTL, &resp); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrLeagueNotFound, leagueID)
		}
		return nil, fmt.Errorf("league %s: %w", leagueID, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: %s", ErrLeagueNotFound, leagueID)
	}
	return scoring.FromPlatform(resp.ScoringSettings), nil
}

// FetchRosterPlayerIDs returns the player ids on userID's roster in a league.
// A user without a roster in the league has none.
func (c *Client) FetchRosterPlayerIDs(ctx context.Context, leagueID, userID string) ([]string, error) {
	var rosters []struct {
		OwnerID  string   `json:"owner_id"`
		CoOwners []string `json:"co_owners"`
		Players  []string `json:"players"`
	}
	u := c.baseURL + "/league/" + url.PathEscape(leagueID) + "/rosters"
	if err := c.get.GetJSON(ctx, u, c.leagueTTL, &rosters); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrLeagueNotFound, leagueID)
		}
		return nil, fmt.Errorf("rosters %s: %w", leagueID, err)
	}

	for _, r := range rosters {
		if r.OwnerID == userID || contains(r.CoOwners, userID) {
			return append([]string(nil), r.Players...), nil
		}
	}
	return nil, nil
}

func notFound(err error) bool {
	var se *fetch.StatusError
	return errors.As(err, &se) && se.NotFound()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
