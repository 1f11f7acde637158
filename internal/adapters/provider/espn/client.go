// Package espn reads season defensive stats from ESPN's public APIs.
package espn

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/okian/idpscout/internal/domain/model"
)

const (
	CoreURL = "https://sports.core.api.espn.com/v2/sports/football/leagues/nfl"
	SiteURL = "https://site.web.api.espn.com/apis/common/v3/sports/football/nfl"

	// regularSeason is ESPN's season type id for the regular season.
	regularSeason   = 2
	defaultLimit    = 100
	defaultStatsTTL = time.Hour
)

// Getter fetches and decodes JSON, possibly from cache.
type Getter interface {
	GetJSON(ctx context.Context, url string, ttl time.Duration, out any) error
}

// Client handles ESPN API requests.
type Client struct {
	get      Getter
	coreURL  string
	siteURL  string
	limit    int
	statsTTL time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURLs overrides the core and site API roots.
func WithBaseURLs(core, site string) Option {
	return func(c *Client) {
		if core != "" {
			c.coreURL = strings.TrimRight(core, "/")
		}
		if site != "" {
			c.siteURL = strings.TrimRight(site, "/")
		}
	}
}

// WithLeadersLimit sets how many athletes each leader board returns.
func WithLeadersLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithStatsTTL sets the cache lifetime of leader and athlete responses.
func WithStatsTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl >= 0 {
			c.statsTTL = ttl
		}
	}
}

// New creates a new ESPN API client.
func New(get Getter, opts ...Option) *Client {
	c := &Client{
		get:      get,
		coreURL:  CoreURL,
		siteURL:  SiteURL,
		limit:    defaultLimit,
		statsTTL: defaultStatsTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchLeaders returns the season leader board for one stat category.
// Entries whose athlete reference carries no id are skipped.
func (c *Client) FetchLeaders(ctx context.Context, season int, category string) ([]model.LeaderEntry, error) {
	u := fmt.Sprintf("%s/seasons/%d/types/%d/leaders?limit=%d", c.coreURL, season, regularSeason, c.limit)

	var resp leadersResponse
	if err := c.get.GetJSON(ctx, u, c.statsTTL, &resp); err != nil {
		return nil, fmt.Errorf("leaders %s: %w", category, err)
	}

	for _, cat := range resp.Categories {
		if !strings.EqualFold(cat.Name, category) {
			continue
		}
		out := make([]model.LeaderEntry, 0, len(cat.Leaders))
		for _, l := range cat.Leaders {
			id, ok := athleteID(l.Athlete.Ref)
			if !ok {
				continue
			}
			out = append(out, model.LeaderEntry{Category: category, AthleteID: id, Value: float64(l.Value)})
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCategoryMissing, category)
}

// FetchAthlete returns the profile and season defensive line of one athlete.
func (c *Client) FetchAthlete(ctx context.Context, season int, id string) (model.ExternalStatRecord, error) {
	var profile athleteResponse
	pu := fmt.Sprintf("%s/athletes/%s", c.siteURL, url.PathEscape(id))
	if err := c.get.GetJSON(ctx, pu, c.statsTTL, &profile); err != nil {
		return model.ExternalStatRecord{}, fmt.Errorf("athlete %s profile: %w", id, err)
	}

	var stats statsResponse
	su := fmt.Sprintf("%s/seasons/%d/types/%d/athletes/%s/statistics", c.coreURL, season, regularSeason, url.PathEscape(id))
	if err := c.get.GetJSON(ctx, su, c.statsTTL, &stats); err != nil {
		return model.ExternalStatRecord{}, fmt.Errorf("athlete %s stats: %w", id, err)
	}

	return toRecord(id, season, profile, stats)
}

func toRecord(id string, season int, profile athleteResponse, stats statsResponse) (model.ExternalStatRecord, error) {
	a := profile.Athlete
	if a.ID != "" && string(a.ID) != id {
		return model.ExternalStatRecord{}, fmt.Errorf("%w: asked for %s, got %s", ErrInvalidAthlete, id, a.ID)
	}
	name := strings.TrimSpace(a.DisplayName)
	if name == "" {
		name = strings.TrimSpace(a.FullName)
	}
	if name == "" {
		return model.ExternalStatRecord{}, fmt.Errorf("%w: %s has no name", ErrInvalidAthlete, id)
	}

	return model.ExternalStatRecord{
		ProviderID:   id,
		Name:         name,
		Team:         strings.ToUpper(a.Team.Abbreviation),
		PositionCode: strings.ToUpper(a.Position.Abbreviation),
		Season:       season,
		Age:          int(a.Age),
		Experience:   int(a.Experience.Years),
		Jersey:       string(a.Jersey),
		Stats:        parseStats(stats),
	}, nil
}

// statFields maps ESPN stat names to the line they fill. Only the
// defensive groups are read so offensive "interceptions" never leak in.
var statFields = map[string]func(*model.Stats, float64){
	"totalTackles":   func(s *model.Stats, v float64) { s.TotalTackles = v },
	"soloTackles":    func(s *model.Stats, v float64) { s.SoloTackles = v },
	"sacks":          func(s *model.Stats, v float64) { s.Sacks = v },
	"tacklesForLoss": func(s *model.Stats, v float64) { s.TacklesForLoss = v },
	"QBHits":         func(s *model.Stats, v float64) { s.QBHits = v },
	"passesDefended": func(s *model.Stats, v float64) { s.PassesDefended = v },
	"interceptions":  func(s *model.Stats, v float64) { s.Interceptions = v },
	"fumblesForced":  func(s *model.Stats, v float64) { s.ForcedFumbles = v },
}

var statGroups = map[string]bool{
	"defensive":              true,
	"defensiveInterceptions": true,
	"general":                true,
}

func parseStats(resp statsResponse) model.Stats {
	var s model.Stats
	for _, cat := range resp.Splits.Categories {
		if !statGroups[cat.Name] {
			continue
		}
		for _, st := range cat.Stats {
			if set, ok := statFields[st.Name]; ok {
				v := float64(st.Value)
				if v < 0 || !finite(v) {
					v = 0
				}
				set(&s, v)
			}
		}
	}
	return s
}
