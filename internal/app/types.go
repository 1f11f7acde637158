package service

import (
	"context"

	"github.com/okian/idpscout/internal/domain/model"
	"github.com/okian/idpscout/internal/domain/scoring"
	"github.com/okian/idpscout/internal/domain/search"
)

// StatsSource is the external stats provider.
type StatsSource interface {
	FetchLeaders(ctx context.Context, season int, category string) ([]model.LeaderEntry, error)
	FetchAthlete(ctx context.Context, season int, id string) (model.ExternalStatRecord, error)
}

// PlatformSource is the fantasy platform.
type PlatformSource interface {
	FetchRegistry(ctx context.Context) ([]model.PlatformPlayer, error)
	ResolveUserID(ctx context.Context, username string) (string, error)
	FetchLeagueScoring(ctx context.Context, leagueID string) (scoring.Rules, error)
	FetchRosterPlayerIDs(ctx context.Context, leagueID, userID string) ([]string, error)
}

// Scoring sources reported with results.
const (
	ScoringLeague  = "league"
	ScoringDefault = "default"
)

// SearchRequest selects a season, the caller's league context and a view.
type SearchRequest struct {
	// Season defaults to the current NFL season when <= 0.
	Season int

	// LeagueID enables league scoring and, with a user, roster flags.
	LeagueID string
	// Username is resolved to UserID when UserID is empty.
	Username string
	UserID   string

	Criteria       model.FilterCriteria
	Sort           model.SortSpec
	Limit          int
	WithProjection bool
}

// SearchResult is one served search.
type SearchResult struct {
	RequestID     string
	Season        int
	ScoringSource string
	Rules         scoring.Rules
	Rows          []search.Row
	Matched       int
	Resolved      int
	Resolve       search.ResolveStats
	Warnings      []string
}

// ProjectionRequest asks for one player's breakdown.
type ProjectionRequest struct {
	Season     int
	LeagueID   string
	ProviderID string
}

// ProjectionResult is one player's projection under the active table.
type ProjectionResult struct {
	RequestID     string
	Season        int
	ScoringSource string
	Rules         scoring.Rules
	Player        model.ResolvedPlayer
	Projection    model.Projection
	Warnings      []string
}
