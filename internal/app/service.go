// Package service orchestrates the two-phase stat fetch, platform lookups and
// the search engine behind the HTTP API.
package service

import (
	"sync/atomic"
	"time"

	"github.com/okian/idpscout/internal/adapters/worker"
	"github.com/okian/idpscout/internal/domain/scoring"
	"github.com/okian/idpscout/internal/domain/search"
	"github.com/okian/idpscout/internal/domain/tier"
	"github.com/okian/idpscout/pkg/logger"
)

const (
	defaultConcurrency = 8
	defaultMaxResults  = 500
)

// DefaultLeaderCategories seed the candidate set when none are configured.
var DefaultLeaderCategories = []string{"totalTackles", "sacks", "interceptions", "passesDefended", "fumblesForced", "tacklesForLoss"}

// Service implements the API dependencies for IDP search.
type Service struct {
	stats    StatsSource
	platform PlatformSource

	// Engine
	calc     *scoring.Calculator
	resolver *search.Resolver

	// Configuration
	categories  []string
	concurrency int
	strict      bool
	maxResults  int
	now         func() time.Time

	// State
	startedAt     time.Time
	searches      atomic.Int64
	failures      atomic.Int64
	lastResolved  atomic.Int64
	athleteSkips  atomic.Int64
	leaderMisses  atomic.Int64
	defaultScored atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLeaderCategories sets the provider leader boards that seed candidates.
func WithLeaderCategories(categories []string) Option {
	return func(s *Service) {
		if len(categories) > 0 {
			s.categories = append([]string(nil), categories...)
		}
	}
}

// WithConcurrency bounds in-flight upstream calls per phase.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithStrictMatching disables the name-only identity fallback.
func WithStrictMatching(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// WithDefaultScoring sets the table used when no league table applies.
func WithDefaultScoring(rules scoring.Rules) Option {
	return func(s *Service) {
		if len(rules) > 0 {
			s.calc = scoring.NewCalculator(scoring.WithDefaultRules(rules))
		}
	}
}

// WithTierTables replaces the tier thresholds.
func WithTierTables(tables tier.Tables) Option {
	return func(s *Service) {
		if tables != nil {
			s.resolver = search.NewResolver(tier.NewClassifier(tables))
		}
	}
}

// WithMaxResults caps the rows of one search.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithClock replaces time.Now, used to pick the current season.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over the given sources.
func New(stats StatsSource, platform PlatformSource, opts ...Option) *Service {
	s := &Service{
		stats:       stats,
		platform:    platform,
		calc:        scoring.NewCalculator(),
		resolver:    search.NewResolver(nil),
		categories:  DefaultLeaderCategories,
		concurrency: defaultConcurrency,
		maxResults:  defaultMaxResults,
		now:         time.Now,
		logger:      logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("service")
	s.startedAt = s.now()
	return s
}

// Calculator returns the projection calculator with its default table.
func (s *Service) Calculator() *scoring.Calculator { return s.calc }

// CurrentSeason returns the NFL season in progress: the calendar year from
// September on, the previous year before that.
func (s *Service) CurrentSeason() int {
	now := s.now()
	if now.Month() >= time.September {
		return now.Year()
	}
	return now.Year() - 1
}

func (s *Service) pool(name string) *worker.Pool {
	return worker.NewPool(
		worker.WithName(name),
		worker.WithConcurrency(s.concurrency),
		worker.WithLogger(s.logger),
	)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"uptime_seconds":    int64(s.now().Sub(s.startedAt).Seconds()),
		"searches":          s.searches.Load(),
		"failures":          s.failures.Load(),
		"last_resolved":     s.lastResolved.Load(),
		"athlete_skips":     s.athleteSkips.Load(),
		"leader_failures":   s.leaderMisses.Load(),
		"default_scored":    s.defaultScored.Load(),
		"leader_categories": s.categories,
		"fetch_concurrency": s.concurrency,
		"strict_matching":   s.strict,
		"max_results":       s.maxResults,
		"current_season":    s.CurrentSeason(),
		"default_scoring":   s.calc.Defaults(),
	}
}
