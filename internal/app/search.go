package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/idpscout/internal/adapters/provider/sleeper"
	"github.com/okian/idpscout/internal/adapters/worker"
	"github.com/okian/idpscout/internal/domain/match"
	"github.com/okian/idpscout/internal/domain/model"
	"github.com/okian/idpscout/internal/domain/scoring"
	"github.com/okian/idpscout/internal/domain/search"
	"github.com/okian/idpscout/pkg/logger"
	"github.com/okian/idpscout/pkg/metrics"
)

// resolvedSet is one request's fully linked candidate set.
type resolvedSet struct {
	players  []model.ResolvedPlayer
	stats    search.ResolveStats
	rules    scoring.Rules // nil selects the default table
	source   string
	warnings []string
}

// Search runs both fetch phases, resolves the candidates against the
// platform and returns the requested view.
func (s *Service) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	start := time.Now()
	ctx, reqID := withRequestID(ctx)

	season, err := s.season(req.Season)
	if err != nil {
		return SearchResult{}, s.fail("invalid_request", err)
	}
	if req.Limit < 0 {
		return SearchResult{}, s.fail("invalid_request", fmt.Errorf("%w: negative limit", ErrInvalidRequest))
	}

	var warnings []string
	userID := strings.TrimSpace(req.UserID)
	if userID == "" && strings.TrimSpace(req.Username) != "" {
		userID, err = s.platform.ResolveUserID(ctx, req.Username)
		if err != nil {
			if errors.Is(err, sleeper.ErrUserNotFound) {
				return SearchResult{}, s.fail("user_not_found", fmt.Errorf("%w: %s", ErrUserNotFound, req.Username))
			}
			s.logger.Warn(ctx, "username lookup failed", logger.String("username", req.Username), logger.Error(err))
			warnings = append(warnings, "user lookup failed: roster flags are off")
			userID = ""
		}
	}
	if req.Criteria.ExcludeRostered {
		switch {
		case userID == "":
			warnings = append(warnings, "exclude_rostered ignored: no user")
		case strings.TrimSpace(req.LeagueID) == "":
			warnings = append(warnings, "exclude_rostered ignored: no league")
		}
	}

	set, err := s.resolve(ctx, season, req.LeagueID, userID)
	if err != nil {
		return SearchResult{}, s.fail("upstream_unavailable", err)
	}
	set.warnings = append(warnings, set.warnings...)

	limit := req.Limit
	if limit == 0 || limit > s.maxResults {
		limit = s.maxResults
	}
	criteria := req.Criteria
	criteria.Season = season
	out := search.Run(search.Input{
		Players:        set.players,
		Criteria:       criteria,
		Sort:           req.Sort,
		Calculator:     s.calc,
		Rules:          set.rules,
		WithProjection: req.WithProjection,
		Limit:          limit,
	})

	s.searches.Add(1)
	if set.source == ScoringDefault {
		s.defaultScored.Add(1)
	}
	metrics.RecordSearch(set.source, float64(time.Since(start).Milliseconds()))
	s.logger.Info(ctx, "search served",
		logger.Int("season", season),
		logger.Int("resolved", len(set.players)),
		logger.Int("matched", out.Matched),
		logger.Int("returned", len(out.Rows)),
		logger.String("scoring", set.source),
		logger.Duration("took", time.Since(start)),
	)

	return SearchResult{
		RequestID:     reqID,
		Season:        season,
		ScoringSource: set.source,
		Rules:         s.effectiveRules(set.rules),
		Rows:          out.Rows,
		Matched:       out.Matched,
		Resolved:      len(set.players),
		Resolve:       set.stats,
		Warnings:      set.warnings,
	}, nil
}

// Projection returns one resolved player's breakdown under the league table,
// or the default table when the league has none.
func (s *Service) Projection(ctx context.Context, req ProjectionRequest) (ProjectionResult, error) {
	ctx, reqID := withRequestID(ctx)

	id := strings.TrimSpace(req.ProviderID)
	if id == "" {
		return ProjectionResult{}, s.fail("invalid_request", fmt.Errorf("%w: provider id required", ErrInvalidRequest))
	}
	season, err := s.season(req.Season)
	if err != nil {
		return ProjectionResult{}, s.fail("invalid_request", err)
	}

	set, err := s.resolve(ctx, season, req.LeagueID, "")
	if err != nil {
		return ProjectionResult{}, s.fail("upstream_unavailable", err)
	}

	for _, p := range set.players {
		if p.ProviderID != id {
			continue
		}
		return ProjectionResult{
			RequestID:     reqID,
			Season:        season,
			ScoringSource: set.source,
			Rules:         s.effectiveRules(set.rules),
			Player:        p,
			Projection:    s.calc.Calculate(p.Stats, set.rules),
			Warnings:      set.warnings,
		}, nil
	}
	return ProjectionResult{}, s.fail("player_not_found", fmt.Errorf("%w: %s", ErrPlayerNotFound, id))
}

// resolve loads candidates and platform data concurrently and links them.
func (s *Service) resolve(ctx context.Context, season int, leagueID, userID string) (resolvedSet, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		records  []model.ExternalStatRecord
		fetchErr error
		registry []model.PlatformPlayer
		roster   []string
		rules    scoring.Rules
		warnings []string
	)
	warn := func(msg string) {
		mu.Lock()
		warnings = append(warnings, msg)
		mu.Unlock()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		records, fetchErr = s.candidates(ctx, season)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		registry, err = s.platform.FetchRegistry(ctx)
		if err != nil {
			s.logger.Warn(ctx, "player registry unavailable, results stay unlinked", logger.Error(err))
			warn("platform registry unavailable: players are unlinked")
		}
	}()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			rules, err = s.platform.FetchLeagueScoring(ctx, leagueID)
			if err != nil {
				s.logger.Warn(ctx, "league scoring unavailable, using default table",
					logger.String("league_id", leagueID), logger.Error(err))
				warn("league scoring unavailable: default table used")
				rules = nil
			}
		}()

		if userID != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var err error
				roster, err = s.platform.FetchRosterPlayerIDs(ctx, leagueID, userID)
				if err != nil {
					s.logger.Warn(ctx, "roster unavailable", logger.String("league_id", leagueID), logger.Error(err))
					warn("roster unavailable: roster flags are off")
					roster = nil
				}
			}()
		}
	}

	wg.Wait()
	if fetchErr != nil {
		return resolvedSet{}, fetchErr
	}

	set := resolvedSet{rules: rules, source: ScoringLeague, warnings: warnings}
	if !rules.ScoresAny() {
		if leagueID != "" && rules != nil {
			set.warnings = append(set.warnings, "league scores no IDP categories: default table used")
		}
		set.rules = nil
		set.source = ScoringDefault
	}

	idx := match.NewIndex(registry, match.WithStrict(s.strict))
	set.players, set.stats = s.resolver.Resolve(records, idx, roster)

	s.lastResolved.Store(int64(len(set.players)))
	metrics.UpdateResolvedPlayers(len(set.players))
	metrics.RecordDroppedRecords("position", set.stats.Dropped)
	metrics.RecordDroppedRecords("duplicate", set.stats.Duplicates)
	metrics.RecordMatchOutcomes(string(match.KindTeam), set.stats.LinkedTeam)
	metrics.RecordMatchOutcomes(string(match.KindName), set.stats.LinkedName)
	metrics.RecordMatchOutcomes(string(match.KindNone), set.stats.Unlinked)
	return set, nil
}

// candidates runs phase 1 (leader boards) then phase 2 (athlete details).
func (s *Service) candidates(ctx context.Context, season int) ([]model.ExternalStatRecord, error) {
	boards := worker.Settle(ctx, s.pool("leaders"), s.categories,
		func(ctx context.Context, category string) ([]model.LeaderEntry, error) {
			return s.stats.FetchLeaders(ctx, season, category)
		})

	var (
		ids     []string
		seen    = make(map[string]struct{})
		failed  int
		lastErr error
	)
	for _, b := range boards {
		if b.Err != nil {
			failed++
			lastErr = b.Err
			s.leaderMisses.Add(1)
			metrics.RecordLeaderFailure(b.Key)
			s.logger.Warn(ctx, "leader category failed, treated as empty",
				logger.String("category", b.Key), logger.Error(b.Err))
			continue
		}
		for _, e := range b.Value {
			if _, ok := seen[e.AthleteID]; ok {
				continue
			}
			seen[e.AthleteID] = struct{}{}
			ids = append(ids, e.AthleteID)
		}
	}
	if len(boards) > 0 && failed == len(boards) {
		return nil, fmt.Errorf("%w: all %d categories failed: %w", ErrLeadersUnavailable, failed, lastErr)
	}

	details := worker.Settle(ctx, s.pool("athletes"), ids,
		func(ctx context.Context, id string) (model.ExternalStatRecord, error) {
			return s.stats.FetchAthlete(ctx, season, id)
		})

	records := make([]model.ExternalStatRecord, 0, len(details))
	skipped := 0
	for _, d := range details {
		if d.Err != nil {
			skipped++
			s.athleteSkips.Add(1)
			metrics.RecordAthleteSkip()
			s.logger.Debug(ctx, "athlete skipped", logger.String("athlete_id", d.Key), logger.Error(d.Err))
			continue
		}
		records = append(records, d.Value)
	}
	if skipped > 0 {
		s.logger.Warn(ctx, "athletes skipped", logger.Int("skipped", skipped), logger.Int("candidates", len(ids)))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLeadersUnavailable, err)
	}
	return records, nil
}

func (s *Service) season(requested int) (int, error) {
	if requested <= 0 {
		return s.CurrentSeason(), nil
	}
	if requested < 2000 || requested > s.CurrentSeason()+1 {
		return 0, fmt.Errorf("%w: season %d out of range", ErrInvalidRequest, requested)
	}
	return requested, nil
}

func (s *Service) effectiveRules(rules scoring.Rules) scoring.Rules {
	if rules == nil {
		return s.calc.Defaults()
	}
	return rules.Clone()
}

func (s *Service) fail(reason string, err error) error {
	s.failures.Add(1)
	metrics.RecordSearchFailure(reason)
	return err
}

// withRequestID reuses the id set by the HTTP layer or mints one.
func withRequestID(ctx context.Context) (context.Context, string) {
	if id := logger.RequestID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return logger.WithRequestID(ctx, id), id
}
