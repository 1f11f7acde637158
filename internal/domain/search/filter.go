package search

import "github.com/okian/idpscout/internal/domain/model"

// Matches reports whether p satisfies every active predicate of c.
func Matches(p model.ResolvedPlayer, c model.FilterCriteria) bool {
	if !hasPosition(c.EffectivePositions(), p.Position) {
		return false
	}
	if c.Season > 0 && p.Season != c.Season {
		return false
	}
	if c.ExcludeRostered && p.IsOnUserRoster {
		return false
	}

	s := p.Stats
	mins := []struct {
		min, got float64
	}{
		{c.MinTackles, s.TotalTackles},
		{c.MinSacks, s.Sacks},
		{c.MinTFL, s.TacklesForLoss},
		{c.MinForcedFumbles, s.ForcedFumbles},
		{c.MinPassesDefended, s.PassesDefended},
	}
	for _, m := range mins {
		if m.min > 0 && m.got < m.min {
			return false
		}
	}
	return true
}

// Filter returns the players matching c, keeping input order.
func Filter(players []model.ResolvedPlayer, c model.FilterCriteria) []model.ResolvedPlayer {
	out := make([]model.ResolvedPlayer, 0, len(players))
	for _, p := range players {
		if Matches(p, c) {
			out = append(out, p)
		}
	}
	return out
}

func hasPosition(set []model.Position, p model.Position) bool {
	for _, s := range set {
		if s == p {
			return true
		}
	}
	return false
}
