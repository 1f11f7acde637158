package search

import (
	"sort"
	"strings"

	"github.com/okian/idpscout/internal/domain/model"
)

// Projector returns a player's projected points under the active table.
type Projector func(model.ResolvedPlayer) float64

// Sort returns a sorted copy of players. Ties are broken by provider id in
// ascending order regardless of direction. project is required only for the
// projection column; it is evaluated once per player.
func Sort(players []model.ResolvedPlayer, spec model.SortSpec, project Projector) []model.ResolvedPlayer {
	out := make([]model.ResolvedPlayer, len(players))
	copy(out, players)

	cmp := comparator(out, spec.Column, project)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(i, j)
		if c == 0 {
			return out[i].ProviderID < out[j].ProviderID
		}
		if spec.Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

// comparator returns a three-way compare over indexes of players. Keys are
// computed up front and keyed by provider id so swaps during sorting do not
// disturb them.
func comparator(players []model.ResolvedPlayer, col model.SortColumn, project Projector) func(i, j int) int {
	switch col {
	case model.SortByName:
		return func(i, j int) int {
			return strings.Compare(strings.ToLower(players[i].Name), strings.ToLower(players[j].Name))
		}
	case model.SortByTeam:
		return func(i, j int) int {
			return strings.Compare(strings.ToUpper(players[i].Team), strings.ToUpper(players[j].Team))
		}
	case model.SortByPosition:
		return func(i, j int) int {
			return strings.Compare(string(players[i].Position), string(players[j].Position))
		}
	case model.SortByTier:
		return func(i, j int) int {
			return compareFloat(float64(players[i].Tier.Rank()), float64(players[j].Tier.Rank()))
		}
	case model.SortByProjection:
		points := make(map[string]float64, len(players))
		for _, p := range players {
			if project != nil {
				points[p.ProviderID] = project(p)
			}
		}
		return func(i, j int) int {
			return compareFloat(points[players[i].ProviderID], points[players[j].ProviderID])
		}
	default:
		key := model.StatKey(col)
		return func(i, j int) int {
			return compareFloat(players[i].Stats.Get(key), players[j].Stats.Get(key))
		}
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
