// Package match links stats-provider records to identities in the fantasy
// platform's player registry. The two data sets share no keys, so matching
// goes through normalized names and mapped team codes.
package match

import (
	"sort"

	"github.com/okian/idpscout/internal/domain/model"
	"github.com/okian/idpscout/internal/domain/normalize"
	"github.com/okian/idpscout/internal/domain/position"
)

// Kind tells which matching step produced a result.
type Kind string

// Match kinds.
const (
	KindTeam Kind = "team" // normalized name and mapped team agree
	KindName Kind = "name" // normalized name only
	KindNone Kind = "none"
)

// Result is a successful match.
type Result struct {
	Player model.PlatformPlayer
	Kind   Kind
}

type candidate struct {
	player    model.PlatformPlayer
	team      string
	defensive bool
}

// Index is a read-only multi-map from normalized name to registry entries.
// It is safe for concurrent use once built.
type Index struct {
	byName map[string][]candidate
	strict bool
	size   int
}

// Option applies a configuration option to the Index.
type Option func(*Index)

// WithStrict disables the name-only fallback so a match always requires the
// teams to agree.
func WithStrict(strict bool) Option {
	return func(ix *Index) {
		ix.strict = strict
	}
}

// NewIndex builds an index over the registry. Candidates sharing a name are
// ordered defensive positions first, then by platform id, so lookups are
// deterministic.
func NewIndex(registry []model.PlatformPlayer, opts ...Option) *Index {
	ix := &Index{byName: make(map[string][]candidate, len(registry))}
	for _, opt := range opts {
		opt(ix)
	}

	for _, p := range registry {
		key := normalize.Name(p.DisplayName())
		if key == "" {
			continue
		}
		_, defensive := position.ToFantasy(p.Position)
		ix.byName[key] = append(ix.byName[key], candidate{
			player:    p,
			team:      normalize.PlatformTeam(p.Team),
			defensive: defensive,
		})
		ix.size++
	}
	for _, list := range ix.byName {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].defensive != list[j].defensive {
				return list[i].defensive
			}
			return list[i].player.ID < list[j].player.ID
		})
	}
	return ix
}

// Len returns the number of indexed registry entries.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.size
}

// Find returns the best platform identity for rec. The first step that hits
// wins: exact normalized name plus mapped team, then normalized name alone.
// The second result is false when the player stays unlinked.
func (ix *Index) Find(rec model.ExternalStatRecord) (Result, bool) {
	if ix == nil {
		return Result{Kind: KindNone}, false
	}
	list := ix.byName[normalize.Name(rec.Name)]
	if len(list) == 0 {
		return Result{Kind: KindNone}, false
	}

	team := normalize.Team(rec.Team)
	if team != "" {
		for _, c := range list {
			if c.team == team {
				return Result{Player: c.player, Kind: KindTeam}, true
			}
		}
	}

	if ix.strict {
		return Result{Kind: KindNone}, false
	}
	// Ambiguous names resolve to a defensive entry when there is one.
	return Result{Player: list[0].player, Kind: KindName}, true
}

// FindPlatformMatch is a one-shot convenience over NewIndex and Find.
func FindPlatformMatch(rec model.ExternalStatRecord, registry []model.PlatformPlayer) (model.PlatformPlayer, bool) {
	res, ok := NewIndex(registry).Find(rec)
	return res.Player, ok
}
