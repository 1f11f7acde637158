// Package search combines provider records, the platform registry and the
// caller's roster into resolved players, then derives filtered and sorted
// views over them. Nothing here mutates its inputs.
package search

import (
	"sort"

	"github.com/okian/idpscout/internal/domain/match"
	"github.com/okian/idpscout/internal/domain/model"
	"github.com/okian/idpscout/internal/domain/position"
	"github.com/okian/idpscout/internal/domain/tier"
)

// ResolveStats counts what happened to the input records.
type ResolveStats struct {
	Input      int
	Dropped    int // unmappable position
	Duplicates int
	LinkedTeam int
	LinkedName int
	Unlinked   int
}

// Resolver builds ResolvedPlayer values.
type Resolver struct {
	classifier *tier.Classifier
}

// NewResolver creates a resolver; a nil classifier selects the default tiers.
func NewResolver(classifier *tier.Classifier) *Resolver {
	if classifier == nil {
		classifier = tier.NewClassifier(nil)
	}
	return &Resolver{classifier: classifier}
}

// Resolve maps each record to a fantasy bucket, links it to a platform
// identity through idx and flags roster membership. Records whose position
// cannot be mapped are dropped. Duplicate provider ids keep the first record.
// The output is ordered by provider id.
func (r *Resolver) Resolve(records []model.ExternalStatRecord, idx *match.Index, rosterIDs []string) ([]model.ResolvedPlayer, ResolveStats) {
	st := ResolveStats{Input: len(records)}

	roster := make(map[string]struct{}, len(rosterIDs))
	for _, id := range rosterIDs {
		roster[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]model.ResolvedPlayer, 0, len(records))
	for _, rec := range records {
		pos, ok := position.ToFantasy(rec.PositionCode)
		if !ok {
			st.Dropped++
			continue
		}
		if _, dup := seen[rec.ProviderID]; dup {
			st.Duplicates++
			continue
		}
		seen[rec.ProviderID] = struct{}{}

		rp := model.ResolvedPlayer{
			ExternalStatRecord: rec,
			Position:           pos,
			Tier:               r.classifier.Classify(pos, rec.Stats),
		}

		res, linked := idx.Find(rec)
		switch {
		case !linked:
			st.Unlinked++
		case res.Kind == match.KindTeam:
			st.LinkedTeam++
		default:
			st.LinkedName++
		}
		if linked {
			rp.PlatformPlayerID = res.Player.ID
			_, rp.IsOnUserRoster = roster[res.Player.ID]
		}
		out = append(out, rp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProviderID < out[j].ProviderID
	})
	return out, st
}

// Resolve uses the default tier tables.
func Resolve(records []model.ExternalStatRecord, idx *match.Index, rosterIDs []string) ([]model.ResolvedPlayer, ResolveStats) {
	return NewResolver(nil).Resolve(records, idx, rosterIDs)
}
