package model

// FilterCriteria selects a subset of resolved players. It is passed by value
// and never retained by the engine.
type FilterCriteria struct {
	// Positions to keep; empty means all three buckets.
	Positions []Position

	// Minimum thresholds; zero disables a threshold.
	MinTackles        float64
	MinSacks          float64
	MinTFL            float64
	MinForcedFumbles  float64
	MinPassesDefended float64

	// Season keeps only records of that season when > 0.
	Season int

	// ExcludeRostered drops players already on the caller's roster.
	ExcludeRostered bool
}

// EffectivePositions returns Positions, or all buckets when none are set.
func (c FilterCriteria) EffectivePositions() []Position {
	if len(c.Positions) == 0 {
		return AllPositions()
	}
	return c.Positions
}

// SortColumn names a sortable column: "name", "team", "position", "tier",
// "projection", or any StatKey.
type SortColumn string

// Non-stat sort columns.
const (
	SortByName       SortColumn = "name"
	SortByTeam       SortColumn = "team"
	SortByPosition   SortColumn = "position"
	SortByTier       SortColumn = "tier"
	SortByProjection SortColumn = "projection"
)

// IsValid reports whether c is a known column.
func (c SortColumn) IsValid() bool {
	switch c {
	case SortByName, SortByTeam, SortByPosition, SortByTier, SortByProjection:
		return true
	}
	return IsStatKey(string(c))
}

// SortSpec orders a player list.
type SortSpec struct {
	Column     SortColumn
	Descending bool
}

// Textual reports whether c compares strings. Text columns default to
// ascending order, everything else to descending.
func (c SortColumn) Textual() bool {
	switch c {
	case SortByName, SortByTeam, SortByPosition:
		return true
	}
	return false
}

// DefaultSort orders by total tackles, highest first.
func DefaultSort() SortSpec {
	return SortSpec{Column: SortColumn(StatTackles), Descending: true}
}

// Projection is a league-specific fantasy point projection.
type Projection struct {
	Total     float64          `json:"total"`
	Breakdown []BreakdownEntry `json:"breakdown"`
}

// BreakdownEntry is one scored category of a projection.
type BreakdownEntry struct {
	Stat          string  `json:"stat"`
	RawValue      float64 `json:"raw_value"`
	PointsPerUnit float64 `json:"points_per_unit"`
	Points        float64 `json:"points"`
}
