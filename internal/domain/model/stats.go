package model

import "math"

// StatKey names a raw stat column. Keys are shared by the tier tables, the
// filter thresholds and the sort columns.
type StatKey string

// Raw stat columns.
const (
	StatTackles         StatKey = "tackles"
	StatSoloTackles     StatKey = "solo_tackles"
	StatAssistedTackles StatKey = "assisted_tackles"
	StatSacks           StatKey = "sacks"
	StatTFL             StatKey = "tfl"
	StatQBHits          StatKey = "qb_hits"
	StatPassesDefended  StatKey = "passes_defended"
	StatInterceptions   StatKey = "interceptions"
	StatForcedFumbles   StatKey = "forced_fumbles"
)

// StatKeys lists every raw stat column.
func StatKeys() []StatKey {
	return []StatKey{
		StatTackles, StatSoloTackles, StatAssistedTackles, StatSacks, StatTFL,
		StatQBHits, StatPassesDefended, StatInterceptions, StatForcedFumbles,
	}
}

// Stats is a season stat bundle. Missing numbers are zero.
type Stats struct {
	TotalTackles   float64 `json:"total_tackles"`
	SoloTackles    float64 `json:"solo_tackles"`
	Sacks          float64 `json:"sacks"`
	TacklesForLoss float64 `json:"tackles_for_loss"`
	QBHits         float64 `json:"qb_hits"`
	PassesDefended float64 `json:"passes_defended"`
	Interceptions  float64 `json:"interceptions"`
	ForcedFumbles  float64 `json:"forced_fumbles"`
}

// AssistedTackles derives assisted tackles as total minus solo, never negative.
func (s Stats) AssistedTackles() float64 {
	return math.Max(0, s.TotalTackles-s.SoloTackles)
}

// Get returns the value of a stat column; unknown keys read as zero.
func (s Stats) Get(k StatKey) float64 {
	switch k {
	case StatTackles:
		return s.TotalTackles
	case StatSoloTackles:
		return s.SoloTackles
	case StatAssistedTackles:
		return s.AssistedTackles()
	case StatSacks:
		return s.Sacks
	case StatTFL:
		return s.TacklesForLoss
	case StatQBHits:
		return s.QBHits
	case StatPassesDefended:
		return s.PassesDefended
	case StatInterceptions:
		return s.Interceptions
	case StatForcedFumbles:
		return s.ForcedFumbles
	}
	return 0
}

// IsStatKey reports whether k names a known stat column.
func IsStatKey(k string) bool {
	for _, key := range StatKeys() {
		if string(key) == k {
			return true
		}
	}
	return false
}
