// Package scoring projects fantasy points from a defensive stat line using a
// league's points-per-unit table.
package scoring

import (
	"math"
	"strings"

	"github.com/okian/idpscout/internal/domain/model"
)

// Scoring categories understood by the calculator.
const (
	CategorySoloTackle     = "tkl_solo"
	CategoryAssistedTackle = "tkl_ast"
	CategoryTackleForLoss  = "tkl_loss"
	CategorySack           = "sack"
	CategoryInterception   = "int"
	CategoryPassDefended   = "pass_def"
	CategoryForcedFumble   = "ff"
	CategoryQBHit          = "qb_hit"
	CategoryTackle         = "tkl"
)

// platformPrefix marks IDP keys in league scoring settings, e.g. "idp_sack".
const platformPrefix = "idp_"

// Category pairs a scoring key with the stat it reads.
type Category struct {
	Key   string
	Value func(model.Stats) float64
}

// categories is folded in order; adding a scored stat is a new row here.
var categories = []Category{
	{CategorySoloTackle, func(s model.Stats) float64 { return s.SoloTackles }},
	{CategoryAssistedTackle, func(s model.Stats) float64 { return s.AssistedTackles() }},
	{CategoryTackleForLoss, func(s model.Stats) float64 { return s.TacklesForLoss }},
	{CategorySack, func(s model.Stats) float64 { return s.Sacks }},
	{CategoryInterception, func(s model.Stats) float64 { return s.Interceptions }},
	{CategoryPassDefended, func(s model.Stats) float64 { return s.PassesDefended }},
	{CategoryForcedFumble, func(s model.Stats) float64 { return s.ForcedFumbles }},
	{CategoryQBHit, func(s model.Stats) float64 { return s.QBHits }},
	{CategoryTackle, func(s model.Stats) float64 { return s.TotalTackles }},
}

// Categories returns the scoring categories in fold order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsCategory reports whether key is a known scoring category.
func IsCategory(key string) bool {
	for _, c := range categories {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Rules maps a scoring category to points per unit. A missing key means the
// category is not scored. Rules are treated as read-only.
type Rules map[string]float64

// DefaultRules returns a fresh copy of the built-in IDP table.
func DefaultRules() Rules {
	return Rules{
		CategorySoloTackle:     1,
		CategoryAssistedTackle: 0.5,
		CategoryTackleForLoss:  1,
		CategorySack:           2,
		CategoryInterception:   3,
		CategoryPassDefended:   1,
		CategoryForcedFumble:   2,
	}
}

// Clone returns a copy of r.
func (r Rules) Clone() Rules {
	if r == nil {
		return nil
	}
	out := make(Rules, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ScoresAny reports whether any known category has a non-zero rate.
func (r Rules) ScoresAny() bool {
	for _, c := range categories {
		if r[c.Key] != 0 {
			return true
		}
	}
	return false
}

// FromPlatform converts league scoring settings into Rules. Only keys with
// the "idp_" prefix are read; un-prefixed keys such as "int" score offense.
func FromPlatform(settings map[string]float64) Rules {
	out := make(Rules)
	for k, v := range settings {
		key := strings.ToLower(strings.TrimSpace(k))
		if !strings.HasPrefix(key, platformPrefix) {
			continue
		}
		key = strings.TrimPrefix(key, platformPrefix)
		if !IsCategory(key) {
			continue
		}
		out[key] = v
	}
	return out
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithDefaultRules sets the table used when no league table is supplied.
func WithDefaultRules(rules Rules) Option {
	return func(c *Calculator) {
		if len(rules) > 0 {
			c.defaults = rules.Clone()
		}
	}
}

// Calculator turns a stat line into a projection.
type Calculator struct {
	defaults Rules
}

// NewCalculator creates a calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{defaults: DefaultRules()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Defaults returns a copy of the fallback table.
func (c *Calculator) Defaults() Rules {
	return c.defaults.Clone()
}

// Calculate projects stats under rules; nil rules select the default table.
// Each contribution is rate times raw value; the total is rounded to one
// decimal once, after summing.
func (c *Calculator) Calculate(stats model.Stats, rules Rules) model.Projection {
	if rules == nil {
		rules = c.defaults
	}

	breakdown := make([]model.BreakdownEntry, 0, len(categories))
	total := 0.0
	for _, cat := range categories {
		rate := rules[cat.Key]
		raw := cat.Value(stats)
		if rate == 0 || raw == 0 {
			continue
		}
		pts := rate * raw
		total += pts
		breakdown = append(breakdown, model.BreakdownEntry{
			Stat:          cat.Key,
			RawValue:      raw,
			PointsPerUnit: rate,
			Points:        pts,
		})
	}

	return model.Projection{
		Total:     round1(total),
		Breakdown: breakdown,
	}
}

var defaultCalculator = NewCalculator()

// Calculate projects stats with the built-in default table as fallback.
func Calculate(stats model.Stats, rules Rules) model.Projection {
	return defaultCalculator.Calculate(stats, rules)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
