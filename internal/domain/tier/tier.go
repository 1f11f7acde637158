// Package tier labels a defensive player's season as elite, good or average
// using position-specific stat thresholds.
package tier

import "github.com/okian/idpscout/internal/domain/model"

// Threshold is a minimum value for one stat column.
type Threshold struct {
	Stat model.StatKey
	Min  float64
}

// Table holds the elite and good thresholds for one position. A player
// reaches a level when any one of its thresholds is met.
type Table struct {
	Elite []Threshold
	Good  []Threshold
}

// Tables maps each position bucket to its thresholds.
type Tables map[model.Position]Table

// DefaultTables returns the built-in thresholds. Pass rushers show up in
// sacks and tackles for loss, linebackers in tackle volume, defensive backs
// in tackles, passes defended or interceptions.
func DefaultTables() Tables {
	return Tables{
		model.PositionDL: {
			Elite: []Threshold{{model.StatSacks, 10}, {model.StatTFL, 15}},
			Good:  []Threshold{{model.StatSacks, 6}, {model.StatTFL, 8}},
		},
		model.PositionLB: {
			Elite: []Threshold{{model.StatTackles, 110}, {model.StatSacks, 8}},
			Good:  []Threshold{{model.StatTackles, 80}, {model.StatSacks, 4}},
		},
		model.PositionDB: {
			Elite: []Threshold{{model.StatTackles, 90}, {model.StatPassesDefended, 15}, {model.StatInterceptions, 5}},
			Good:  []Threshold{{model.StatTackles, 65}, {model.StatPassesDefended, 10}, {model.StatInterceptions, 3}},
		},
	}
}

// Classifier applies a set of tables.
type Classifier struct {
	tables Tables
}

// NewClassifier creates a classifier; nil tables select DefaultTables.
func NewClassifier(tables Tables) *Classifier {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Classifier{tables: tables}
}

// Classify returns elite when any elite threshold is met, else good when any
// good threshold is met, else average. Positions without a table are average.
func (c *Classifier) Classify(pos model.Position, stats model.Stats) model.Tier {
	t, ok := c.tables[pos]
	if !ok {
		return model.TierAverage
	}
	switch {
	case anyMet(t.Elite, stats):
		return model.TierElite
	case anyMet(t.Good, stats):
		return model.TierGood
	default:
		return model.TierAverage
	}
}

func anyMet(thresholds []Threshold, stats model.Stats) bool {
	for _, th := range thresholds {
		if stats.Get(th.Stat) >= th.Min {
			return true
		}
	}
	return false
}

var defaultClassifier = NewClassifier(nil)

// Classify uses the default tables.
func Classify(pos model.Position, stats model.Stats) model.Tier {
	return defaultClassifier.Classify(pos, stats)
}
