// Package model contains domain models passed between layers.
package model

import "strings"

// Position is one of the three fantasy IDP buckets.
type Position string

// Fantasy position buckets.
const (
	PositionDL Position = "DL"
	PositionLB Position = "LB"
	PositionDB Position = "DB"
)

// AllPositions lists every bucket in display order.
func AllPositions() []Position {
	return []Position{PositionDL, PositionLB, PositionDB}
}

// ParsePosition accepts a bucket name in any case.
func ParsePosition(s string) (Position, bool) {
	switch Position(strings.ToUpper(strings.TrimSpace(s))) {
	case PositionDL:
		return PositionDL, true
	case PositionLB:
		return PositionLB, true
	case PositionDB:
		return PositionDB, true
	}
	return "", false
}

// Tier is a coarse, position-specific quality label.
type Tier string

// Tier labels, best first.
const (
	TierElite   Tier = "elite"
	TierGood    Tier = "good"
	TierAverage Tier = "average"
)

// Rank orders tiers so that a higher value is a better tier.
func (t Tier) Rank() int {
	switch t {
	case TierElite:
		return 2
	case TierGood:
		return 1
	default:
		return 0
	}
}

// ExternalStatRecord is one defensive player's season line as reported by the
// external stats provider, keyed by the provider's own athlete id.
type ExternalStatRecord struct {
	ProviderID   string // provider athlete id
	Name         string // display name
	Team         string // provider team abbreviation
	PositionCode string // detailed provider position, e.g. "OLB"
	Season       int

	// Optional profile fields; zero means unknown.
	Age        int
	Experience int
	Jersey     string

	Stats Stats
}

// PlatformPlayer is a row of the fantasy platform's player registry.
type PlatformPlayer struct {
	ID        string
	FirstName string
	LastName  string
	FullName  string
	Team      string
	Position  string
}

// DisplayName returns FullName, or first and last name joined when it is empty.
func (p PlatformPlayer) DisplayName() string {
	if strings.TrimSpace(p.FullName) != "" {
		return p.FullName
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ResolvedPlayer merges a provider record with an optional platform identity.
// PlatformPlayerID is a weak reference; empty means the player is unlinked.
type ResolvedPlayer struct {
	ExternalStatRecord

	Position         Position
	Tier             Tier
	PlatformPlayerID string
	IsOnUserRoster   bool
}

// Linked reports whether a platform identity was matched.
func (p ResolvedPlayer) Linked() bool {
	return p.PlatformPlayerID != ""
}

// LeaderEntry is one row of a provider leaderboard for a stat category.
type LeaderEntry struct {
	Category  string
	AthleteID string
	Value     float64
}
