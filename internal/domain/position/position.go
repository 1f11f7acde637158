// Package position maps the stats provider's detailed position vocabulary
// onto the three fantasy IDP buckets.
package position

import (
	"strings"

	"github.com/okian/idpscout/internal/domain/model"
)

var fantasyPositions = map[string]model.Position{
	// defensive line
	"DE":   model.PositionDL,
	"DT":   model.PositionDL,
	"NT":   model.PositionDL,
	"DL":   model.PositionDL,
	"EDGE": model.PositionDL,
	"LDE":  model.PositionDL,
	"RDE":  model.PositionDL,
	"LDT":  model.PositionDL,
	"RDT":  model.PositionDL,

	// linebackers
	"LB":   model.PositionLB,
	"ILB":  model.PositionLB,
	"OLB":  model.PositionLB,
	"MLB":  model.PositionLB,
	"LILB": model.PositionLB,
	"RILB": model.PositionLB,
	"LOLB": model.PositionLB,
	"ROLB": model.PositionLB,
	"WLB":  model.PositionLB,
	"SLB":  model.PositionLB,

	// secondary
	"CB":  model.PositionDB,
	"S":   model.PositionDB,
	"SS":  model.PositionDB,
	"FS":  model.PositionDB,
	"DB":  model.PositionDB,
	"LCB": model.PositionDB,
	"RCB": model.PositionDB,
	"NB":  model.PositionDB,
}

// ToFantasy maps a provider position code to its fantasy bucket. The second
// result is false for codes outside the defensive vocabulary; callers must
// drop such records rather than default them.
func ToFantasy(code string) (model.Position, bool) {
	p, ok := fantasyPositions[strings.ToUpper(strings.TrimSpace(code))]
	return p, ok
}
