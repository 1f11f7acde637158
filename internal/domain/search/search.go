package search

import (
	"github.com/okian/idpscout/internal/domain/model"
	"github.com/okian/idpscout/internal/domain/scoring"
)

// Input describes one derived view over a resolved set.
type Input struct {
	Players  []model.ResolvedPlayer
	Criteria model.FilterCriteria
	Sort     model.SortSpec

	// Calculator and Rules drive projections; nil Rules select the
	// calculator's default table.
	Calculator *scoring.Calculator
	Rules      scoring.Rules

	// WithProjection attaches a projection to every returned row.
	WithProjection bool

	// Limit caps the number of rows when > 0.
	Limit int
}

// Row is one player of a view.
type Row struct {
	Player     model.ResolvedPlayer
	Projection *model.Projection
}

// Output is a filtered, sorted view.
type Output struct {
	Rows    []Row
	Matched int // rows before Limit was applied
}

// Run filters, sorts and limits in.Players. It is a pure function of its
// input and may be called concurrently.
func Run(in Input) Output {
	calc := in.Calculator
	if calc == nil {
		calc = scoring.NewCalculator()
	}
	project := func(p model.ResolvedPlayer) float64 {
		return calc.Calculate(p.Stats, in.Rules).Total
	}

	spec := in.Sort
	if spec.Column == "" || !spec.Column.IsValid() {
		spec = model.DefaultSort()
	}

	filtered := Filter(in.Players, in.Criteria)
	sorted := Sort(filtered, spec, project)

	out := Output{Matched: len(sorted)}
	if in.Limit > 0 && len(sorted) > in.Limit {
		sorted = sorted[:in.Limit]
	}

	out.Rows = make([]Row, len(sorted))
	for i, p := range sorted {
		out.Rows[i] = Row{Player: p}
		if in.WithProjection {
			proj := calc.Calculate(p.Stats, in.Rules)
			out.Rows[i].Projection = &proj
		}
	}
	return out
}
