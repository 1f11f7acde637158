package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/idpscout/internal/domain/model"
	scoring "github.com/okian/idpscout/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalculator_Calculate(t *testing.T) {
	Convey("Given a linebacker with 112 tackles, 60 solo, 3 sacks and 2 TFL", t, func() {
		stats := model.Stats{TotalTackles: 112, SoloTackles: 60, Sacks: 3, TacklesForLoss: 2}
		calc := scoring.NewCalculator()

		Convey("When projecting under a league table", func() {
			rules := scoring.Rules{"sack": 2, "tkl_solo": 1, "tkl_ast": 0.5}
			got := calc.Calculate(stats, rules)

			Convey("Then the total is 92.0", func() {
				So(got.Total, ShouldEqual, 92.0)
			})

			Convey("And the breakdown lists scored categories in order", func() {
				So(got.Breakdown, ShouldResemble, []model.BreakdownEntry{
					{Stat: "tkl_solo", RawValue: 60, PointsPerUnit: 1, Points: 60},
					{Stat: "tkl_ast", RawValue: 52, PointsPerUnit: 0.5, Points: 26},
					{Stat: "sack", RawValue: 3, PointsPerUnit: 2, Points: 6},
				})
			})
		})

		Convey("When no league table is supplied", func() {
			got := calc.Calculate(stats, nil)

			Convey("Then the default table is used transparently", func() {
				So(got, ShouldResemble, calc.Calculate(stats, scoring.DefaultRules()))
				So(got.Total, ShouldEqual, 60+26+2+6)
			})
		})

		Convey("When the league table is empty", func() {
			got := calc.Calculate(stats, scoring.Rules{})

			Convey("Then nothing is scored", func() {
				So(got.Total, ShouldEqual, 0)
				So(got.Breakdown, ShouldBeEmpty)
			})
		})

		Convey("When a category has a zero rate or zero raw value", func() {
			got := calc.Calculate(stats, scoring.Rules{"sack": 0, "int": 5, "tkl_loss": 1})

			Convey("Then it is omitted from the breakdown", func() {
				So(len(got.Breakdown), ShouldEqual, 1)
				So(got.Breakdown[0].Stat, ShouldEqual, "tkl_loss")
				So(got.Total, ShouldEqual, 2)
			})
		})

		Convey("When a flat tackle bonus is configured", func() {
			got := calc.Calculate(stats, scoring.Rules{"tkl": 0.25})

			So(got.Total, ShouldEqual, 28)
		})

		Convey("When the calculator is given a different default table", func() {
			custom := scoring.NewCalculator(scoring.WithDefaultRules(scoring.Rules{"sack": 10}))

			So(custom.Calculate(stats, nil).Total, ShouldEqual, 30)
			So(calc.Calculate(stats, nil).Total, ShouldEqual, 94)
		})
	})

	Convey("Given fractional rates and values", t, func() {
		stats := model.Stats{Sacks: 0.5, SoloTackles: 3, TotalTackles: 4, PassesDefended: 1}
		rules := scoring.Rules{"sack": 3.3, "tkl_solo": 0.33, "tkl_ast": 0.17, "pass_def": 1.05}
		got := scoring.Calculate(stats, rules)

		Convey("Then each contribution is rate times value exactly", func() {
			for _, e := range got.Breakdown {
				So(e.Points, ShouldEqual, e.PointsPerUnit*e.RawValue)
			}
		})

		Convey("And the total is rounded once after summing", func() {
			sum := 0.0
			for _, e := range got.Breakdown {
				sum += e.Points
			}
			So(got.Total, ShouldEqual, math.Round(sum*10)/10)
		})
	})

	Convey("Given solo tackles above the total", t, func() {
		got := scoring.Calculate(model.Stats{TotalTackles: 5, SoloTackles: 7}, scoring.Rules{"tkl_ast": 1})

		Convey("Then assisted tackles floor at zero", func() {
			So(got.Total, ShouldEqual, 0)
			So(got.Breakdown, ShouldBeEmpty)
		})
	})
}

func TestRules(t *testing.T) {
	Convey("Given league scoring settings", t, func() {
		settings := map[string]float64{
			"idp_sack":     4,
			"idp_tkl_solo": 1.5,
			"IDP_INT":      3,
			"pass_td":      4,
			"rec":          1,
			"int":          -2,
		}

		Convey("When converting to rules", func() {
			rules := scoring.FromPlatform(settings)

			Convey("Then only IDP categories are kept, without prefix", func() {
				So(rules, ShouldResemble, scoring.Rules{"sack": 4, "tkl_solo": 1.5, "int": 3})
				So(rules.ScoresAny(), ShouldBeTrue)
			})
		})

		Convey("When the league has no IDP scoring", func() {
			rules := scoring.FromPlatform(map[string]float64{"pass_td": 4, "idp_sack": 0})

			So(rules.ScoresAny(), ShouldBeFalse)
		})
	})

	Convey("Given the default table", t, func() {
		a := scoring.DefaultRules()
		a["sack"] = 100

		Convey("Then callers cannot mutate later copies", func() {
			So(scoring.DefaultRules()["sack"], ShouldEqual, 2)
			So(scoring.NewCalculator().Defaults()["sack"], ShouldEqual, 2)
		})
	})

	Convey("Given the category list", t, func() {
		So(scoring.IsCategory("tkl_solo"), ShouldBeTrue)
		So(scoring.IsCategory("pass_td"), ShouldBeFalse)
		So(len(scoring.Categories()), ShouldEqual, 9)
	})
}
