package model_test

import (
	"testing"

	"github.com/okian/idpscout/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParsePosition(t *testing.T) {
	convey.Convey("Given position bucket names", t, func() {
		convey.Convey("When the name is known in any case", func() {
			for in, want := range map[string]model.Position{"dl": model.PositionDL, " LB ": model.PositionLB, "Db": model.PositionDB} {
				got, ok := model.ParsePosition(in)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("When the name is a detailed or offensive position", func() {
			for _, in := range []string{"OLB", "QB", ""} {
				_, ok := model.ParsePosition(in)
				convey.So(ok, convey.ShouldBeFalse)
			}
		})
	})
}

func TestTierRank(t *testing.T) {
	convey.Convey("Given the tier labels", t, func() {
		convey.Convey("Then better tiers rank higher", func() {
			convey.So(model.TierElite.Rank(), convey.ShouldBeGreaterThan, model.TierGood.Rank())
			convey.So(model.TierGood.Rank(), convey.ShouldBeGreaterThan, model.TierAverage.Rank())
			convey.So(model.Tier("").Rank(), convey.ShouldEqual, model.TierAverage.Rank())
		})
	})
}

func TestStats(t *testing.T) {
	convey.Convey("Given a stat line", t, func() {
		s := model.Stats{TotalTackles: 100, SoloTackles: 70, Sacks: 6.5, TacklesForLoss: 9, QBHits: 12, PassesDefended: 4, Interceptions: 1, ForcedFumbles: 2}

		convey.Convey("Then assisted tackles are total minus solo", func() {
			convey.So(s.AssistedTackles(), convey.ShouldEqual, 30)
		})

		convey.Convey("Then assisted tackles never go negative", func() {
			convey.So(model.Stats{TotalTackles: 3, SoloTackles: 5}.AssistedTackles(), convey.ShouldEqual, 0)
		})

		convey.Convey("Then every stat key reads its column", func() {
			want := map[model.StatKey]float64{
				model.StatTackles:         100,
				model.StatSoloTackles:     70,
				model.StatAssistedTackles: 30,
				model.StatSacks:           6.5,
				model.StatTFL:             9,
				model.StatQBHits:          12,
				model.StatPassesDefended:  4,
				model.StatInterceptions:   1,
				model.StatForcedFumbles:   2,
			}
			for _, k := range model.StatKeys() {
				convey.So(s.Get(k), convey.ShouldEqual, want[k])
			}
			convey.So(s.Get("height"), convey.ShouldEqual, 0)
		})
	})
}

func TestSortColumn(t *testing.T) {
	convey.Convey("Given sort columns", t, func() {
		convey.Convey("Then named and stat columns are valid", func() {
			for _, c := range []model.SortColumn{model.SortByName, model.SortByTier, model.SortByProjection, "sacks", "assisted_tackles"} {
				convey.So(c.IsValid(), convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then unknown columns are rejected", func() {
			convey.So(model.SortColumn("height").IsValid(), convey.ShouldBeFalse)
		})

		convey.Convey("Then the default sort is total tackles descending", func() {
			convey.So(model.DefaultSort(), convey.ShouldResemble, model.SortSpec{Column: "tackles", Descending: true})
		})
	})
}

func TestPlayers(t *testing.T) {
	convey.Convey("Given platform and resolved players", t, func() {
		convey.Convey("Then the display name falls back to first and last name", func() {
			convey.So(model.PlatformPlayer{FullName: "Fred Warner"}.DisplayName(), convey.ShouldEqual, "Fred Warner")
			convey.So(model.PlatformPlayer{FirstName: "Fred", LastName: "Warner"}.DisplayName(), convey.ShouldEqual, "Fred Warner")
			convey.So(model.PlatformPlayer{LastName: "Warner"}.DisplayName(), convey.ShouldEqual, "Warner")
		})

		convey.Convey("Then a player is linked only with a platform id", func() {
			convey.So(model.ResolvedPlayer{}.Linked(), convey.ShouldBeFalse)
			convey.So(model.ResolvedPlayer{PlatformPlayerID: "4037"}.Linked(), convey.ShouldBeTrue)
		})

		convey.Convey("Then empty criteria keep every position", func() {
			convey.So(model.FilterCriteria{}.EffectivePositions(), convey.ShouldResemble, model.AllPositions())
			only := model.FilterCriteria{Positions: []model.Position{model.PositionDB}}
			convey.So(only.EffectivePositions(), convey.ShouldResemble, []model.Position{model.PositionDB})
		})
	})
}
