package espn_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/idpscout/internal/adapters/fetch"
	"github.com/okian/idpscout/internal/adapters/provider/espn"
	"github.com/okian/idpscout/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const leadersBody = `{
  "categories": [
    {"name": "sacks", "leaders": [
      {"value": 15.5, "athlete": {"$ref": "http://x/v2/sports/football/leagues/nfl/seasons/2024/athletes/3915416?lang=en"}},
      {"value": "12", "athlete": {"$ref": "http://x/athletes/4035222"}},
      {"value": 9, "athlete": {"$ref": "http://x/teams/25"}}
    ]},
    {"name": "totalTackles", "leaders": [
      {"value": 170, "athlete": {"$ref": "http://x/athletes/4361307"}}
    ]}
  ]
}`

const profileBody = `{
  "athlete": {
    "id": "4361307",
    "displayName": "Fred Warner",
    "age": 28,
    "jersey": "54",
    "experience": {"years": 7},
    "position": {"abbreviation": "lb"},
    "team": {"abbreviation": "SF"}
  }
}`

const statsBody = `{
  "splits": {
    "categories": [
      {"name": "defensive", "stats": [
        {"name": "totalTackles", "value": 132},
        {"name": "soloTackles", "value": "80"},
        {"name": "sacks", "value": 2.5},
        {"name": "tacklesForLoss", "value": null},
        {"name": "QBHits", "value": "n/a"},
        {"name": "passesDefended", "value": 8}
      ]},
      {"name": "defensiveInterceptions", "stats": [
        {"name": "interceptions", "value": 2}
      ]},
      {"name": "general", "stats": [
        {"name": "fumblesForced", "value": 1}
      ]},
      {"name": "passing", "stats": [
        {"name": "interceptions", "value": 14}
      ]}
    ]
  }
}`

const nonFiniteStatsBody = `{
  "splits": {
    "categories": [
      {"name": "defensive", "stats": [
        {"name": "totalTackles", "value": "Infinity"},
        {"name": "soloTackles", "value": "-Inf"},
        {"name": "sacks", "value": "NaN"},
        {"name": "passesDefended", "value": 3}
      ]}
    ]
  }
}`

func newServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/leaders"):
			_, _ = w.Write([]byte(leadersBody))
		case strings.HasSuffix(r.URL.Path, "/athletes/4361307"):
			_, _ = w.Write([]byte(profileBody))
		case strings.HasSuffix(r.URL.Path, "/athletes/4361307/statistics"):
			_, _ = w.Write([]byte(statsBody))
		case strings.HasSuffix(r.URL.Path, "/athletes/77"):
			_, _ = w.Write([]byte(`{"athlete": {"id": "77", "displayName": "Nick Bosa", "position": {"abbreviation": "DE"}, "team": {"abbreviation": "SF"}}}`))
		case strings.HasSuffix(r.URL.Path, "/athletes/77/statistics"):
			_, _ = w.Write([]byte(nonFiniteStatsBody))
		case strings.HasSuffix(r.URL.Path, "/athletes/1"):
			_, _ = w.Write([]byte(`{"athlete": {"id": 1}}`))
		case strings.Contains(r.URL.Path, "/athletes/1/"):
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestFetchLeaders(t *testing.T) {
	Convey("Given an ESPN leaders endpoint", t, func() {
		srv := newServer()
		defer srv.Close()
		client := espn.New(fetch.NewClient(fetch.WithRetry(1, 0)), espn.WithBaseURLs(srv.URL, srv.URL), espn.WithLeadersLimit(25))
		ctx := context.Background()

		Convey("When fetching a category", func() {
			got, err := client.FetchLeaders(ctx, 2024, "sacks")

			Convey("Then athlete ids are parsed from references", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []model.LeaderEntry{
					{Category: "sacks", AthleteID: "3915416", Value: 15.5},
					{Category: "sacks", AthleteID: "4035222", Value: 12},
				})
			})
		})

		Convey("When the category is absent", func() {
			_, err := client.FetchLeaders(ctx, 2024, "punts")

			So(errors.Is(err, espn.ErrCategoryMissing), ShouldBeTrue)
		})
	})

	Convey("Given a failing upstream", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		client := espn.New(fetch.NewClient(fetch.WithRetry(1, 0)), espn.WithBaseURLs(srv.URL, srv.URL))

		_, err := client.FetchLeaders(context.Background(), 2024, "sacks")

		So(errors.Is(err, fetch.ErrUpstream), ShouldBeTrue)
	})
}

func TestFetchAthlete(t *testing.T) {
	Convey("Given ESPN athlete endpoints", t, func() {
		srv := newServer()
		defer srv.Close()
		client := espn.New(fetch.NewClient(fetch.WithRetry(1, 0)), espn.WithBaseURLs(srv.URL+"/", srv.URL))
		ctx := context.Background()

		Convey("When fetching a known athlete", func() {
			rec, err := client.FetchAthlete(ctx, 2024, "4361307")

			Convey("Then the profile is mapped", func() {
				So(err, ShouldBeNil)
				So(rec.ProviderID, ShouldEqual, "4361307")
				So(rec.Name, ShouldEqual, "Fred Warner")
				So(rec.Team, ShouldEqual, "SF")
				So(rec.PositionCode, ShouldEqual, "LB")
				So(rec.Season, ShouldEqual, 2024)
				So(rec.Age, ShouldEqual, 28)
				So(rec.Experience, ShouldEqual, 7)
				So(rec.Jersey, ShouldEqual, "54")
			})

			Convey("Then defensive stats are read tolerantly", func() {
				So(rec.Stats, ShouldResemble, model.Stats{
					TotalTackles:   132,
					SoloTackles:    80,
					Sacks:          2.5,
					PassesDefended: 8,
					Interceptions:  2,
					ForcedFumbles:  1,
				})
			})
		})

		Convey("When stats carry non-finite numbers", func() {
			rec, err := client.FetchAthlete(ctx, 2024, "77")

			Convey("Then they decode as zero", func() {
				So(err, ShouldBeNil)
				So(rec.Stats, ShouldResemble, model.Stats{PassesDefended: 3})
			})
		})

		Convey("When the profile has no name", func() {
			_, err := client.FetchAthlete(ctx, 2024, "1")

			So(errors.Is(err, espn.ErrInvalidAthlete), ShouldBeTrue)
		})

		Convey("When the athlete does not exist", func() {
			_, err := client.FetchAthlete(ctx, 2024, "999")

			var se *fetch.StatusError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.NotFound(), ShouldBeTrue)
		})
	})
}
