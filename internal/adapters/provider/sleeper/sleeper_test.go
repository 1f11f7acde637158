package sleeper_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/idpscout/internal/adapters/fetch"
	"github.com/okian/idpscout/internal/adapters/provider/sleeper"
	"github.com/okian/idpscout/internal/domain/model"
	"github.com/okian/idpscout/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func newServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/players/nfl", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"4881": {"player_id": "4881", "first_name": "Fred", "last_name": "Warner", "full_name": "Fred Warner", "team": "sf", "position": "LB"},
			"2133": {"player_id": "2133", "first_name": "Jonathan", "last_name": "Allen", "team": "WAS", "position": "DT"},
			"9999": {"player_id": "9999", "first_name": "Free", "last_name": "Agent", "team": null, "position": "CB"},
			"SF":   {"first_name": "", "last_name": "", "position": "DEF"}
		}`))
	})
	mux.HandleFunc("/user/scout", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"user_id": "u-1", "username": "scout"}`))
	})
	mux.HandleFunc("/user/nobody", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	mux.HandleFunc("/league/L1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"league_id": "L1", "scoring_settings": {"idp_sack": 4, "idp_tkl_solo": 1.5, "pass_td": 4, "int": -2}}`))
	})
	mux.HandleFunc("/league/L1/rosters", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"owner_id": "u-2", "players": ["2133"]},
			{"owner_id": "u-3", "co_owners": ["u-1"], "players": ["4881", "9999"]}
		]`))
	})
	return httptest.NewServer(mux)
}

func TestClient(t *testing.T) {
	Convey("Given a Sleeper API", t, func() {
		srv := newServer()
		defer srv.Close()
		client := sleeper.New(fetch.NewClient(fetch.WithRetry(1, 0)), sleeper.WithBaseURL(srv.URL))
		ctx := context.Background()

		Convey("When fetching the registry", func() {
			got, err := client.FetchRegistry(ctx)

			Convey("Then players are ordered by id and nameless rows dropped", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []model.PlatformPlayer{
					{ID: "2133", FirstName: "Jonathan", LastName: "Allen", Team: "WAS", Position: "DT"},
					{ID: "4881", FirstName: "Fred", LastName: "Warner", FullName: "Fred Warner", Team: "SF", Position: "LB"},
					{ID: "9999", FirstName: "Free", LastName: "Agent", Position: "CB"},
				})
			})
		})

		Convey("When resolving usernames", func() {
			id, err := client.ResolveUserID(ctx, "scout")
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "u-1")

			_, err = client.ResolveUserID(ctx, "nobody")
			So(errors.Is(err, sleeper.ErrUserNotFound), ShouldBeTrue)

			_, err = client.ResolveUserID(ctx, "ghost")
			So(errors.Is(err, sleeper.ErrUserNotFound), ShouldBeTrue)

			_, err = client.ResolveUserID(ctx, " ")
			So(errors.Is(err, sleeper.ErrUserNotFound), ShouldBeTrue)
		})

		Convey("When fetching league scoring", func() {
			rules, err := client.FetchLeagueScoring(ctx, "L1")

			Convey("Then only IDP settings become rules", func() {
				So(err, ShouldBeNil)
				So(rules, ShouldResemble, scoring.Rules{"sack": 4, "tkl_solo": 1.5})
			})

			Convey("Then an unknown league is reported", func() {
				_, err := client.FetchLeagueScoring(ctx, "L404")
				So(errors.Is(err, sleeper.ErrLeagueNotFound), ShouldBeTrue)
			})
		})

		Convey("When fetching roster ids", func() {
			ids, err := client.FetchRosterPlayerIDs(ctx, "L1", "u-1")
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []string{"4881", "9999"})

			none, err := client.FetchRosterPlayerIDs(ctx, "L1", "u-9")
			So(err, ShouldBeNil)
			So(none, ShouldBeEmpty)
		})
	})
}
