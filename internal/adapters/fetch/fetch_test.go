package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/idpscout/internal/adapters/fetch"
	. "github.com/smartystreets/goconvey/convey"
)

type payload struct {
	Name string `json:"name"`
}

func TestMemoryCache(t *testing.T) {
	Convey("Given a memory cache with a fixed clock", t, func() {
		now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
		cache := fetch.NewMemoryCache(fetch.WithClock(func() time.Time { return now }))
		ctx := context.Background()

		Convey("When a value is stored with a ttl", func() {
			So(cache.Set(ctx, "k", []byte("v"), time.Minute), ShouldBeNil)

			Convey("Then it is returned before expiry", func() {
				got, ok, err := cache.Get(ctx, "k")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(string(got), ShouldEqual, "v")
			})

			Convey("Then it is a miss once the ttl elapsed", func() {
				now = now.Add(time.Minute)
				_, ok, err := cache.Get(ctx, "k")
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(cache.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a key was never stored", func() {
			_, ok, err := cache.Get(ctx, "missing")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When the ttl is zero", func() {
			So(cache.Set(ctx, "forever", []byte("x"), 0), ShouldBeNil)
			now = now.Add(1000 * time.Hour)
			_, ok, _ := cache.Get(ctx, "forever")
			So(ok, ShouldBeTrue)
		})

		Convey("Then the backend is named", func() {
			So(cache.Backend(), ShouldEqual, "memory")
		})
	})
}

func TestClientGetJSON(t *testing.T) {
	Convey("Given an upstream server", t, func() {
		var hits int32
		var failFirst int32
		var status int32 = http.StatusOK
		var userAgent atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := atomic.AddInt32(&hits, 1)
			if n <= atomic.LoadInt32(&failFirst) {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			if r.URL.Path == "/bad" {
				_, _ = w.Write([]byte("not json"))
				return
			}
			if code := int(atomic.LoadInt32(&status)); code != http.StatusOK {
				w.WriteHeader(code)
				return
			}
			userAgent.Store(r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(`{"name":"Fred Warner"}`))
		}))
		defer srv.Close()

		cache := fetch.NewMemoryCache()
		client := fetch.NewClient(
			fetch.WithUserAgent("scout-test"),
			fetch.WithRetry(3, time.Millisecond),
			fetch.WithCache(cache),
			fetch.WithProvider("test"),
		)
		ctx := context.Background()

		Convey("When fetching with a ttl twice", func() {
			var a, b payload
			So(client.GetJSON(ctx, srv.URL+"/p", time.Minute, &a), ShouldBeNil)
			So(client.GetJSON(ctx, srv.URL+"/p", time.Minute, &b), ShouldBeNil)

			Convey("Then the second read is served from cache", func() {
				So(a.Name, ShouldEqual, "Fred Warner")
				So(b, ShouldResemble, a)
				So(atomic.LoadInt32(&hits), ShouldEqual, 1)
				So(userAgent.Load(), ShouldEqual, "scout-test")
			})
		})

		Convey("When fetching without a ttl", func() {
			var p payload
			So(client.GetJSON(ctx, srv.URL+"/p", 0, &p), ShouldBeNil)
			So(client.GetJSON(ctx, srv.URL+"/p", 0, &p), ShouldBeNil)

			Convey("Then the cache is bypassed", func() {
				So(atomic.LoadInt32(&hits), ShouldEqual, 2)
				So(cache.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the upstream fails transiently", func() {
			atomic.StoreInt32(&failFirst, 2)
			var p payload
			err := client.GetJSON(ctx, srv.URL+"/p", 0, &p)

			Convey("Then the request is retried until it succeeds", func() {
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "Fred Warner")
				So(atomic.LoadInt32(&hits), ShouldEqual, 3)
			})
		})

		Convey("When the upstream keeps failing", func() {
			atomic.StoreInt32(&failFirst, 100)
			var p payload
			err := client.GetJSON(ctx, srv.URL+"/p", 0, &p)

			Convey("Then a StatusError is returned after the last attempt", func() {
				var se *fetch.StatusError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
				So(errors.Is(err, fetch.ErrUpstream), ShouldBeTrue)
				So(atomic.LoadInt32(&hits), ShouldEqual, 3)
			})
		})

		Convey("When the upstream answers 404", func() {
			atomic.StoreInt32(&status, http.StatusNotFound)
			var p payload
			err := client.GetJSON(ctx, srv.URL+"/p", 0, &p)

			Convey("Then the request is not retried", func() {
				var se *fetch.StatusError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.NotFound(), ShouldBeTrue)
				So(atomic.LoadInt32(&hits), ShouldEqual, 1)
			})
		})

		Convey("When the body is not JSON", func() {
			var p payload
			err := client.GetJSON(ctx, srv.URL+"/bad", time.Minute, &p)

			Convey("Then a decode error is returned", func() {
				So(errors.Is(err, fetch.ErrDecode), ShouldBeTrue)
			})
		})

		Convey("When the caller's context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			var p payload
			err := client.GetJSON(cctx, srv.URL+"/slow", 0, &p)

			So(err, ShouldNotBeNil)
		})
	})
}

func TestClientCollapsesConcurrentRequests(t *testing.T) {
	Convey("Given a slow upstream", t, func() {
		var hits int32
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&hits, 1)
			<-release
			_, _ = w.Write([]byte(`{"name":"x"}`))
		}))
		defer srv.Close()

		client := fetch.NewClient(fetch.WithRetry(1, 0))

		Convey("When many callers ask for the same url at once", func() {
			const callers = 8
			var wg sync.WaitGroup
			errs := make([]error, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					var p payload
					errs[i] = client.GetJSON(context.Background(), srv.URL+"/same", 0, &p)
				}(i)
			}
			time.Sleep(50 * time.Millisecond)
			close(release)
			wg.Wait()

			Convey("Then one upstream request serves them all", func() {
				for _, err := range errs {
					So(err, ShouldBeNil)
				}
				So(atomic.LoadInt32(&hits), ShouldEqual, 1)
			})
		})
	})
}
