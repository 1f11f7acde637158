package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/idpscout/internal/config"
	"github.com/okian/idpscout/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewCache(t *testing.T) {
	convey.Convey("Given a default configuration", t, func() {
		cfg := config.New()

		convey.Convey("When no redis address is set", func() {
			cache, closeFn, err := newCache(context.Background(), cfg)

			convey.Convey("Then an in-process cache is used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cache.Backend(), convey.ShouldEqual, "memory")
				convey.So(closeFn, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When redis is unreachable", func() {
			cfg.RedisAddr = "127.0.0.1:1"
			cache, _, err := newCache(context.Background(), cfg)

			convey.Convey("Then it fails fast", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cache, convey.ShouldBeNil)
			})
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a fully wired handler", t, func() {
		cfg := config.New()
		cache, closeFn, err := newCache(context.Background(), cfg)
		convey.So(err, convey.ShouldBeNil)
		defer closeFn()

		svc := newService(cfg, cache, logger.Nop())
		h, err := newHandler(cfg, svc)
		convey.So(err, convey.ShouldBeNil)

		serve := func(target string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			return rec
		}

		convey.Convey("Then the health, docs and metrics routes answer", func() {
			for _, path := range []string{"/healthz", "/stats", "/metrics", "/openapi.yaml", "/api-docs"} {
				convey.So(serve(path).Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then responses carry a request id", func() {
			convey.So(serve("/healthz").Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
		})

		convey.Convey("Then the MCP endpoint is mounted", func() {
			rec := serve(cfg.MCPPath)
			convey.So(rec.Code, convey.ShouldNotEqual, http.StatusNotFound)
		})

		convey.Convey("Then searches above max_results are rejected before any upstream call", func() {
			rec := serve("/idp/players?limit=501")
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, "limit_exceeded")
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("When refreshing once", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("When its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.Convey("Then it returns", func() {
				done := make(chan struct{})
				go func() {
					startSystemMetricsUpdater(ctx)
					close(done)
				}()
				returned := false
				select {
				case <-done:
					returned = true
				case <-time.After(time.Second):
				}
				convey.So(returned, convey.ShouldBeTrue)
			})
		})
	})
}
