package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/ritmo/internal/adapters/repository"
	"github.com/okian/ritmo/internal/adapters/sqlstore"
	"github.com/okian/ritmo/internal/config"
	"github.com/okian/ritmo/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		ctx := context.Background()

		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("RITMO_ADDR", ":8080")
			_ = os.Setenv("RITMO_QUEUE_SIZE", "1000")
			_ = os.Setenv("RITMO_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("RITMO_ADDR")
				_ = os.Unsetenv("RITMO_QUEUE_SIZE")
				_ = os.Unsetenv("RITMO_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the store driver is chosen", func() {
			convey.Convey("Then memory is the default", func() {
				store, err := openStore(ctx, config.New())
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*repository.MemoryStore)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(store.Close(), convey.ShouldBeNil)
			})

			convey.Convey("Then sqlite opens a SQL store", func() {
				cfg := config.New()
				cfg.StoreDriver = config.DriverSQLite
				cfg.StoreDSN = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
				store, err := openStore(ctx, cfg)
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*sqlstore.Store)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the HTTP server is assembled", func() {
			cfg := config.New()
			cfg.WorkerCount = 2
			svc, err := newService(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()
			mux := newMux(ctx, cfg, svc)

			convey.Convey("Then docs and API routes answer", func() {
				for _, path := range []string{"/healthz", "/stats", "/api-docs", "/openapi.yaml", "/races", "/reports"} {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("Then results can be ingested", func() {
				body := "Nombre,Sexo,Tiempo Chip\nAna,F,00:50:00\n"
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/races/results?nombre=Lima&distancia=10", strings.NewReader(body)))
				convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
			})

			convey.Convey("Then system metrics can be refreshed", func() {
				convey.So(func() {
					updateSystemMetrics()
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}
