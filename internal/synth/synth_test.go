package synth_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/ritmo/internal/adapters/csvio"
	"github.com/okian/ritmo/internal/adapters/http/api"
	service "github.com/okian/ritmo/internal/app"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/normalize"
	"github.com/okian/ritmo/internal/synth"
	"github.com/okian/ritmo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a generation config", t, func() {
		cfg := synth.DefaultConfig()
		cfg.Runners = 300
		cfg.DistanceKm = 21.0975
		ctx := context.Background()

		Convey("When generated with different worker counts", func() {
			cfg.Workers = 1
			a, err := synth.Generate(ctx, cfg)
			So(err, ShouldBeNil)
			cfg.Workers = 7
			b, err := synth.Generate(ctx, cfg)
			So(err, ShouldBeNil)

			Convey("Then the output is identical", func() {
				So(len(a), ShouldEqual, 300)
				So(b, ShouldResemble, a)
			})

			Convey("Then splits grow along the course and stay below the chip time", func() {
				for _, r := range a {
					if r.Splits == nil {
						continue
					}
					prev := 0
					for _, c := range synth.Checkpoints(cfg.DistanceKm) {
						So(r.Splits[c.Km], ShouldBeGreaterThan, prev)
						prev = r.Splits[c.Km]
					}
					So(r.ChipSeconds, ShouldBeGreaterThan, prev)
				}
			})
		})

		Convey("When the config is unusable", func() {
			cfg.DistanceKm = 0
			_, err := synth.Generate(ctx, cfg)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, synth.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := synth.Generate(cctx, cfg)

			Convey("Then generation stops", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Given a generated field written as CSV", t, func() {
		cfg := synth.DefaultConfig()
		cfg.Runners = 200
		cfg.NoChipRate = 0.1
		runners, err := synth.Generate(context.Background(), cfg)
		So(err, ShouldBeNil)
		noChip := 0
		for _, r := range runners {
			if r.ChipSeconds == 0 {
				noChip++
			}
		}

		var buf bytes.Buffer
		So(synth.WriteCSV(&buf, cfg.DistanceKm, runners), ShouldBeNil)
		table, err := csvio.Read(&buf)
		So(err, ShouldBeNil)

		Convey("Then every header resolves under both profiles", func() {
			for _, p := range []normalize.Profile{normalize.ReportProfile, normalize.IngestProfile} {
				n := normalize.New(cfg.DistanceKm, table.Headers, normalize.WithProfile(p))
				So(len(n.Matches()), ShouldEqual, len(synth.Headers(cfg.DistanceKm)))
			}
		})

		Convey("Then rows without chip time are dropped only on ingestion", func() {
			report := normalize.New(cfg.DistanceKm, table.Headers).All(table.Rows)
			So(report.Kept, ShouldEqual, 200)

			ingest := normalize.New(cfg.DistanceKm, table.Headers, normalize.WithProfile(normalize.IngestProfile)).All(table.Rows)
			So(ingest.Omitted, ShouldEqual, noChip)
			So(ingest.Kept, ShouldEqual, 200-noChip)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		Reset(func() {
			srv.Close()
			svc.Stop()
		})

		cfg := synth.RunConfig{
			Config:  synth.DefaultConfig(),
			BaseURL: srv.URL,
			Race:    "Synthetic 10K",
			TopN:    5,
			Timeout: 5 * time.Second,
		}
		cfg.Runners = 500

		Convey("When a synthetic race is uploaded and verified", func() {
			stats, err := synth.Run(context.Background(), cfg)

			Convey("Then the served podium matches the local one", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 500)
				So(stats.Inserted+stats.Omitted, ShouldEqual, 500)
				So(stats.Verified, ShouldEqual, 10)
			})

			Convey("Then uploading the same race again conflicts", func() {
				_, err := synth.Run(context.Background(), cfg)
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given two runners", t, func() {
		runners := []synth.Runner{
			{Bib: 1, Name: "A", Gender: "Femenino", Category: "30 a 39", ChipSeconds: 3000},
			{Bib: 2, Name: "B", Gender: "Femenino", Category: synth.AdaptedCategory, ChipSeconds: 2000},
		}

		Convey("Then the adapted runner is left out of the podium", func() {
			want := model.GenderTop{Femenino: []model.Ranked{{Position: 1, Bib: "1", ChipTime: "00:50:00"}}, Masculino: []model.Ranked{}}
			n, err := synth.Verify(runners, 3, want)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})

		Convey("Then a different order is a mismatch", func() {
			got := model.GenderTop{Femenino: []model.Ranked{{Position: 1, Bib: "2", ChipTime: "00:33:20"}}}
			_, err := synth.Verify(runners, 3, got)
			So(errors.Is(err, synth.ErrMismatch), ShouldBeTrue)
		})
	})
}
