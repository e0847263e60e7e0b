package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/okian/ritmo/internal/adapters/csvio"
	"github.com/okian/ritmo/internal/adapters/mq/publisher"
	"github.com/okian/ritmo/internal/adapters/repository"
	service "github.com/okian/ritmo/internal/app"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/normalize"
	"github.com/okian/ritmo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const resultsCSV = `Dorsal,Nombre,Sexo,Categoria,Tiempo Chip,Split 5K
1,Ana,Mujer,30 a 34,00:50:00,00:24:00
2,Bea,F,Silla de ruedas,00:40:00,
3,Carlos,Hombre,30 a 34,00:45:00,00:22:00
4,Dani,M,35 a 39,,
5,Eva,Femenino,35 a 39,00:55:00,00:27:00
`

type recordingPublisher struct {
	mu     sync.Mutex
	events []publisher.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e publisher.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func table(s string) csvio.Table {
	t, err := csvio.Read(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return t
}

func started(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithDedupeSize(10),
			service.WithParallelThreshold(50),
		)

		Convey("When it is started twice and stopped", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			st := svc.GetStats()
			svc.Stop()
			svc.Stop()

			Convey("Then stats reflect the configuration", func() {
				So(st["started"], ShouldEqual, true)
				So(st["workerCount"], ShouldEqual, 2)
				So(st["queueLength"], ShouldEqual, 0)
				So(st["storedResults"], ShouldEqual, 0)
				So(st["parallelThreshold"], ShouldEqual, 50)
				So(st["workersRunning"], ShouldEqual, true)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Analyze(t *testing.T) {
	Convey("Given a started service", t, func() {
		pub := &recordingPublisher{}
		svc := started(service.WithPublisher(pub))
		Reset(svc.Stop)
		ctx := context.Background()

		Convey("When a file is analyzed", func() {
			report, b, err := svc.Analyze(ctx, 10, table(resultsCSV))

			Convey("Then every data row is kept by the report profile", func() {
				So(err, ShouldBeNil)
				So(b.Kept, ShouldEqual, 5)
				So(report.SchemaVersion, ShouldEqual, model.ReportSchemaVersion)
				So(report.SummaryStatsRows[0].Count, ShouldEqual, 4)
			})
		})

		Convey("When the distance is negative", func() {
			_, _, err := svc.Analyze(ctx, -1, table(resultsCSV))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrInvalidDistance), ShouldBeTrue)
			})
		})

		Convey("When a file is analyzed and saved", func() {
			saved, err := svc.AnalyzeAndSave(ctx, "Lima 10K", "lima.csv", 10, table(resultsCSV))

			Convey("Then the report is stored and announced", func() {
				So(err, ShouldBeNil)
				got, err := svc.Report(ctx, saved.ID)
				So(err, ShouldBeNil)
				So(got.Metadata.RowCount, ShouldEqual, 5)
				list, err := svc.Reports(ctx)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 1)
				So(len(pub.events), ShouldEqual, 1)
				So(pub.events[0].Type, ShouldEqual, publisher.TypeReportSaved)
			})
		})

		Convey("When a report from another schema version is saved", func() {
			_, err := svc.SaveReport(ctx, model.ReportInput{Name: "x", Analysis: model.Report{SchemaVersion: 99}})

			Convey("Then it is refused", func() {
				So(errors.Is(err, model.ErrReportVersion), ShouldBeTrue)
			})
		})

		Convey("When the ingest profile is used directly", func() {
			b, err := svc.Normalize(ctx, normalize.IngestProfile, 10, table(resultsCSV))

			Convey("Then rows without chip time are omitted", func() {
				So(err, ShouldBeNil)
				So(b.Kept, ShouldEqual, 4)
				So(b.Omitted, ShouldEqual, 1)
			})
		})
	})
}

func TestService_Ingest(t *testing.T) {
	Convey("Given a started service", t, func() {
		pub := &recordingPublisher{err: errors.New("broker down")}
		svc := started(service.WithPublisher(pub), service.WithStore(repository.NewMemoryStore(context.Background())))
		Reset(svc.Stop)
		ctx := context.Background()
		race := model.Race{Name: "Lima 10K", DistanceKm: 10}

		Convey("When results are uploaded", func() {
			res, err := svc.Ingest(ctx, race, []byte(resultsCSV))

			Convey("Then usable rows are stored despite the publish failure", func() {
				So(err, ShouldBeNil)
				So(res.Inserted, ShouldEqual, 4)
				So(res.RaceID, ShouldEqual, res.Race.ID)
				So(res.Omitted, ShouldEqual, 1)
				So(res.Columns, ShouldContain, "split_5km")
				So(res.Columns[0], ShouldEqual, "carrera_id")
				So(len(pub.events), ShouldEqual, 1)
				So(pub.events[0].Type, ShouldEqual, publisher.TypeResultsIngested)
			})

			Convey("Then the same upload is refused", func() {
				_, err := svc.Ingest(ctx, model.Race{Name: " lima 10k ", DistanceKm: 10}, []byte(resultsCSV))
				So(errors.Is(err, model.ErrDuplicateUpload), ShouldBeTrue)
			})

			Convey("Then race analyses read the stored results", func() {
				races, err := svc.Races(ctx)
				So(err, ShouldBeNil)
				So(len(races), ShouldEqual, 1)
				id := races[0].ID

				o, err := svc.RaceOverview(ctx, id)
				So(err, ShouldBeNil)
				So(o.ConteoFemenino, ShouldEqual, 3)
				So(o.ConteoMasculino, ShouldEqual, 1)
				So(*o.RitmoMasculino, ShouldEqual, "00:04:30")

				shares, err := svc.PaceShares(ctx, id)
				So(err, ShouldBeNil)
				So(shares.TotalFemenino, ShouldEqual, 3)

				cats, err := svc.CategoryPaces(ctx, id)
				So(err, ShouldBeNil)
				So(cats[0].Categoria, ShouldEqual, "30 a 34")

				top, err := svc.TopByGender(ctx, id, 0)
				So(err, ShouldBeNil)
				So(len(top.Femenino), ShouldEqual, 2)
				So(top.Femenino[0].Name, ShouldEqual, "Ana")

				byCat, err := svc.TopByCategory(ctx, id, 1)
				So(err, ShouldBeNil)
				So(len(byCat), ShouldEqual, 3)
			})
		})

		Convey("When no row has a chip time", func() {
			csv := "Nombre,Sexo,Tiempo Chip\nAna,F,\nBo,M,00:00:00\n"
			res, err := svc.Ingest(ctx, race, []byte(csv))

			Convey("Then nothing is stored and the upload can be retried", func() {
				So(errors.Is(err, model.ErrNothingInserted), ShouldBeTrue)
				So(res.Omitted, ShouldEqual, 2)
				_, err = svc.Ingest(ctx, race, []byte(csv))
				So(errors.Is(err, model.ErrNothingInserted), ShouldBeTrue)
			})
		})

		Convey("When the file has no header", func() {
			_, err := svc.Ingest(ctx, race, nil)

			Convey("Then the csv error surfaces", func() {
				So(errors.Is(err, csvio.ErrNoHeaders), ShouldBeTrue)
			})
		})
	})
}

func TestService_Limit(t *testing.T) {
	Convey("Given ranking limits of 5 by default and 20 at most", t, func() {
		svc := service.New(service.WithTopN(5, 20))

		Convey("Then requests are resolved against them", func() {
			n, err := svc.Limit(0)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 5)
			n, _ = svc.Limit(50)
			So(n, ShouldEqual, 20)
			n, _ = svc.Limit(7)
			So(n, ShouldEqual, 7)
			_, err = svc.Limit(-1)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})
	})
}
