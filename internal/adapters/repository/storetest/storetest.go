// Package storetest runs a shared behavioural suite against any
// repository.Store so every driver answers the same way.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/ritmo/internal/adapters/repository"
	"github.com/okian/ritmo/internal/domain/duration"
	"github.com/okian/ritmo/internal/domain/gender"
	"github.com/okian/ritmo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// Result builds a stored result fixture.
func Result(name string, g gender.Gender, cat string, chip int) model.Result {
	return model.Result{
		Name:        name,
		Gender:      g,
		Category:    cat,
		ChipSeconds: chip,
		ChipTime:    duration.FormatHHMMSS(float64(chip)),
		Pace:        duration.FormatHHMMSS(float64(chip / 10)),
		PaceSeconds: chip / 10,
		Distance:    10,
	}
}

func names(rs []model.Ranked) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

// Run exercises the Store contract. factory must return an empty store.
func Run(t *testing.T, factory func() repository.Store) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := factory()
		Reset(func() { _ = s.Close() })

		Convey("When races are upserted", func() {
			a, err := s.UpsertRace(ctx, model.Race{Name: " Lima 10K ", DistanceKm: 10})
			So(err, ShouldBeNil)
			b, err := s.UpsertRace(ctx, model.Race{Name: "lima 10k", DistanceKm: 21})
			So(err, ShouldBeNil)
			c, err := s.UpsertRace(ctx, model.Race{Name: "Cusco 21K"})
			So(err, ShouldBeNil)

			Convey("Then names are matched without case and space", func() {
				So(b.ID, ShouldEqual, a.ID)
				So(b.DistanceKm, ShouldEqual, 10)
				So(a.Name, ShouldEqual, "Lima 10K")
				So(c.ID, ShouldNotEqual, a.ID)
			})

			Convey("Then races list in creation order", func() {
				races, err := s.Races(ctx)
				So(err, ShouldBeNil)
				So(len(races), ShouldEqual, 2)
				So(races[0].ID, ShouldEqual, a.ID)
				got, err := s.Race(ctx, c.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Cusco 21K")
			})

			Convey("Then unknown races are not found", func() {
				_, err := s.Race(ctx, 999)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = s.Results(ctx, 999)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a race name is blank", func() {
			_, err := s.UpsertRace(ctx, model.Race{Name: "  "})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrEmptyName), ShouldBeTrue)
			})
		})

		Convey("When results are inserted", func() {
			race, err := s.UpsertRace(ctx, model.Race{Name: "Lima 10K"})
			So(err, ShouldBeNil)
			n, err := s.InsertResults(ctx, race.ID, []model.Result{
				Result("a", gender.Female, "30 a 34", 3000),
				Result("b", gender.Female, "Ciegos", 2000),
				Result("c", gender.Female, "", 2500),
				Result("d", gender.Female, "30 a 34", 0),
				Result("e", gender.Female, "35 a 39", 2500),
				Result("f", gender.Male, "30 a 34", 1000),
				Result("g", gender.Male, "30 a 34", 1500),
				Result("h", gender.Male, "30 a 34", 1200),
			})
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 8)

			Convey("Then results come back in ingestion order", func() {
				rs, err := s.Results(ctx, race.ID)
				So(err, ShouldBeNil)
				So(len(rs), ShouldEqual, 8)
				So(rs[0].Name, ShouldEqual, "a")
				So(rs[7].Name, ShouldEqual, "h")
				So(rs[2].Gender, ShouldEqual, gender.Female)
				So(rs[0].ChipSeconds, ShouldEqual, 3000)
				So(rs[0].PaceSeconds, ShouldEqual, 300)
				So(rs[0].RaceID, ShouldEqual, race.ID)
				So(s.Count(ctx), ShouldEqual, 8)
			})

			Convey("Then the gender podium skips adapted categories and missing times", func() {
				top, err := s.TopByGender(ctx, race.ID, gender.Female, 5)
				So(err, ShouldBeNil)
				So(names(top), ShouldResemble, []string{"c", "e", "a"})
				So(top[0].Position, ShouldEqual, 1)

				top, err = s.TopByGender(ctx, race.ID, gender.Male, 2)
				So(err, ShouldBeNil)
				So(names(top), ShouldResemble, []string{"f", "h"})
			})

			Convey("Then categories are ranked independently", func() {
				top, err := s.TopByCategory(ctx, race.ID, 2)
				So(err, ShouldBeNil)
				So(names(top), ShouldResemble, []string{"c", "f", "h", "e", "b"})
				So(top[2].Position, ShouldEqual, 2)
				So(top[3].Category, ShouldEqual, "35 a 39")
			})

			Convey("Then a non-positive limit is rejected", func() {
				_, err := s.TopByGender(ctx, race.ID, gender.Male, 0)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
				_, err = s.TopByCategory(ctx, race.ID, -1)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})
		})

		Convey("When reports are saved", func() {
			old, err := s.SaveReport(ctx, model.StoredReport{
				Name:     "Old",
				Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Analysis: model.Report{SchemaVersion: model.ReportSchemaVersion},
			})
			So(err, ShouldBeNil)
			fresh, err := s.SaveReport(ctx, model.StoredReport{
				Name:     "New",
				Date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				Metadata: &model.ReportMetadata{FileName: "lima.csv", DistanceKm: 10, RowCount: 2},
				Analysis: model.Report{SchemaVersion: model.ReportSchemaVersion, ScatterData: []model.Point{{X: 5, Y: 240}}},
			})
			So(err, ShouldBeNil)

			Convey("Then ids are assigned and reports read back", func() {
				So(old.ID, ShouldNotBeEmpty)
				got, err := s.Report(ctx, fresh.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "New")
				So(got.Metadata.FileName, ShouldEqual, "lima.csv")
				So(got.Analysis.ScatterData, ShouldResemble, []model.Point{{X: 5, Y: 240}})
				So(got.Date.Equal(fresh.Date), ShouldBeTrue)
			})

			Convey("Then summaries list newest first", func() {
				list, err := s.Reports(ctx)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].Name, ShouldEqual, "New")
			})

			Convey("Then unknown ids are not found", func() {
				_, err := s.Report(ctx, "missing")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then unnamed reports are rejected", func() {
				_, err := s.SaveReport(ctx, model.StoredReport{})
				So(errors.Is(err, repository.ErrEmptyName), ShouldBeTrue)
			})
		})
	})
}
