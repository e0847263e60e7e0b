package schema_test

import (
	"math/rand"
	"testing"

	"github.com/okian/ritmo/internal/domain/schema"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFields(t *testing.T) {
	Convey("Given the canonical field set", t, func() {
		names := schema.Names()

		Convey("Then it is ordered for export and round-trips through Lookup", func() {
			So(len(names), ShouldEqual, schema.NumFields)
			So(names[0], ShouldEqual, "bib")
			So(names[7], ShouldEqual, "Ritmo Medio")
			So(names[len(names)-1], ShouldEqual, "nacionalidad")
			for _, f := range schema.Fields() {
				got, ok := schema.Lookup(f.String())
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, f)
			}
		})

		Convey("Then time columns are flagged", func() {
			So(schema.ChipTime.IsTime(), ShouldBeTrue)
			So(schema.AvgPace.IsTime(), ShouldBeTrue)
			So(schema.Split42.IsTime(), ShouldBeTrue)
			So(schema.Pace5.IsTime(), ShouldBeTrue)
			So(schema.Gender.IsTime(), ShouldBeFalse)
			So(schema.PlaceOverall.IsTime(), ShouldBeFalse)
		})

		Convey("Then checkpoints pair pace and split columns", func() {
			cps := schema.Checkpoints()
			So(len(cps), ShouldEqual, 10)
			for _, c := range cps {
				So(c.Split, ShouldEqual, c.Pace+1)
			}
			km, ok := schema.CheckpointKm("split 42K")
			So(ok, ShouldBeTrue)
			So(km, ShouldEqual, schema.MarathonKm)
		})
	})
}

func TestNormalizeHeader(t *testing.T) {
	Convey("Given header spellings", t, func() {
		So(schema.NormalizeHeader("Chip Time"), ShouldEqual, "chiptime")
		So(schema.NormalizeHeader("  Categoría "), ShouldEqual, "categoria")
		So(schema.NormalizeHeader("Género"), ShouldEqual, "genero")
		So(schema.NormalizeHeader("equipo/club"), ShouldEqual, "equipoclub")
		So(schema.NormalizeHeader("RM_5km"), ShouldEqual, "rm5km")
		So(schema.NormalizeHeader("Varón"), ShouldEqual, "varon")
		So(schema.NormalizeHeader("---"), ShouldEqual, "")
	})
}

func TestReportResolver(t *testing.T) {
	Convey("Given the report resolver", t, func() {
		r := schema.ReportResolver

		Convey("When headers use vendor spellings", func() {
			m := r.Resolve([]string{"Dorsal", "Full Name", "Sexo", "Chip Time", "5K Split", "Z42", "Platz", "País", "Unknown"})

			Convey("Then each is bound to its canonical field", func() {
				So(m[schema.Bib], ShouldEqual, "Dorsal")
				So(m[schema.Name], ShouldEqual, "Full Name")
				So(m[schema.Gender], ShouldEqual, "Sexo")
				So(m[schema.ChipTime], ShouldEqual, "Chip Time")
				So(m[schema.Split5], ShouldEqual, "5K Split")
				So(m[schema.Split42], ShouldEqual, "Z42")
				So(m[schema.PlaceOverall], ShouldEqual, "Platz")
				So(m[schema.Nationality], ShouldEqual, "País")
				So(len(m), ShouldEqual, 8)
			})
		})

		Convey("When two headers claim the same field", func() {
			m := r.Resolve([]string{"Net Time", "tiempo_chip"})

			Convey("Then the first header wins", func() {
				So(m[schema.ChipTime], ShouldEqual, "Net Time")
			})
		})

		Convey("When non-duplicate headers are permuted", func() {
			headers := []string{"bib", "nombre", "genero", "categoria", "tiempo chip", "split 10km", "rm 10km", "Rango"}
			want := r.Resolve(headers)
			rng := rand.New(rand.NewSource(7))

			Convey("Then the mapping does not change", func() {
				for i := 0; i < 20; i++ {
					perm := append([]string(nil), headers...)
					rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
					So(r.Resolve(perm), ShouldResemble, want)
				}
			})
		})

		Convey("When nothing matches", func() {
			Convey("Then the mapping is empty, not an error", func() {
				So(r.Resolve([]string{"foo", "bar"}), ShouldBeEmpty)
				So(r.Resolve(nil), ShouldBeEmpty)
			})
		})
	})
}

func TestIngestResolver(t *testing.T) {
	Convey("Given the ingest resolver", t, func() {
		r := schema.IngestResolver

		Convey("When both an official and a chip time column exist", func() {
			m := r.Resolve([]string{"Tiempo Oficial", "Atleta", "Tiempo Chip", "Parcial 1", "Catg"})

			Convey("Then the alias listed first wins regardless of column order", func() {
				So(m[schema.ChipTime], ShouldEqual, "Tiempo Chip")
				So(m[schema.Name], ShouldEqual, "Atleta")
				So(m[schema.Split5], ShouldEqual, "Parcial 1")
				So(m[schema.Category], ShouldEqual, "Catg")
			})
		})

		Convey("When headers only exist in the report table", func() {
			m := r.Resolve([]string{"z5pace"})

			Convey("Then they stay unmatched", func() {
				So(m, ShouldBeEmpty)
				So(r.Name(), ShouldEqual, "ingest")
			})
		})
	})
}
