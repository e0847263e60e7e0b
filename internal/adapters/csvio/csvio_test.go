package csvio_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/okian/ritmo/internal/adapters/csvio"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/schema"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRead(t *testing.T) {
	Convey("Given a comma separated file with a byte order mark", t, func() {
		in := "\ufeffDorsal,Nombre,Sexo\n1,Ana,F\n2,Bo\n\n3,\"Cruz, Eva\",M,extra\n"
		tbl, err := csvio.Read(strings.NewReader(in))

		Convey("Then headers are clean and rows keep their line numbers", func() {
			So(err, ShouldBeNil)
			So(tbl.Headers, ShouldResemble, []string{"Dorsal", "Nombre", "Sexo"})
			So(len(tbl.Rows), ShouldEqual, 3)
			So(tbl.Rows[0].Line, ShouldEqual, 2)
			So(tbl.Rows[0].Get("Nombre"), ShouldEqual, "Ana")
			So(tbl.Rows[1].Get("Sexo"), ShouldEqual, "")
			So(tbl.Rows[2].Line, ShouldEqual, 5)
			So(tbl.Rows[2].Get("Nombre"), ShouldEqual, "Cruz, Eva")
		})
	})

	Convey("Given a semicolon separated export", t, func() {
		tbl, err := csvio.Read(strings.NewReader("Dorsal;Nombre;Tiempo\n1;Ana, la rápida;00:40:00\n"))

		Convey("Then the delimiter is detected", func() {
			So(err, ShouldBeNil)
			So(len(tbl.Headers), ShouldEqual, 3)
			So(tbl.Rows[0].Get("Nombre"), ShouldEqual, "Ana, la rápida")
		})

		Convey("Then a forced delimiter wins", func() {
			tbl, err := csvio.Read(strings.NewReader("a;b\n1;2\n"), csvio.WithComma(','))
			So(err, ShouldBeNil)
			So(tbl.Headers, ShouldResemble, []string{"a;b"})
		})
	})

	Convey("Given structurally broken input", t, func() {
		Convey("Then empty input has no headers", func() {
			_, err := csvio.Read(strings.NewReader(""))
			So(errors.Is(err, csvio.ErrNoHeaders), ShouldBeTrue)
		})

		Convey("Then a blank header row has no headers", func() {
			_, err := csvio.Read(strings.NewReader(" , ,\n1,2,3\n"))
			So(errors.Is(err, csvio.ErrNoHeaders), ShouldBeTrue)
		})

		Convey("Then reader failures are malformed", func() {
			_, err := csvio.Read(iotest.ErrReader(errors.New("disk gone")))
			So(errors.Is(err, csvio.ErrMalformed), ShouldBeTrue)
		})
	})
}

func TestWrite(t *testing.T) {
	recs := []model.Record{
		model.RecordOf(map[schema.Field]string{schema.Bib: "7", schema.Name: "Ana", schema.ChipTime: "00:40:00"}),
		model.RecordOf(map[schema.Field]string{schema.Bib: "8", schema.Name: "Bo, Jr"}),
	}

	Convey("Given normalized records", t, func() {
		Convey("When written as CSV", func() {
			var buf bytes.Buffer
			So(csvio.WriteCSV(&buf, recs), ShouldBeNil)

			Convey("Then they read back with canonical headers", func() {
				tbl, err := csvio.Read(&buf)
				So(err, ShouldBeNil)
				So(tbl.Headers, ShouldResemble, schema.Names())
				So(tbl.Rows[1].Get("nombre"), ShouldEqual, "Bo, Jr")
				So(tbl.Rows[0].Get("tiempo_chip"), ShouldEqual, "00:40:00")
			})
		})

		Convey("When written as Parquet", func() {
			data, err := csvio.MarshalParquet(recs)

			Convey("Then the file carries the Parquet magic at both ends", func() {
				So(err, ShouldBeNil)
				So(string(data[:4]), ShouldEqual, "PAR1")
				So(string(data[len(data)-4:]), ShouldEqual, "PAR1")
			})
		})

		Convey("Then Parquet column names are snake case", func() {
			So(csvio.ParquetColumn("Ritmo Medio"), ShouldEqual, "ritmo_medio")
			So(csvio.ParquetColumn("RM_5km"), ShouldEqual, "rm_5km")
		})
	})
}
