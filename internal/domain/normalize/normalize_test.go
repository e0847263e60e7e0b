package normalize_test

import (
	"testing"

	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/normalize"
	"github.com/okian/ritmo/internal/domain/schema"
	. "github.com/smartystreets/goconvey/convey"
)

func rows(headers []string, lines ...[]string) []model.RawRow {
	out := make([]model.RawRow, len(lines))
	for i, l := range lines {
		out[i] = model.RawRow{Headers: headers, Values: l, Line: i + 2}
	}
	return out
}

func TestReportProfile(t *testing.T) {
	Convey("Given a 10 km file with vendor headers", t, func() {
		headers := []string{"Dorsal", "Nombre", "Sexo", "Cat", "Chip Time", "Split 5K", "Unmapped"}
		n := normalize.New(10, headers)
		in := rows(headers,
			[]string{"7", " Ana Pérez ", "Mujer", "H", "3:45:10", "1:50:00", "junk"},
			[]string{"", "", "", "", "", "", ""},
			[]string{"8", "Bo", "  ", "JU20", "", "bad", ""},
		)

		Convey("When the batch is normalized", func() {
			b := n.All(in)

			Convey("Then the blank row is dropped and not counted as data", func() {
				So(b.Kept, ShouldEqual, 2)
				So(b.Blank, ShouldEqual, 1)
				So(b.Omitted, ShouldEqual, 0)
				So(len(b.Records), ShouldEqual, 2)
			})

			Convey("Then chip time and average pace follow the codec", func() {
				r := b.Records[0]
				So(r.Get(schema.ChipTime), ShouldEqual, "03:45:10")
				So(r.Get(schema.AvgPace), ShouldEqual, "00:22:31")
				So(r.Get(schema.Split5), ShouldEqual, "01:50:00")
				So(r.Get(schema.Name), ShouldEqual, "Ana Pérez")
				So(r.Get(schema.Gender), ShouldEqual, "Femenino")
				So(r.Get(schema.Category), ShouldEqual, "20 a 29")
				So(r.Get(schema.PaceRange), ShouldEqual, "≥ 08:29")
			})

			Convey("Then unmatched and bad fields degrade to defaults", func() {
				r := b.Records[1]
				So(r.Get(schema.Gender), ShouldEqual, "X")
				So(r.Get(schema.Category), ShouldEqual, "18 a 19 años")
				So(r.Get(schema.ChipTime), ShouldEqual, "00:00:00")
				So(r.Get(schema.Split5), ShouldEqual, "00:00:00")
				So(r.Get(schema.OfficialTime), ShouldEqual, "00:00:00")
				So(r.Get(schema.AvgPace), ShouldEqual, "00:00:00")
				So(r.Get(schema.PaceRange), ShouldEqual, "≤ 03:30")
				So(r.Get(schema.Team), ShouldEqual, "")
				So(r.Get(schema.Distance), ShouldEqual, "")
			})
		})
	})

	Convey("Given a pace of 199 seconds per km", t, func() {
		headers := []string{"tiempo_chip"}
		rec, o := normalize.New(10, headers).Row(model.RawRow{Headers: headers, Values: []string{"00:33:10"}})

		Convey("Then it lands in the first pace range", func() {
			So(o, ShouldEqual, normalize.Kept)
			So(rec.Get(schema.AvgPace), ShouldEqual, "00:03:19")
			So(rec.Get(schema.PaceRange), ShouldEqual, "≤ 03:30")
		})
	})

	Convey("Given a source file that carries its own pace and range columns", t, func() {
		headers := []string{"tiempo chip", "Ritmo Medio", "Rango"}
		rec, _ := normalize.New(5, headers).Row(model.RawRow{Headers: headers, Values: []string{"00:25:00", "9:99", "Elite"}})

		Convey("Then the computed values override them", func() {
			So(rec.Get(schema.AvgPace), ShouldEqual, "00:05:00")
			So(rec.Get(schema.PaceRange), ShouldEqual, "04:47–05:14")
		})
	})

	Convey("Given a zero or negative distance", t, func() {
		headers := []string{"tiempo chip"}
		rec, _ := normalize.New(0, headers).Row(model.RawRow{Headers: headers, Values: []string{"00:25:00"}})

		Convey("Then the pace is zero and falls in the first range", func() {
			So(rec.Get(schema.AvgPace), ShouldEqual, "00:00:00")
			So(rec.Get(schema.PaceRange), ShouldEqual, "≤ 03:30")
		})
	})

	Convey("Given a file with a name column and an empty chip time", t, func() {
		headers := []string{"Nombre", "Chip Time"}
		rec, o := normalize.New(10, headers).Row(model.RawRow{Headers: headers, Values: []string{"Ana", ""}})

		Convey("Then the range is derived from the zero pace", func() {
			So(o, ShouldEqual, normalize.Kept)
			So(rec.Get(schema.AvgPace), ShouldEqual, "00:00:00")
			So(rec.Get(schema.PaceRange), ShouldEqual, "≤ 03:30")
		})
	})
}

func TestRangeOf(t *testing.T) {
	Convey("Given formatted average paces", t, func() {
		So(normalize.RangeOf("00:00:00"), ShouldEqual, "≤ 03:30")
		So(normalize.RangeOf("00:05:00"), ShouldEqual, "04:47–05:14")
		So(normalize.RangeOf("01:00:00"), ShouldEqual, "≥ 08:29")

		Convey("Then only an unparseable pace has no range", func() {
			So(normalize.RangeOf(""), ShouldEqual, normalize.NoRange)
			So(normalize.RangeOf("n/a"), ShouldEqual, normalize.NoRange)
		})
	})
}

func TestMarathonRules(t *testing.T) {
	Convey("Given a marathon row", t, func() {
		headers := []string{"chip time", "split 40km", "split 42km", "rm 42km"}
		n := normalize.New(schema.MarathonKm, headers)
		rec, _ := n.Row(model.RawRow{Headers: headers, Values: []string{"03:00:00", "02:51:00", "9:00:00", "00:09:99"}})

		Convey("Then split 42 is forced to the chip time", func() {
			So(rec.Get(schema.Split42), ShouldEqual, "03:00:00")
		})

		Convey("Then the last-segment pace is derived from splits 40 and 42", func() {
			So(rec.Get(schema.Pace42), ShouldEqual, "00:04:06")
		})
	})

	Convey("Given a marathon row without split 40", t, func() {
		headers := []string{"chip time", "rm 42km"}
		rec, _ := normalize.New(schema.MarathonKm, headers).Row(model.RawRow{Headers: headers, Values: []string{"03:00:00", "0:04:30"}})

		Convey("Then the source pace is kept", func() {
			So(rec.Get(schema.Pace42), ShouldEqual, "00:04:30")
		})
	})

	Convey("Given a distance close to but not exactly a marathon", t, func() {
		headers := []string{"chip time", "split 42km"}
		rec, _ := normalize.New(42.2, headers).Row(model.RawRow{Headers: headers, Values: []string{"03:00:00", "2:59:00"}})

		Convey("Then marathon rules do not apply", func() {
			So(rec.Get(schema.Split42), ShouldEqual, "02:59:00")
		})
	})
}

func TestIngestProfile(t *testing.T) {
	Convey("Given the ingestion profile", t, func() {
		headers := []string{"Tiempo Oficial", "Atleta", "Rama", "Tiempo Chip", "Parcial 1", "Dorsal"}
		n := normalize.New(21, headers, normalize.WithProfile(normalize.IngestProfile))
		in := rows(headers,
			[]string{"1:40:00", "Ana", "Fem. Elite", "1:38:27 (net)", "0:23:00", "12"},
			[]string{"1:40:00", "Beto", "Varones", "00:00:00", "0:23:00", "13"},
			[]string{"1:40:00", "Caro", "F", "DNF", "", "14"},
			[]string{"", "", "", "", "", ""},
		)

		Convey("When the batch is normalized", func() {
			b := n.All(in)

			Convey("Then rows with missing or zero chip time are omitted", func() {
				So(b.Kept, ShouldEqual, 1)
				So(b.Omitted, ShouldEqual, 2)
				So(b.Blank, ShouldEqual, 1)
			})

			Convey("Then the lenient parser and loose gender apply", func() {
				r := b.Records[0]
				So(r.Get(schema.ChipTime), ShouldEqual, "01:38:27")
				So(r.Get(schema.Gender), ShouldEqual, "Femenino")
				So(r.Get(schema.Split5), ShouldEqual, "00:23:00")
				So(r.Get(schema.Bib), ShouldEqual, "12")
			})

			Convey("Then results carry only the checkpoints present in the file", func() {
				present := normalize.PresentCheckpoints(n.Matches())
				So(present, ShouldResemble, []schema.Field{schema.Split5})

				res := normalize.ResultOf(b.Records[0], 1, 21, 120, present)
				So(res.ChipSeconds, ShouldEqual, 5907)
				So(res.PaceSeconds, ShouldEqual, 281)
				So(res.Checkpoints, ShouldResemble, map[string]string{"split_5km": "00:23:00"})
				So(string(res.Gender), ShouldEqual, "Femenino")
				So(res.Ascent, ShouldEqual, 120)
			})
		})
	})

	Convey("Given outcome and validity names", t, func() {
		So(normalize.Omitted.String(), ShouldEqual, "omitted")
		So(normalize.Blank.String(), ShouldEqual, "blank")
		So(normalize.Kept.String(), ShouldEqual, "kept")
		So(normalize.DropZeroTime.String(), ShouldEqual, "drop_zero_time")
		So(normalize.DefaultZeroTime.String(), ShouldEqual, "default_zero_time")
	})
}
