package normalize

import (
	"strings"

	"github.com/okian/ritmo/internal/domain/duration"
	"github.com/okian/ritmo/internal/domain/gender"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/pace"
	"github.com/okian/ritmo/internal/domain/schema"
)

// NoRange is the Rango value of rows whose average pace cannot be parsed.
const NoRange = "-"

// Outcome classifies what happened to one input row.
type Outcome int

const (
	Kept Outcome = iota
	Blank
	Omitted
)

func (o Outcome) String() string {
	switch o {
	case Blank:
		return "blank"
	case Omitted:
		return "omitted"
	default:
		return "kept"
	}
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithProfile selects the normalization profile. ReportProfile is the default.
func WithProfile(p Profile) Option {
	return func(n *Normalizer) {
		n.profile = p
	}
}

// Normalizer maps rows of one file. It is immutable after New and safe for
// concurrent use.
type Normalizer struct {
	profile    Profile
	distanceKm float64
	matches    schema.Matches
	column     [schema.NumFields]int
}

// New resolves headers once for a file of the given race distance.
func New(distanceKm float64, headers []string, opts ...Option) *Normalizer {
	n := &Normalizer{profile: ReportProfile, distanceKm: distanceKm}
	for _, opt := range opts {
		opt(n)
	}
	n.matches = n.profile.Resolver.Resolve(headers)
	for i := range n.column {
		n.column[i] = -1
	}
	for f, h := range n.matches {
		for i, name := range headers {
			if name == h {
				n.column[f] = i
				break
			}
		}
	}
	return n
}

// Matches returns the header binding used for this file.
func (n *Normalizer) Matches() schema.Matches { return n.matches }

func (n *Normalizer) raw(row model.RawRow, f schema.Field) string {
	return strings.TrimSpace(row.Cell(n.column[f]))
}

func (n *Normalizer) sanitize(text string) string {
	return duration.SanitizeWith(n.profile.Time, text)
}

// Row normalizes a single row.
func (n *Normalizer) Row(row model.RawRow) (model.Record, Outcome) {
	if row.IsBlank() {
		return model.Record{}, Blank
	}

	chipSecs, chipOK := n.profile.Time(n.raw(row, schema.ChipTime))
	if n.profile.Validity == DropZeroTime && (!chipOK || chipSecs == 0) {
		return model.Record{}, Omitted
	}

	var values [schema.NumFields]string
	for _, f := range schema.Fields() {
		v := n.raw(row, f)
		switch {
		case f.IsTime():
			values[f] = n.sanitize(v)
		case f == schema.Gender:
			values[f] = string(n.profile.Gender(v))
		case f == schema.Category:
			values[f] = gender.Category(v)
		default:
			values[f] = v
		}
	}

	values[schema.AvgPace] = duration.Zero
	if chipOK && n.distanceKm > 0 {
		values[schema.AvgPace] = duration.FormatHHMMSS(float64(chipSecs) / n.distanceKm)
	}

	if n.distanceKm == schema.MarathonKm {
		values[schema.Split42] = values[schema.ChipTime]
		s42 := duration.Seconds(values[schema.Split42])
		s40 := duration.Seconds(values[schema.Split40])
		if s42 > 0 && s40 > 0 {
			values[schema.Pace42] = duration.FormatHHMMSS(float64(s42-s40) / (schema.MarathonKm - 40))
		}
	}

	values[schema.PaceRange] = RangeOf(values[schema.AvgPace])

	return model.NewRecord(values), Kept
}

// RangeOf buckets a formatted average pace into the report ranges. A zero
// pace lands in the first bucket.
func RangeOf(avgPace string) string {
	secs, ok := duration.Parse(avgPace)
	if !ok {
		return NoRange
	}
	if r, ok := pace.ReportRanges.Find(float64(secs)); ok {
		return r.Label
	}
	return NoRange
}

// Batch is the result of normalizing a whole file.
type Batch struct {
	Records []model.Record
	Kept    int
	Blank   int
	Omitted int
}

// Add folds one row outcome into the batch.
func (b *Batch) Add(rec model.Record, o Outcome) {
	switch o {
	case Kept:
		b.Records = append(b.Records, rec)
		b.Kept++
	case Blank:
		b.Blank++
	case Omitted:
		b.Omitted++
	}
}

// All normalizes rows sequentially, preserving input order.
func (n *Normalizer) All(rows []model.RawRow) Batch {
	b := Batch{Records: make([]model.Record, 0, len(rows))}
	for _, row := range rows {
		b.Add(n.Row(row))
	}
	return b
}

// PresentCheckpoints lists the pace and split fields bound in m, in canonical order.
func PresentCheckpoints(m schema.Matches) []schema.Field {
	var out []schema.Field
	for _, c := range schema.Checkpoints() {
		for _, f := range []schema.Field{c.Pace, c.Split} {
			if _, ok := m[f]; ok {
				out = append(out, f)
			}
		}
	}
	return out
}

// ResultOf projects a kept ingestion record onto a persisted result.
func ResultOf(rec model.Record, seq int, distanceKm, ascentM float64, checkpoints []schema.Field) model.Result {
	res := model.Result{
		Seq:         seq,
		Bib:         rec.Get(schema.Bib),
		Name:        rec.Get(schema.Name),
		Gender:      gender.Parse(rec.Get(schema.Gender)),
		Category:    rec.Get(schema.Category),
		ChipTime:    rec.Get(schema.ChipTime),
		ChipSeconds: duration.Seconds(rec.Get(schema.ChipTime)),
		Pace:        rec.Get(schema.AvgPace),
		PaceSeconds: duration.Seconds(rec.Get(schema.AvgPace)),
		Distance:    distanceKm,
		Ascent:      ascentM,
	}
	if len(checkpoints) > 0 {
		res.Checkpoints = make(map[string]string, len(checkpoints))
		for _, f := range checkpoints {
			res.Checkpoints[f.String()] = rec.Get(f)
		}
	}
	return res
}
