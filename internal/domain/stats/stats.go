// Package stats folds normalized records into the analysis report tables.
// Every function is pure and leaves its input untouched.
package stats

import (
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/okian/ritmo/internal/domain/duration"
	"github.com/okian/ritmo/internal/domain/gender"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/pace"
	"github.com/okian/ritmo/internal/domain/schema"
)

// Labels of the two fixed summary rows.
const (
	LabelWithChip     = "Con Tiempo Chip dif 0"
	LabelAllSplits    = "Con todos los Split y TC"
	LabelTotal        = "Total"
	LabelNoCategory   = "Sin categoría"
	missingPercentile = "-"
)

// PercentilePoint is one fixed percentile of the percentile table.
type PercentilePoint struct {
	Label string
	P     float64
}

// PercentilePoints are reported in this order.
var PercentilePoints = []PercentilePoint{
	{Label: "Min", P: 0},
	{Label: "1%", P: 0.01},
	{Label: "5%", P: 0.05},
	{Label: "10%", P: 0.10},
	{Label: "30%", P: 0.30},
	{Label: "50%", P: 0.50},
	{Label: "80%", P: 0.80},
	{Label: "Max", P: 1},
}

func seconds(r model.Record, f schema.Field) int {
	return duration.Seconds(r.Get(f))
}

func positive(r model.Record, f schema.Field) bool {
	return seconds(r, f) > 0
}

// Pick returns the value at percentile p of an ascending slice.
func Pick(sorted []int, p float64) int {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	idx := int(math.Ceil(p*float64(n))) - 1
	idx = max(0, min(n-1, idx))
	return sorted[idx]
}

// Percentiles reports average pace percentiles for men and women with a
// positive pace.
func Percentiles(records []model.Record) []model.PercentileRow {
	var men, women []int
	for _, r := range records {
		secs := seconds(r, schema.AvgPace)
		if secs <= 0 {
			continue
		}
		switch gender.Parse(r.Get(schema.Gender)) {
		case gender.Male:
			men = append(men, secs)
		case gender.Female:
			women = append(women, secs)
		}
	}
	sort.Ints(men)
	sort.Ints(women)

	pick := func(vals []int, p float64) string {
		if len(vals) == 0 {
			return missingPercentile
		}
		return duration.FormatHHMMSS(float64(Pick(vals, p)))
	}
	out := make([]model.PercentileRow, len(PercentilePoints))
	for i, pp := range PercentilePoints {
		out[i] = model.PercentileRow{
			Label:     pp.Label,
			Masculino: pick(men, pp.P),
			Femenino:  pick(women, pp.P),
		}
	}
	return out
}

// completionFields must all be positive for a record to count as fully completed.
var completionFields = func() []schema.Field {
	out := []schema.Field{schema.ChipTime}
	for _, c := range schema.Checkpoints() {
		out = append(out, c.Split)
	}
	return out
}()

// FullyCompleted reports whether chip time and every split are positive.
func FullyCompleted(r model.Record) bool {
	for _, f := range completionFields {
		if !positive(r, f) {
			return false
		}
	}
	return true
}

// Completed filters records down to the fully completed ones.
func Completed(records []model.Record) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if FullyCompleted(r) {
			out = append(out, r)
		}
	}
	return out
}

// PaceDistribution buckets the average pace of fully completed records into
// the report pace ranges, per gender key, plus a totals row.
func PaceDistribution(records []model.Record) ([]model.PaceDistributionRow, model.PaceDistributionRow) {
	rows := make([]model.PaceDistributionRow, len(pace.ReportRanges))
	for i, r := range pace.ReportRanges {
		rows[i].Label = r.Label
	}
	for _, r := range records {
		if !FullyCompleted(r) {
			continue
		}
		secs := seconds(r, schema.AvgPace)
		if secs <= 0 {
			continue
		}
		for i, rg := range pace.ReportRanges {
			if !rg.Contains(float64(secs)) {
				continue
			}
			switch gender.Parse(r.Get(schema.Gender)).Key() {
			case "F":
				rows[i].F++
			case "M":
				rows[i].M++
			default:
				rows[i].X++
			}
			break
		}
	}
	total := model.PaceDistributionRow{Label: LabelTotal}
	for _, row := range rows {
		total.F += row.F
		total.M += row.M
		total.X += row.X
	}
	return rows, total
}

// average returns the mean pace of f over subset, "00:00:00" when empty.
func average(subset []model.Record, f schema.Field) string {
	if len(subset) == 0 {
		return duration.Zero
	}
	total := 0
	for _, r := range subset {
		total += seconds(r, f)
	}
	return duration.FormatHHMMSS(float64(total) / float64(len(subset)))
}

func filter(records []model.Record, keep func(model.Record) bool) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// progressiveStep is one row of the progressive split summary: the subset it
// covers and the pace column averaged over it.
type progressiveStep struct {
	label  string
	subset []model.Record
	pace   schema.Field
}

// progressive yields the two fixed rows followed by one row per checkpoint.
// Checkpoint subsets shrink cumulatively: a record stays only while every
// checkpoint pace up to the current one is positive.
func progressive(records []model.Record) []progressiveStep {
	cps := schema.Checkpoints()
	withChip := filter(records, func(r model.Record) bool { return positive(r, schema.ChipTime) })
	allPaces := filter(withChip, func(r model.Record) bool {
		for _, c := range cps {
			if !positive(r, c.Pace) {
				return false
			}
		}
		return true
	})

	steps := []progressiveStep{
		{label: LabelWithChip, subset: withChip, pace: schema.AvgPace},
		{label: LabelAllSplits, subset: allPaces, pace: schema.AvgPace},
	}
	subset := records
	for _, c := range cps {
		pf := c.Pace
		subset = filter(subset, func(r model.Record) bool { return positive(r, pf) })
		steps = append(steps, progressiveStep{label: c.Label, subset: subset, pace: c.Pace})
	}
	return steps
}

// SummaryStats is the progressive split summary over all genders.
func SummaryStats(records []model.Record) []model.SummaryRow {
	steps := progressive(records)
	out := make([]model.SummaryRow, len(steps))
	for i, s := range steps {
		out[i] = model.SummaryRow{Label: s.label, Count: len(s.subset), AvgPace: average(s.subset, s.pace)}
	}
	return out
}

func byGender(records []model.Record, g gender.Gender) []model.Record {
	return filter(records, func(r model.Record) bool { return gender.Parse(r.Get(schema.Gender)) == g })
}

// GenderSummaryStats is the progressive split summary split by gender.
func GenderSummaryStats(records []model.Record) []model.GenderSummaryRow {
	steps := progressive(records)
	out := make([]model.GenderSummaryRow, len(steps))
	for i, s := range steps {
		men := byGender(s.subset, gender.Male)
		women := byGender(s.subset, gender.Female)
		out[i] = model.GenderSummaryRow{
			Label:    s.label,
			CountM:   len(men),
			CountF:   len(women),
			AvgPaceM: average(men, s.pace),
			AvgPaceF: average(women, s.pace),
		}
	}
	return out
}

// sortCategories orders labels with Spanish collation.
func sortCategories(labels []string) {
	c := collate.New(language.Spanish)
	sort.SliceStable(labels, func(i, j int) bool { return c.CompareString(labels[i], labels[j]) < 0 })
}

// CategoryStats reports per-category, per-gender counts and average pace.
func CategoryStats(records []model.Record) []model.CategoryStatsRow {
	type group struct{ men, women []model.Record }
	groups := map[string]*group{}
	var labels []string
	for _, r := range records {
		cat := r.Get(schema.Category)
		if cat == "" {
			cat = LabelNoCategory
		}
		g, ok := groups[cat]
		if !ok {
			g = &group{}
			groups[cat] = g
			labels = append(labels, cat)
		}
		switch gender.Parse(r.Get(schema.Gender)) {
		case gender.Male:
			g.men = append(g.men, r)
		case gender.Female:
			g.women = append(g.women, r)
		}
	}
	sortCategories(labels)

	out := make([]model.CategoryStatsRow, len(labels))
	for i, cat := range labels {
		g := groups[cat]
		out[i] = model.CategoryStatsRow{
			Categoria: cat,
			CountM:    len(g.men),
			CountF:    len(g.women),
			AvgPaceM:  average(g.men, schema.AvgPace),
			AvgPaceF:  average(g.women, schema.AvgPace),
		}
	}
	return out
}

// GenderSummaryByCategory runs the gender summary inside each non-empty
// category of the fully completed records.
func GenderSummaryByCategory(records []model.Record) map[string][]model.GenderSummaryRow {
	byCat := map[string][]model.Record{}
	for _, r := range Completed(records) {
		cat := r.Get(schema.Category)
		if cat == "" {
			continue
		}
		byCat[cat] = append(byCat[cat], r)
	}
	out := make(map[string][]model.GenderSummaryRow, len(byCat))
	for cat, subset := range byCat {
		out[cat] = GenderSummaryStats(subset)
	}
	return out
}
