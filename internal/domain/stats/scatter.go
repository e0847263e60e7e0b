package stats

import (
	"sort"

	"github.com/okian/ritmo/internal/domain/duration"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/schema"
)

// series turns labelled averages into points sorted by distance. Labels that
// are not checkpoints are skipped. When a 5 km point exists an x=0 point
// repeating its pace is added.
func series(labels, paces []string) []model.Point {
	points := make([]model.Point, 0, len(labels)+1)
	for i, label := range labels {
		km, ok := schema.CheckpointKm(label)
		if !ok {
			continue
		}
		points = append(points, model.Point{X: km, Y: float64(duration.Seconds(paces[i]))})
	}
	for _, p := range points {
		if p.X == 5 {
			points = append(points, model.Point{X: 0, Y: p.Y})
			break
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })
	return points
}

// Scatter builds the general pace-per-checkpoint series from summary rows.
func Scatter(rows []model.SummaryRow) []model.Point {
	labels := make([]string, len(rows))
	paces := make([]string, len(rows))
	for i, r := range rows {
		labels[i], paces[i] = r.Label, r.AvgPace
	}
	return series(labels, paces)
}

// ScatterByGender builds one series per gender from gender summary rows.
func ScatterByGender(rows []model.GenderSummaryRow) model.GenderSeries {
	labels := make([]string, len(rows))
	men := make([]string, len(rows))
	women := make([]string, len(rows))
	for i, r := range rows {
		labels[i], men[i], women[i] = r.Label, r.AvgPaceM, r.AvgPaceF
	}
	return model.GenderSeries{DataM: series(labels, men), DataF: series(labels, women)}
}

// ScatterByCategory builds gender series for every category summary.
func ScatterByCategory(byCat map[string][]model.GenderSummaryRow) map[string]model.GenderSeries {
	out := make(map[string]model.GenderSeries, len(byCat))
	for cat, rows := range byCat {
		out[cat] = ScatterByGender(rows)
	}
	return out
}

// Analyze computes the full report for a set of normalized records.
func Analyze(records []model.Record) model.Report {
	summary := SummaryStats(records)
	genderSummary := GenderSummaryStats(records)
	byCat := GenderSummaryByCategory(records)
	dist, totals := PaceDistribution(records)
	return model.Report{
		SchemaVersion:                model.ReportSchemaVersion,
		PercentileRows:               Percentiles(records),
		PaceDistributionRows:         dist,
		PaceDistributionTotals:       totals,
		SummaryStatsRows:             summary,
		GenderSummaryStatsRows:       genderSummary,
		CategoryStatsRows:            CategoryStats(records),
		GenderSummaryStatsByCategory: byCat,
		ScatterDataByCategory:        ScatterByCategory(byCat),
		ScatterData:                  Scatter(summary),
		ScatterDataGenero:            ScatterByGender(genderSummary),
	}
}
