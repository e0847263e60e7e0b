package model

import (
	"fmt"
	"time"
)

// ReportSchemaVersion is bumped whenever the Report shape changes.
const ReportSchemaVersion = 1

// PercentileRow is one percentile point, with "-" for genders without samples.
type PercentileRow struct {
	Label     string `json:"label"`
	Masculino string `json:"Masculino"`
	Femenino  string `json:"Femenino"`
}

// PaceDistributionRow counts paces in one range per gender key.
type PaceDistributionRow struct {
	Label string `json:"label"`
	F     int    `json:"F"`
	M     int    `json:"M"`
	X     int    `json:"X"`
}

// SummaryRow is one progressive split summary row.
type SummaryRow struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	AvgPace string `json:"avgPace"`
}

// GenderSummaryRow is a SummaryRow split by gender.
type GenderSummaryRow struct {
	Label    string `json:"label"`
	CountM   int    `json:"countM"`
	CountF   int    `json:"countF"`
	AvgPaceM string `json:"avgPaceM"`
	AvgPaceF string `json:"avgPaceF"`
}

// CategoryStatsRow holds per-gender counts and average pace for a category.
type CategoryStatsRow struct {
	Categoria string `json:"categoria"`
	CountM    int    `json:"countM"`
	CountF    int    `json:"countF"`
	AvgPaceM  string `json:"avgPaceM"`
	AvgPaceF  string `json:"avgPaceF"`
}

// Point is a chart point: x in kilometres, y in seconds per kilometre.
//
// Every series carries an x=0 point that repeats the 5 km pace so lines start
// at the origin. It is a drawing aid, not a measurement.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GenderSeries holds one scatter series per gender.
type GenderSeries struct {
	DataM []Point `json:"dataM"`
	DataF []Point `json:"dataF"`
}

// Report is the full analysis of one normalized file.
type Report struct {
	SchemaVersion                int                           `json:"schemaVersion"`
	PercentileRows               []PercentileRow               `json:"percentileRows"`
	PaceDistributionRows         []PaceDistributionRow         `json:"paceDistributionRows"`
	PaceDistributionTotals       PaceDistributionRow           `json:"paceDistributionTotals"`
	SummaryStatsRows             []SummaryRow                  `json:"summaryStatsRows"`
	GenderSummaryStatsRows       []GenderSummaryRow            `json:"genderSummaryStatsRows"`
	CategoryStatsRows            []CategoryStatsRow            `json:"categoryStatsRows"`
	GenderSummaryStatsByCategory map[string][]GenderSummaryRow `json:"genderSummaryStatsByCategory"`
	ScatterDataByCategory        map[string]GenderSeries       `json:"scatterDataByCategory"`
	ScatterData                  []Point                       `json:"scatterData"`
	ScatterDataGenero            GenderSeries                  `json:"scatterDataGenero"`
}

// CheckVersion rejects reports produced under a different schema.
func (r Report) CheckVersion() error {
	if r.SchemaVersion != ReportSchemaVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrReportVersion, r.SchemaVersion, ReportSchemaVersion)
	}
	return nil
}

// ReportMetadata describes the file a report was computed from.
type ReportMetadata struct {
	FileName   string  `json:"fileName"`
	DistanceKm float64 `json:"distanceKm"`
	RowCount   int     `json:"rowCount"`
}

// StoredReport is a persisted report with its identity.
type StoredReport struct {
	ID       string          `json:"id"`
	Name     string          `json:"nombre"`
	Date     time.Time       `json:"fecha"`
	Metadata *ReportMetadata `json:"metadata"`
	Analysis Report          `json:"analysis"`
}

// ReportSummary is the list view of a stored report.
type ReportSummary struct {
	ID   string    `json:"id"`
	Name string    `json:"nombre"`
	Date time.Time `json:"fecha"`
}

// ReportInput is a report submitted for storage.
type ReportInput struct {
	Name     string          `json:"nombre"`
	Metadata *ReportMetadata `json:"metadata"`
	Analysis Report          `json:"analysis"`
}
