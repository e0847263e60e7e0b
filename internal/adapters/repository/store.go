// Package repository defines the race and report store and its in-memory
// implementation.
package repository

import (
	"context"

	"github.com/okian/ritmo/internal/domain/gender"
	"github.com/okian/ritmo/internal/domain/model"
)

// Store persists races, their results and saved analysis reports.
type Store interface {
	// UpsertRace returns the race with the same name, creating it when
	// missing. Names compare without surrounding space and case.
	UpsertRace(ctx context.Context, race model.Race) (model.Race, error)
	// Races lists races in creation order.
	Races(ctx context.Context) ([]model.Race, error)
	// Race returns ErrNotFound for unknown ids.
	Race(ctx context.Context, id int64) (model.Race, error)

	// InsertResults appends results to a race and returns how many were stored.
	InsertResults(ctx context.Context, raceID int64, results []model.Result) (int, error)
	// Results returns a race's results in ingestion order.
	Results(ctx context.Context, raceID int64) ([]model.Result, error)

	// TopByGender returns the n fastest results of g, skipping adapted
	// categories.
	TopByGender(ctx context.Context, raceID int64, g gender.Gender, n int) ([]model.Ranked, error)
	// TopByCategory returns the n fastest results of every category.
	TopByCategory(ctx context.Context, raceID int64, n int) ([]model.Ranked, error)

	SaveReport(ctx context.Context, report model.StoredReport) (model.StoredReport, error)
	Report(ctx context.Context, id string) (model.StoredReport, error)
	// Reports lists saved reports, newest first.
	Reports(ctx context.Context) ([]model.ReportSummary, error)

	// Count returns the number of stored results across races.
	Count(ctx context.Context) int
	Close() error
}
