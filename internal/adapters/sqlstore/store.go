// Package sqlstore implements repository.Store on database/sql, backed by
// SQLite (modernc.org/sqlite) or Postgres (pgx).
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/okian/ritmo/internal/adapters/repository"
	"github.com/okian/ritmo/internal/domain/gender"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/ranking"
	"github.com/okian/ritmo/pkg/metrics"
)

// Store is a SQL-backed repository.Store.
type Store struct {
	db  *sql.DB
	d   dialect
	now func() time.Time
}

// Open connects to driver ("sqlite" or "postgres") and creates the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if d.name == sqliteDialect.name {
		// SQLite serializes writers; a single connection also keeps
		// in-memory databases alive for the store's lifetime.
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db, d: d, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range s.d.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.d.name, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) observe(op string, start time.Time) {
	metrics.RecordStoreLatency(s.d.name, op, float64(time.Since(start).Milliseconds()))
}

func (s *Store) q(query string) string {
	return s.d.rebind(query)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

const raceColumns = `id, name, race_date, distance_km, ascent_m, created_at`

func scanRace(row interface{ Scan(...any) error }) (model.Race, error) {
	var r model.Race
	var created int64
	if err := row.Scan(&r.ID, &r.Name, &r.Date, &r.DistanceKm, &r.AscentM, &created); err != nil {
		return model.Race{}, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	return r, nil
}

func (s *Store) UpsertRace(ctx context.Context, race model.Race) (model.Race, error) {
	defer s.observe("upsert_race", time.Now())
	k := nameKey(race.Name)
	if k == "" {
		return model.Race{}, repository.ErrEmptyName
	}
	created := race.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO races (name, name_key, race_date, distance_km, ascent_m, created_at)
		VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (name_key) DO NOTHING`),
		strings.TrimSpace(race.Name), k, race.Date, race.DistanceKm, race.AscentM, created.UnixNano())
	if err != nil {
		return model.Race{}, fmt.Errorf("insert race: %w", err)
	}
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+raceColumns+` FROM races WHERE name_key = ?`), k)
	return scanRace(row)
}

func (s *Store) Races(ctx context.Context) ([]model.Race, error) {
	defer s.observe("races", time.Now())
	rows, err := s.db.QueryContext(ctx, `SELECT `+raceColumns+` FROM races ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Race{}
	for rows.Next() {
		r, err := scanRace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Race(ctx context.Context, id int64) (model.Race, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+raceColumns+` FROM races WHERE id = ?`), id)
	r, err := scanRace(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Race{}, fmt.Errorf("race %d: %w", id, repository.ErrNotFound)
	}
	return r, err
}

func (s *Store) InsertResults(ctx context.Context, raceID int64, results []model.Result) (n int, err error) {
	defer s.observe("insert_results", time.Now())
	if _, err := s.Race(ctx, raceID); err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.q(`INSERT INTO results
		(race_id, seq, bib, name, gender, category, chip_time, chip_seconds, pace, pace_seconds, distance_km, ascent_m, checkpoints)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range results {
		var cps sql.NullString
		if len(r.Checkpoints) > 0 {
			b, err := json.Marshal(r.Checkpoints)
			if err != nil {
				return 0, err
			}
			cps = sql.NullString{String: string(b), Valid: true}
		}
		if _, err = stmt.ExecContext(ctx, raceID, r.Seq, r.Bib, r.Name, string(r.Gender), r.Category,
			r.ChipTime, r.ChipSeconds, r.Pace, r.PaceSeconds, r.Distance, r.Ascent, cps); err != nil {
			return 0, fmt.Errorf("insert result: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(results), nil
}

const resultColumns = `id, race_id, seq, bib, name, gender, category, chip_time, chip_seconds, pace, pace_seconds, distance_km, ascent_m, checkpoints`

func scanResult(row interface{ Scan(...any) error }, extra ...any) (model.Result, error) {
	var r model.Result
	var g string
	var cps sql.NullString
	dest := []any{&r.ID, &r.RaceID, &r.Seq, &r.Bib, &r.Name, &g, &r.Category, &r.ChipTime,
		&r.ChipSeconds, &r.Pace, &r.PaceSeconds, &r.Distance, &r.Ascent, &cps}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return model.Result{}, err
	}
	r.Gender = gender.Parse(g)
	if cps.Valid && cps.String != "" {
		if err := json.Unmarshal([]byte(cps.String), &r.Checkpoints); err != nil {
			return model.Result{}, fmt.Errorf("decode checkpoints: %w", err)
		}
	}
	return r, nil
}

func (s *Store) Results(ctx context.Context, raceID int64) ([]model.Result, error) {
	defer s.observe("results", time.Now())
	if _, err := s.Race(ctx, raceID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+resultColumns+` FROM results WHERE race_id = ? ORDER BY id`), raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func checkLimit(n int) error {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return repository.ErrInvalidLimit
	}
	return nil
}

// TopByGender scans the race's results of g in chip-time order and stops
// after n that are not in an adapted category. Category matching runs in Go
// so accents fold the same way for every driver.
func (s *Store) TopByGender(ctx context.Context, raceID int64, g gender.Gender, n int) ([]model.Ranked, error) {
	defer s.observe("top_gender", time.Now())
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	if _, err := s.Race(ctx, raceID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+resultColumns+` FROM results
		WHERE race_id = ? AND gender = ? AND chip_seconds > 0
		ORDER BY chip_seconds, id`), raceID, string(g))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Ranked, 0, n)
	for len(out) < n && rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		if ranking.Excluded(r.Category) {
			continue
		}
		out = append(out, model.RankedOf(len(out)+1, r))
	}
	return out, rows.Err()
}

func (s *Store) TopByCategory(ctx context.Context, raceID int64, n int) ([]model.Ranked, error) {
	defer s.observe("top_category", time.Now())
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	if _, err := s.Race(ctx, raceID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+resultColumns+`, rn FROM (
			SELECT `+resultColumns+`,
				ROW_NUMBER() OVER (PARTITION BY category ORDER BY chip_seconds, id) AS rn
			FROM results WHERE race_id = ? AND chip_seconds > 0
		) ranked
		WHERE rn <= ?
		ORDER BY category`+s.d.orderText+`, rn`), raceID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Ranked{}
	for rows.Next() {
		var pos int
		r, err := scanResult(rows, &pos)
		if err != nil {
			return nil, err
		}
		out = append(out, model.RankedOf(pos, r))
	}
	return out, rows.Err()
}

func (s *Store) SaveReport(ctx context.Context, report model.StoredReport) (model.StoredReport, error) {
	defer s.observe("save_report", time.Now())
	if strings.TrimSpace(report.Name) == "" {
		return model.StoredReport{}, repository.ErrEmptyName
	}
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.Date.IsZero() {
		report.Date = s.now()
	}
	report.Date = report.Date.UTC()

	analysis, err := json.Marshal(report.Analysis)
	if err != nil {
		return model.StoredReport{}, err
	}
	var meta sql.NullString
	if report.Metadata != nil {
		b, err := json.Marshal(report.Metadata)
		if err != nil {
			return model.StoredReport{}, err
		}
		meta = sql.NullString{String: string(b), Valid: true}
	}
	if _, err := s.db.ExecContext(ctx, s.q(`INSERT INTO reports (id, name, created_at, metadata, analysis) VALUES (?, ?, ?, ?, ?)`),
		report.ID, report.Name, report.Date.UnixNano(), meta, string(analysis)); err != nil {
		return model.StoredReport{}, fmt.Errorf("insert report: %w", err)
	}
	return report, nil
}

func (s *Store) Report(ctx context.Context, id string) (model.StoredReport, error) {
	var r model.StoredReport
	var created int64
	var meta sql.NullString
	var analysis string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT id, name, created_at, metadata, analysis FROM reports WHERE id = ?`), id).
		Scan(&r.ID, &r.Name, &created, &meta, &analysis)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.StoredReport{}, fmt.Errorf("report %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return model.StoredReport{}, err
	}
	r.Date = time.Unix(0, created).UTC()
	if meta.Valid {
		r.Metadata = &model.ReportMetadata{}
		if err := json.Unmarshal([]byte(meta.String), r.Metadata); err != nil {
			return model.StoredReport{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(analysis), &r.Analysis); err != nil {
		return model.StoredReport{}, fmt.Errorf("decode analysis: %w", err)
	}
	return r, nil
}

func (s *Store) Reports(ctx context.Context) ([]model.ReportSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM reports ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ReportSummary{}
	for rows.Next() {
		var r model.ReportSummary
		var created int64
		if err := rows.Scan(&r.ID, &r.Name, &created); err != nil {
			return nil, err
		}
		r.Date = time.Unix(0, created).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		metrics.RecordErrorByComponent("repository", "count")
		return 0
	}
	return n
}

var _ repository.Store = (*Store)(nil)
