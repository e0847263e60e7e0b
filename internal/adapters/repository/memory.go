package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ritmo/internal/domain/gender"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/ranking"
	"github.com/okian/ritmo/pkg/metrics"
)

const driverMemory = "memory"

// raceData holds one race's results plus chip-time indexes per gender and
// per category. Results without a chip time are stored but not indexed.
type raceData struct {
	race       model.Race
	results    []model.Result
	byGender   map[gender.Gender]*node
	byCategory map[string]*node
}

func (d *raceData) index(i int) {
	r := d.results[i]
	if r.ChipSeconds <= 0 {
		return
	}
	k := key{chip: r.ChipSeconds, seq: int(r.ID)}
	d.byGender[r.Gender] = insert(d.byGender[r.Gender], k, i)
	d.byCategory[r.Category] = insert(d.byCategory[r.Category], k, i)
}

// MemoryStore is the in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	races   []*raceData
	byName  map[string]*raceData
	reports map[string]model.StoredReport
	nextID  int64
	total   int
	now     func() time.Time

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
	stopOnce              sync.Once
}

// NewMemoryStore constructs an empty store and starts its metrics updater,
// which stops on Close or when ctx ends.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byName:                make(map[string]*raceData),
		reports:               make(map[string]model.StoredReport),
		now:                   time.Now,
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateStoredResults(s.Count(ctx))
			}
		}
	}()
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(driverMemory, op, float64(time.Since(start).Milliseconds()))
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *MemoryStore) UpsertRace(_ context.Context, race model.Race) (model.Race, error) {
	defer observe("upsert_race", time.Now())
	k := nameKey(race.Name)
	if k == "" {
		return model.Race{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.byName[k]; ok {
		return d.race, nil
	}
	race.ID = int64(len(s.races) + 1)
	race.Name = strings.TrimSpace(race.Name)
	if race.CreatedAt.IsZero() {
		race.CreatedAt = s.now().UTC()
	}
	d := &raceData{
		race:       race,
		byGender:   make(map[gender.Gender]*node),
		byCategory: make(map[string]*node),
	}
	s.races = append(s.races, d)
	s.byName[k] = d
	return race, nil
}

func (s *MemoryStore) Races(_ context.Context) ([]model.Race, error) {
	defer observe("races", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Race, len(s.races))
	for i, d := range s.races {
		out[i] = d.race
	}
	return out, nil
}

// race must be called with the lock held.
func (s *MemoryStore) race(id int64) (*raceData, error) {
	if id < 1 || id > int64(len(s.races)) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, fmt.Errorf("race %d: %w", id, ErrNotFound)
	}
	return s.races[id-1], nil
}

func (s *MemoryStore) Race(_ context.Context, id int64) (model.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.race(id)
	if err != nil {
		return model.Race{}, err
	}
	return d.race, nil
}

func (s *MemoryStore) InsertResults(_ context.Context, raceID int64, results []model.Result) (int, error) {
	defer observe("insert_results", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.race(raceID)
	if err != nil {
		return 0, err
	}
	for _, r := range results {
		s.nextID++
		r.ID = s.nextID
		r.RaceID = raceID
		d.results = append(d.results, r)
		d.index(len(d.results) - 1)
	}
	s.total += len(results)
	return len(results), nil
}

func (s *MemoryStore) Results(_ context.Context, raceID int64) ([]model.Result, error) {
	defer observe("results", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.race(raceID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Result, len(d.results))
	copy(out, d.results)
	return out, nil
}

func checkLimit(n int) error {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return ErrInvalidLimit
	}
	return nil
}

func (s *MemoryStore) TopByGender(_ context.Context, raceID int64, g gender.Gender, n int) ([]model.Ranked, error) {
	defer observe("top_gender", time.Now())
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.race(raceID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Ranked, 0, n)
	walk(d.byGender[g], func(i int) bool {
		r := d.results[i]
		if ranking.Excluded(r.Category) {
			return true
		}
		out = append(out, model.RankedOf(len(out)+1, r))
		return len(out) < n
	})
	return out, nil
}

func (s *MemoryStore) TopByCategory(_ context.Context, raceID int64, n int) ([]model.Ranked, error) {
	defer observe("top_category", time.Now())
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.race(raceID)
	if err != nil {
		return nil, err
	}
	cats := make([]string, 0, len(d.byCategory))
	for c := range d.byCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	out := []model.Ranked{}
	for _, c := range cats {
		pos := 0
		walk(d.byCategory[c], func(i int) bool {
			pos++
			out = append(out, model.RankedOf(pos, d.results[i]))
			return pos < n
		})
	}
	return out, nil
}

func (s *MemoryStore) SaveReport(_ context.Context, report model.StoredReport) (model.StoredReport, error) {
	defer observe("save_report", time.Now())
	if strings.TrimSpace(report.Name) == "" {
		return model.StoredReport{}, ErrEmptyName
	}
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.Date.IsZero() {
		report.Date = s.now().UTC()
	}
	s.mu.Lock()
	s.reports[report.ID] = report
	s.mu.Unlock()
	return report, nil
}

func (s *MemoryStore) Report(_ context.Context, id string) (model.StoredReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.StoredReport{}, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	return r, nil
}

func (s *MemoryStore) Reports(_ context.Context) ([]model.ReportSummary, error) {
	s.mu.RLock()
	out := make([]model.ReportSummary, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, model.ReportSummary{ID: r.ID, Name: r.Name, Date: r.Date})
	}
	s.mu.RUnlock()
	SortSummaries(out)
	return out, nil
}

// SortSummaries orders report summaries newest first, then by id.
func SortSummaries(out []model.ReportSummary) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

var _ Store = (*MemoryStore)(nil)
