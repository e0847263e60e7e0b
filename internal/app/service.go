// Package service wires normalization, analysis and persistence into the
// operations the HTTP API and CLI expose.
package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/ritmo/internal/adapters/csvio"
	"github.com/okian/ritmo/internal/adapters/mq/publisher"
	eventqueue "github.com/okian/ritmo/internal/adapters/mq/queue"
	workerpool "github.com/okian/ritmo/internal/adapters/mq/worker"
	"github.com/okian/ritmo/internal/adapters/repository"
	"github.com/okian/ritmo/internal/domain/dedupe"
	"github.com/okian/ritmo/internal/domain/gender"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/normalize"
	"github.com/okian/ritmo/internal/domain/ranking"
	"github.com/okian/ritmo/internal/domain/schema"
	"github.com/okian/ritmo/internal/domain/stats"
	"github.com/okian/ritmo/pkg/logger"
	"github.com/okian/ritmo/pkg/metrics"
)

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	deduper   dedupe.Deduper
	queue     *eventqueue.InMemoryQueue
	pool      *workerpool.Pool
	publisher publisher.Publisher

	workerCount       int
	queueSize         int
	dedupeSize        int
	parallelThreshold int
	defaultTopN       int
	maxTopN           int

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of normalization workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the row queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many upload fingerprints are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithParallelThreshold sets the smallest upload normalized by the pool.
func WithParallelThreshold(rows int) Option {
	return func(s *Service) {
		if rows > 0 {
			s.parallelThreshold = rows
		}
	}
}

// WithTopN sets the default and maximum ranking length.
func WithTopN(def, limit int) Option {
	return func(s *Service) {
		if def > 0 && limit >= def {
			s.defaultTopN = def
			s.maxTopN = limit
		}
	}
}

// WithStore sets the store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithPublisher sets the event publisher. The service closes it on Stop.
func WithPublisher(p publisher.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Components are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       runtime.NumCPU(),
		queueSize:         10000,
		dedupeSize:        dedupe.DefaultMaxSize,
		parallelThreshold: 2000,
		defaultTopN:       ranking.DefaultN,
		maxTopN:           100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
		s.logger.Info(ctx, "using memory store")
	}
	if s.publisher == nil {
		s.publisher = publisher.NopPublisher{}
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.WithParallelThreshold(s.parallelThreshold))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "race results service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("parallelThreshold", s.parallelThreshold),
	)
	return nil
}

// Stop shuts the pool down and closes the store and publisher.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "store close", logger.Error(err))
	}
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn(ctx, "publisher close", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "race results service stopped")
}

func checkDistance(km float64) error {
	if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return fmt.Errorf("%w: %v", model.ErrInvalidDistance, km)
	}
	return nil
}

// Normalize maps a parsed file onto canonical records with the given profile.
func (s *Service) Normalize(ctx context.Context, p normalize.Profile, distanceKm float64, t csvio.Table) (normalize.Batch, error) {
	if err := checkDistance(distanceKm); err != nil {
		return normalize.Batch{}, err
	}
	start := time.Now()
	n := normalize.New(distanceKm, t.Headers, normalize.WithProfile(p))
	b, err := s.pool.Normalize(ctx, n, t.Rows)
	if err != nil {
		return normalize.Batch{}, err
	}
	metrics.RecordNormalizeLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordRows(p.Name, normalize.Kept.String(), b.Kept)
	metrics.RecordRows(p.Name, normalize.Blank.String(), b.Blank)
	metrics.RecordRows(p.Name, normalize.Omitted.String(), b.Omitted)
	s.logger.Debug(ctx, "normalized file",
		logger.String("profile", p.Name),
		logger.Int("kept", b.Kept),
		logger.Int("blank", b.Blank),
		logger.Int("omitted", b.Omitted),
	)
	return b, nil
}

// Analyze normalizes a file with the report profile and computes its report.
func (s *Service) Analyze(ctx context.Context, distanceKm float64, t csvio.Table) (model.Report, normalize.Batch, error) {
	b, err := s.Normalize(ctx, normalize.ReportProfile, distanceKm, t)
	if err != nil {
		return model.Report{}, normalize.Batch{}, err
	}
	start := time.Now()
	report := stats.Analyze(b.Records)
	metrics.RecordAnalyzeLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordReportGenerated()
	return report, b, nil
}

// SaveReport validates the report schema version and stores it.
func (s *Service) SaveReport(ctx context.Context, in model.ReportInput) (model.StoredReport, error) {
	if err := in.Analysis.CheckVersion(); err != nil {
		return model.StoredReport{}, err
	}
	saved, err := s.store.SaveReport(ctx, model.StoredReport{Name: in.Name, Metadata: in.Metadata, Analysis: in.Analysis})
	if err != nil {
		return model.StoredReport{}, err
	}
	metrics.RecordReportSaved()

	rowCount := 0
	if in.Metadata != nil {
		rowCount = in.Metadata.RowCount
	}
	s.publish(ctx, publisher.Event{
		Type: publisher.TypeReportSaved,
		Key:  saved.ID,
		Data: publisher.ReportSaved{ReportID: saved.ID, Name: saved.Name, RowCount: rowCount},
	})
	return saved, nil
}

// AnalyzeAndSave analyzes a file and stores the report under name.
func (s *Service) AnalyzeAndSave(ctx context.Context, name, fileName string, distanceKm float64, t csvio.Table) (model.StoredReport, error) {
	report, b, err := s.Analyze(ctx, distanceKm, t)
	if err != nil {
		return model.StoredReport{}, err
	}
	return s.SaveReport(ctx, model.ReportInput{
		Name:     name,
		Metadata: &model.ReportMetadata{FileName: fileName, DistanceKm: distanceKm, RowCount: b.Kept},
		Analysis: report,
	})
}

// Report returns a stored report.
func (s *Service) Report(ctx context.Context, id string) (model.StoredReport, error) {
	return s.store.Report(ctx, id)
}

// Reports lists stored reports, newest first.
func (s *Service) Reports(ctx context.Context) ([]model.ReportSummary, error) {
	return s.store.Reports(ctx)
}

// baseColumns are stored for every ingested result.
var baseColumns = []string{"carrera_id", "nombre", "genero", "categoria", "tiempo_chip", "ritmo_medio", "distancia", "ascenso_total"}

// Ingest parses an uploaded results file, finds or creates its race and
// stores every row with a usable chip time. Re-uploading the same file for
// the same race fails with model.ErrDuplicateUpload. When no row survives the
// result carries the omitted count alongside model.ErrNothingInserted.
func (s *Service) Ingest(ctx context.Context, race model.Race, content []byte) (res model.IngestResult, err error) {
	if err := checkDistance(race.DistanceKm); err != nil {
		return model.IngestResult{}, err
	}
	start := time.Now()
	fp := dedupe.Fingerprint(race.Name, content)
	if s.deduper.SeenAndRecord(ctx, fp) {
		metrics.RecordIngestDuplicate()
		return model.IngestResult{}, model.ErrDuplicateUpload
	}
	defer func() {
		if err != nil {
			s.deduper.Unrecord(ctx, fp)
		}
	}()

	t, err := csvio.Read(bytes.NewReader(content))
	if err != nil {
		return model.IngestResult{}, err
	}
	stored, err := s.store.UpsertRace(ctx, race)
	if err != nil {
		return model.IngestResult{}, err
	}
	// Derived fields follow the distance sent with the upload.
	distance := race.DistanceKm
	n := normalize.New(distance, t.Headers, normalize.WithProfile(normalize.IngestProfile))
	b, err := s.pool.Normalize(ctx, n, t.Rows)
	if err != nil {
		return model.IngestResult{}, err
	}
	metrics.RecordRows(normalize.IngestProfile.Name, normalize.Kept.String(), b.Kept)
	metrics.RecordRows(normalize.IngestProfile.Name, normalize.Blank.String(), b.Blank)
	metrics.RecordRows(normalize.IngestProfile.Name, normalize.Omitted.String(), b.Omitted)

	cps := normalize.PresentCheckpoints(n.Matches())
	res = model.IngestResult{RaceID: stored.ID, Race: stored, Omitted: b.Omitted, Columns: columns(cps)}
	if b.Kept == 0 {
		return res, model.ErrNothingInserted
	}

	results := make([]model.Result, len(b.Records))
	for i, rec := range b.Records {
		results[i] = normalize.ResultOf(rec, i+1, distance, race.AscentM, cps)
	}
	res.Inserted, err = s.store.InsertResults(ctx, stored.ID, results)
	if err != nil {
		return model.IngestResult{}, err
	}
	metrics.RecordIngestion(float64(time.Since(start).Milliseconds()))
	metrics.UpdateStoredResults(s.store.Count(ctx))

	s.publish(ctx, publisher.Event{
		Type: publisher.TypeResultsIngested,
		Key:  strconv.FormatInt(stored.ID, 10),
		Data: publisher.ResultsIngested{
			RaceID:   stored.ID,
			Race:     stored.Name,
			Inserted: res.Inserted,
			Omitted:  res.Omitted,
			Columns:  res.Columns,
		},
	})
	s.logger.Info(ctx, "results ingested",
		logger.String("race", stored.Name),
		logger.Int64("raceId", stored.ID),
		logger.Int("inserted", res.Inserted),
		logger.Int("omitted", res.Omitted),
	)
	return res, nil
}

func columns(cps []schema.Field) []string {
	out := make([]string, 0, len(baseColumns)+len(cps))
	out = append(out, baseColumns...)
	for _, f := range cps {
		out = append(out, f.String())
	}
	return out
}

// publish delivers e and logs failures; events never fail a request.
func (s *Service) publish(ctx context.Context, e publisher.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		metrics.RecordErrorByComponent("publisher", "publish")
		s.logger.Warn(ctx, "event not published", logger.String("type", e.Type), logger.Error(err))
	}
}

// Races lists stored races.
func (s *Service) Races(ctx context.Context) ([]model.Race, error) {
	return s.store.Races(ctx)
}

func (s *Service) results(ctx context.Context, raceID int64) ([]model.Result, error) {
	return s.store.Results(ctx, raceID)
}

// RaceOverview averages the pace of a stored race.
func (s *Service) RaceOverview(ctx context.Context, raceID int64) (model.RaceOverview, error) {
	rs, err := s.results(ctx, raceID)
	if err != nil {
		return model.RaceOverview{}, err
	}
	return stats.RaceOverview(rs), nil
}

// PaceShares distributes a stored race over the general pace ranges.
func (s *Service) PaceShares(ctx context.Context, raceID int64) (model.PaceShares, error) {
	rs, err := s.results(ctx, raceID)
	if err != nil {
		return model.PaceShares{}, err
	}
	return stats.PaceShares(rs), nil
}

// CategoryPaces summarizes a stored race per category.
func (s *Service) CategoryPaces(ctx context.Context, raceID int64) ([]model.CategoryPace, error) {
	rs, err := s.results(ctx, raceID)
	if err != nil {
		return nil, err
	}
	return stats.CategoryPaces(rs), nil
}

// Limit resolves a requested ranking length: zero means the default and
// values above the maximum are capped.
func (s *Service) Limit(n int) (int, error) {
	switch {
	case n < 0:
		return 0, repository.ErrInvalidLimit
	case n == 0:
		return s.defaultTopN, nil
	case n > s.maxTopN:
		return s.maxTopN, nil
	}
	return n, nil
}

// TopByGender returns the fastest women and men of a stored race.
func (s *Service) TopByGender(ctx context.Context, raceID int64, n int) (model.GenderTop, error) {
	n, err := s.Limit(n)
	if err != nil {
		return model.GenderTop{}, err
	}
	women, err := s.store.TopByGender(ctx, raceID, gender.Female, n)
	if err != nil {
		return model.GenderTop{}, err
	}
	men, err := s.store.TopByGender(ctx, raceID, gender.Male, n)
	if err != nil {
		return model.GenderTop{}, err
	}
	return model.GenderTop{Femenino: women, Masculino: men}, nil
}

// TopByCategory returns the fastest results of every category.
func (s *Service) TopByCategory(ctx context.Context, raceID int64, n int) ([]model.Ranked, error) {
	n, err := s.Limit(n)
	if err != nil {
		return nil, err
	}
	return s.store.TopByCategory(ctx, raceID, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"queueSize":         s.queueSize,
		"dedupeSize":        s.dedupeSize,
		"parallelThreshold": s.parallelThreshold,
	}
	if s.started {
		ctx := context.Background()
		queueLen := s.queue.Len(ctx)
		storedResults := s.store.Count(ctx)
		out["queueLength"] = queueLen
		out["storedResults"] = storedResults
		out["trackedUploads"] = s.deduper.Size()
		out["parallelThreshold"] = s.pool.Threshold()
		out["workersRunning"] = s.pool.Running()
		metrics.UpdateStoredResults(storedResults)
	}
	return out
}
