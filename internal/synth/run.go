package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/ranking"
	"github.com/okian/ritmo/pkg/logger"
)

// ErrMismatch is returned when the service podium differs from the local one.
var ErrMismatch = errors.New("ranking mismatch")

// Run generates a field, uploads it and checks the service podium against a
// locally computed one.
func Run(ctx context.Context, cfg RunConfig) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	log := logger.Get().Named("synth")
	if cfg.TopN <= 0 {
		return stats, fmt.Errorf("%w: top must be positive", ErrInvalidConfig)
	}

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	runners, err := Generate(ctx, cfg.Config)
	if err != nil {
		return stats, fmt.Errorf("generation failed: %w", err)
	}
	stats.Generated = len(runners)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, cfg.DistanceKm, runners); err != nil {
		return stats, fmt.Errorf("write csv: %w", err)
	}
	res, err := client.Upload(ctx, model.Race{Name: cfg.Race, DistanceKm: cfg.DistanceKm}, buf.Bytes())
	if err != nil {
		return stats, fmt.Errorf("upload failed: %w", err)
	}
	stats.Inserted, stats.Omitted = res.Inserted, res.Omitted
	log.Info(ctx, "results uploaded",
		logger.Int64("raceId", res.RaceID),
		logger.Int("inserted", res.Inserted),
		logger.Int("omitted", res.Omitted))

	got, err := client.TopByGender(ctx, res.RaceID, cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("ranking retrieval failed: %w", err)
	}
	stats.Verified, err = Verify(runners, cfg.TopN, got)
	stats.Duration = time.Since(stats.StartTime)
	if err != nil {
		return stats, err
	}

	log.Info(ctx, "run completed",
		logger.Int("generated", stats.Generated),
		logger.Int("verified", stats.Verified),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// Verify compares a served podium with the one computed from runners and
// returns the number of matching entries.
func Verify(runners []Runner, n int, got model.GenderTop) (int, error) {
	results := make([]model.Result, len(runners))
	for i, r := range runners {
		results[i] = r.Result(i + 1)
	}
	want := ranking.Podium(results, n)

	matched := 0
	for _, side := range []struct {
		name      string
		got, want []model.Ranked
	}{
		{"femenino", got.Femenino, want.Femenino},
		{"masculino", got.Masculino, want.Masculino},
	} {
		if len(side.got) != len(side.want) {
			return matched, fmt.Errorf("%w: %s has %d entries, want %d", ErrMismatch, side.name, len(side.got), len(side.want))
		}
		for i := range side.want {
			g, w := side.got[i], side.want[i]
			if g.Bib != w.Bib || g.ChipTime != w.ChipTime || g.Position != w.Position {
				return matched, fmt.Errorf("%w: %s #%d is bib %s (%s), want bib %s (%s)",
					ErrMismatch, side.name, i+1, g.Bib, g.ChipTime, w.Bib, w.ChipTime)
			}
			matched++
		}
	}
	return matched, nil
}
