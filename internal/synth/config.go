// Package synth generates synthetic race results and drives end-to-end
// checks against a running service.
package synth

import (
	"errors"
	"fmt"
	"time"
)

// Generation defaults.
const (
	DefaultRunners    = 1000
	DefaultDistanceKm = 10
	DefaultSeed       = 1
)

// ErrInvalidConfig reports unusable generation or run settings.
var ErrInvalidConfig = errors.New("invalid synth config")

// Config shapes a synthetic field of runners.
type Config struct {
	Runners    int     // Number of rows to generate
	DistanceKm float64 // Race distance; checkpoints beyond it are not emitted
	Seed       uint64  // Same seed, same file
	Workers    int     // Concurrent generators

	// Rates are fractions in [0, 1].
	NoChipRate   float64 // Rows without a chip time (DNF)
	NoSplitsRate float64 // Rows with a chip time but no splits
	AdaptedRate  float64 // Rows in an adapted category left out of podiums
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Runners:      DefaultRunners,
		DistanceKm:   DefaultDistanceKm,
		Seed:         DefaultSeed,
		Workers:      4,
		NoChipRate:   0.02,
		NoSplitsRate: 0.05,
		AdaptedRate:  0.01,
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case c.Runners < 0:
		return fmt.Errorf("%w: runners must not be negative", ErrInvalidConfig)
	case c.DistanceKm <= 0:
		return fmt.Errorf("%w: distance must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	for _, r := range []float64{c.NoChipRate, c.NoSplitsRate, c.AdaptedRate} {
		if r < 0 || r > 1 {
			return fmt.Errorf("%w: rates must be within [0, 1]", ErrInvalidConfig)
		}
	}
	return nil
}

// RunConfig configures an end-to-end run against a service.
type RunConfig struct {
	Config
	BaseURL string        // Base URL of the service
	Race    string        // Race name used for the upload
	TopN    int           // Ranking length to verify
	Timeout time.Duration // HTTP request timeout
}

// Stats holds run statistics.
type Stats struct {
	Generated int
	Inserted  int
	Omitted   int
	Verified  int
	StartTime time.Time
	Duration  time.Duration
}
