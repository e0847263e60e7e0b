// Package config defines service configuration and its defaults.
package config

import (
	"runtime"
	"strings"
)

// Store drivers understood by the service.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory normalization job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of normalization workers.
	WorkerCount int `koanf:"worker_count"`

	// ParallelThreshold is the row count above which normalization fans out to the worker pool.
	ParallelThreshold int `koanf:"parallel_threshold"`

	// DedupeSize sets how many upload fingerprints are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxUploadBytes caps request bodies carrying CSV files.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// DefaultTopN and MaxTopN shape ?limit on ranking endpoints.
	DefaultTopN int `koanf:"default_top_n"`
	MaxTopN     int `koanf:"max_top_n"`

	// StoreDriver is one of memory, sqlite, postgres.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the data source name for sql drivers.
	StoreDSN string `koanf:"store_dsn"`

	// KafkaBrokers is a comma separated broker list. Empty disables publishing.
	KafkaBrokers string `koanf:"kafka_brokers"`

	// KafkaTopic receives race events.
	KafkaTopic string `koanf:"kafka_topic"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU(),
		ParallelThreshold: 2_000,
		DedupeSize:        1_024,
		MaxUploadBytes:    32 << 20,
		DefaultTopN:       5,
		MaxTopN:           100,
		StoreDriver:       DriverMemory,
		KafkaTopic:        "ritmo.race-events",
	}
}

// Brokers splits KafkaBrokers into trimmed, non-empty addresses.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
