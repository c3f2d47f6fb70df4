// Package config centralises configuration parsing for the health export loader.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sink kinds accepted by the loader.
const (
	SinkPostgres = "postgres"
	SinkSQLite   = "sqlite"
	SinkKafka    = "kafka"
	SinkMemory   = "memory"
)

var (
	// ErrMissingDatabaseURL is returned when the postgres sink has no connection URL.
	ErrMissingDatabaseURL = errors.New("DATABASE_URL or --db-url is required")
	// ErrMissingBrokers is returned when the kafka sink has no brokers.
	ErrMissingBrokers = errors.New("KAFKA_BROKERS or --kafka-brokers is required for the kafka sink")
)

// Config captures runtime configuration values for a load run.
type Config struct {
	ExportXML         string
	DatabaseURL       string
	Sink              string
	SQLitePath        string
	KafkaBrokers      []string
	SchemaRegistryURL string
	RecordBatchSize   int
	WorkoutBatchSize  int
	ProgressEvery     int64
	MetricsAddress    string
	Limit             int64 // Stop after this many records; zero means no limit.
	Truncate          bool
	DryRun            bool
}

// Load reads environment variables into Config, applying the loader defaults.
func Load() Config {
	cfg := Config{
		ExportXML:         getEnv("EXPORT_XML", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		Sink:              getEnv("SINK", SinkPostgres),
		SQLitePath:        getEnv("SQLITE_PATH", "health.db"),
		SchemaRegistryURL: getEnv("SCHEMA_REGISTRY_URL", ""),
		RecordBatchSize:   getIntEnv("RECORD_BATCH_SIZE", 5000),
		WorkoutBatchSize:  getIntEnv("WORKOUT_BATCH_SIZE", 500),
		ProgressEvery:     int64(getIntEnv("PROGRESS_EVERY", 100000)),
		MetricsAddress:    getEnv("METRICS_ADDRESS", ""),
	}

	cfg.KafkaBrokers = SplitAndTrim(getEnv("KAFKA_BROKERS", ""))
	return cfg
}

// Validate reports configuration that would make the run fail before processing.
func (c Config) Validate() error {
	if c.RecordBatchSize <= 0 || c.WorkoutBatchSize <= 0 {
		return fmt.Errorf("batch sizes must be positive (records=%d, workouts=%d)", c.RecordBatchSize, c.WorkoutBatchSize)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative: %d", c.Limit)
	}
	if c.DryRun {
		return nil
	}
	switch c.Sink {
	case SinkPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	case SinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return ErrMissingBrokers
		}
	case SinkSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH or --sqlite-path is required for the sqlite sink")
		}
	case SinkMemory:
	default:
		return fmt.Errorf("unknown sink %q", c.Sink)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// SplitAndTrim splits a comma separated list, dropping empty entries.
func SplitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
