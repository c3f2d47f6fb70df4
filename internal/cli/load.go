package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/healthingest/internal/config"
	"example.com/healthingest/internal/domain"
	"example.com/healthingest/internal/ingest"
	"example.com/healthingest/internal/normalize"
	"example.com/healthingest/internal/persistence/memory"
	"example.com/healthingest/internal/persistence/postgres"
	"example.com/healthingest/internal/persistence/sqlite"
	"example.com/healthingest/internal/publish"
	httptransport "example.com/healthingest/internal/transport/http"
	"example.com/healthingest/internal/xmlstream"
)

// ErrExportNotFound is returned when no export document can be located.
var ErrExportNotFound = errors.New("export.xml not found; pass --export-xml")

type truncater interface {
	Truncate(ctx context.Context) error
}

type runRecorder interface {
	Start(ctx context.Context, run domain.Run) error
	Finish(ctx context.Context, run domain.Run) error
}

// target bundles the sink chosen for a run with its optional capabilities.
type target struct {
	sink     ingest.Sink
	truncate truncater
	runs     runRecorder
	closers  []func() error
}

func (t *target) Close() error {
	var err error
	for i := len(t.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, t.closers[i]())
	}
	return err
}

var logger = log.New(log.Writer(), "[healthload] ", log.LstdFlags)

func runLoad(ctx context.Context, cfg config.Config, out io.Writer) (err error) {
	exportPath, err := resolveExport(cfg.ExportXML)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	src, err := xmlstream.Open(exportPath)
	if err != nil {
		return err
	}
	defer src.Close()

	run := domain.Run{
		ID:         uuid.NewString(),
		ExportPath: exportPath,
		StartedAt:  time.Now().UTC(),
		Limit:      cfg.Limit,
	}

	tgt := &target{sink: ingest.DiscardSink{}}
	if !cfg.DryRun {
		if tgt, err = openTarget(ctx, cfg, run.ID); err != nil {
			return err
		}
	}
	defer func() { err = errors.Join(err, tgt.Close()) }()

	if cfg.Truncate && !cfg.DryRun && tgt.truncate != nil {
		if err := tgt.truncate.Truncate(ctx); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
		logger.Printf("truncated %s and %s", domain.TableRecords, domain.TableWorkouts)
	}

	if cfg.MetricsAddress != "" {
		stop := serveMetrics(cfg.MetricsAddress)
		defer stop()
	}

	if tgt.runs != nil {
		if err := tgt.runs.Start(ctx, run); err != nil {
			return fmt.Errorf("record run start: %w", err)
		}
	}

	logger.Printf("loading %s (run=%s, sink=%s, dry_run=%t)", exportPath, run.ID, cfg.Sink, cfg.DryRun)
	engine := ingest.NewEngine(tgt.sink,
		ingest.WithBatchSizes(cfg.RecordBatchSize, cfg.WorkoutBatchSize),
		ingest.WithLimit(cfg.Limit),
		ingest.WithDryRun(cfg.DryRun),
		ingest.WithProgressEvery(cfg.ProgressEvery),
	)
	reader := xmlstream.NewReader(src, normalize.TagRecord, normalize.TagWorkout)
	stats, runErr := engine.Run(ctx, reader.Elements())

	if tgt.runs != nil {
		run.FinishedAt = time.Now().UTC()
		run.Status = domain.RunStatusSucceeded
		if stats != nil {
			run.Records, run.Workouts = stats.Records, stats.Workouts
		}
		if runErr != nil {
			run.Status = domain.RunStatusFailed
			run.Error = runErr.Error()
		}
		// The run context may already be cancelled; the audit row should still land.
		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := tgt.runs.Finish(finishCtx, run); err != nil {
			logger.Printf("record run finish: %v", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if stats.LimitReached {
		logger.Printf("stopped after %d records (limit)", cfg.Limit)
	}
	return ingest.WriteReport(out, stats)
}

func resolveExport(path string) (string, error) {
	if path == "" {
		found, err := xmlstream.FindDefault(".")
		if err != nil {
			return "", err
		}
		if found == "" {
			return "", ErrExportNotFound
		}
		path = found
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("export.xml not found at %s: %w", path, err)
	}
	return path, nil
}

func openTarget(ctx context.Context, cfg config.Config, runID string) (*target, error) {
	switch cfg.Sink {
	case config.SinkPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		pg := postgres.NewSink(pool)
		t := &target{
			sink:     pg,
			truncate: pg,
			runs:     postgres.NewRunLog(pool),
			closers:  []func() error{func() error { pool.Close(); return nil }},
		}
		if len(cfg.KafkaBrokers) > 0 {
			kafkaSink, closeKafka := newKafkaSink(cfg, runID)
			t.sink = ingest.MultiSink{pg, kafkaSink}
			t.closers = append(t.closers, closeKafka)
		}
		return t, nil
	case config.SinkSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &target{sink: db, truncate: db, closers: []func() error{db.Close}}, nil
	case config.SinkKafka:
		kafkaSink, closeKafka := newKafkaSink(cfg, runID)
		return &target{sink: kafkaSink, closers: []func() error{closeKafka}}, nil
	case config.SinkMemory:
		mem := memory.NewSink()
		return &target{sink: mem, truncate: mem}, nil
	}
	return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
}

func newKafkaSink(cfg config.Config, runID string) (*publish.KafkaSink, func() error) {
	producer := publish.NewProducer(cfg.KafkaBrokers, cfg.RecordBatchSize)
	var opts []publish.Option
	if cfg.SchemaRegistryURL != "" {
		opts = append(opts, publish.WithSchemaRegistry(publish.NewSchemaRegistryClient(cfg.SchemaRegistryURL)))
	}
	return publish.NewKafkaSink(producer, runID, opts...), producer.Close
}

func serveMetrics(address string) func() {
	srv := httptransport.NewMetricsServer(address)
	go func() {
		logger.Printf("metrics listening on %s", address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("metrics server error: %v", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Printf("metrics server shutdown error: %v", err)
		}
	}
}
