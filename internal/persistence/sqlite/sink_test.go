package sqlite

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/healthingest/internal/domain"
)

func setupSink(t *testing.T) *Sink {
	t.Helper()
	sink, err := Open(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	return sink
}

func str(s string) *string { return &s }

func num(f float64) *float64 { return &f }

func record(hash string, value float64) domain.RecordRow {
	return domain.RecordRow{
		RecordType:   str("HKQuantityTypeIdentifierStepCount"),
		Unit:         str("count"),
		ValueNumeric: num(value),
		StartTime:    str("2024-01-01 08:00:00 +0000"),
		Metadata:     []byte(`{"HKWasUserEntered":"1"}`),
		RecordHash:   hash,
		Raw:          []byte(`{"attributes":{}}`),
	}
}

func TestSinkInsertsAndIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	sink := setupSink(t)

	n, err := sink.WriteRecords(ctx, []domain.RecordRow{record("h1", 1), record("h2", 2)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = sink.WriteRecords(ctx, []domain.RecordRow{record("h1", 1), record("h3", 3)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := sink.Count(ctx, domain.TableRecords)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	var metadata, raw string
	var value float64
	require.NoError(t, sink.db.QueryRowContext(ctx,
		"SELECT value_numeric, metadata, raw FROM health_raw WHERE record_hash = ?", "h2").Scan(&value, &metadata, &raw))
	assert.InDelta(t, 2.0, value, 1e-9)
	assert.Equal(t, `{"HKWasUserEntered":"1"}`, metadata)
	assert.Equal(t, `{"attributes":{}}`, raw)
}

func TestSinkStoresNullMetadata(t *testing.T) {
	ctx := context.Background()
	sink := setupSink(t)

	row := domain.RecordRow{ValueText: str("HKCategoryValueSleepAnalysisAsleep"), RecordHash: "h", Raw: []byte(`{}`)}
	_, err := sink.WriteRecords(ctx, []domain.RecordRow{row})
	require.NoError(t, err)

	var isNull bool
	require.NoError(t, sink.db.QueryRowContext(ctx,
		"SELECT metadata IS NULL AND value_numeric IS NULL FROM health_raw WHERE record_hash = 'h'").Scan(&isNull))
	assert.True(t, isNull)
}

func TestSinkRejectsBothValueColumns(t *testing.T) {
	ctx := context.Background()
	sink := setupSink(t)

	bad := record("bad", 1)
	bad.ValueText = str("also text")
	_, err := sink.WriteRecords(ctx, []domain.RecordRow{record("ok", 1), bad})
	require.Error(t, err)

	// The failed batch is rolled back as a whole.
	count, err := sink.Count(ctx, domain.TableRecords)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSinkLargeBatchSpansStatements(t *testing.T) {
	ctx := context.Background()
	sink := setupSink(t)

	perStatement := recordInsert.RowsPerStatement(maxBindParams)
	rows := make([]domain.RecordRow, perStatement*2+5)
	for i := range rows {
		rows[i] = record("h"+strconv.Itoa(i), float64(i))
	}
	_, err := sink.WriteRecords(ctx, rows)
	require.NoError(t, err)

	count, err := sink.Count(ctx, domain.TableRecords)
	require.NoError(t, err)
	assert.Equal(t, int64(len(rows)), count)
}

func TestSinkWorkoutsAndTruncate(t *testing.T) {
	ctx := context.Background()
	sink := setupSink(t)

	workout := domain.WorkoutRow{
		WorkoutType:     str("HKWorkoutActivityTypeRunning"),
		DurationSeconds: num(5400),
		DurationUnit:    str("min"),
		AvgHeartRate:    num(150),
		RouteFile:       str("/workout-routes/a.gpx"),
		WorkoutHash:     "w1",
		Raw:             []byte(`{"attributes":{}}`),
	}
	_, err := sink.WriteWorkouts(ctx, []domain.WorkoutRow{workout, workout})
	require.NoError(t, err)
	_, err = sink.WriteRecords(ctx, []domain.RecordRow{record("h1", 1)})
	require.NoError(t, err)

	count, err := sink.Count(ctx, domain.TableWorkouts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, sink.Truncate(ctx))
	for _, table := range []domain.Table{domain.TableRecords, domain.TableWorkouts} {
		count, err := sink.Count(ctx, table)
		require.NoError(t, err)
		assert.Zero(t, count, table)
	}

	_, err = sink.Count(ctx, "activities")
	require.Error(t, err)
}

func TestOpenIsIdempotentAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "health.db")

	sink, err := Open(path)
	require.NoError(t, err)
	_, err = sink.WriteRecords(ctx, []domain.RecordRow{record("h1", 1)})
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, path, reopened.Path())

	var version int
	require.NoError(t, reopened.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)

	count, err := reopened.Count(ctx, domain.TableRecords)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestOpenInMemory(t *testing.T) {
	sink, err := Open(":memory:")
	require.NoError(t, err)
	defer sink.Close()

	_, err = sink.WriteRecords(context.Background(), []domain.RecordRow{record("h1", 1)})
	require.NoError(t, err)
}

func TestMigrateAppliesOnlyNewerVersions(t *testing.T) {
	sink := setupSink(t)

	var tables int
	require.NoError(t, sink.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE name = 'schema_migrations'").Scan(&tables))
	assert.Zero(t, tables)

	next := fstest.MapFS{
		"001_init.up.sql":  {Data: []byte("CREATE TABLE must_not_run (id INTEGER)")},
		"002_notes.up.sql": {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)")},
	}
	require.NoError(t, sink.migrate(next))
	require.NoError(t, sink.migrate(next))

	var version int
	require.NoError(t, sink.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 2, version)

	require.NoError(t, sink.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE name IN ('notes', 'must_not_run')").Scan(&tables))
	assert.Equal(t, 1, tables)
}

func TestMigrateRollsBackFailedFile(t *testing.T) {
	sink := setupSink(t)

	err := sink.migrate(fstest.MapFS{
		"002_broken.up.sql": {Data: []byte("CREATE TABLE half (id INTEGER); NOT SQL")},
	})
	require.Error(t, err)

	var version int
	require.NoError(t, sink.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)
}
