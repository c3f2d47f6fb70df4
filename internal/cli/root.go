// Package cli wires configuration, input, sinks and the ingest engine behind the
// healthload command.
package cli

import (
	"github.com/spf13/cobra"

	"example.com/healthingest/internal/config"
)

var version = "dev"

// NewRootCommand builds the healthload command. Flag defaults come from the
// environment so either source can configure a run.
func NewRootCommand() *cobra.Command {
	cfg := config.Load()
	var brokers string

	cmd := &cobra.Command{
		Use:           "healthload",
		Short:         "Load an Apple Health export.xml into health_raw and workouts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("kafka-brokers") {
				cfg.KafkaBrokers = config.SplitAndTrim(brokers)
			}
			return runLoad(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.ExportXML, "export-xml", cfg.ExportXML, "Path to export.xml, .xml.gz or export.zip (defaults to latest export-* folder if present)")
	f.StringVar(&cfg.DatabaseURL, "db-url", cfg.DatabaseURL, "Postgres connection URL (or set DATABASE_URL)")
	f.StringVar(&cfg.Sink, "sink", cfg.Sink, "Destination: postgres, sqlite, kafka or memory")
	f.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file for the sqlite sink")
	f.StringVar(&brokers, "kafka-brokers", "", "Comma separated Kafka brokers (or set KAFKA_BROKERS)")
	f.StringVar(&cfg.SchemaRegistryURL, "schema-registry-url", cfg.SchemaRegistryURL, "Schema Registry URL used to frame Kafka payloads")
	f.IntVar(&cfg.RecordBatchSize, "batch-size", cfg.RecordBatchSize, "Record batch size")
	f.IntVar(&cfg.WorkoutBatchSize, "workout-batch-size", cfg.WorkoutBatchSize, "Workout batch size")
	f.Int64Var(&cfg.ProgressEvery, "progress-every", cfg.ProgressEvery, "Log progress every N records")
	f.Int64Var(&cfg.Limit, "limit", 0, "Stop after N records (for testing)")
	f.BoolVar(&cfg.Truncate, "truncate", false, "Truncate target tables before loading")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "Parse and count without writing to the database")
	f.StringVar(&cfg.MetricsAddress, "metrics-address", cfg.MetricsAddress, "Serve Prometheus metrics on this address during the run")

	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("healthload version %s\n", version)
		},
	}
}
