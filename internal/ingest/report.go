package ingest

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// TopTypesReported is how many record types the completion report lists.
const TopTypesReported = 10

// WriteReport prints the completion summary and the most frequent record types.
func WriteReport(w io.Writer, stats *Stats) error {
	if _, err := fmt.Fprintf(w, "Done. Records: %s | Workouts: %s | %s rec/s\n",
		humanize.Comma(stats.Records), humanize.Comma(stats.Workouts), humanize.Comma(int64(stats.Rate()))); err != nil {
		return err
	}
	top := stats.TopTypes(TopTypesReported)
	if len(top) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Top record types:"); err != nil {
		return err
	}
	for _, tc := range top {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", tc.Type, humanize.Comma(tc.Count)); err != nil {
			return err
		}
	}
	return nil
}
