package runstore

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/parquet"
)

// ExportRuns writes every stored run and event to Parquet files named after outputFile.
func ExportRuns(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled; set --run-backend to export history")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total event records: %d\n", status.TableSizes[eventsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	events, err := store.GetAllEvents()
	if err != nil {
		return fmt.Errorf("failed to retrieve run events: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	eventsFile := outputFile + ".events.parquet"
	if err := parquet.WriteRunEventsParquet(parquet.ConvertRunEventRecords(events), eventsFile); err != nil {
		return fmt.Errorf("failed to write run events: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d event records to: %s\n", len(events), eventsFile)

	return nil
}
