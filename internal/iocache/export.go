package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/brewwater/internal/contract"
	"github.com/huangsam/brewwater/internal/parquet"
)

// ExecuteHistoryExport exports the recipe history to a Parquet file named
// <outputFile>.recipe_runs.parquet. Progress goes to w.
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputFile string) (string, error) {
	if outputFile == "" {
		return "", errors.New("--output-file is required for export command")
	}
	if store == nil {
		return "", errors.New("history is disabled. Set --history-backend to export")
	}

	status, err := store.GetStatus()
	if err != nil {
		return "", fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return "", errors.New("no recipe history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total recipe runs: %d\n", status.TotalRuns)

	records, err := store.GetAllRecipeRuns()
	if err != nil {
		return "", fmt.Errorf("failed to retrieve recipe runs: %w", err)
	}

	runsFile := outputFile + ".recipe_runs.parquet"
	if err := parquet.WriteRecipeRunsParquet(parquet.ConvertRecipeRunRecords(records), runsFile); err != nil {
		return "", fmt.Errorf("failed to write recipe runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d recipe runs to: %s\n", len(records), runsFile)

	return runsFile, nil
}
