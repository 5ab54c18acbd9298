package iostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/internal/parquet"
	"github.com/aeswibon/dora/schema"
)

// ExecuteScoreExport performs the actual export of persisted scores to a Parquet file.
func ExecuteScoreExport(ctx context.Context, mgr contract.StoreManager, org string, granularity schema.Granularity, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if !schema.ValidGranularity(granularity) {
		return fmt.Errorf("%w (received %q)", schema.ErrInvalidGranularity, granularity)
	}

	store := mgr.GetScoreStore()

	// Check if there's any data to export
	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get score store status: %w", err)
	}
	if status.TotalEntries == 0 {
		return errors.New("no persisted scores found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)

	scores, err := store.ExportScores(ctx, org, granularity)
	if err != nil {
		return fmt.Errorf("failed to retrieve persisted scores: %w", err)
	}
	if len(scores) == 0 {
		return fmt.Errorf("no persisted %s scores found for %s", granularity, org)
	}

	records := parquet.ConvertCachedScores(scores)
	if err := parquet.WriteScoresParquet(records, outputFile); err != nil {
		return fmt.Errorf("failed to write scores: %w", err)
	}
	fmt.Printf("Exported %d score rows to: %s\n", len(records), outputFile)

	return nil
}
