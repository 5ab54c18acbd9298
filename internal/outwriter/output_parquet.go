package outwriter

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/internal/parquet"
	"github.com/aeswibon/dora/schema"
)

// writeMetricsParquetResults converts the flattened rows and writes a Parquet
// file. Parquet is a binary format, so an explicit output file is required.
func writeMetricsParquetResults(rows []scoreRow, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}

	records := make([]parquet.ScoreRecord, 0, len(rows))
	for _, r := range rows {
		start, err := time.Parse(schema.WindowKeyFormat, r.Window)
		if err != nil {
			return fmt.Errorf("malformed window key %q: %w", r.Window, err)
		}
		records = append(records, parquet.ScoreRecord{
			Org:                  cfg.Org,
			Level:                string(r.Level),
			Subject:              r.Subject,
			WindowStart:          start.UTC(),
			Granularity:          string(cfg.Granularity),
			DeploymentFrequency:  r.Tuple.DeploymentFrequency,
			LeadTimeForChanges:   r.Tuple.LeadTimeForChanges,
			ChangeFailureRate:    r.Tuple.ChangeFailureRate,
			TimeToRestoreService: r.Tuple.TimeToRestoreService,
		})
	}

	if err := parquet.WriteScoresParquet(records, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	return nil
}
