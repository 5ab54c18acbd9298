// Package parquet provides data structures and functions for exporting
// computed DORA scores to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/aeswibon/dora/schema"
	"github.com/parquet-go/parquet-go"
)

// ScoreRecord represents one subject's metrics for one window.
// This struct maps to the dora_scores database table.
type ScoreRecord struct {
	// Org is the organization the score belongs to
	Org string `parquet:"org,snappy"`

	// Level is the aggregation level: org, repo, or user
	Level string `parquet:"level,snappy"`

	// Subject is the repo name, user name, or org name for org-level rows
	Subject string `parquet:"subject,snappy"`

	// WindowStart is the inclusive start of the window (stored as TIMESTAMP with nanosecond precision)
	WindowStart time.Time `parquet:"window_start,snappy"`

	// WindowEnd is the inclusive end of the window (nullable, stored as TIMESTAMP with nanosecond precision)
	WindowEnd *time.Time `parquet:"window_end,optional,snappy"`

	// Granularity is the window granularity: day, week, or month
	Granularity string `parquet:"granularity,snappy"`

	// DeploymentFrequency is the release count in the window
	DeploymentFrequency float64 `parquet:"deployment_frequency,snappy"`

	// LeadTimeForChanges is the average merge-to-first-commit delta in hours
	LeadTimeForChanges float64 `parquet:"lead_time_for_changes,snappy"`

	// ChangeFailureRate is the failure percentage, 0 to 100
	ChangeFailureRate float64 `parquet:"change_failure_rate,snappy"`

	// TimeToRestoreService is the average failure resolution time in hours
	TimeToRestoreService float64 `parquet:"time_to_restore_service,snappy"`
}

// WriteScoresParquet writes a slice of ScoreRecord structs to a Parquet file.
func WriteScoresParquet(data []ScoreRecord, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the ScoreRecord struct tags
	writer := parquet.NewGenericWriter[ScoreRecord](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertCachedScores converts schema.CachedScore rows to ScoreRecord for Parquet export.
func ConvertCachedScores(scores []schema.CachedScore) []ScoreRecord {
	result := make([]ScoreRecord, len(scores))
	for i, score := range scores {
		end := score.WindowEnd
		result[i] = ScoreRecord{
			Org:                  score.Org,
			Level:                string(score.Level),
			Subject:              score.Subject,
			WindowStart:          score.WindowStart,
			WindowEnd:            &end,
			Granularity:          string(score.Granularity),
			DeploymentFrequency:  score.Tuple.DeploymentFrequency,
			LeadTimeForChanges:   score.Tuple.LeadTimeForChanges,
			ChangeFailureRate:    score.Tuple.ChangeFailureRate,
			TimeToRestoreService: score.Tuple.TimeToRestoreService,
		}
	}
	return result
}
