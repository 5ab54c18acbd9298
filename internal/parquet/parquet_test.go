package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aeswibon/dora/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRecordStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	s := parquet.SchemaOf(new(ScoreRecord))
	require.NotNil(t, s)

	// Check that all expected columns exist
	expectedColumns := []string{
		"org",
		"level",
		"subject",
		"window_start",
		"window_end",
		"granularity",
		"deployment_frequency",
		"lead_time_for_changes",
		"change_failure_rate",
		"time_to_restore_service",
	}

	for _, colName := range expectedColumns {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestConvertCachedScores(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)

	scores := []schema.CachedScore{
		{
			Org:         "acme",
			Level:       schema.RepoLevel,
			Subject:     "api",
			WindowStart: start,
			WindowEnd:   end,
			Granularity: schema.DayGranularity,
			Tuple: schema.MetricTuple{
				DeploymentFrequency:  2,
				LeadTimeForChanges:   3.5,
				ChangeFailureRate:    50,
				TimeToRestoreService: 1.25,
			},
		},
	}

	records := ConvertCachedScores(scores)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "acme", rec.Org)
	assert.Equal(t, "repo", rec.Level)
	assert.Equal(t, "api", rec.Subject)
	assert.Equal(t, start, rec.WindowStart)
	require.NotNil(t, rec.WindowEnd)
	assert.Equal(t, end, *rec.WindowEnd)
	assert.Equal(t, "day", rec.Granularity)
	assert.Equal(t, 2.0, rec.DeploymentFrequency)
	assert.Equal(t, 3.5, rec.LeadTimeForChanges)
	assert.Equal(t, 50.0, rec.ChangeFailureRate)
	assert.Equal(t, 1.25, rec.TimeToRestoreService)
}

func TestConvertCachedScoresEmpty(t *testing.T) {
	records := ConvertCachedScores(nil)
	assert.Empty(t, records)
}

func TestWriteScoresParquet(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "scores.parquet")

	end := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	data := []ScoreRecord{
		{
			Org:                 "acme",
			Level:               "org",
			Subject:             "acme",
			WindowStart:         time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			WindowEnd:           &end,
			Granularity:         "day",
			DeploymentFrequency: 4,
		},
		{
			Org:         "acme",
			Level:       "user",
			Subject:     "bob",
			WindowStart: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Granularity: "day",
		},
	}

	err := WriteScoresParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	// Read back and verify data
	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[ScoreRecord](file)
	defer func() { _ = reader.Close() }()

	readData := make([]ScoreRecord, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	require.Equal(t, len(data), n, "Should read all records")

	assert.Equal(t, "acme", readData[0].Org)
	assert.Equal(t, 4.0, readData[0].DeploymentFrequency)
	assert.Equal(t, "bob", readData[1].Subject)
	assert.Nil(t, readData[1].WindowEnd, "Optional column should round-trip as nil")
}
