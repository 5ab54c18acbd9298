package iostore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportManager(t *testing.T) (contract.StoreManager, contract.ScoreStore) {
	t.Helper()
	store, err := NewScoreStore(schema.SQLiteBackend, tempDBPath(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	mgr := &contract.MockStoreManager{}
	mgr.On("GetScoreStore").Return(store)
	return mgr, store
}

func TestExecuteScoreExportRequiresOutputFile(t *testing.T) {
	mgr, _ := exportManager(t)
	err := ExecuteScoreExport(context.Background(), mgr, "acme", schema.DayGranularity, "")
	assert.ErrorContains(t, err, "--output-file is required")
}

func TestExecuteScoreExportRejectsBadGranularity(t *testing.T) {
	mgr, _ := exportManager(t)
	err := ExecuteScoreExport(context.Background(), mgr, "acme", schema.Granularity("hourly"), "out.parquet")
	assert.ErrorIs(t, err, schema.ErrInvalidGranularity)
}

func TestExecuteScoreExportEmptyStore(t *testing.T) {
	mgr, _ := exportManager(t)
	outputPath := filepath.Join(t.TempDir(), "out.parquet")
	err := ExecuteScoreExport(context.Background(), mgr, "acme", schema.DayGranularity, outputPath)
	assert.ErrorContains(t, err, "no persisted scores")
}

func TestExecuteScoreExportNoRowsForOrg(t *testing.T) {
	mgr, store := exportManager(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(ctx, sampleScore(schema.OrgLevel, "acme", start)))

	outputPath := filepath.Join(t.TempDir(), "out.parquet")
	err := ExecuteScoreExport(ctx, mgr, "globex", schema.DayGranularity, outputPath)
	assert.ErrorContains(t, err, "no persisted day scores found for globex")
}

func TestExecuteScoreExportWritesFile(t *testing.T) {
	mgr, store := exportManager(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(ctx, sampleScore(schema.OrgLevel, "acme", start)))
	require.NoError(t, store.Upsert(ctx, sampleScore(schema.UserLevel, "bob", start)))

	outputPath := filepath.Join(t.TempDir(), "out.parquet")
	require.NoError(t, ExecuteScoreExport(ctx, mgr, "acme", schema.DayGranularity, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
