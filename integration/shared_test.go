//go:build database

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/aeswibon/dora/core"
	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/internal/iostore"
	"github.com/aeswibon/dora/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/go-sql-driver/mysql" // MySQL driver for seeding
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for seeding
)

// testManager wires concrete stores into the StoreManager contract for
// in-process pipeline runs.
type testManager struct {
	activity contract.ActivityStore
	scores   contract.ScoreStore
}

func (m *testManager) GetActivityStore() contract.ActivityStore { return m.activity }
func (m *testManager) GetScoreStore() contract.ScoreStore       { return m.scores }

// seedDay is the single activity day every backend scenario runs against.
var seedDay = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

// seedBackend inserts one release, one merged pull request, and one closed
// failure issue for bob in acme/api.
func seedBackend(t *testing.T, driverName, connStr string) {
	t.Helper()
	db, err := sql.Open(driverName, connStr)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	releaseAt := seedDay.Add(time.Hour).Unix()
	commitAt := seedDay.Add(time.Hour).Unix()
	mergedAt := seedDay.Add(3 * time.Hour).Unix()
	issueAt := seedDay.Add(time.Hour).Unix()
	closedAt := seedDay.Add(5 * time.Hour).Unix()

	statements := []string{
		fmt.Sprintf("INSERT INTO dora_releases (org, repo, username, name, created_at) VALUES ('acme', 'api', 'bob', 'v1.0.0', %d)", releaseAt),
		fmt.Sprintf("INSERT INTO dora_pull_requests (org, repo, username, created_at, merged_at, first_commit_at) VALUES ('acme', 'api', 'bob', %d, %d, %d)", commitAt, mergedAt, commitAt),
		fmt.Sprintf(`INSERT INTO dora_issues (org, repo, username, labels, created_at, closed_at) VALUES ('acme', 'api', 'bob', '["failure"]', %d, %d)`, issueAt, closedAt),
	}
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

// runBackendScenario exercises the full pipeline against one server backend:
// seed, compute, verify, and confirm the second run is served from the cache.
func runBackendScenario(t *testing.T, backend schema.DatabaseBackend, driverName, connStr string) {
	t.Helper()
	ctx := context.Background()

	activity, err := iostore.NewActivityStore(backend, connStr)
	require.NoError(t, err)
	defer func() { _ = activity.Close() }()

	scores, err := iostore.NewScoreStore(backend, connStr)
	require.NoError(t, err)
	defer func() { _ = scores.Close() }()

	seedBackend(t, driverName, connStr)

	mgr := &testManager{activity: activity, scores: scores}
	cfg := &contract.Config{
		Org:         "acme",
		StartTime:   seedDay,
		EndTime:     seedDay.Add(24*time.Hour - time.Second),
		Granularity: schema.DayGranularity,
	}

	metrics, err := core.ComputeMetrics(ctx, cfg, mgr)
	require.NoError(t, err)

	org := metrics.Orgs["2026-01-05"]
	assert.Equal(t, 1.0, org.DeploymentFrequency)
	assert.Equal(t, 2.0, org.LeadTimeForChanges)
	assert.Equal(t, 100.0, org.ChangeFailureRate)
	assert.Equal(t, 4.0, org.TimeToRestoreService)

	require.Len(t, metrics.Users["2026-01-05"], 1)
	assert.Equal(t, "bob", metrics.Users["2026-01-05"][0].User)
	require.Len(t, metrics.Repos["2026-01-05"], 1)
	assert.Equal(t, "api", metrics.Repos["2026-01-05"][0].Repo)

	// The run persisted org, repo, and user rows.
	status, err := scores.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), status.TotalEntries)

	// A second run resolves from the cache and returns the same result.
	cached, err := core.ComputeMetrics(ctx, cfg, mgr)
	require.NoError(t, err)
	assert.Equal(t, metrics.Orgs["2026-01-05"], cached.Orgs["2026-01-05"])
	assert.Equal(t, metrics.Users["2026-01-05"], cached.Users["2026-01-05"])

	// Clearing drops every persisted score.
	require.NoError(t, iostore.ClearScores(backend, connStr))
}
