package iostore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/aeswibon/dora/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedActivity opens a second connection to the SQLite file and runs the
// given insert statements. The store's own connection stays untouched.
func seedActivity(t *testing.T, dbPath string, statements []string) {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func unixOf(y int, m time.Month, d, h int) int64 {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC).Unix()
}

func TestActivityStoreListRepositories(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "activity.db")
	store, err := NewActivityStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// Each table contributes one distinct repo; "api" appears in two.
	seedActivity(t, dbPath, []string{
		fmt.Sprintf("INSERT INTO %s (org, repo, username, name, created_at) VALUES ('acme', 'api', 'alice', 'v1', %d)", releasesTable, unixOf(2026, 1, 5, 10)),
		fmt.Sprintf("INSERT INTO %s (org, repo, username, created_at, merged_at, first_commit_at) VALUES ('acme', 'api', 'bob', %d, NULL, %d)", pullRequestsTable, unixOf(2026, 1, 5, 10), unixOf(2026, 1, 5, 9)),
		fmt.Sprintf("INSERT INTO %s (org, repo, username, labels, created_at, closed_at) VALUES ('acme', 'web', 'carol', '[]', %d, NULL)", issuesTable, unixOf(2026, 1, 5, 10)),
		fmt.Sprintf("INSERT INTO %s (org, repo, username, name, created_at) VALUES ('globex', 'other', 'dan', 'v2', %d)", releasesTable, unixOf(2026, 1, 5, 10)),
	})

	repos, err := store.ListRepositories(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "web"}, repos)

	repos, err = store.ListRepositories(context.Background(), "initech")
	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestActivityStoreFindReleasesTimeBounds(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "activity.db")
	store, err := NewActivityStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)

	seedActivity(t, dbPath, []string{
		// Exactly on the lower bound: included.
		fmt.Sprintf("INSERT INTO %s (org, repo, username, name, created_at) VALUES ('acme', 'api', 'alice', 'v1', %d)", releasesTable, start.Unix()),
		// Exactly on the upper bound: included.
		fmt.Sprintf("INSERT INTO %s (org, repo, username, name, created_at) VALUES ('acme', 'api', 'alice', 'v2', %d)", releasesTable, end.Unix()),
		// One second past the upper bound: excluded.
		fmt.Sprintf("INSERT INTO %s (org, repo, username, name, created_at) VALUES ('acme', 'api', 'alice', 'v3', %d)", releasesTable, end.Unix()+1),
		// Repo outside the filter: excluded.
		fmt.Sprintf("INSERT INTO %s (org, repo, username, name, created_at) VALUES ('acme', 'web', 'bob', 'v4', %d)", releasesTable, start.Unix()),
	})

	releases, err := store.FindReleases(context.Background(), "acme", []string{"api"}, start, end)
	require.NoError(t, err)
	require.Len(t, releases, 2)

	names := []string{releases[0].Name, releases[1].Name}
	assert.ElementsMatch(t, []string{"v1", "v2"}, names)
	for _, r := range releases {
		assert.Equal(t, "api", r.Repo)
	}
}

func TestActivityStoreFindPullRequestsNullMergedAt(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "activity.db")
	store, err := NewActivityStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	merged := start.Add(4 * time.Hour)

	seedActivity(t, dbPath, []string{
		fmt.Sprintf("INSERT INTO %s (org, repo, username, created_at, merged_at, first_commit_at) VALUES ('acme', 'api', 'alice', %d, %d, %d)", pullRequestsTable, start.Unix(), merged.Unix(), start.Unix()),
		fmt.Sprintf("INSERT INTO %s (org, repo, username, created_at, merged_at, first_commit_at) VALUES ('acme', 'api', 'bob', %d, NULL, %d)", pullRequestsTable, start.Unix(), start.Unix()),
	})

	prs, err := store.FindPullRequests(context.Background(), "acme", []string{"api"}, start, end)
	require.NoError(t, err)
	require.Len(t, prs, 2)

	byUser := make(map[string]schema.PullRequest)
	for _, pr := range prs {
		byUser[pr.User] = pr
	}
	require.NotNil(t, byUser["alice"].MergedAt)
	assert.Equal(t, merged, *byUser["alice"].MergedAt)
	assert.Nil(t, byUser["bob"].MergedAt)
}

func TestActivityStoreFindIssuesLabels(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "activity.db")
	store, err := NewActivityStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	closed := start.Add(6 * time.Hour)

	seedActivity(t, dbPath, []string{
		fmt.Sprintf(`INSERT INTO %s (org, repo, username, labels, created_at, closed_at) VALUES ('acme', 'api', 'alice', '["failure","p1"]', %d, %d)`, issuesTable, start.Unix(), closed.Unix()),
		fmt.Sprintf(`INSERT INTO %s (org, repo, username, labels, created_at, closed_at) VALUES ('acme', 'api', 'bob', '[]', %d, NULL)`, issuesTable, start.Unix()),
	})

	issues, err := store.FindIssues(context.Background(), "acme", []string{"api"}, start, end)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	byUser := make(map[string]schema.Issue)
	for _, issue := range issues {
		byUser[issue.User] = issue
	}

	alice := byUser["alice"]
	assert.Equal(t, []string{"failure", "p1"}, alice.Labels)
	assert.True(t, alice.IsFailure())
	require.NotNil(t, alice.ClosedAt)
	assert.Equal(t, closed, *alice.ClosedAt)

	bob := byUser["bob"]
	assert.Empty(t, bob.Labels)
	assert.False(t, bob.IsFailure())
	assert.Nil(t, bob.ClosedAt)
}

func TestActivityStoreEmptyRepoFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "activity.db")
	store, err := NewActivityStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)

	// No repos means no query at all; an org with no data has no repos.
	releases, err := store.FindReleases(context.Background(), "acme", nil, start, end)
	require.NoError(t, err)
	assert.Nil(t, releases)

	prs, err := store.FindPullRequests(context.Background(), "acme", nil, start, end)
	require.NoError(t, err)
	assert.Nil(t, prs)

	issues, err := store.FindIssues(context.Background(), "acme", nil, start, end)
	require.NoError(t, err)
	assert.Nil(t, issues)
}
