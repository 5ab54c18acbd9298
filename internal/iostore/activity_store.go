package iostore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/schema"
)

// ActivityStoreImpl reads ingested activity records from a SQL backend.
// The ingestion pipeline owns the data; this store only queries it.
type ActivityStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.ActivityStore = &ActivityStoreImpl{} // Compile-time check

// NewActivityStore initializes an ActivityStore for the given backend.
// The activity tables are created when absent so a fresh database is
// queryable immediately; the ingestion pipeline upserts into the same schema.
func NewActivityStore(backend schema.DatabaseBackend, connStr string) (contract.ActivityStore, error) {
	db, _, err := openDB(backend, connStr, contract.GetActivityDBFilePath())
	if err != nil {
		return nil, err
	}

	for _, query := range activityTableQueries(backend) {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create activity tables: %w", err)
		}
	}

	return &ActivityStoreImpl{db: db, backend: backend}, nil
}

// activityTableQueries returns the CREATE TABLE statements for the backend.
func activityTableQueries(backend schema.DatabaseBackend) []string {
	timeType := "BIGINT"
	textType := "TEXT"
	if backend == schema.MySQLBackend {
		// MySQL needs a bounded type for indexed columns.
		textType = "VARCHAR(255)"
	}

	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				org %[2]s NOT NULL,
				repo %[2]s NOT NULL,
				username %[2]s NOT NULL,
				name %[2]s NOT NULL,
				created_at %[3]s NOT NULL
			);
		`, releasesTable, textType, timeType),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				org %[2]s NOT NULL,
				repo %[2]s NOT NULL,
				username %[2]s NOT NULL,
				created_at %[3]s NOT NULL,
				merged_at %[3]s,
				first_commit_at %[3]s NOT NULL
			);
		`, pullRequestsTable, textType, timeType),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				org %[2]s NOT NULL,
				repo %[2]s NOT NULL,
				username %[2]s NOT NULL,
				labels TEXT NOT NULL,
				created_at %[3]s NOT NULL,
				closed_at %[3]s
			);
		`, issuesTable, textType, timeType),
	}
}

// ListRepositories returns the distinct repositories ingested for the org,
// across all three activity tables.
func (as *ActivityStoreImpl) ListRepositories(ctx context.Context, org string) ([]string, error) {
	p1 := placeholder(as.backend, 1)
	p2 := placeholder(as.backend, 2)
	p3 := placeholder(as.backend, 3)
	query := fmt.Sprintf(`
		SELECT DISTINCT repo FROM %s WHERE org = %s
		UNION SELECT DISTINCT repo FROM %s WHERE org = %s
		UNION SELECT DISTINCT repo FROM %s WHERE org = %s
		ORDER BY repo`, releasesTable, p1, pullRequestsTable, p2, issuesTable, p3)

	rows, err := as.db.QueryContext(ctx, query, org, org, org)
	if err != nil {
		return nil, fmt.Errorf("repository listing failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var repos []string
	for rows.Next() {
		var repo string
		if err := rows.Scan(&repo); err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}

// activityFilter builds the shared WHERE clause and argument list for the
// org/repos/time-range filter. Both time bounds are inclusive.
func (as *ActivityStoreImpl) activityFilter(org string, repos []string, start, end time.Time) (string, []any) {
	args := []any{org}
	clause := fmt.Sprintf("org = %s", placeholder(as.backend, 1))

	if len(repos) > 0 {
		clause += fmt.Sprintf(" AND repo IN (%s)", placeholderList(as.backend, 2, len(repos)))
		for _, repo := range repos {
			args = append(args, repo)
		}
	}

	n := len(args)
	clause += fmt.Sprintf(" AND created_at >= %s AND created_at <= %s",
		placeholder(as.backend, n+1), placeholder(as.backend, n+2))
	args = append(args, start.UTC().Unix(), end.UTC().Unix())
	return clause, args
}

// FindReleases returns releases matching the org/repos/time filter.
func (as *ActivityStoreImpl) FindReleases(ctx context.Context, org string, repos []string, start, end time.Time) ([]schema.Release, error) {
	if len(repos) == 0 {
		return nil, nil
	}
	clause, args := as.activityFilter(org, repos, start, end)
	query := fmt.Sprintf("SELECT org, repo, username, name, created_at FROM %s WHERE %s", releasesTable, clause)

	rows, err := as.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("release query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.Release
	for rows.Next() {
		var r schema.Release
		var createdAt int64
		if err := rows.Scan(&r.Org, &r.Repo, &r.User, &r.Name, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindPullRequests returns pull requests matching the org/repos/time filter.
func (as *ActivityStoreImpl) FindPullRequests(ctx context.Context, org string, repos []string, start, end time.Time) ([]schema.PullRequest, error) {
	if len(repos) == 0 {
		return nil, nil
	}
	clause, args := as.activityFilter(org, repos, start, end)
	query := fmt.Sprintf("SELECT org, repo, username, created_at, merged_at, first_commit_at FROM %s WHERE %s", pullRequestsTable, clause)

	rows, err := as.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pull request query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.PullRequest
	for rows.Next() {
		var pr schema.PullRequest
		var createdAt, firstCommitAt int64
		var mergedAt sql.NullInt64
		if err := rows.Scan(&pr.Org, &pr.Repo, &pr.User, &createdAt, &mergedAt, &firstCommitAt); err != nil {
			return nil, err
		}
		pr.CreatedAt = time.Unix(createdAt, 0).UTC()
		pr.FirstCommitAt = time.Unix(firstCommitAt, 0).UTC()
		if mergedAt.Valid {
			t := time.Unix(mergedAt.Int64, 0).UTC()
			pr.MergedAt = &t
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// FindIssues returns issues matching the org/repos/time filter.
// Labels are stored as a JSON array in a TEXT column.
func (as *ActivityStoreImpl) FindIssues(ctx context.Context, org string, repos []string, start, end time.Time) ([]schema.Issue, error) {
	if len(repos) == 0 {
		return nil, nil
	}
	clause, args := as.activityFilter(org, repos, start, end)
	query := fmt.Sprintf("SELECT org, repo, username, labels, created_at, closed_at FROM %s WHERE %s", issuesTable, clause)

	rows, err := as.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("issue query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.Issue
	for rows.Next() {
		var issue schema.Issue
		var labels string
		var createdAt int64
		var closedAt sql.NullInt64
		if err := rows.Scan(&issue.Org, &issue.Repo, &issue.User, &labels, &createdAt, &closedAt); err != nil {
			return nil, err
		}
		if labels != "" {
			if err := json.Unmarshal([]byte(labels), &issue.Labels); err != nil {
				return nil, fmt.Errorf("malformed labels for issue in %s/%s: %w", issue.Org, issue.Repo, err)
			}
		}
		issue.CreatedAt = time.Unix(createdAt, 0).UTC()
		if closedAt.Valid {
			t := time.Unix(closedAt.Int64, 0).UTC()
			issue.ClosedAt = &t
		}
		out = append(out, issue)
	}
	return out, rows.Err()
}

// Close closes the underlying DB connection.
func (as *ActivityStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}
