// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/aeswibon/dora/schema"
)

// ActivityStore defines the read-only query surface over ingested activity
// records. The ingestion pipeline writes these tables; the core only reads.
// This allows the aggregation logic to be tested without a real database.
type ActivityStore interface {
	// ListRepositories returns the repositories known to have been ingested
	// for the organization.
	ListRepositories(ctx context.Context, org string) ([]string, error)

	// FindReleases returns releases for the org, limited to the given
	// repositories, with CreatedAt inside [start, end], inclusive on both
	// ends. An empty repos slice yields an empty result, not an error.
	FindReleases(ctx context.Context, org string, repos []string, start, end time.Time) ([]schema.Release, error)

	// FindPullRequests returns pull requests filtered the same way,
	// on PR creation time.
	FindPullRequests(ctx context.Context, org string, repos []string, start, end time.Time) ([]schema.PullRequest, error)

	// FindIssues returns issues filtered the same way, on issue creation time.
	FindIssues(ctx context.Context, org string, repos []string, start, end time.Time) ([]schema.Issue, error)

	// Close closes the underlying connection.
	Close() error
}

// ScoreStore defines the persistence surface for computed window scores.
type ScoreStore interface {
	// Lookup returns the org-level tuples cached for the given window starts,
	// keyed by window key. Missing windows are simply absent from the map.
	Lookup(ctx context.Context, org string, windowStarts []time.Time, granularity schema.Granularity) (map[string]schema.MetricTuple, error)

	// LookupWindow returns every cached row (org, repo, and user level) for
	// one window, so cache hits restore the full breakdown.
	LookupWindow(ctx context.Context, org string, windowStart time.Time, granularity schema.Granularity) ([]schema.CachedScore, error)

	// Upsert inserts or updates one score row. At most one row exists per
	// (org, level, subject, window start, granularity) key; concurrent
	// writers race to last-write-wins, never to duplicate rows.
	Upsert(ctx context.Context, score schema.CachedScore) error

	// ExportScores returns every persisted row for the org at one granularity,
	// ordered by window start, then level, then subject.
	ExportScores(ctx context.Context, org string, granularity schema.Granularity) ([]schema.CachedScore, error)

	// GetStatus returns status information about the score store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// StoreManager defines the interface for accessing the configured stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetActivityStore() ActivityStore
	GetScoreStore() ScoreStore
}
