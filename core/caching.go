package core

import (
	"context"
	"fmt"
	"time"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/schema"
)

// partitionWindows splits the bucketized windows into cached and uncached
// sets using the org-level rows in the score store. The org-level row alone
// drives the skip decision; repo/user rows are read back on reconstruction.
func partitionWindows(ctx context.Context, scores contract.ScoreStore, org string, windows []schema.TimeWindow, granularity schema.Granularity) (cached, uncached []schema.TimeWindow, err error) {
	if len(windows) == 0 {
		return nil, nil, nil
	}

	starts := make([]time.Time, len(windows))
	for i, w := range windows {
		starts[i] = w.Start
	}

	hits, err := scores.Lookup(ctx, org, starts, granularity)
	if err != nil {
		return nil, nil, fmt.Errorf("score cache lookup failed: %w", err)
	}

	for _, w := range windows {
		if _, ok := hits[w.Key()]; ok {
			cached = append(cached, w)
		} else {
			uncached = append(uncached, w)
		}
	}
	return cached, uncached, nil
}

// reconstructWindow rebuilds a WindowScores set from the cached rows of one
// window. All three levels are restored, so cache hits lose no repo/user
// breakdown.
func reconstructWindow(ctx context.Context, scores contract.ScoreStore, org string, window schema.TimeWindow) (schema.WindowScores, error) {
	rows, err := scores.LookupWindow(ctx, org, window.Start, window.Granularity)
	if err != nil {
		return schema.WindowScores{}, fmt.Errorf("score cache read failed for window %s: %w", window.Key(), err)
	}

	ws := schema.WindowScores{Window: window}
	for _, row := range rows {
		switch row.Level {
		case schema.OrgLevel:
			ws.Org = schema.OrgMetrics{Org: row.Subject, MetricTuple: row.Tuple}
		case schema.RepoLevel:
			ws.Repos = append(ws.Repos, schema.RepoMetrics{Repo: row.Subject, MetricTuple: row.Tuple})
		case schema.UserLevel:
			ws.Users = append(ws.Users, schema.UserMetrics{User: row.Subject, MetricTuple: row.Tuple})
		}
	}
	return ws, nil
}

// persistWindowScores upserts every tuple of one window at org, repo, and
// user granularity. Upserts are idempotent per key, so racing writers and
// the orchestrator's final re-save both settle on one row per key.
func persistWindowScores(ctx context.Context, scores contract.ScoreStore, org string, ws schema.WindowScores) error {
	w := ws.Window

	row := schema.CachedScore{
		Org:         org,
		Level:       schema.OrgLevel,
		Subject:     org,
		WindowStart: w.Start,
		WindowEnd:   w.End,
		Granularity: w.Granularity,
		Tuple:       ws.Org.MetricTuple,
	}
	if err := scores.Upsert(ctx, row); err != nil {
		return fmt.Errorf("score cache write failed for window %s: %w", w.Key(), err)
	}

	for _, rm := range ws.Repos {
		row.Level = schema.RepoLevel
		row.Subject = rm.Repo
		row.Tuple = rm.MetricTuple
		if err := scores.Upsert(ctx, row); err != nil {
			return fmt.Errorf("score cache write failed for window %s: %w", w.Key(), err)
		}
	}
	for _, um := range ws.Users {
		row.Level = schema.UserLevel
		row.Subject = um.User
		row.Tuple = um.MetricTuple
		if err := scores.Upsert(ctx, row); err != nil {
			return fmt.Errorf("score cache write failed for window %s: %w", w.Key(), err)
		}
	}
	return nil
}
