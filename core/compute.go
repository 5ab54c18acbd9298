package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/schema"
)

// ComputeMetrics drives the whole aggregation pipeline for one request:
// resolve repositories, bucketize the date range, skip cached windows,
// compute the rest concurrently, persist, and merge everything into one
// DoraMetrics result. Any reducer or storage failure aborts the call with
// no partial result.
func ComputeMetrics(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.DoraMetrics, error) {
	if err := validateComputeInput(cfg); err != nil {
		return nil, err
	}

	activity := mgr.GetActivityStore()
	scores := mgr.GetScoreStore()

	// --- 1. Resolve repositories ---
	repos, err := resolveRepos(ctx, activity, cfg)
	if err != nil {
		return nil, err
	}

	// --- 2. Bucketize the range ---
	windows, err := Bucketize(cfg.StartTime, cfg.EndTime, cfg.Granularity)
	if err != nil {
		return nil, err
	}

	// --- 3. Partition against the score cache ---
	cachedWindows, uncachedWindows, err := partitionWindows(ctx, scores, cfg.Org, windows, cfg.Granularity)
	if err != nil {
		return nil, err
	}

	allScores := make([]schema.WindowScores, 0, len(windows))

	// --- 4. Compute uncached windows concurrently ---
	fresh, err := computeWindows(ctx, cfg, activity, scores, repos, uncachedWindows)
	if err != nil {
		return nil, err
	}
	allScores = append(allScores, fresh...)

	// --- 5. Reconstruct cached windows with full breakdown ---
	for _, w := range cachedWindows {
		ws, err := reconstructWindow(ctx, scores, cfg.Org, w)
		if err != nil {
			return nil, err
		}
		allScores = append(allScores, ws)
	}

	// --- 6. Re-save every window, cached included ---
	// Downstream consumers rely on the persisted rows existing after every
	// call; upserts keep the re-save idempotent.
	for _, ws := range allScores {
		if err := persistWindowScores(ctx, scores, cfg.Org, ws); err != nil {
			return nil, err
		}
	}

	return mergeWindows(allScores), nil
}

// validateComputeInput rejects invalid requests before any I/O is dispatched.
func validateComputeInput(cfg *contract.Config) error {
	if cfg.Org == "" {
		return fmt.Errorf("%w: org", schema.ErrMissingParameter)
	}
	if cfg.StartTime.IsZero() {
		return fmt.Errorf("%w: start", schema.ErrMissingParameter)
	}
	if cfg.EndTime.IsZero() {
		return fmt.Errorf("%w: end", schema.ErrMissingParameter)
	}
	if !schema.ValidGranularity(cfg.Granularity) {
		return fmt.Errorf("%w (received %q)", schema.ErrInvalidGranularity, cfg.Granularity)
	}
	return nil
}

// resolveRepos returns the single configured repository, or every repository
// known for the organization.
func resolveRepos(ctx context.Context, activity contract.ActivityStore, cfg *contract.Config) ([]string, error) {
	if cfg.Repo != "" {
		return []string{cfg.Repo}, nil
	}
	repos, err := activity.ListRepositories(ctx, cfg.Org)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories for %s: %w", cfg.Org, err)
	}
	return repos, nil
}

// computeWindows fans out one goroutine per uncached window. Windows are
// independent of each other; the first failure wins and aborts the batch.
func computeWindows(ctx context.Context, cfg *contract.Config, activity contract.ActivityStore, scores contract.ScoreStore, repos []string, windows []schema.TimeWindow) ([]schema.WindowScores, error) {
	if len(windows) == 0 {
		return nil, nil
	}

	results := make([]schema.WindowScores, len(windows))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, w := range windows {
		idx, window := i, w // Capture loop variables for goroutine
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws, err := computeWindow(ctx, cfg, activity, repos, window)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			results[idx] = ws
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	for _, ws := range results {
		if err := persistWindowScores(ctx, scores, cfg.Org, ws); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// computeWindow runs the four reducers for one window. Their storage queries
// have no ordering dependency and execute concurrently; results are joined
// before the caller persists them.
func computeWindow(ctx context.Context, cfg *contract.Config, activity contract.ActivityStore, repos []string, window schema.TimeWindow) (schema.WindowScores, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error

		deploy, lead, fail, restore reduction
		empty                       int
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	noteEmpty := func(n int) {
		if n == 0 {
			mu.Lock()
			empty++
			mu.Unlock()
		}
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		releases, err := activity.FindReleases(ctx, cfg.Org, repos, window.Start, window.End)
		if err != nil {
			setErr(fmt.Errorf("release query failed for window %s: %w", window.Key(), err))
			return
		}
		noteEmpty(len(releases))
		deploy = reduceDeployments(releases)
	}()
	go func() {
		defer wg.Done()
		prs, err := activity.FindPullRequests(ctx, cfg.Org, repos, window.Start, window.End)
		if err != nil {
			setErr(fmt.Errorf("pull request query failed for window %s: %w", window.Key(), err))
			return
		}
		noteEmpty(len(prs))
		lead = reduceLeadTime(prs)
	}()
	go func() {
		defer wg.Done()
		issues, err := activity.FindIssues(ctx, cfg.Org, repos, window.Start, window.End)
		if err != nil {
			setErr(fmt.Errorf("issue query failed for window %s: %w", window.Key(), err))
			return
		}
		noteEmpty(len(issues))
		fail = reduceFailureRate(issues)
	}()
	go func() {
		defer wg.Done()
		issues, err := activity.FindIssues(ctx, cfg.Org, repos, window.Start, window.End)
		if err != nil {
			setErr(fmt.Errorf("issue query failed for window %s: %w", window.Key(), err))
			return
		}
		restore = reduceRestoreTime(issues)
	}()
	wg.Wait()

	if firstErr != nil {
		return schema.WindowScores{}, firstErr
	}

	// Non-fatal: a window with no records at all still yields a zero tuple.
	if empty == 3 {
		contract.LogWarn(fmt.Sprintf("no activity found for %s window %s", cfg.Org, window.Key()), nil)
	}

	return combineReductions(cfg.Org, window, deploy, lead, fail, restore), nil
}

// mergeWindows folds per-window scores into the unified result shape.
func mergeWindows(all []schema.WindowScores) *schema.DoraMetrics {
	result := schema.NewDoraMetrics()
	for _, ws := range all {
		key := ws.Window.Key()
		result.Orgs[key] = ws.Org
		result.Users[key] = append(result.Users[key], ws.Users...)
		result.Repos[key] = append(result.Repos[key], ws.Repos...)
	}
	return result
}
