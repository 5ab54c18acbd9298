// Package schema has configs, models and shared constants for all parts of dora.
package schema

import "time"

// Release represents an ingested GitHub release.
// Releases are the deployment signal for deployment frequency.
type Release struct {
	Org       string    // Organization the release belongs to
	Repo      string    // Repository the release belongs to
	User      string    // Attributed user, UnknownUser when absent
	Name      string    // Identifying release name or tag
	CreatedAt time.Time // Publication time, used for window filtering
}

// PullRequest represents an ingested GitHub pull request.
// Merged pull requests drive lead time for changes.
type PullRequest struct {
	Org           string
	Repo          string
	User          string     // Attributed user, UnknownUser when absent
	CreatedAt     time.Time  // PR creation time, used for window filtering
	MergedAt      *time.Time // nil means not merged; excluded from lead time
	FirstCommitAt time.Time  // Earliest commit on the PR, lead-time start boundary
}

// Issue represents an ingested GitHub issue.
// Issues labeled with FailureLabel are treated as production incidents.
type Issue struct {
	Org       string
	Repo      string
	User      string     // Attributed user, UnknownUser when absent
	Labels    []string   // Label set as ingested
	CreatedAt time.Time  // Issue creation time, used for window filtering
	ClosedAt  *time.Time // nil means still open
}

// IsFailure reports whether the issue carries the failure marker label.
func (i Issue) IsFailure() bool {
	for _, l := range i.Labels {
		if l == FailureLabel {
			return true
		}
	}
	return false
}

// LeadTimeHours returns the lead time of a merged PR in hours,
// and false for unmerged PRs.
func (p PullRequest) LeadTimeHours() (float64, bool) {
	if p.MergedAt == nil {
		return 0, false
	}
	return p.MergedAt.Sub(p.FirstCommitAt).Hours(), true
}

// RestoreTimeHours returns the time-to-restore of a closed failure issue
// in hours, and false for issues that do not qualify.
func (i Issue) RestoreTimeHours() (float64, bool) {
	if i.ClosedAt == nil || !i.IsFailure() {
		return 0, false
	}
	return i.ClosedAt.Sub(i.CreatedAt).Hours(), true
}

// TimeWindow is one contiguous sub-interval of the requested date range.
// Both boundaries are inclusive; End is the last second of the window's
// final day. Windows are produced only by the bucketizer.
type TimeWindow struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
}

// Key returns the canonical window key used for cache rows and result maps.
func (w TimeWindow) Key() string {
	return w.Start.UTC().Format(WindowKeyFormat)
}
