package schema

import (
	"math"
	"time"
)

// MetricTuple holds the four DORA dimensions for one subject in one window.
// Durations are hours, the failure rate is a 0-100 percentage.
type MetricTuple struct {
	DeploymentFrequency  float64 `json:"deploymentFrequency"`
	LeadTimeForChanges   float64 `json:"leadTimeForChanges"`
	ChangeFailureRate    float64 `json:"changeFailureRate"`
	TimeToRestoreService float64 `json:"timeToRestoreService"`
}

// UserMetrics is a per-user tuple within one window.
type UserMetrics struct {
	User string `json:"user"`
	MetricTuple
}

// RepoMetrics is a per-repository tuple within one window.
type RepoMetrics struct {
	Repo string `json:"repo"`
	MetricTuple
}

// OrgMetrics is the organization-wide tuple for one window.
type OrgMetrics struct {
	Org string `json:"org"`
	MetricTuple
}

// DoraMetrics is the unified multi-window result returned to callers.
// Each map is keyed by the window key (window start date).
type DoraMetrics struct {
	Users map[string][]UserMetrics `json:"users"`
	Orgs  map[string]OrgMetrics    `json:"orgs"`
	Repos map[string][]RepoMetrics `json:"repos"`
}

// NewDoraMetrics returns an empty result with all maps allocated.
func NewDoraMetrics() *DoraMetrics {
	return &DoraMetrics{
		Users: make(map[string][]UserMetrics),
		Orgs:  make(map[string]OrgMetrics),
		Repos: make(map[string][]RepoMetrics),
	}
}

// WindowScores holds every tuple computed for a single window,
// at all three aggregation levels. This is the unit the cache persists.
type WindowScores struct {
	Window TimeWindow
	Org    OrgMetrics
	Repos  []RepoMetrics
	Users  []UserMetrics
}

// CachedScore is one persisted score row. Level tells which subject the
// Subject field names; the org-level row carries the organization name.
type CachedScore struct {
	Org         string
	Level       SubjectLevel
	Subject     string // repo name, user name, or org name for OrgLevel
	WindowStart time.Time
	WindowEnd   time.Time
	Granularity Granularity
	Tuple       MetricTuple
}

// StoreStatus reports connection and volume information for a store.
type StoreStatus struct {
	Backend      string
	Connected    bool
	TotalEntries int64
	OldestEntry  int64 // unix seconds, 0 when empty
	NewestEntry  int64 // unix seconds, 0 when empty
}

// Round2 rounds a metric value to two decimals, half away from zero.
// Failure rates and hour averages are reported at this precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
