package contract

import (
	"context"
	"time"

	"github.com/aeswibon/dora/schema"
	"github.com/stretchr/testify/mock"
)

// MockActivityStore is a mock implementation of ActivityStore for testing.
type MockActivityStore struct {
	mock.Mock
}

var _ ActivityStore = &MockActivityStore{} // Compile-time check

// ListRepositories implements the ActivityStore interface.
func (m *MockActivityStore) ListRepositories(ctx context.Context, org string) ([]string, error) {
	args := m.Called(ctx, org)
	repos, _ := args.Get(0).([]string)
	return repos, args.Error(1)
}

// FindReleases implements the ActivityStore interface.
func (m *MockActivityStore) FindReleases(ctx context.Context, org string, repos []string, start, end time.Time) ([]schema.Release, error) {
	args := m.Called(ctx, org, repos, start, end)
	records, _ := args.Get(0).([]schema.Release)
	return records, args.Error(1)
}

// FindPullRequests implements the ActivityStore interface.
func (m *MockActivityStore) FindPullRequests(ctx context.Context, org string, repos []string, start, end time.Time) ([]schema.PullRequest, error) {
	args := m.Called(ctx, org, repos, start, end)
	records, _ := args.Get(0).([]schema.PullRequest)
	return records, args.Error(1)
}

// FindIssues implements the ActivityStore interface.
func (m *MockActivityStore) FindIssues(ctx context.Context, org string, repos []string, start, end time.Time) ([]schema.Issue, error) {
	args := m.Called(ctx, org, repos, start, end)
	records, _ := args.Get(0).([]schema.Issue)
	return records, args.Error(1)
}

// Close implements the ActivityStore interface.
func (m *MockActivityStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockScoreStore is a mock implementation of ScoreStore for testing.
type MockScoreStore struct {
	mock.Mock
}

var _ ScoreStore = &MockScoreStore{} // Compile-time check

// Lookup implements the ScoreStore interface.
func (m *MockScoreStore) Lookup(ctx context.Context, org string, windowStarts []time.Time, granularity schema.Granularity) (map[string]schema.MetricTuple, error) {
	args := m.Called(ctx, org, windowStarts, granularity)
	cached, _ := args.Get(0).(map[string]schema.MetricTuple)
	return cached, args.Error(1)
}

// LookupWindow implements the ScoreStore interface.
func (m *MockScoreStore) LookupWindow(ctx context.Context, org string, windowStart time.Time, granularity schema.Granularity) ([]schema.CachedScore, error) {
	args := m.Called(ctx, org, windowStart, granularity)
	rows, _ := args.Get(0).([]schema.CachedScore)
	return rows, args.Error(1)
}

// Upsert implements the ScoreStore interface.
func (m *MockScoreStore) Upsert(ctx context.Context, score schema.CachedScore) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

// ExportScores implements the ScoreStore interface.
func (m *MockScoreStore) ExportScores(ctx context.Context, org string, granularity schema.Granularity) ([]schema.CachedScore, error) {
	args := m.Called(ctx, org, granularity)
	rows, _ := args.Get(0).([]schema.CachedScore)
	return rows, args.Error(1)
}

// GetStatus implements the ScoreStore interface.
func (m *MockScoreStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	status, _ := args.Get(0).(schema.StoreStatus)
	return status, args.Error(1)
}

// Close implements the ScoreStore interface.
func (m *MockScoreStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ StoreManager = &MockStoreManager{} // Compile-time check

// GetActivityStore implements the StoreManager interface.
func (m *MockStoreManager) GetActivityStore() ActivityStore {
	ret := m.Called()
	store, _ := ret.Get(0).(ActivityStore)
	return store
}

// GetScoreStore implements the StoreManager interface.
func (m *MockStoreManager) GetScoreStore() ScoreStore {
	ret := m.Called()
	store, _ := ret.Get(0).(ScoreStore)
	return store
}
