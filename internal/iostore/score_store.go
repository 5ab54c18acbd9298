package iostore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/schema"
)

// ScoreStoreImpl handles durable score storage using various database
// backends. One row exists per (org, level, subject, window start,
// granularity) key; writes are upserts, never duplicate inserts.
type ScoreStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.ScoreStore = &ScoreStoreImpl{} // Compile-time check

// NewScoreStore initializes and returns a new ScoreStore based on the
// backend type. NoneBackend returns a no-op store that never hits and
// never persists.
func NewScoreStore(backend schema.DatabaseBackend, connStr string) (contract.ScoreStore, error) {
	if backend == schema.NoneBackend {
		return &ScoreStoreImpl{db: nil, backend: backend}, nil
	}

	db, _, err := openDB(backend, connStr, contract.GetScoreDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateScoresQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", scoresTable, err)
	}

	return &ScoreStoreImpl{db: db, backend: backend}, nil
}

// getCreateScoresQuery returns the CREATE TABLE query for the given backend.
func getCreateScoresQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				org VARCHAR(255) NOT NULL,
				level VARCHAR(16) NOT NULL,
				subject VARCHAR(255) NOT NULL,
				window_start BIGINT NOT NULL,
				window_end BIGINT NOT NULL,
				granularity VARCHAR(16) NOT NULL,
				deployment_frequency DOUBLE NOT NULL,
				lead_time_for_changes DOUBLE NOT NULL,
				change_failure_rate DOUBLE NOT NULL,
				time_to_restore_service DOUBLE NOT NULL,
				computed_at BIGINT NOT NULL,
				PRIMARY KEY (org, level, subject, window_start, granularity)
			);
		`, scoresTable)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				org TEXT NOT NULL,
				level TEXT NOT NULL,
				subject TEXT NOT NULL,
				window_start BIGINT NOT NULL,
				window_end BIGINT NOT NULL,
				granularity TEXT NOT NULL,
				deployment_frequency DOUBLE PRECISION NOT NULL,
				lead_time_for_changes DOUBLE PRECISION NOT NULL,
				change_failure_rate DOUBLE PRECISION NOT NULL,
				time_to_restore_service DOUBLE PRECISION NOT NULL,
				computed_at BIGINT NOT NULL,
				PRIMARY KEY (org, level, subject, window_start, granularity)
			);
		`, scoresTable)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				org TEXT NOT NULL,
				level TEXT NOT NULL,
				subject TEXT NOT NULL,
				window_start INTEGER NOT NULL,
				window_end INTEGER NOT NULL,
				granularity TEXT NOT NULL,
				deployment_frequency REAL NOT NULL,
				lead_time_for_changes REAL NOT NULL,
				change_failure_rate REAL NOT NULL,
				time_to_restore_service REAL NOT NULL,
				computed_at INTEGER NOT NULL,
				PRIMARY KEY (org, level, subject, window_start, granularity)
			);
		`, scoresTable)
	}
}

// Lookup returns org-level tuples for the requested window starts, keyed by
// window key. Only the org-level row drives the cache-skip decision.
func (ss *ScoreStoreImpl) Lookup(ctx context.Context, org string, windowStarts []time.Time, granularity schema.Granularity) (map[string]schema.MetricTuple, error) {
	out := make(map[string]schema.MetricTuple)
	if ss.db == nil || len(windowStarts) == 0 {
		return out, nil
	}

	args := []any{org, string(schema.OrgLevel), string(granularity)}
	query := fmt.Sprintf(`
		SELECT window_start, deployment_frequency, lead_time_for_changes, change_failure_rate, time_to_restore_service
		FROM %s
		WHERE org = %s AND level = %s AND granularity = %s AND window_start IN (%s)`,
		scoresTable,
		placeholder(ss.backend, 1), placeholder(ss.backend, 2), placeholder(ss.backend, 3),
		placeholderList(ss.backend, 4, len(windowStarts)))
	for _, ws := range windowStarts {
		args = append(args, ws.UTC().Unix())
	}

	rows, err := ss.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("score lookup failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var start int64
		var t schema.MetricTuple
		if err := rows.Scan(&start, &t.DeploymentFrequency, &t.LeadTimeForChanges, &t.ChangeFailureRate, &t.TimeToRestoreService); err != nil {
			return nil, err
		}
		key := time.Unix(start, 0).UTC().Format(schema.WindowKeyFormat)
		out[key] = t
	}
	return out, rows.Err()
}

// LookupWindow returns every cached row for one window at all three levels.
func (ss *ScoreStoreImpl) LookupWindow(ctx context.Context, org string, windowStart time.Time, granularity schema.Granularity) ([]schema.CachedScore, error) {
	if ss.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT level, subject, window_start, window_end, deployment_frequency, lead_time_for_changes, change_failure_rate, time_to_restore_service
		FROM %s
		WHERE org = %s AND granularity = %s AND window_start = %s`,
		scoresTable,
		placeholder(ss.backend, 1), placeholder(ss.backend, 2), placeholder(ss.backend, 3))

	rows, err := ss.db.QueryContext(ctx, query, org, string(granularity), windowStart.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("score window lookup failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.CachedScore
	for rows.Next() {
		var row schema.CachedScore
		var level string
		var start, end int64
		if err := rows.Scan(&level, &row.Subject, &start, &end, &row.Tuple.DeploymentFrequency, &row.Tuple.LeadTimeForChanges, &row.Tuple.ChangeFailureRate, &row.Tuple.TimeToRestoreService); err != nil {
			return nil, err
		}
		row.Org = org
		row.Level = schema.SubjectLevel(level)
		row.WindowStart = time.Unix(start, 0).UTC()
		row.WindowEnd = time.Unix(end, 0).UTC()
		row.Granularity = granularity
		out = append(out, row)
	}
	return out, rows.Err()
}

// Upsert inserts or replaces one score row. The statement is atomic per key
// on every backend, so concurrent writers settle on last-write-wins instead
// of duplicate rows.
func (ss *ScoreStoreImpl) Upsert(ctx context.Context, score schema.CachedScore) error {
	if ss.db == nil {
		return nil
	}

	_, err := ss.db.ExecContext(ctx, ss.getUpsertQuery(),
		score.Org,
		string(score.Level),
		score.Subject,
		score.WindowStart.UTC().Unix(),
		score.WindowEnd.UTC().Unix(),
		string(score.Granularity),
		score.Tuple.DeploymentFrequency,
		score.Tuple.LeadTimeForChanges,
		score.Tuple.ChangeFailureRate,
		score.Tuple.TimeToRestoreService,
		time.Now().UTC().Unix(),
	)
	return err
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ss *ScoreStoreImpl) getUpsertQuery() string {
	columns := "org, level, subject, window_start, window_end, granularity, deployment_frequency, lead_time_for_changes, change_failure_rate, time_to_restore_service, computed_at"

	switch ss.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE
				window_end = new.window_end,
				deployment_frequency = new.deployment_frequency,
				lead_time_for_changes = new.lead_time_for_changes,
				change_failure_rate = new.change_failure_rate,
				time_to_restore_service = new.time_to_restore_service,
				computed_at = new.computed_at`, scoresTable, columns)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (org, level, subject, window_start, granularity) DO UPDATE SET
				window_end = EXCLUDED.window_end,
				deployment_frequency = EXCLUDED.deployment_frequency,
				lead_time_for_changes = EXCLUDED.lead_time_for_changes,
				change_failure_rate = EXCLUDED.change_failure_rate,
				time_to_restore_service = EXCLUDED.time_to_restore_service,
				computed_at = EXCLUDED.computed_at`, scoresTable, columns)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, scoresTable, columns)
	}
}

// ExportScores returns every persisted row for the org at one granularity.
func (ss *ScoreStoreImpl) ExportScores(ctx context.Context, org string, granularity schema.Granularity) ([]schema.CachedScore, error) {
	if ss.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT level, subject, window_start, window_end, deployment_frequency, lead_time_for_changes, change_failure_rate, time_to_restore_service
		FROM %s
		WHERE org = %s AND granularity = %s
		ORDER BY window_start, level, subject`,
		scoresTable,
		placeholder(ss.backend, 1), placeholder(ss.backend, 2))

	rows, err := ss.db.QueryContext(ctx, query, org, string(granularity))
	if err != nil {
		return nil, fmt.Errorf("score export query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.CachedScore
	for rows.Next() {
		var row schema.CachedScore
		var level string
		var start, end int64
		if err := rows.Scan(&level, &row.Subject, &start, &end, &row.Tuple.DeploymentFrequency, &row.Tuple.LeadTimeForChanges, &row.Tuple.ChangeFailureRate, &row.Tuple.TimeToRestoreService); err != nil {
			return nil, err
		}
		row.Org = org
		row.Level = schema.SubjectLevel(level)
		row.WindowStart = time.Unix(start, 0).UTC()
		row.WindowEnd = time.Unix(end, 0).UTC()
		row.Granularity = granularity
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetStatus returns status information about the score store.
func (ss *ScoreStoreImpl) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(ss.backend),
		Connected: ss.db != nil,
	}
	if ss.db == nil {
		return status, nil
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*), COALESCE(MIN(computed_at), 0), COALESCE(MAX(computed_at), 0) FROM %s", scoresTable)
	row := ss.db.QueryRowContext(ctx, countQuery)
	if err := row.Scan(&status.TotalEntries, &status.OldestEntry, &status.NewestEntry); err != nil {
		return status, fmt.Errorf("failed to read score store status: %w", err)
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (ss *ScoreStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}
