package iostore

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/schema"
)

// StoreManagerImpl manages the activity and score store instances.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	activity     contract.ActivityStore
	scores       contract.ScoreStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetActivityStore returns the activity store.
func (mgr *StoreManagerImpl) GetActivityStore() contract.ActivityStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.activity
}

// GetScoreStore returns the score store.
func (mgr *StoreManagerImpl) GetScoreStore() contract.ScoreStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.scores
}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManagerImpl{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global store manager. Both stores share the
// backend and connection string; the score store additionally supports the
// none backend through NewScoreStore.
func InitStores(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		activityBackend := backend
		if backend == schema.NoneBackend {
			// Scores can be uncached, but activity must come from somewhere.
			activityBackend = schema.SQLiteBackend
		}

		activityStore, err := NewActivityStore(activityBackend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize activity store: %w", err)
			return
		}

		scoreStore, err := NewScoreStore(backend, connStr)
		if err != nil {
			_ = activityStore.Close()
			initErr = fmt.Errorf("failed to initialize score store: %w", err)
			return
		}

		Manager.Lock()
		Manager.activity = activityStore
		Manager.scores = scoreStore
		Manager.Unlock()
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.activity != nil {
			_ = Manager.activity.Close()
		}
		if Manager.scores != nil {
			_ = Manager.scores.Close()
		}
	})
}

// ClearScores removes all cached scores for the specified backend.
// For SQLite it drops the scores table inside the database file so the
// ingested activity tables survive; for server backends it drops the table.
func ClearScores(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetScoreDBFilePath()
		}
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil
		}
		return dropTable("sqlite", dbPath, scoresTable)

	case schema.MySQLBackend:
		return dropTable("mysql", connStr, scoresTable)

	case schema.PostgreSQLBackend:
		return dropTable("pgx", connStr, scoresTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// dropTable connects to the database and drops the table if it exists.
func dropTable(driverName, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}
