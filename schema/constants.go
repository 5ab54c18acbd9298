package schema

import "errors"

// Custom string types for type safety.
type (
	// Granularity represents the time bucketing granularity.
	Granularity string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for storage.
	DatabaseBackend string

	// SubjectLevel represents the aggregation level of a metric tuple.
	SubjectLevel string
)

// All granularities supported.
const (
	DayGranularity   Granularity = "day"
	WeekGranularity  Granularity = "week" // weeks start on Monday
	MonthGranularity Granularity = "month"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All aggregation levels for persisted scores.
const (
	OrgLevel  SubjectLevel = "org"
	RepoLevel SubjectLevel = "repo"
	UserLevel SubjectLevel = "user"
)

// UnknownUser is the sentinel for records with no user attribution.
// The ingestion pipeline writes it verbatim; it is never elided.
const UnknownUser = "unknown"

// FailureLabel marks an issue as a production incident proxy.
const FailureLabel = "failure"

// WindowKeyFormat is the date layout for window keys and cache rows.
const WindowKeyFormat = "2006-01-02"

// Validation errors raised before any store I/O.
var (
	// ErrInvalidGranularity rejects granularities outside day/week/month.
	ErrInvalidGranularity = errors.New("invalid granularity: must be day, week, or month")

	// ErrMissingParameter rejects calls with a required input absent.
	ErrMissingParameter = errors.New("missing required parameter")
)

// AllGranularities returns a list of all supported granularities.
var AllGranularities = []Granularity{DayGranularity, WeekGranularity, MonthGranularity}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidGranularity reports whether g is a supported granularity.
func ValidGranularity(g Granularity) bool {
	switch g {
	case DayGranularity, WeekGranularity, MonthGranularity:
		return true
	}
	return false
}
