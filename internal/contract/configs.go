package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/aeswibon/dora/schema"
)

// Default values for configuration.
const (
	DefaultLookbackDays = 90
	DefaultPrecision    = 2
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DateOnlyFormat accepts plain ISO dates on the command line.
const DateOnlyFormat = "2006-01-02"

// Config holds the runtime configuration for a metrics computation.
// This struct remains the "final, validated" config.
type Config struct {
	Org         string             // Organization to compute metrics for (positional arg)
	Repo        string             // Optional single-repository filter
	StartTime   time.Time          // Start of the date range, 00:00:00 UTC
	EndTime     time.Time          // End of the date range, 23:59:59 UTC
	Granularity schema.Granularity // day, week, or month

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	Backend   schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	OrgStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Repo        string `mapstructure:"repo"`
	Start       string `mapstructure:"start"`
	End         string `mapstructure:"end"`
	Granularity string `mapstructure:"granularity"`
	Precision   int    `mapstructure:"precision"`
	Output      string `mapstructure:"output"`
	OutputFile  string `mapstructure:"output-file"`
	Width       int    `mapstructure:"width"`
	Backend     string `mapstructure:"backend"`
	DBConnect   string `mapstructure:"db-connect"`
	Color       string `mapstructure:"color"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. Validation failures are returned
// before any store I/O is attempted.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Required parameters ---
	cfg.Org = strings.TrimSpace(input.OrgStr)
	if cfg.Org == "" {
		return fmt.Errorf("%w: org", schema.ErrMissingParameter)
	}
	if strings.TrimSpace(input.Start) == "" {
		return fmt.Errorf("%w: start", schema.ErrMissingParameter)
	}
	if strings.TrimSpace(input.End) == "" {
		return fmt.Errorf("%w: end", schema.ErrMissingParameter)
	}
	if strings.TrimSpace(input.Granularity) == "" {
		return fmt.Errorf("%w: granularity", schema.ErrMissingParameter)
	}

	// --- 2. Granularity Validation ---
	cfg.Granularity = schema.Granularity(strings.ToLower(strings.TrimSpace(input.Granularity)))
	if !schema.ValidGranularity(cfg.Granularity) {
		return fmt.Errorf("%w (received %q)", schema.ErrInvalidGranularity, input.Granularity)
	}

	// --- 3. Date Parsing ---
	start, err := ParseDateInput(input.Start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", input.Start, err)
	}
	end, err := ParseDateInput(input.End)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", input.End, err)
	}

	// Normalize to full-day boundaries: start at midnight, end at the last
	// second of its day. All window arithmetic uses closed intervals.
	cfg.StartTime = StartOfDay(start)
	cfg.EndTime = EndOfDay(end)

	// --- 4. Optional repo filter ---
	cfg.Repo = strings.TrimSpace(input.Repo)

	// --- 5. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// --- 6. Backend Validation ---
	cfg.Backend = schema.DatabaseBackend(strings.ToLower(input.Backend))
	if err := ValidateDatabaseConnectionString(cfg.Backend, input.DBConnect); err != nil {
		return err
	}
	cfg.DBConnect = input.DBConnect

	// --- 7. Color toggle ---
	cfg.UseColors = parseBoolFlag(input.Color, true)

	return nil
}

// RevalidateWindowInputs re-validates org, date range, granularity, and repo
// overrides coming from an MCP tool call and applies them to the config.
func RevalidateWindowInputs(cfg *Config, org, start, end, granularity, repo string) error {
	cfg.Org = strings.TrimSpace(org)
	if cfg.Org == "" {
		return fmt.Errorf("%w: org", schema.ErrMissingParameter)
	}

	cfg.Granularity = schema.Granularity(strings.ToLower(strings.TrimSpace(granularity)))
	if !schema.ValidGranularity(cfg.Granularity) {
		return fmt.Errorf("%w (received %q)", schema.ErrInvalidGranularity, granularity)
	}

	startTime, err := ParseDateInput(start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", start, err)
	}
	endTime, err := ParseDateInput(end)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", end, err)
	}
	cfg.StartTime = StartOfDay(startTime)
	cfg.EndTime = EndOfDay(endTime)

	cfg.Repo = strings.TrimSpace(repo)
	return nil
}

// ParseDateInput parses a date given as plain ISO date or full RFC3339.
func ParseDateInput(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateOnlyFormat, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateTimeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be YYYY-MM-DD or RFC3339: %w", err)
	}
	return t.UTC(), nil
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last second of t's day in UTC.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Second)
}

// ValidateDatabaseConnectionString checks backend/connection string pairing.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		if strings.TrimSpace(connStr) == "" {
			return fmt.Errorf("db-connect is required for the %s backend", backend)
		}
		return nil
	default:
		return fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// parseBoolFlag interprets yes/no style flag values with a default.
func parseBoolFlag(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true
	case "no", "false", "0", "off":
		return false
	default:
		return def
	}
}
