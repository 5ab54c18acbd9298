package contract

import (
	"testing"
	"time"

	"github.com/aeswibon/dora/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw inputs that pass every validation step.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		OrgStr:      "acme",
		Start:       "2026-01-01",
		End:         "2026-01-31",
		Granularity: "week",
		Precision:   DefaultPrecision,
		Output:      "text",
		Backend:     "sqlite",
		Color:       "yes",
	}
}

func TestProcessAndValidateHappyPath(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.Repo = " payments "

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "acme", cfg.Org)
	assert.Equal(t, "payments", cfg.Repo)
	assert.Equal(t, schema.WeekGranularity, cfg.Granularity)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartTime)
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC), cfg.EndTime)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.SQLiteBackend, cfg.Backend)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidateMissingParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
	}{
		{"missing org", func(in *ConfigRawInput) { in.OrgStr = "  " }},
		{"missing start", func(in *ConfigRawInput) { in.Start = "" }},
		{"missing end", func(in *ConfigRawInput) { in.End = "" }},
		{"missing granularity", func(in *ConfigRawInput) { in.Granularity = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(input)
			err := ProcessAndValidate(&Config{}, input)
			assert.ErrorIs(t, err, schema.ErrMissingParameter)
		})
	}
}

func TestProcessAndValidateGranularity(t *testing.T) {
	input := validInput()
	input.Granularity = "quarterly"
	err := ProcessAndValidate(&Config{}, input)
	assert.ErrorIs(t, err, schema.ErrInvalidGranularity)

	// Mixed case is tolerated.
	input = validInput()
	input.Granularity = " Month "
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.MonthGranularity, cfg.Granularity)
}

func TestProcessAndValidateDateFormats(t *testing.T) {
	// RFC3339 timestamps are accepted and still normalized to day bounds.
	input := validInput()
	input.Start = "2026-01-01T15:30:00Z"
	input.End = "2026-01-02T04:00:00Z"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartTime)
	assert.Equal(t, time.Date(2026, 1, 2, 23, 59, 59, 0, time.UTC), cfg.EndTime)

	input = validInput()
	input.Start = "01/02/2026"
	err := ProcessAndValidate(&Config{}, input)
	assert.ErrorContains(t, err, "invalid start date")
}

func TestProcessAndValidatePrecisionBounds(t *testing.T) {
	for _, p := range []int{0, 5, -1} {
		input := validInput()
		input.Precision = p
		err := ProcessAndValidate(&Config{}, input)
		assert.ErrorContains(t, err, "precision must be between 1 and 4")
	}

	input := validInput()
	input.Precision = 4
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, 4, cfg.Precision)
}

func TestProcessAndValidateOutputModes(t *testing.T) {
	for _, mode := range []string{"text", "csv", "json", "parquet", "JSON"} {
		input := validInput()
		input.Output = mode
		assert.NoError(t, ProcessAndValidate(&Config{}, input), mode)
	}

	input := validInput()
	input.Output = "xml"
	err := ProcessAndValidate(&Config{}, input)
	assert.ErrorContains(t, err, "invalid output format")
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))

	err := ValidateDatabaseConnectionString(schema.MySQLBackend, " ")
	assert.ErrorContains(t, err, "db-connect is required")
	err = ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "")
	assert.ErrorContains(t, err, "db-connect is required")

	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost)/dora"))

	err = ValidateDatabaseConnectionString(schema.DatabaseBackend("oracle"), "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestRevalidateWindowInputs(t *testing.T) {
	base := &Config{Org: "old", Granularity: schema.DayGranularity}

	cfg := base.Clone()
	require.NoError(t, RevalidateWindowInputs(cfg, "acme", "2026-01-01", "2026-01-07", "week", "api"))
	assert.Equal(t, "acme", cfg.Org)
	assert.Equal(t, "api", cfg.Repo)
	assert.Equal(t, schema.WeekGranularity, cfg.Granularity)
	assert.Equal(t, time.Date(2026, 1, 7, 23, 59, 59, 0, time.UTC), cfg.EndTime)

	// The clone shields the base config from tool-call overrides.
	assert.Equal(t, "old", base.Org)
	assert.Equal(t, schema.DayGranularity, base.Granularity)

	assert.ErrorIs(t, RevalidateWindowInputs(base.Clone(), "", "2026-01-01", "2026-01-07", "day", ""), schema.ErrMissingParameter)
	assert.ErrorIs(t, RevalidateWindowInputs(base.Clone(), "acme", "2026-01-01", "2026-01-07", "hourly", ""), schema.ErrInvalidGranularity)
	assert.ErrorContains(t, RevalidateWindowInputs(base.Clone(), "acme", "not-a-date", "2026-01-07", "day", ""), "invalid start date")
}

func TestParseBoolFlag(t *testing.T) {
	assert.True(t, parseBoolFlag("yes", false))
	assert.True(t, parseBoolFlag("ON", false))
	assert.False(t, parseBoolFlag("no", true))
	assert.False(t, parseBoolFlag("0", true))
	// Unrecognized values fall back to the default.
	assert.True(t, parseBoolFlag("maybe", true))
	assert.False(t, parseBoolFlag("", false))
}

func TestEndOfDayCrossesMonths(t *testing.T) {
	got := EndOfDay(time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC), got)
}
