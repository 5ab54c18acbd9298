// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"sort"
	"time"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/schema"
)

// WriteDoraResults outputs the computed metrics, dispatching based on the
// output format configured.
func WriteDoraResults(metrics *schema.DoraMetrics, cfg *contract.Config, duration time.Duration) error {
	rows := flattenResults(metrics)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeMetricsJSONResults(metrics, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeMetricsCSVResults(rows, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeMetricsParquetResults(rows, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := writeMetricsTableResults(rows, cfg, duration); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// scoreRow is one flattened line of output. Tables, CSV, and Parquet all
// render from this shape.
type scoreRow struct {
	Window  string
	Level   schema.SubjectLevel
	Subject string
	Tuple   schema.MetricTuple
}

// levelRank orders output rows org first, then repos, then users.
func levelRank(level schema.SubjectLevel) int {
	switch level {
	case schema.OrgLevel:
		return 0
	case schema.RepoLevel:
		return 1
	default:
		return 2
	}
}

// flattenResults converts the per-window maps into a deterministic row list,
// sorted by window, then level, then subject.
func flattenResults(metrics *schema.DoraMetrics) []scoreRow {
	var rows []scoreRow

	for window, org := range metrics.Orgs {
		rows = append(rows, scoreRow{
			Window:  window,
			Level:   schema.OrgLevel,
			Subject: org.Org,
			Tuple:   org.MetricTuple,
		})
	}
	for window, repos := range metrics.Repos {
		for _, repo := range repos {
			rows = append(rows, scoreRow{
				Window:  window,
				Level:   schema.RepoLevel,
				Subject: repo.Repo,
				Tuple:   repo.MetricTuple,
			})
		}
	}
	for window, users := range metrics.Users {
		for _, user := range users {
			rows = append(rows, scoreRow{
				Window:  window,
				Level:   schema.UserLevel,
				Subject: user.User,
				Tuple:   user.MetricTuple,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Window != rows[j].Window {
			return rows[i].Window < rows[j].Window
		}
		ri, rj := levelRank(rows[i].Level), levelRank(rows[j].Level)
		if ri != rj {
			return ri < rj
		}
		return rows[i].Subject < rows[j].Subject
	})
	return rows
}
