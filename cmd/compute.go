package cmd

import (
	"time"

	"github.com/aeswibon/dora/core"
	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/internal/outwriter"
	"github.com/spf13/cobra"
)

// computeCmd computes the four DORA metrics for an organization.
var computeCmd = &cobra.Command{
	Use:   "compute <org>",
	Short: "Compute DORA metrics for an organization over a date range.",
	Long: `Compute the four DORA metrics from ingested development activity.

For every window in the requested range this reports:
- Deployment frequency: number of releases
- Lead time for changes: average hours from first commit to merge
- Change failure rate: percentage of issues labeled as failures
- Time to restore service: average hours to close failure issues

Metrics are aggregated per user, per repository, and for the whole
organization. Windows already present in the score store are served
from it without touching the activity tables.

Examples:
  # Daily metrics for an organization
  dora compute acme --start 2026-01-01 --end 2026-01-31

  # Weekly metrics for one repository
  dora compute acme --repo payments --granularity week --start 2026-01-01 --end 2026-03-31

  # Export monthly metrics to CSV
  dora compute acme --granularity month --start 2025-01-01 --end 2025-12-31 --output csv --output-file dora.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		started := time.Now()
		metrics, err := core.ComputeMetrics(rootCtx, cfg, storeManager)
		if err != nil {
			contract.LogFatal("Cannot compute metrics", err)
		}
		if err := outwriter.WriteDoraResults(metrics, cfg, time.Since(started)); err != nil {
			contract.LogFatal("Cannot write results", err)
		}
	},
}
