package outwriter

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeMetricsTableResults generates and writes the human-readable table.
func writeMetricsTableResults(rows []scoreRow, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeMetricsTable(rows, cfg, duration, w)
	}, "Wrote table")
}

// writeMetricsTable renders the flattened rows as one table.
func writeMetricsTable(rows []scoreRow, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	fmtFloat := createFormatters(cfg.Precision)
	maxSubject := getMaxTableSubjectWidth(cfg)

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}

	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Window", "Level", "Subject", "Deploys", "Lead(h)", "CFR(%)", "Restore(h)", "Label"}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	var data [][]string
	for _, r := range rows {
		data = append(data, []string{
			r.Window,
			string(r.Level),
			truncateSubject(r.Subject, maxSubject),
			fmtFloat(r.Tuple.DeploymentFrequency),
			fmtFloat(r.Tuple.LeadTimeForChanges),
			fmtFloat(r.Tuple.ChangeFailureRate),
			fmtFloat(r.Tuple.TimeToRestoreService),
			label(r.Tuple.ChangeFailureRate),
		})
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	windows := make(map[string]struct{})
	subjects := make(map[string]struct{})
	for _, r := range rows {
		windows[r.Window] = struct{}{}
		if r.Level != schema.OrgLevel {
			subjects[string(r.Level)+"/"+r.Subject] = struct{}{}
		}
	}
	return writeSummary(writer, len(windows), len(subjects), duration, cfg)
}

// writeMetricsCSVResults handles opening the file and calling the CSV writer.
func writeMetricsCSVResults(rows []scoreRow, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForMetrics(csvWriter, rows, cfg)
	}, "Wrote CSV")
}

// writeCSVResultsForMetrics writes the flattened rows in CSV format.
func writeCSVResultsForMetrics(w *csv.Writer, rows []scoreRow, cfg *contract.Config) error {
	fmtFloat := createFormatters(cfg.Precision)

	// CSV header
	header := []string{
		"window",
		"level",
		"subject",
		"deployment_frequency",
		"lead_time_for_changes",
		"change_failure_rate",
		"time_to_restore_service",
		"label",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Window,
			string(r.Level),
			r.Subject,
			fmtFloat(r.Tuple.DeploymentFrequency),
			fmtFloat(r.Tuple.LeadTimeForChanges),
			fmtFloat(r.Tuple.ChangeFailureRate),
			fmtFloat(r.Tuple.TimeToRestoreService),
			contract.GetPlainLabel(r.Tuple.ChangeFailureRate),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeMetricsJSONResults handles opening the file and calling the JSON writer.
// JSON keeps the nested users/repos/orgs shape instead of the flattened rows.
func writeMetricsJSONResults(metrics *schema.DoraMetrics, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, metrics)
	}, "Wrote JSON")
}
