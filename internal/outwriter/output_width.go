package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aeswibon/dora/internal/contract"
	"golang.org/x/term"
)

// getMaxTableSubjectWidth calculates the maximum width for subject names in
// table output based on terminal width and table configuration.
func getMaxTableSubjectWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the fixed columns: window, level, the four metric
	// columns, and the label, including borders and padding.
	baseWidth := 62

	available := termWidth - baseWidth
	if available < 12 {
		// Minimum reasonable subject width
		return 12
	}
	if available > 50 {
		// Maximum subject width to prevent overly wide tables
		return 50
	}
	return available
}

// truncateSubject truncates a subject name to a maximum width with ellipsis prefix.
func truncateSubject(subject string, maxWidth int) string {
	runes := []rune(subject)
	if len(runes) > maxWidth {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return subject
}

// writeSummary prints the trailing stats line below the table.
func writeSummary(w io.Writer, windows, subjects int, duration time.Duration, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "Showing %d windows across %d subjects\n", windows, subjects); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Computation completed in %v. Score backend: %s\n", duration, cfg.Backend)
	return err
}
