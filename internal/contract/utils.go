package contract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
)

// Performance label constants, following the standard DORA bands.
const (
	EliteValue  = "Elite"  // Elite performer
	HighValue   = "High"   // High performer
	MediumValue = "Medium" // Medium performer
	LowValue    = "Low"    // Low performer
)

// Color variables for console output.
var (
	EliteColor  = color.New(color.FgCyan, color.Bold) // eliteColor represents the best band.
	HighColor   = color.New(color.FgGreen)            // highColor represents a healthy signal.
	MediumColor = color.New(color.FgYellow)           // mediumColor represents standard caution.
	LowColor    = color.New(color.FgRed, color.Bold)  // lowColor represents the danger band.
)

// GetPlainLabel returns a plain text performance label for a change failure
// rate. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(failureRate float64) string {
	switch {
	case failureRate <= 15:
		return EliteValue
	case failureRate <= 30:
		return HighValue
	case failureRate <= 45:
		return MediumValue
	default:
		return LowValue
	}
}

// GetColorLabel returns a colored performance label for console output.
// It uses GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(failureRate float64) string {
	text := GetPlainLabel(failureRate)

	switch text {
	case EliteValue:
		return EliteColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case MediumValue:
		return MediumColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It returns os.Stdout for an empty path.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetScoreDBFilePath returns the default SQLite DB path for score storage.
func GetScoreDBFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dora_scores.db"
	}
	return filepath.Join(home, ".dora_scores.db")
}

// GetActivityDBFilePath returns the default SQLite DB path for ingested
// activity records.
func GetActivityDBFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dora_activity.db"
	}
	return filepath.Join(home, ".dora_activity.db")
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning %s: %v\n", msg, err)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warning %s\n", msg)
}
