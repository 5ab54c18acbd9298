// Package main provides a performance benchmarking tool for the dora CLI.
// It seeds synthetic activity datasets of different sizes into SQLite,
// measures compute times across granularities with and without the score
// cache, treating the first cached run as cold and averaging the rest as
// warm, and generates CSV output for performance analysis.
//
// Prerequisites:
// - dora binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the seeded SQLite databases
package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Granularity string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Datasets    []DatasetSpec
}

// DatasetSpec describes one synthetic activity dataset.
type DatasetSpec struct {
	Name  string
	Repos int
	Users int
	Days  int // days of activity counted back from RangeEnd
}

// Range boundaries shared by every dataset.
const (
	rangeEnd         = "2026-06-30"
	benchOrg         = "benchorg"
	eventsPerRepoDay = 3
)

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Datasets: []DatasetSpec{
			{Name: "small", Repos: 5, Users: 10, Days: 30},
			{Name: "medium", Repos: 25, Users: 50, Days: 90},
			{Name: "large", Repos: 100, Users: 200, Days: 365},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the dora binary and work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("dora"); err != nil {
		return fmt.Errorf("dora binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work directory %s: %w", config.WorkDir, err)
	}
	return nil
}

// runBenchmarks seeds each dataset and benchmarks every granularity on it
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Datasets), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, spec := range config.Datasets {
		fmt.Printf("Benchmarking %s (%d repos, %d users, %d days)\n", spec.Name, spec.Repos, spec.Users, spec.Days)

		dbPath := filepath.Join(config.WorkDir, fmt.Sprintf("bench_%s.db", spec.Name))
		if err := seedDataset(dbPath, spec); err != nil {
			fmt.Printf("  Seeding failed: %v\n", err)
			continue
		}

		for _, granularity := range []string{"day", "week", "month"} {
			result := runBenchmarkSuite(config, spec, dbPath, granularity)
			results = append(results, result)
		}
	}

	return results
}

// seedDataset fills a fresh SQLite database with synthetic activity
func seedDataset(dbPath string, spec DatasetSpec) error {
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	tables := []string{
		"CREATE TABLE dora_releases (org TEXT NOT NULL, repo TEXT NOT NULL, username TEXT NOT NULL, name TEXT NOT NULL, created_at BIGINT NOT NULL)",
		"CREATE TABLE dora_pull_requests (org TEXT NOT NULL, repo TEXT NOT NULL, username TEXT NOT NULL, created_at BIGINT NOT NULL, merged_at BIGINT, first_commit_at BIGINT NOT NULL)",
		`CREATE TABLE dora_issues (org TEXT NOT NULL, repo TEXT NOT NULL, username TEXT NOT NULL, labels TEXT NOT NULL, created_at BIGINT NOT NULL, closed_at BIGINT)`,
	}
	for _, stmt := range tables {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	end, err := time.Parse("2006-01-02", rangeEnd)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(42)) // fixed seed keeps runs comparable
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	for day := 0; day < spec.Days; day++ {
		base := end.AddDate(0, 0, -day)
		for repo := 0; repo < spec.Repos; repo++ {
			repoName := fmt.Sprintf("repo-%03d", repo)
			for e := 0; e < eventsPerRepoDay; e++ {
				user := fmt.Sprintf("user-%03d", rng.Intn(spec.Users))
				at := base.Add(time.Duration(rng.Intn(86400)) * time.Second).Unix()

				switch e % 3 {
				case 0:
					_, err = tx.Exec("INSERT INTO dora_releases VALUES (?, ?, ?, ?, ?)",
						benchOrg, repoName, user, fmt.Sprintf("v0.%d.%d", day, repo), at)
				case 1:
					_, err = tx.Exec("INSERT INTO dora_pull_requests VALUES (?, ?, ?, ?, ?, ?)",
						benchOrg, repoName, user, at, at+int64(rng.Intn(172800)), at-int64(rng.Intn(86400)))
				default:
					labels := `["bug"]`
					if rng.Intn(4) == 0 {
						labels = `["failure"]`
					}
					_, err = tx.Exec("INSERT INTO dora_issues VALUES (?, ?, ?, ?, ?, ?)",
						benchOrg, repoName, user, labels, at, at+int64(rng.Intn(259200)))
				}
				if err != nil {
					_ = tx.Rollback()
					return err
				}
			}
		}
	}
	return tx.Commit()
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one granularity
func runBenchmarkSuite(config BenchmarkConfig, spec DatasetSpec, dbPath, granularity string) BenchmarkResult {
	fmt.Printf("Running %s granularity on %s\n", granularity, spec.Name)

	end, _ := time.Parse("2006-01-02", rangeEnd)
	start := end.AddDate(0, 0, -(spec.Days - 1)).Format("2006-01-02")

	// Helper to run a benchmark phase
	runPhase := func(backend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, dbPath, start, granularity, backend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Scores from earlier suites would pollute the cold run.
	clearCmd := exec.Command("dora", "scores", "clear", "--backend", "sqlite", "--db-connect", dbPath)
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear scores: %v\nOutput: %s\n", err, string(output))
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     spec.Name,
		Granularity: granularity,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes dora compute multiple times with the specified score backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dbPath, start, granularity, backend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"compute", benchOrg,
		"--start", start,
		"--end", rangeEnd,
		"--granularity", granularity,
		"--backend", backend,
		"--db-connect", dbPath,
		"--color", "no",
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		started := time.Now()

		cmd := exec.Command("dora", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(started).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Computation completed in") &&
		strings.Contains(outputStr, "Score backend:")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/dora_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "granularity", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Granularity, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, granularity := range []string{"day", "week", "month"} {
		fmt.Printf("%s windows:\n", granularity)
		for _, result := range results {
			if result.Granularity == granularity {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
