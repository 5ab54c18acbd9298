// Package core implements the DORA metrics aggregation engine: time
// bucketing, the four metric reducers, the score cache path, and the
// orchestrator that ties them together.
package core
