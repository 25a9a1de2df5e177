// Package database persists the history of filtering runs in SQLite.
//
// The history is write-only during a pass and exists for the operator:
// the history command lists past runs and what they dropped. Probing
// never reads it; results are not cached between runs.
package database
