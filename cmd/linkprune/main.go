// Package main provides the entry point for the linkprune CLI.
//
// linkprune validates a bookmark collection by probing every referenced
// URL for liveness and writes back a filtered copy of the hierarchy
// that keeps only reachable (or exempt) bookmarks.
//
// Usage:
//
//	linkprune prune bookmarks.json filtered.json
//	linkprune history
//
// See --help for all available options.
package main

// main is the entry point for linkprune.
func main() {
	Execute()
}
