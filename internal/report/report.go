// Package report renders the result of a filtering pass for humans and
// tools. The filtered tree itself is the primary output and is written
// elsewhere; a report describes what the pass did to produce it.
package report

import (
	"time"

	"github.com/linkprune/linkprune/internal/filter"
)

// Run describes one completed filtering pass.
type Run struct {
	// Input is the bookmarks file that was filtered.
	Input string `json:"input"`

	// StartedAt is when the pass began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the pass.
	Elapsed time.Duration `json:"elapsed_ns"`

	// Places is the total number of bookmarks probed, counting
	// duplicates.
	Places int `json:"places"`

	// DistinctURLs is the number of unique URLs probed.
	DistinctURLs int `json:"distinct_urls"`

	// Kept is the number of bookmarks retained.
	Kept int `json:"kept"`

	// DropCount is the number of bookmarks removed.
	DropCount int `json:"drop_count"`

	// Dropped lists the removed bookmarks in tree order.
	Dropped []DroppedBookmark `json:"dropped,omitempty"`
}

// DroppedBookmark is one removed bookmark with its reason.
type DroppedBookmark struct {
	// URL is the bookmark's location as written in the tree.
	URL string `json:"url"`

	// Title is the bookmark's title metadata, if any.
	Title string `json:"title,omitempty"`

	// Reason describes the probe outcome behind the drop.
	Reason string `json:"reason"`
}

// NewRun assembles a Run from a pass result.
func NewRun(input string, startedAt time.Time, result *filter.Result) *Run {
	run := &Run{
		Input:        input,
		StartedAt:    startedAt,
		Elapsed:      result.Elapsed,
		Places:       result.Places,
		DistinctURLs: result.DistinctURLs,
		Kept:         result.Places - result.DropCount,
		DropCount:    result.DropCount,
	}
	for _, d := range result.DroppedBookmarks {
		run.Dropped = append(run.Dropped, DroppedBookmark{
			URL:    d.URL,
			Title:  d.Title,
			Reason: d.Reason,
		})
	}
	return run
}
