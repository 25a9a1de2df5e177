// Package diag implements the line-oriented diagnostic stream emitted
// during a filtering pass. Each probe submission and each keep/drop
// decision produces exactly one tagged line, so the stream doubles as a
// machine-checkable trace of what the pass did.
//
// This stream is deliberately separate from the structured slog output:
// its format is part of the tool's observable behavior and must stay
// stable, while slog lines are free-form operator logging.
package diag

import (
	"fmt"
	"io"
	"sync"
)

// Logger writes tagged diagnostic lines to a single destination.
// It is safe for concurrent use; probe workers log submissions from
// many goroutines at once.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Discard returns a Logger that drops all output. Useful in tests and
// for library callers that do not want the stream.
func Discard() *Logger {
	return &Logger{w: io.Discard}
}

func (l *Logger) line(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format+"\n", args...)
}

// File records that a file:// URL is being checked on the filesystem.
func (l *Logger) File(url string) { l.line("FILE %s", url) }

// Keep records that a non-network URL is passed through unchecked.
func (l *Logger) Keep(url string) { l.line("KEEP %s", url) }

// Fetch records that a network probe is being submitted for url.
func (l *Logger) Fetch(url string) { l.line("FETCH %s", url) }

// IgnoreError records a probe error that was deliberately not held
// against the bookmark (TLS/certificate problems).
func (l *Logger) IgnoreError(kind, url, detail string) {
	l.line("IGNORE-ERROR %s %s %s", kind, url, detail)
}

// Error records a probe error that caused the bookmark to be dropped.
func (l *Logger) Error(kind, url, detail string) {
	l.line("ERROR %s %s %s", kind, url, detail)
}

// Status records an HTTP status code that caused the bookmark to be
// dropped.
func (l *Logger) Status(code int, url string) {
	l.line("STATUS %d %s", code, url)
}

// Phase records a coarse progress marker such as "loading URLs...".
func (l *Logger) Phase(msg string) { l.line("%s", msg) }

// Summary records the final drop count, grammatically singular when
// exactly one bookmark was dropped.
func (l *Logger) Summary(dropped int) {
	if dropped == 1 {
		l.line("dropped 1 bookmark")
		return
	}
	l.line("dropped %d bookmarks", dropped)
}
