package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
)

// Writer renders a Run to some destination.
type Writer interface {
	// Write outputs the run report. Returns the number of bytes
	// written and any error encountered.
	Write(run *Run) (int, error)
}

// baseWriter holds the shared output destination.
type baseWriter struct {
	output io.Writer
}

// SimpleWriter renders a short human-readable text summary.
type SimpleWriter struct {
	baseWriter

	// verbose additionally lists every dropped bookmark.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists each dropped bookmark in the summary.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) { w.verbose = verbose }
}

// NewSimpleWriter creates a SimpleWriter on output.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: baseWriter{output: output}}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the text summary.
func (w *SimpleWriter) Write(run *Run) (int, error) {
	total := 0

	n, err := fmt.Fprintf(w.output,
		"%s: %d bookmarks (%d distinct URLs), kept %d, dropped %d in %s\n",
		run.Input, run.Places, run.DistinctURLs, run.Kept, run.DropCount,
		run.Elapsed.Round(time.Millisecond),
	)
	total += n
	if err != nil {
		return total, err
	}

	if !w.verbose {
		return total, nil
	}
	for _, d := range run.Dropped {
		n, err := fmt.Fprintf(w.output, "  - %s (%s)\n", d.URL, d.Reason)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// JSONWriter renders the run as JSON for tool consumption.
type JSONWriter struct {
	baseWriter
	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indented output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) { w.indent = true }
}

// NewJSONWriter creates a JSONWriter on output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: baseWriter{output: output}}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the run as a single JSON document.
func (w *JSONWriter) Write(run *Run) (int, error) {
	enc := json.NewEncoder(w.output)
	if w.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(run); err != nil {
		return 0, fmt.Errorf("encode json report: %w", err)
	}
	return 0, nil
}

// MarkdownWriter renders the run as GitHub Flavored Markdown with a
// table of dropped bookmarks.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter on output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: baseWriter{output: output}}
}

// Write renders the Markdown report.
func (w *MarkdownWriter) Write(run *Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Bookmark Filter Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Input", "`" + run.Input + "`"},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", run.Elapsed.String()},
			{"Bookmarks", strconv.Itoa(run.Places)},
			{"Distinct URLs", strconv.Itoa(run.DistinctURLs)},
			{"Kept", strconv.Itoa(run.Kept)},
			{"Dropped", strconv.Itoa(run.DropCount)},
		},
	})
	md.PlainText("")

	md.H2("Dropped Bookmarks")
	md.PlainText("")
	if len(run.Dropped) == 0 {
		md.PlainText("No bookmarks were dropped.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(run.Dropped))
	for _, d := range run.Dropped {
		rows = append(rows, []string{d.Title, "`" + d.URL + "`", d.Reason})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Title", "URL", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}
