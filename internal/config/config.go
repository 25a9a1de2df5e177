package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultMaxWorkers is the probe pool size. Probes are mostly idle
	// network waits, so the default is sized for a large bookmark
	// collection checked in one burst, not for CPU parallelism.
	DefaultMaxWorkers = 2048

	// DefaultTimeout bounds each individual probe. A slow host counts
	// as an error for that one URL; it never stalls the whole pass.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent mimics a desktop Firefox. Some hosts answer
	// scripted clients with errors or challenges; probing as a browser
	// measures what the bookmark's owner would see.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:96.0) Gecko/20100101 Firefox/96.0"

	// AppName is used for XDG directory paths.
	AppName = "linkprune"
)

// Config holds all options for one linkprune invocation. It is built
// from defaults, the policy file, and CLI flags, then validated once
// before any work starts.
type Config struct {
	// InputPath is the bookmarks backup to read.
	InputPath string

	// OutputPath is where the filtered tree is written. Empty means
	// stdout.
	OutputPath string

	// FromHTML treats the input as a Netscape bookmark file instead of
	// a Firefox JSON backup.
	FromHTML bool

	// MaxWorkers bounds the number of concurrent probes.
	MaxWorkers int

	// Timeout is the per-probe timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent on network probes.
	UserAgent string

	// ProxyAddr routes probes through a SOCKS5 proxy when non-empty
	// ("host:port").
	ProxyAddr string

	// KeepStatuses are extra HTTP status codes to keep, on top of the
	// built-in policy. Loaded from the policy file.
	KeepStatuses []int

	// PolicyFilePath is the explicit policy file path. Empty means
	// search the standard locations.
	PolicyFilePath string

	// JSONReport writes the run report as JSON instead of the simple
	// text summary. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes the run report as Markdown. Mutually
	// exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the run report to this path instead of stderr.
	ReportFile string

	// Verbose enables slog debug output.
	Verbose bool

	// DBDir is the directory holding the run-history database. Runs
	// are recorded there for the history command; the database is
	// never consulted while probing.
	DBDir string

	// SaveToDB records this run in the history database.
	SaveToDB bool
}

// NewConfig returns a Config with all defaults applied.
func NewConfig() *Config {
	return &Config{
		MaxWorkers: DefaultMaxWorkers,
		Timeout:    DefaultTimeout,
		UserAgent:  DefaultUserAgent,
		DBDir:      XDGDataDir(),
		SaveToDB:   true,
	}
}

// XDGDataDir returns the data directory for linkprune
// (~/.local/share/linkprune on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory for linkprune
// (~/.config/linkprune on Linux).
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem
// found as a sentinel error suitable for errors.Is.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return ErrNoInput
	}
	if c.MaxWorkers <= 0 {
		return ErrInvalidMaxWorkers
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	for _, code := range c.KeepStatuses {
		if code < 100 || code > 599 {
			return ErrInvalidKeepStatus
		}
	}
	return nil
}
