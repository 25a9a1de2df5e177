package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkprune/linkprune/internal/bookmark"
	"github.com/linkprune/linkprune/internal/classify"
	"github.com/linkprune/linkprune/internal/config"
	"github.com/linkprune/linkprune/internal/database"
	"github.com/linkprune/linkprune/internal/diag"
	"github.com/linkprune/linkprune/internal/fetch"
	"github.com/linkprune/linkprune/internal/filter"
	"github.com/linkprune/linkprune/internal/log"
	"github.com/linkprune/linkprune/internal/probe"
	"github.com/linkprune/linkprune/internal/report"
)

// NewPruneCmd creates the prune command.
func NewPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune <bookmarks.json> [output]",
		Short: "Probe every bookmark and write a filtered copy",
		Long: `Prune reads a Firefox bookmarks backup, probes every referenced URL
once (duplicates share a single probe), and writes a copy of the tree
that keeps only the bookmarks that passed.

The filtered tree goes to the output file, or to stdout when no output
is given. Diagnostics (one line per probe and per drop) go to stderr.

Examples:
  # Filter a backup, print the result to stdout
  linkprune prune bookmarks.json > filtered.json

  # Filter into a file with a smaller probe pool
  linkprune prune --max-workers 256 bookmarks.json filtered.json

  # Import a Netscape HTML export instead of JSON
  linkprune prune --from-html bookmarks.html filtered.json

  # Probe through a SOCKS5 proxy
  linkprune prune --proxy 127.0.0.1:1080 bookmarks.json filtered.json

  # Write a Markdown report of what was dropped
  linkprune prune -m -r report.md bookmarks.json filtered.json

Policy file (.linkprune) example:
  maxWorkers: 512
  timeout: 45s
  keepStatuses: [429]
  proxy: 127.0.0.1:1080`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runPruneCmd,
	}

	// Probe behavior flags
	cmd.Flags().IntP("max-workers", "w", config.DefaultMaxWorkers,
		"Maximum number of concurrent probes")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each individual probe")
	cmd.Flags().String("user-agent", "",
		"Override the User-Agent header sent on probes")
	cmd.Flags().String("proxy", "",
		"Route probes through a SOCKS5 proxy at the given host:port")

	// Input handling flags
	cmd.Flags().Bool("from-html", false,
		"Treat the input as a Netscape bookmark file (HTML export)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Policy file path (default: .linkprune in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Write the run report as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write the run report as Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write the run report to the given file instead of stderr")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")

	return cmd
}

// runPruneCmd executes the prune command.
func runPruneCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Cancel the pass on interrupt. In-flight probes finish on their
	// own timeouts; the rebuild stops waiting immediately.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runPrune(ctx, cfg, logger)
}

// buildConfig creates a Config from defaults, the policy file, and
// flags, in that order of precedence (flags win).
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.PolicyFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the policy file first so explicit flags can override it.
	explicitPolicy := cfg.PolicyFilePath != ""
	if path := config.FindPolicyFile(cfg.PolicyFilePath); path != "" {
		policy, err := config.LoadPolicyFile(path)
		if err != nil {
			return nil, fmt.Errorf("load policy file %s: %w", path, err)
		}
		policy.Apply(cfg)
	} else if explicitPolicy {
		return nil, fmt.Errorf("policy file not found: %s", cfg.PolicyFilePath)
	}

	if cmd.Flags().Changed("max-workers") {
		if cfg.MaxWorkers, err = cmd.Flags().GetInt("max-workers"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("user-agent") {
		if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("proxy") {
		if cfg.ProxyAddr, err = cmd.Flags().GetString("proxy"); err != nil {
			return nil, err
		}
	}

	cfg.FromHTML, err = cmd.Flags().GetBool("from-html")
	if err != nil {
		return nil, err
	}
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("report")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory

	cfg.InputPath = args[0]
	if len(args) > 1 {
		cfg.OutputPath = args[1]
	}
	return cfg, nil
}

// runPrune executes the filtering pass.
func runPrune(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	root, err := loadTree(cfg)
	if err != nil {
		return err
	}

	prober, err := probe.New(
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithTimeout(cfg.Timeout),
		probe.WithProxy(cfg.ProxyAddr),
	)
	if err != nil {
		return fmt.Errorf("create prober: %w", err)
	}

	stream := diag.New(os.Stderr)
	scheduler := fetch.NewScheduler(prober,
		fetch.WithConcurrency(cfg.MaxWorkers),
		fetch.WithDiag(stream),
		fetch.WithLogger(logger),
	)
	policy := classify.NewPolicy(
		classify.WithExtraKeepStatuses(cfg.KeepStatuses),
		classify.WithDiag(stream),
	)
	pass := filter.New(scheduler, policy,
		filter.WithDiag(stream),
		filter.WithLogger(logger),
	)

	startedAt := time.Now()
	result, err := pass.Run(ctx, root)
	if err != nil {
		return fmt.Errorf("filter bookmarks: %w", err)
	}

	if err := writeTree(cfg.OutputPath, result.Root); err != nil {
		return err
	}

	run := report.NewRun(cfg.InputPath, startedAt, result)
	if err := outputReport(cfg, run); err != nil {
		logger.Error("report failed", "error", err)
	}
	if cfg.SaveToDB {
		if err := saveRun(ctx, cfg, run, logger); err != nil {
			logger.Error("failed to record run history", "error", err)
		}
	}
	return nil
}

// loadTree reads and decodes the input bookmark tree.
func loadTree(cfg *config.Config) (*bookmark.Entry, error) {
	f, err := os.Open(cfg.InputPath) //nolint:gosec // User-provided input path is intentional.
	if err != nil {
		return nil, fmt.Errorf("open bookmarks file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	if cfg.FromHTML {
		root, err := bookmark.ParseNetscape(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfg.InputPath, err)
		}
		return root, nil
	}

	var root bookmark.Entry
	if err := json.NewDecoder(f).Decode(&root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", cfg.InputPath, err)
	}
	return &root, nil
}

// writeTree writes the filtered tree as JSON to path, or to stdout when
// path is empty.
func writeTree(path string, root *bookmark.Entry) error {
	data, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode filtered tree: %w", err)
	}

	if path == "" {
		if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write filtered tree: %w", err)
		}
		return nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write filtered tree: %w", err)
	}
	return nil
}

// outputReport writes the run report in the configured format. Without
// format flags or a report file, no report is produced; the diagnostic
// summary line already covers the common case.
func outputReport(cfg *config.Config, run *report.Run) error {
	if !cfg.JSONReport && !cfg.MarkdownReport && cfg.ReportFile == "" {
		return nil
	}

	out := os.Stderr
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("create report directory: %w", err)
			}
		}
		f, err := os.Create(cfg.ReportFile) //nolint:gosec // User-provided report path is intentional.
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Flushed below via writer errors.
		out = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
	if _, err := w.Write(run); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// saveRun records the run in the history database.
func saveRun(ctx context.Context, cfg *config.Config, run *report.Run, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // Best-effort close on a history write.

	runID, err := db.SaveRun(ctx, run)
	if err != nil {
		return err
	}
	logger.Debug("run recorded", "id", runID, "db", db.Path())
	return nil
}
