// Command fintrack-report prints or writes one user's monthly report from
// the configured storage backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/ports"
	"fintrack/internal/services"
)

type options struct {
	username string
	format   string
	out      string
	chart    string
	criteria core.Criteria
}

var formats = []string{"text", "csv", "pdf", "chart"}

func main() {
	os.Exit(reportMain())
}

// reportMain returns the process exit code so deferred cleanup runs
// before the process exits.
func reportMain() int {
	var opts options
	flag.StringVar(&opts.username, "user", "", "username whose transactions are reported (required)")
	flag.StringVar(&opts.format, "format", "text", "output format: text, csv, pdf, chart or all")
	flag.StringVar(&opts.out, "out", "", "output file; a directory for -format all. Defaults to stdout, or . for all")
	flag.StringVar(&opts.chart, "chart", "bar", "chart kind: line or bar")
	flag.StringVar(&opts.criteria.SearchText, "search", "", "free-text filter")
	flag.StringVar(&opts.criteria.MonthKey, "month", "", "month key filter, e.g. Sep/2025, or all")
	flag.StringVar(&opts.criteria.Type, "type", "", "type filter: income, expenses or all")
	flag.StringVar(&opts.criteria.Category, "category", "", "category substring filter")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.SlogLevel())

	if opts.username == "" {
		fmt.Fprintln(os.Stderr, "fintrack-report: -user is required")
		flag.Usage()
		return 2
	}

	ctx := context.Background()
	result := cli.InitBackend(ctx, logger, cfg)
	defer result.Close()

	if err := run(ctx, result.Store, opts, os.Stdout); err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			fmt.Fprintln(os.Stderr, "No transactions to export.")
			return 1
		}
		logger.Error("Report failed", "error", err, "user", opts.username, "format", opts.format)
		return 1
	}
	return 0
}

// run renders the report for opts. Single formats go to opts.out or
// stdout; "all" writes one file per format into the opts.out directory.
func run(ctx context.Context, store ports.Store, opts options, stdout io.Writer) error {
	kind, err := export.ParseChartKind(opts.chart)
	if err != nil {
		return err
	}
	u, err := store.GetUserByUsername(ctx, opts.username)
	if err != nil {
		return fmt.Errorf("user %q: %w", opts.username, err)
	}
	ts, err := store.ListTransactions(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	h := services.State{UserID: u.ID, Transactions: ts}.History(opts.criteria)
	r := report{
		username:  u.Username,
		history:   h,
		dashboard: services.State{UserID: u.ID, Transactions: h.Transactions}.Dashboard(),
		chart:     kind,
	}

	if opts.format == "all" {
		dir := opts.out
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		return r.writeAll(dir)
	}

	if opts.out == "" {
		return r.render(opts.format, stdout)
	}
	return writeFile(opts.out, func(w io.Writer) error { return r.render(opts.format, w) })
}

type report struct {
	username  string
	history   services.History
	dashboard services.Dashboard
	chart     export.ChartKind
}

func (r report) render(format string, w io.Writer) error {
	switch format {
	case "text":
		if err := export.WriteTable(w, r.dashboard.Months, r.dashboard.Summary); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		return export.WriteHistoryTable(w, r.history.Transactions)
	case "csv":
		return export.WriteCSV(w, r.history.Transactions)
	case "pdf":
		return export.WritePDF(w, r.history.Transactions, r.history.Summary, export.PDFOptions{Title: "Transaction History: " + r.username, CreatedAt: time.Now()})
	case "chart":
		return export.RenderChart(w, r.dashboard.Months, r.chart)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// writeAll writes every format into dir. On failure the files already
// written are removed again so dir never holds a partial report.
func (r report) writeAll(dir string) error {
	var written []string
	for _, f := range formats {
		path := filepath.Join(dir, r.filename(f))
		if err := writeFile(path, func(w io.Writer) error { return r.render(f, w) }); err != nil {
			for _, p := range written {
				os.Remove(p)
			}
			return err
		}
		written = append(written, path)
	}
	return nil
}

func (report) filename(format string) string {
	switch format {
	case "text":
		return "report.txt"
	case "csv":
		return "transactions.csv"
	case "pdf":
		return "transactions.pdf"
	default:
		return "chart.png"
	}
}

// writeFile removes path again when render fails so no partial file is
// left behind.
func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	slog.Info("Wrote report file", "path", path)
	return nil
}
