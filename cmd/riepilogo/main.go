// Command riepilogo builds the multi-month summary from CSV files on disk.
//
//	riepilogo -year 2025 -multiplier 2 -dir mesi/ -out riepilogo.xlsx
//
// Exit status is 0 on success, 1 on parse or I/O errors, 2 when no file has
// rows in the selected year and 3 when there is no input at all.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"riepilogo/internal/aggregator"
	"riepilogo/internal/config"
	apierrors "riepilogo/internal/errors"
	"riepilogo/internal/exporter"
	"riepilogo/internal/files"
	"riepilogo/internal/infrastructure"
	"riepilogo/internal/middleware"
	"riepilogo/internal/services"
	"riepilogo/internal/validation"
)

type options struct {
	year       int
	multiplier string
	dir        string
	out        string
	format     string
	print      bool
	logLevel   string
	paths      []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		err = apierrors.NewConfigError("cannot load configuration", err)
		fmt.Fprintf(stderr, "riepilogo: %v\n", err)
		return apierrors.ExitCode(err)
	}

	var opts options
	fs := flag.NewFlagSet("riepilogo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.year, "year", cfg.Summary.DefaultYear(), "year to export")
	fs.StringVar(&opts.multiplier, "multiplier", strconv.FormatFloat(cfg.Summary.DefaultMultiplier, 'f', -1, 64), "multiplication factor, with dot or comma decimals")
	fs.StringVar(&opts.dir, "dir", "", "directory scanned for *.csv inputs")
	fs.StringVar(&opts.out, "out", "", "output file (default riepilogo_<year>.<format>)")
	fs.StringVar(&opts.format, "format", string(services.FormatXLSX), "output format: xlsx or csv")
	fs.BoolVar(&opts.print, "print", false, "print the table to stdout")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: riepilogo [flags] [file.csv ...]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return apierrors.ExitOK
		}
		return apierrors.ExitFailure
	}
	opts.paths = fs.Args()

	ctx = infrastructure.EnsureTraceID(ctx)
	logger := infrastructure.WithComponent(infrastructure.NewLoggerWithWriter(stderr, opts.logLevel), "cli")

	if err := summarize(ctx, cfg, opts, logger, stdout); err != nil {
		fmt.Fprintf(stderr, "riepilogo: %v\n", err)
		return apierrors.ExitCode(err)
	}
	return apierrors.ExitOK
}

func summarize(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger, stdout io.Writer) error {
	format, err := services.ParseFormat(opts.format)
	if err != nil {
		return apierrors.NewAppValidationError(err.Error())
	}

	multiplier, err := services.ParseMultiplier(opts.multiplier)
	if err != nil {
		return apierrors.NewAppValidationError(fmt.Sprintf("invalid multiplier %q", opts.multiplier))
	}

	// the file count limit only guards uploads
	summaryCfg := cfg.Summary
	summaryCfg.MaxFiles = 0
	validator := validation.NewFileValidator(logger, validation.UploadLimits{MaxFileBytes: summaryCfg.MaxFileBytes})

	if opts.dir != "" {
		if err := validator.ValidateInputDirectory(opts.dir); err != nil {
			return apierrors.NewStorageError("invalid input directory", err)
		}
	}

	inputs, err := files.NewDiscovery("").CollectInputs(opts.dir, opts.paths)
	if err != nil {
		return apierrors.NewStorageError("cannot collect inputs", err)
	}
	if len(inputs) == 0 {
		return apierrors.NewNoInputError("no input files, pass CSV paths or -dir")
	}

	var readers []aggregator.Input
	for _, in := range inputs {
		if err := validator.ValidateCSVFile(in.Path); err != nil {
			return apierrors.NewStorageError("invalid input", err)
		}
		f, err := os.Open(in.Path)
		if err != nil {
			return apierrors.NewStorageError("cannot open input", err)
		}
		defer f.Close()
		readers = append(readers, aggregator.Input{Name: in.Name, Reader: f})
	}

	requests := middleware.NewValidationMiddleware(logger, nil, summaryCfg.Years)
	svc := services.NewSummaryService(summaryCfg, requests, nil, nil, logger)

	summary, err := svc.Summarize(ctx, services.SummaryRequest{Year: opts.year, Multiplier: multiplier}, readers)
	if err != nil {
		return classify(err)
	}

	for _, name := range summary.Skipped {
		logger.Warn("file has no rows in the selected year", slog.String("file", name), slog.Int("year", opts.year))
	}
	for _, w := range summary.Warnings {
		logger.Warn(w)
	}

	if opts.print {
		if err := printTable(stdout, summary.Table); err != nil {
			return apierrors.NewStorageError("cannot print table", err)
		}
	}

	export, err := svc.Export(ctx, summary, format)
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = export.Filename
	}
	if err := validator.ValidateOutputDirectory(filepath.Dir(out)); err != nil {
		return apierrors.NewStorageError("invalid output directory", err)
	}
	manager := files.NewManagerWithLogger("", logger)
	if manager.FileExists(out) {
		logger.Info("overwriting existing file", slog.String("file", out))
	}
	if err := manager.WriteFile(out, export.Data); err != nil {
		return apierrors.NewStorageError("cannot write output", err)
	}

	fmt.Fprintf(stdout, "%s: %d mesi, totale generale %s\n",
		out, len(summary.Table.Columns), exporter.FormatAmount(summary.Table.GrandTotal))
	return nil
}

// classify turns service errors into AppErrors carrying the exit code.
func classify(err error) error {
	var parseErr *aggregator.ParseError
	var noData *aggregator.NoDataError
	var apiErr *apierrors.APIError

	switch {
	case errors.As(err, &parseErr):
		return apierrors.NewParsingError("invalid input", err)
	case errors.As(err, &noData):
		return apierrors.NewNoDataError(fmt.Sprintf("Nessun dato trovato per l'anno %d.", noData.Year), nil)
	case errors.Is(err, services.ErrNoFiles):
		return apierrors.NewNoInputError(err.Error())
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if v, ok := apiErr.Details.(apierrors.ValidationErrors); ok {
			fields := make([]string, len(v.Errors))
			for i, fe := range v.Errors {
				fields[i] = fe.Message
			}
			msg = strings.Join(fields, "; ")
		}
		return apierrors.NewAppValidationError(msg)
	}
	return err
}

// printTable renders the table with amounts right-aligned.
func printTable(w io.Writer, table *aggregator.ConsolidatedTable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	for _, h := range table.Headers() {
		fmt.Fprintf(tw, "%s\t", h)
	}
	fmt.Fprintln(tw)

	for _, row := range table.Rows() {
		fmt.Fprintf(tw, "%s\t", row.Label)
		for _, c := range row.Cells {
			if c != nil {
				fmt.Fprintf(tw, "%s\t", exporter.FormatAmount(*c))
			} else {
				fmt.Fprint(tw, "\t")
			}
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}
