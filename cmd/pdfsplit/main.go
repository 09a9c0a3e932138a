package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdfsplit/internal/config"
	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
	"github.com/Epistemic-Technology/pdfsplit/internal/operations"
	"github.com/Epistemic-Technology/pdfsplit/internal/storage"
	"github.com/Epistemic-Technology/pdfsplit/models"
	"github.com/Epistemic-Technology/pdfsplit/server"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

// errUsage marks command-line mistakes, reported with exit status 2
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}

	var err error
	switch args[0] {
	case "split":
		err = splitCmd(args[1:], stdout, stderr)
	case "merge":
		err = mergeCmd(args[1:], stdout, stderr)
	case "history":
		err = historyCmd(args[1:], stdout, stderr)
	case "serve":
		err = serveCmd(args[1:], stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		usage(stderr)
		return exitUsage
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	switch models.Kind(err) {
	case models.ErrInvalidArgument, models.ErrEmptyInputSet:
		fmt.Fprintln(stderr, err)
		return exitUsage
	case models.ErrSourceMissing, models.ErrSourceUnreadable:
		fmt.Fprintf(stderr, "error: %v\n", err)
		fmt.Fprintln(stderr, "check that the input exists and is a PDF file")
		return exitFailure
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailure
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfsplit <command> [options]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  split    Split a PDF by page count (-p) or maximum size in MB (-s)")
	fmt.Fprintln(w, "  merge    Merge two or more PDFs into one")
	fmt.Fprintln(w, "  history  Show recorded split and merge runs (-delete ID removes one)")
	fmt.Fprintln(w, "  serve    Run the MCP server on stdio")
}

func usageErrorf(format string, v ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, v...))
}

func parseFlags(flags *flag.FlagSet, args []string) error {
	err := flags.Parse(args)
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return err
}

// parseInterspersed lets flags follow positional arguments,
// e.g. "split report.pdf -p 4".
func parseInterspersed(flags *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := parseFlags(flags, args); err != nil {
			return nil, err
		}
		args = flags.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

type commonFlags struct {
	configPath string
	verbose    bool
}

func (c *commonFlags) register(flags *flag.FlagSet) {
	flags.StringVar(&c.configPath, "config", "", "config yaml (optional, defaults to PDFSPLIT_CONFIG or ~/.pdfsplit/config.yaml)")
	flags.BoolVar(&c.verbose, "v", false, "verbose logging")
}

// setup loads configuration and builds a logger that writes to stderr
// unless configured otherwise. Only warnings are logged by default since
// the status lines already go to stdout.
func (c *commonFlags) setup(stderr io.Writer) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, nil, err
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Output == "" || cfg.Log.Output == "stderr" {
		return cfg, logger.NewWriterLogger(stderr, logger.ParseLevel(cfg.Log.Level)), nil
	}
	log, err := cfg.Logger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openHistory returns the history store, or nil when history is disabled
// or unavailable. Recording is best effort for the CLI.
func openHistory(cfg *config.Config, log logger.Logger) storage.Store {
	store, err := server.InitializeStorage(cfg, log)
	if err != nil {
		log.Warn("Run history unavailable: %v", err)
		return nil
	}
	return store
}

func closeHistory(store storage.Store, log logger.Logger) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		log.Warn("Failed to close history store: %v", err)
	}
}

func progressPrinter(stderr io.Writer) operations.ProgressFunc {
	return operations.ThrottledProgress(func(percent float64) {
		fmt.Fprintf(stderr, "\rprogress: %3.0f%%", percent)
		if percent >= 100 {
			fmt.Fprintln(stderr)
		}
	}, 100*time.Millisecond)
}

func splitCmd(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("split", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var common commonFlags
	common.register(flags)
	outputDir := flags.String("o", "", "output directory (default: the input's directory)")
	pages := flags.Int("p", 0, "pages per output file")
	sizeMB := flags.Float64("s", 0, "maximum output file size in MB, fractions allowed")
	showProgress := flags.Bool("progress", false, "show progress on stderr")

	positional, err := parseInterspersed(flags, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usageErrorf("split takes exactly one input PDF, got %d", len(positional))
	}
	policy, err := operations.SelectPolicy(*pages, *sizeMB)
	if err != nil {
		return err
	}

	cfg, log, err := common.setup(stderr)
	if err != nil {
		return err
	}
	if *outputDir == "" {
		*outputDir = cfg.Split.DefaultOutputDir
	}

	req := models.SplitRequest{InputPath: positional[0], OutputDir: *outputDir, Policy: policy}
	var progress operations.ProgressFunc
	if *showProgress {
		progress = progressPrinter(stderr)
	}

	result, err := operations.Split(req, progress, log)

	store := openHistory(cfg, log)
	defer closeHistory(store, log)
	operations.RecordRun(context.Background(), store, operations.SplitRecord(req, result, err), log)

	if result != nil {
		for _, c := range result.Chunks {
			fmt.Fprintf(stdout, "generated: %s (%s)\n", c.Path, operations.FormatMegabytes(c.Size))
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, result.Message)
	return nil
}

func mergeCmd(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("merge", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var common commonFlags
	common.register(flags)
	outputDir := flags.String("o", "", "output directory (default: the first input's directory)")
	outputName := flags.String("n", "", "output file name (default: {first input}_merge.pdf)")
	showProgress := flags.Bool("progress", false, "show progress on stderr")

	positional, err := parseInterspersed(flags, args)
	if err != nil {
		return err
	}
	if len(positional) < 2 {
		return usageErrorf("merge needs at least two input PDFs, got %d", len(positional))
	}

	cfg, log, err := common.setup(stderr)
	if err != nil {
		return err
	}

	req := models.MergeRequest{InputPaths: positional, OutputDir: *outputDir, OutputName: *outputName}
	var progress operations.ProgressFunc
	if *showProgress {
		progress = progressPrinter(stderr)
	}

	result, err := operations.Merge(req, progress, log)

	store := openHistory(cfg, log)
	defer closeHistory(store, log)
	operations.RecordRun(context.Background(), store, operations.MergeRecord(req, result, err), log)

	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "merged: %s (%s)\n", result.OutputPath, operations.FormatMegabytes(result.Size))
	return nil
}

func historyCmd(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("history", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var common commonFlags
	common.register(flags)
	limit := flags.Int("limit", 20, "maximum runs to show (0 for all)")
	deleteID := flags.String("delete", "", "delete the run with this ID instead of listing")

	if err := parseFlags(flags, args); err != nil {
		return err
	}

	cfg, log, err := common.setup(stderr)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.New("run history is disabled")
	}
	store, err := server.InitializeStorage(cfg, log)
	if err != nil {
		return err
	}
	defer closeHistory(store, log)

	if *deleteID != "" {
		if err := store.DeleteRun(context.Background(), *deleteID); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted: %s\n", *deleteID)
		return nil
	}

	runs, err := store.ListRuns(context.Background(), *limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		status := "ok"
		if !run.Success {
			status = "failed"
		}
		fmt.Fprintf(stdout, "%s  %-5s  %-6s  %s  [%s]\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Operation, status, strings.Join(run.Inputs, ", "), run.RunID)
		if run.Policy != "" {
			fmt.Fprintf(stdout, "    policy: %s\n", run.Policy)
		}
		for _, out := range run.Outputs {
			fmt.Fprintf(stdout, "    %s (%d pages, %s)\n", out.Path, out.Pages, operations.FormatMegabytes(out.Size))
		}
		if !run.Success {
			fmt.Fprintf(stdout, "    %s\n", run.Message)
		}
	}
	return nil
}

func serveCmd(args []string, stderr io.Writer) error {
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "config yaml (optional)")
	if err := parseFlags(flags, args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log, err := cfg.Logger()
	if err != nil {
		return err
	}

	log.Info("Starting pdfsplit MCP server")
	srv, closeServer := server.CreateServer(cfg, log)
	defer closeServer()
	return srv.Run(context.Background(), &mcp.StdioTransport{})
}
