package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fraudscope/internal/app"
	"fraudscope/internal/config"
	"fraudscope/internal/dataprocessing"
	"fraudscope/internal/exporter"
	"fraudscope/pkg/contracts"
	"fraudscope/pkg/contracts/domain"
)

const usage = `usage: fraudscope <command> [flags]

commands:
  profile   load and clean the transactions, print the head and write the profiling report (default)
  rates     print the share of each target value per group
  serve     load and clean the transactions, then serve the HTTP API
  version   print version information

run "fraudscope <command> -h" for the flags of a command
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// commonFlags are shared by every command that touches the dataset
type commonFlags struct {
	configFile string
	projectDir string
	input      string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "YAML config file (defaults to $FRAUDSCOPE_CONFIG or config.yaml)")
	fs.StringVar(&c.projectDir, "project", "", "project directory that relative paths resolve against")
	fs.StringVar(&c.input, "input", "", "transactions file (defaults to data/raw/transactions.txt)")
}

func (c *commonFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if c.configFile != "" {
		cfg, err = config.LoadFile(c.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if c.projectDir != "" {
		cfg.Paths.ProjectDir = c.projectDir
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := "profile"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "profile":
		err = runProfile(ctx, args, stdout, stderr)
	case "rates":
		err = runRates(ctx, args, stdout, stderr)
	case "serve":
		err = runServe(ctx, args, stderr)
	case "version":
		fmt.Fprintln(stdout, contracts.GetVersionString())
	case "help":
		fmt.Fprint(stdout, usage)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintf(stderr, "fraudscope %s: %v\n", cmd, err)
		return 1
	}
}

var errUsage = errors.New("usage error")

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		return errUsage
	}
	return nil
}

func runProfile(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var common commonFlags
	fs := newFlagSet("profile", stderr)
	common.register(fs)
	head := fs.Int("head", -1, "rows to print (defaults to pipeline.head_rows)")
	csvOut := fs.String("csv", "", "also export the cleaned table to this CSV file (relative to the reports dir)")
	noReport := fs.Bool("no-report", false, "skip the profiling workbook")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if *noReport {
		cfg.Report.Enabled = false
	}

	a, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if err := a.Prepare(ctx, common.input); err != nil {
		return err
	}

	clean := a.Dataset.Transformed()
	n := cfg.Pipeline.HeadRows
	if *head >= 0 {
		n = *head
	}
	if err := exporter.RenderTable(stdout, clean, n); err != nil {
		return err
	}

	if *csvOut != "" {
		path, err := a.Exporter.WriteTable(ctx, *csvOut, clean, exporter.DefaultWriteOptions())
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "cleaned table written to %s\n", path)
	}

	if out := a.GenerateReport(ctx); out != "" {
		fmt.Fprintf(stdout, "profiling report written to %s\n", out)
	}
	return nil
}

func runRates(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var common commonFlags
	fs := newFlagSet("rates", stderr)
	common.register(fs)
	group := fs.String("group", "", "column to group by (required)")
	target := fs.String("target", domain.DefaultTargetColumn, "column whose values are counted")
	filterTrue := fs.Bool("filter-true", false, "only report rows whose target is true")
	raw := fs.Bool("raw", false, "aggregate the table as loaded instead of the cleaned one")
	out := fs.String("out", "", "also export the result to this CSV file (relative to the reports dir)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *group == "" {
		fmt.Fprintln(stderr, "rates: -group is required")
		fs.Usage()
		return errUsage
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	cfg.Report.Enabled = false

	a, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if *raw {
		input := a.Paths.InputFile
		if common.input != "" {
			input = a.Paths.GetProjectPath(common.input)
		}
		err = a.Dataset.Load(ctx, input)
	} else {
		err = a.Prepare(ctx, common.input)
	}
	if err != nil {
		return err
	}

	opts := dataprocessing.AggregateOptions{
		GroupColumn:  *group,
		TargetColumn: *target,
		FilterTrue:   *filterTrue,
	}
	rates, err := a.Dataset.Aggregate(ctx, opts, *raw)
	if err != nil {
		return err
	}
	table, err := dataprocessing.RatesTable(*group, *target, rates)
	if err != nil {
		return err
	}

	if err := exporter.RenderTable(stdout, table, table.NumRows()); err != nil {
		return err
	}
	if *out != "" {
		path, err := a.Exporter.WriteTable(ctx, *out, table, exporter.DefaultWriteOptions())
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "rates written to %s\n", path)
	}
	return nil
}

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	var common commonFlags
	fs := newFlagSet("serve", stderr)
	common.register(fs)
	port := fs.Int("port", 0, "listen port (defaults to server.port)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	a, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if err := a.Prepare(ctx, common.input); err != nil {
		return err
	}
	return a.Serve(ctx, nil)
}
