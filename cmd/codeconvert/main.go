package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/batch"
	"github.com/manarouei/agent-skills-sub004/internal/gen"
	"github.com/manarouei/agent-skills-sub004/pkg"
)

type options struct {
	root      string
	pattern   string
	out       string
	overrides string
	pkg       string
	workers   int
	natsURL   string
	runID     string
	asJSON    bool
	after     string
}

func parseFlags(args []string, cfg skills.AppConfig) (options, error) {
	var o options
	fs := flag.NewFlagSet("codeconvert", flag.ContinueOnError)
	fs.StringVar(&o.root, "root", cfg.InputDir, "directory holding node descriptors")
	fs.StringVar(&o.pattern, "in", batch.DefaultPattern, "doublestar pattern of descriptors below -root")
	fs.StringVar(&o.out, "out", cfg.OutputDir, "output directory for adapter files")
	fs.StringVar(&o.overrides, "overrides", cfg.OverridesFile, "YAML override file")
	fs.StringVar(&o.pkg, "package", gen.DefaultPackage, "package name of generated files")
	fs.IntVar(&o.workers, "workers", 4, "concurrent conversions")
	fs.StringVar(&o.natsURL, "nats", cfg.NatsURL, "NATS url for progress updates")
	fs.StringVar(&o.runID, "run-id", "", "run id (default: new ULID)")
	fs.BoolVar(&o.asJSON, "json", false, "print the run report as JSON")
	fs.StringVar(&o.after, "after", "", `command run in -out when every node converted, e.g. "go vet ./..."`)
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if o.runID == "" {
		o.runID = batch.NewRunID()
	}
	return o, nil
}

func main() {
	skills.InitConfig(".env")
	o, err := parseFlags(os.Args[1:], skills.GetConfig())
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, o, skills.Logger))
}

// run performs one conversion and returns the process exit code
func run(ctx context.Context, o options, logger zerolog.Logger) int {
	var overrides *gen.Overrides
	if o.overrides != "" {
		var err error
		if overrides, err = gen.LoadOverrides(o.overrides); err != nil {
			logger.Error().Err(err).Msg("Failed to load overrides")
			return 2
		}
	}

	reporter := batch.NewProgressReporter(o.natsURL, o.runID, logger)
	defer reporter.Close()

	converter := batch.NewConverter(batch.Config{
		Root:      o.root,
		Pattern:   o.pattern,
		OutputDir: o.out,
		Package:   o.pkg,
		Workers:   o.workers,
		Overrides: overrides,
		Progress:  reporter.ReportFunc(),
		Logger:    logger,
	})
	report, err := converter.RunWithID(ctx, o.runID)
	if err != nil {
		logger.Error().Err(err).Msg("Conversion failed")
		return 1
	}

	if o.asJSON {
		if err := pkg.PrettyPrint(os.Stdout, report); err != nil {
			logger.Error().Err(err).Msg("Failed to print report")
		}
	}
	if report.Failed > 0 {
		return 1
	}

	if o.after != "" {
		if err := pkg.RunCommandLine(ctx, o.out, o.after, os.Stderr); err != nil {
			logger.Error().Err(err).Str("command", o.after).Msg("Post-conversion command failed")
			return 1
		}
	}
	return 0
}
