// panelfit generates a synthetic firm-year panel, validates it, fits an
// OLS model with a configurable covariance estimator and writes the run
// artifacts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"panelfit/internal/apperrors"
	"panelfit/internal/config"
	"panelfit/internal/infrastructure"
	"panelfit/internal/pipeline"
	"panelfit/internal/validation"
)

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		slog.Error("run failed",
			slog.String("category", string(apperrors.CategoryOf(err))),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// parseArgs resolves the command line into pipeline options. Parse
// errors are already reported on stderr by the flag package.
func parseArgs(args []string) (pipeline.Options, error) {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultConfigPath, "path to the parameter file")
	outdir := fs.String("outdir", config.DefaultOutputDir, "output directory for run artifacts")
	dataPath := fs.String("data", "", "dataset CSV to use instead of synthetic generation")

	if err := fs.Parse(args); err != nil {
		return pipeline.Options{}, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %v", fs.Args())
		fmt.Fprintln(fs.Output(), err)
		fs.Usage()
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		ConfigPath: *configPath,
		Outdir:     *outdir,
		DataPath:   *dataPath,
	}, nil
}

func run(opts pipeline.Options) error {
	ctx := infrastructure.EnsureRunID(context.Background())
	defer infrastructure.CloseLogFile()

	validator := validation.NewFileValidator(slog.Default())
	if err := validator.ValidateConfigFile(opts.ConfigPath); err != nil {
		return apperrors.Config("validate inputs", err)
	}
	if opts.DataPath != "" {
		if err := validator.ValidateDataCSV(opts.DataPath); err != nil {
			return apperrors.Schema("validate inputs", err)
		}
	}
	if err := validator.ValidateOutputDirectory(opts.Outdir); err != nil {
		return apperrors.Output("validate inputs", err)
	}

	return pipeline.Run(ctx, opts)
}
