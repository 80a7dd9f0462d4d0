package pipeline

import (
	"context"
	"time"

	"panelfit/internal/infrastructure"
)

// Options selects the inputs for one run.
type Options struct {
	// ConfigPath is the parameter file to load.
	ConfigPath string
	// Outdir is the root of the artifact layout.
	Outdir string
	// DataPath, when set, replaces synthetic generation with an
	// external dataset CSV.
	DataPath string
}

// Run executes the full pipeline once.
func Run(ctx context.Context, opts Options) error {
	ctx = infrastructure.EnsureRunID(ctx)

	state := &State{
		ConfigPath: opts.ConfigPath,
		DataPath:   opts.DataPath,
		Outdir:     opts.Outdir,
		RunID:      infrastructure.RunIDFromContext(ctx),
		StartedAt:  time.Now(),
	}

	runner := NewRunner(
		LoadConfigStage{},
		AcquireDataStage{},
		ValidateDataStage{},
		EstimateWriteStage{},
	)
	return runner.Run(ctx, state)
}
