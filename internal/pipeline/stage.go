package pipeline

import (
	"context"
	"log/slog"
	"time"

	"panelfit/internal/apperrors"
)

// Stage is one step of the run.
type Stage interface {
	// ID returns the stage identifier used in logs.
	ID() string

	// Run executes the stage against the shared state.
	Run(ctx context.Context, state *State) error
}

// Runner executes stages in order, stopping at the first failure.
type Runner struct {
	stages []Stage
}

// NewRunner returns a runner over the given stages.
func NewRunner(stages ...Stage) *Runner {
	return &Runner{stages: stages}
}

// Run executes every stage against state. Stage starts are logged at
// debug level because the logger is only configured once load_config
// has read the parameter file.
func (r *Runner) Run(ctx context.Context, state *State) error {
	slog.DebugContext(ctx, "pipeline_start",
		slog.String("config", state.ConfigPath),
		slog.String("outdir", state.Outdir))

	for _, stage := range r.stages {
		start := time.Now()
		slog.DebugContext(ctx, "stage_start", slog.String("stage", stage.ID()))

		if err := stage.Run(ctx, state); err != nil {
			slog.ErrorContext(ctx, "stage_error",
				slog.String("stage", stage.ID()),
				slog.String("category", string(apperrors.CategoryOf(err))),
				slog.String("error", err.Error()))
			return err
		}

		slog.InfoContext(ctx, "stage_complete",
			slog.String("stage", stage.ID()),
			slog.Duration("duration", time.Since(start)))
	}

	slog.InfoContext(ctx, "pipeline_complete",
		slog.Duration("duration", time.Since(state.StartedAt)))
	return nil
}
