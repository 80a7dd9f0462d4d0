package pipeline

import (
	"context"
	"log/slog"

	"panelfit/internal/apperrors"
	"panelfit/internal/config"
	"panelfit/internal/dataset"
	"panelfit/internal/estimate"
	"panelfit/internal/generate"
	"panelfit/internal/infrastructure"
	"panelfit/internal/report"
	"panelfit/internal/schema"
)

// LoadConfigStage reads the parameter file and starts the configured
// logger. It runs first so every later stage logs through the
// configured handler.
type LoadConfigStage struct{}

func (LoadConfigStage) ID() string { return "load_config" }

func (LoadConfigStage) Run(ctx context.Context, state *State) error {
	cfg, err := config.Load(state.ConfigPath)
	if err != nil {
		return apperrors.Config("load", err)
	}

	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		return apperrors.Config("initialize logger", err)
	}

	state.Config = cfg
	slog.InfoContext(ctx, "configuration loaded",
		slog.Int64("seed", cfg.Seed),
		slog.Int("n_rows", cfg.NRows),
		slog.String("formula", cfg.Model.Formula),
		slog.String("cov_type", cfg.Model.CovType))
	return nil
}

// AcquireDataStage produces the raw table, either by generating the
// synthetic panel or by reading an external CSV when a data path was
// given.
type AcquireDataStage struct{}

func (AcquireDataStage) ID() string { return "acquire_data" }

func (AcquireDataStage) Run(ctx context.Context, state *State) error {
	if state.DataPath != "" {
		table, err := dataset.ReadCSV(state.DataPath)
		if err != nil {
			return apperrors.Schema("load data", err)
		}
		state.Table = table
		slog.InfoContext(ctx, "dataset loaded",
			slog.String("source", state.DataPath),
			slog.Int("rows", table.NumRows()))
		return nil
	}

	table, err := generate.SyntheticPanel(state.Config.NRows, state.Config.Seed)
	if err != nil {
		return apperrors.Config("generate data", err)
	}
	state.Table = table
	slog.InfoContext(ctx, "dataset generated",
		slog.Int("rows", table.NumRows()),
		slog.Int64("seed", state.Config.Seed))
	return nil
}

// ValidateDataStage schema-checks the raw table into a typed panel.
type ValidateDataStage struct{}

func (ValidateDataStage) ID() string { return "validate_data" }

func (ValidateDataStage) Run(ctx context.Context, state *State) error {
	panel, err := schema.Validate(state.Table)
	if err != nil {
		return apperrors.Schema("validate", err)
	}
	state.Panel = panel
	slog.InfoContext(ctx, "dataset validated", slog.Int("rows", panel.NumRows()))
	return nil
}

// EstimateWriteStage fits the model and writes all run artifacts.
type EstimateWriteStage struct{}

func (EstimateWriteStage) ID() string { return "estimate_write" }

func (EstimateWriteStage) Run(ctx context.Context, state *State) error {
	res, err := estimate.Fit(state.Panel.Frame(), state.Config.Model.Formula, state.Config.Model.CovType)
	if err != nil {
		return apperrors.Estimation("fit", err)
	}
	state.Result = res

	writer := report.NewWriter(state.Outdir)
	run := report.RunInfo{RunID: state.RunID, StartedAt: state.StartedAt}
	if err := writer.WriteAll(ctx, state.Panel.Table(), res, run); err != nil {
		return apperrors.Output("write artifacts", err)
	}
	return nil
}
