package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"panelfit/internal/dataset"
	"panelfit/internal/estimate"
)

// Writer produces the full artifact layout for one run.
type Writer struct {
	paths Paths
}

// NewWriter returns a writer rooted at outdir.
func NewWriter(outdir string) *Writer {
	return &Writer{paths: NewPaths(outdir)}
}

// Paths exposes the artifact locations the writer will use.
func (w *Writer) Paths() Paths {
	return w.paths
}

// RunInfo carries the run-level fields the orchestrator knows and the
// artifacts record.
type RunInfo struct {
	RunID     string
	StartedAt time.Time
}

// WriteAll writes every artifact for the run: the processed dataset,
// the coefficient tables, the treatment-effect figure, the fit summary
// and finally the run metadata. The first failure aborts the sequence.
func (w *Writer) WriteAll(ctx context.Context, table *dataset.Table, res *estimate.Result, run RunInfo) error {
	if err := w.paths.EnsureDirs(); err != nil {
		return err
	}

	if err := table.WriteCSV(w.paths.ProcessedData()); err != nil {
		return fmt.Errorf("write processed data: %w", err)
	}
	slog.DebugContext(ctx, "artifact written", slog.String("path", w.paths.ProcessedData()))

	if err := WriteCoefficientCSV(res, w.paths.RegressionCSV()); err != nil {
		return err
	}
	slog.DebugContext(ctx, "artifact written", slog.String("path", w.paths.RegressionCSV()))

	if err := WriteCoefficientTex(res, w.paths.RegressionTex()); err != nil {
		return err
	}
	slog.DebugContext(ctx, "artifact written", slog.String("path", w.paths.RegressionTex()))

	if err := WriteCoefficientXLSX(res, w.paths.RegressionXLSX()); err != nil {
		return err
	}
	slog.DebugContext(ctx, "artifact written", slog.String("path", w.paths.RegressionXLSX()))

	if err := SaveTreatEffectFigure(ctx, res, w.paths.TreatEffectFigure()); err != nil {
		return err
	}
	slog.DebugContext(ctx, "artifact written", slog.String("path", w.paths.TreatEffectFigure()))

	if err := WriteSummary(res, w.paths.Summary()); err != nil {
		return err
	}
	slog.DebugContext(ctx, "artifact written", slog.String("path", w.paths.Summary()))

	meta := NewRunMetadata(run.RunID, res.Formula, res.CovType, table.NumRows(), run.StartedAt)
	if err := meta.Write(w.paths.RunMetadata()); err != nil {
		return err
	}
	slog.DebugContext(ctx, "artifact written", slog.String("path", w.paths.RunMetadata()))

	slog.InfoContext(ctx, "run artifacts written",
		slog.String("outdir", w.paths.Outdir),
		slog.Int("n_obs", meta.NObs))
	return nil
}
