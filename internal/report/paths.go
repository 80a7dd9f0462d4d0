package report

import (
	"fmt"
	"os"
	"path/filepath"

	"panelfit/internal/config"
)

// Paths resolves artifact locations under a single output directory.
type Paths struct {
	Outdir string
}

// NewPaths returns the artifact layout rooted at outdir.
func NewPaths(outdir string) Paths {
	return Paths{Outdir: outdir}
}

// ProcessedData is the validated dataset CSV.
func (p Paths) ProcessedData() string {
	return filepath.Join(p.Outdir, config.ProcessedDataFile)
}

// TablesDir is the directory holding the coefficient tables.
func (p Paths) TablesDir() string {
	return filepath.Join(p.Outdir, config.TablesDirName)
}

// RegressionCSV is the coefficient table in CSV form.
func (p Paths) RegressionCSV() string {
	return filepath.Join(p.TablesDir(), config.RegressionCSVFile)
}

// RegressionTex is the coefficient table as a LaTeX tabular.
func (p Paths) RegressionTex() string {
	return filepath.Join(p.TablesDir(), config.RegressionTexFile)
}

// RegressionXLSX is the coefficient table as an Excel workbook.
func (p Paths) RegressionXLSX() string {
	return filepath.Join(p.TablesDir(), config.RegressionXLSXFile)
}

// Summary is the human-readable fit summary.
func (p Paths) Summary() string {
	return filepath.Join(p.TablesDir(), config.SummaryFile)
}

// FiguresDir is the directory holding figures.
func (p Paths) FiguresDir() string {
	return filepath.Join(p.Outdir, config.FiguresDirName)
}

// TreatEffectFigure is the treatment-effect PNG.
func (p Paths) TreatEffectFigure() string {
	return filepath.Join(p.FiguresDir(), config.TreatEffectFigure)
}

// LogsDir is the directory holding run logs and metadata.
func (p Paths) LogsDir() string {
	return filepath.Join(p.Outdir, config.LogsDirName)
}

// RunMetadata is the provenance record for the run.
func (p Paths) RunMetadata() string {
	return filepath.Join(p.LogsDir(), config.RunMetadataFile)
}

// EnsureDirs creates the output directory tree.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.Outdir, p.TablesDir(), p.FiguresDir(), p.LogsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	return nil
}
