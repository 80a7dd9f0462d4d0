package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"panelfit/internal/dataset"
	"panelfit/internal/estimate"
	"panelfit/internal/testutil"
)

// sampleResult is a small fitted result with recognizable values.
func sampleResult() *estimate.Result {
	return &estimate.Result{
		Names:   []string{"Intercept", "treat", "x"},
		Coef:    []float64{0.1, 0.5, 0.8},
		StdErr:  []float64{0.05, 0.02, 0.01},
		TStat:   []float64{2, 25, 80},
		PValue:  []float64{0.0455, 0.0001, 0},
		CILow:   []float64{0.0008, 0.4603, 0.7802},
		CIHigh:  []float64{0.1992, 0.5397, 0.8198},
		NObs:    100,
		DF:      97,
		R2:      0.9,
		AdjR2:   0.8979,
		Formula: "y ~ treat + x",
		CovType: "HC1",
	}
}

func sampleTable() *dataset.Table {
	return &dataset.Table{
		Columns: dataset.Columns(),
		Records: [][]string{
			{"0", "2010", "0.5", "0", "1.1"},
			{"0", "2011", "-0.25", "1", "1.9"},
			{"1", "2010", "1.5", "1", "2.4"},
		},
	}
}

func TestWriteAllProducesArtifacts(t *testing.T) {
	outdir := filepath.Join(t.TempDir(), "outputs")
	writer := NewWriter(outdir)

	run := RunInfo{RunID: "test-run", StartedAt: time.Now().Add(-time.Second)}
	err := writer.WriteAll(context.Background(), sampleTable(), sampleResult(), run)
	require.NoError(t, err)

	paths := writer.Paths()
	for _, path := range []string{
		paths.ProcessedData(),
		paths.RegressionCSV(),
		paths.RegressionTex(),
		paths.RegressionXLSX(),
		paths.TreatEffectFigure(),
		paths.Summary(),
		paths.RunMetadata(),
	} {
		info, err := os.Stat(path)
		require.NoError(t, err, "expected artifact %s", path)
		assert.Greater(t, info.Size(), int64(0), "artifact %s is empty", path)
	}

	// The processed data round-trips with the exact cell strings.
	table, err := dataset.ReadCSV(paths.ProcessedData())
	require.NoError(t, err)
	assert.Equal(t, sampleTable().Records, table.Records)

	// The figure is a PNG.
	figure, err := os.ReadFile(paths.TreatEffectFigure())
	require.NoError(t, err)
	require.Greater(t, len(figure), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, figure[:8])

	// The metadata records the run.
	data, err := os.ReadFile(paths.RunMetadata())
	require.NoError(t, err)
	var meta RunMetadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, 3, meta.NObs)
	assert.Equal(t, "test-run", meta.RunID)
	assert.Equal(t, "y ~ treat + x", meta.Formula)
	assert.Equal(t, "HC1", meta.CovType)
	assert.GreaterOrEqual(t, meta.DurationMS, int64(1000))
}

func TestWriteCoefficientCSVLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regression.csv")
	require.NoError(t, WriteCoefficientCSV(sampleResult(), path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"", "Coef.", "Std.Err.", "t", "P>|t|", "[0.025", "0.975]"}, records[0])
	assert.Equal(t, "Intercept", records[1][0])
	assert.Equal(t, "treat", records[2][0])
	assert.Equal(t, "x", records[3][0])

	// Cells keep full precision.
	assert.Equal(t, "0.5", records[2][1])
	assert.Equal(t, "0.02", records[2][2])
	coef, err := strconv.ParseFloat(records[2][1], 64)
	require.NoError(t, err)
	assert.Equal(t, 0.5, coef)
}

func TestWriteCoefficientTex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regression.tex")
	require.NoError(t, WriteCoefficientTex(sampleResult(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tex := string(data)

	assert.True(t, strings.HasPrefix(tex, `\begin{tabular}{lrrrrrr}`))
	assert.Contains(t, tex, `\toprule`)
	assert.Contains(t, tex, `\midrule`)
	assert.Contains(t, tex, `\bottomrule`)
	assert.Contains(t, tex, ` & Coef. & Std.Err. & t & P>|t| & [0.025 & 0.975] \\`)
	assert.Contains(t, tex, `treat & 0.5000 & 0.0200 & 25.0000 & 0.0001 & 0.4603 & 0.5397 \\`)
	assert.True(t, strings.HasSuffix(strings.TrimRight(tex, "\n"), `\end{tabular}`))
}

func TestWriteCoefficientXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regression.xlsx")
	require.NoError(t, WriteCoefficientXLSX(sampleResult(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("regression")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Coef.", rows[0][1])
	assert.Equal(t, "treat", rows[2][0])

	coef, err := strconv.ParseFloat(rows[2][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, coef, 1e-9)
}

func TestWriteSummaryContent(t *testing.T) {
	res := sampleResult()
	res.CovType = "cluster"
	res.NClusters = 54
	res.DF = 53

	path := filepath.Join(t.TempDir(), "summary.txt")
	require.NoError(t, WriteSummary(res, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	summary := string(data)

	assert.Contains(t, summary, "Formula: y ~ treat + x")
	assert.Contains(t, summary, "Covariance: cluster")
	assert.Contains(t, summary, "Clusters (firm_id): 54")
	assert.Contains(t, summary, "Observations: 100")
	assert.Contains(t, summary, "Degrees of freedom: 53")
	assert.Contains(t, summary, "R-squared: 0.9000")
	assert.Contains(t, summary, "treat")
	assert.Contains(t, summary, "0.5000")
}

func TestWriteSummaryOmitsClustersForPlainCovariance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.txt")
	require.NoError(t, WriteSummary(sampleResult(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Clusters")
}

func TestSaveTreatEffectFigure(t *testing.T) {
	handler := testutil.SwapDefaultLogger(t)

	path := filepath.Join(t.TempDir(), "treat_effect.png")
	require.NoError(t, SaveTreatEffectFigure(context.Background(), sampleResult(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, data[:8])

	assert.Empty(t, handler.RecordsByLevel(slog.LevelWarn),
		"no fallback warning expected when treat is a named parameter")
}

func TestSaveTreatEffectFigureFallbackWarns(t *testing.T) {
	handler := testutil.SwapDefaultLogger(t)

	res := sampleResult()
	res.Names = []string{"Intercept", "d", "x"}

	path := filepath.Join(t.TempDir(), "treat_effect.png")
	require.NoError(t, SaveTreatEffectFigure(context.Background(), res, path))

	warnings := handler.RecordsByLevel(slog.LevelWarn)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "falling back")
	assert.Equal(t, "d", warnings[0].Attrs["fallback"])
}

func TestTreatParamIndex(t *testing.T) {
	tests := []struct {
		name     string
		params   []string
		want     int
		wantErr  bool
		wantWarn bool
	}{
		{
			name:   "treat present",
			params: []string{"Intercept", "treat", "x"},
			want:   1,
		},
		{
			name:   "treat in a later position",
			params: []string{"Intercept", "x", "treat"},
			want:   2,
		},
		{
			name:     "treat absent falls back to second parameter",
			params:   []string{"Intercept", "x"},
			want:     1,
			wantWarn: true,
		},
		{
			name:    "single parameter cannot fall back",
			params:  []string{"Intercept"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := testutil.SwapDefaultLogger(t)

			res := &estimate.Result{Names: tt.params}
			idx, err := treatParamIndex(context.Background(), res)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, idx)

			if tt.wantWarn {
				assert.True(t, handler.ContainsMessage("falling back"))
			} else {
				assert.Empty(t, handler.RecordsByLevel(slog.LevelWarn))
			}
		})
	}
}

func TestRunMetadataWrite(t *testing.T) {
	// Run from a directory with no enclosing repository so the commit
	// lookup takes the unknown path.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	meta := NewRunMetadata("run-1", "y ~ treat + x", "cluster", 42, time.Now())
	assert.Equal(t, "unknown", meta.GitCommit)
	assert.Equal(t, 42, meta.NObs)
	assert.NotEmpty(t, meta.GoVersion)
	assert.Contains(t, meta.Platform, "/")

	_, err = time.Parse(time.RFC3339, meta.TimestampUTC)
	assert.NoError(t, err)

	path := filepath.Join(t.TempDir(), "run_metadata.json")
	require.NoError(t, meta.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded RunMetadata
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, meta, decoded)
}

func TestPathsLayout(t *testing.T) {
	paths := NewPaths("out")

	assert.Equal(t, filepath.Join("out", "data_processed.csv"), paths.ProcessedData())
	assert.Equal(t, filepath.Join("out", "tables", "regression.csv"), paths.RegressionCSV())
	assert.Equal(t, filepath.Join("out", "tables", "regression.tex"), paths.RegressionTex())
	assert.Equal(t, filepath.Join("out", "tables", "regression.xlsx"), paths.RegressionXLSX())
	assert.Equal(t, filepath.Join("out", "tables", "summary.txt"), paths.Summary())
	assert.Equal(t, filepath.Join("out", "figures", "treat_effect.png"), paths.TreatEffectFigure())
	assert.Equal(t, filepath.Join("out", "logs", "run_metadata.json"), paths.RunMetadata())
}

func TestPathsEnsureDirs(t *testing.T) {
	paths := NewPaths(filepath.Join(t.TempDir(), "outputs"))
	require.NoError(t, paths.EnsureDirs())

	for _, dir := range []string{paths.Outdir, paths.TablesDir(), paths.FiguresDir(), paths.LogsDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
