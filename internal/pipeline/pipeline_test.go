package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panelfit/internal/apperrors"
	"panelfit/internal/dataset"
	"panelfit/internal/infrastructure"
	"panelfit/internal/report"
)

// testParams keeps pipeline tests quiet by logging errors only.
const testParams = `seed: 7
n_rows: 400
model:
  formula: "y ~ treat + x"
  cov_type: "cluster"
logging:
  level: "error"
  format: "text"
  output: "stdout"
`

func writeParams(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func resetLogger(t *testing.T) {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
}

func TestRunEndToEnd(t *testing.T) {
	resetLogger(t)

	configPath := writeParams(t, testParams)
	outdir := filepath.Join(t.TempDir(), "outputs")

	err := Run(context.Background(), Options{ConfigPath: configPath, Outdir: outdir})
	require.NoError(t, err)

	paths := report.NewPaths(outdir)
	for _, path := range []string{
		paths.ProcessedData(),
		paths.RegressionCSV(),
		paths.RegressionTex(),
		paths.RegressionXLSX(),
		paths.TreatEffectFigure(),
		paths.Summary(),
		paths.RunMetadata(),
	} {
		_, err := os.Stat(path)
		require.NoError(t, err, "expected artifact %s", path)
	}

	// Metadata observation count matches the processed dataset.
	table, err := dataset.ReadCSV(paths.ProcessedData())
	require.NoError(t, err)

	data, err := os.ReadFile(paths.RunMetadata())
	require.NoError(t, err)
	var meta report.RunMetadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, table.NumRows(), meta.NObs)
	assert.Equal(t, "y ~ treat + x", meta.Formula)
	assert.Equal(t, "cluster", meta.CovType)
	assert.NotEmpty(t, meta.RunID)

	// The coefficient table has the three parameters and recovers the
	// planted treatment effect.
	file, err := os.Open(paths.RegressionCSV())
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Intercept", records[1][0])
	assert.Equal(t, "treat", records[2][0])
	assert.Equal(t, "x", records[3][0])

	// Wide window; the tight recovery check lives in the estimate tests.
	coef, err := strconv.ParseFloat(records[2][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, coef, 0.45)
}

func TestRunDeterministicOutputs(t *testing.T) {
	resetLogger(t)

	configPath := writeParams(t, testParams)
	first := filepath.Join(t.TempDir(), "first")
	second := filepath.Join(t.TempDir(), "second")

	require.NoError(t, Run(context.Background(), Options{ConfigPath: configPath, Outdir: first}))
	require.NoError(t, Run(context.Background(), Options{ConfigPath: configPath, Outdir: second}))

	for _, name := range []string{
		report.NewPaths("").ProcessedData(),
		report.NewPaths("").RegressionCSV(),
	} {
		a, err := os.ReadFile(filepath.Join(first, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, name))
		require.NoError(t, err)
		assert.Equal(t, a, b, "artifact %s differs between identical runs", name)
	}
}

func TestRunExternalDataset(t *testing.T) {
	resetLogger(t)

	configPath := writeParams(t, `seed: 7
n_rows: 400
model:
  formula: "y ~ treat + x"
  cov_type: "HC1"
logging:
  level: "error"
  format: "text"
  output: "stdout"
`)

	dataPath := filepath.Join(t.TempDir(), "panel.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(`firm_id,year,x,treat,y
1,2e3,0.5,0,1.25
1,2001,-1.0,0,0.75
2,2000,1.5,1,3.5
2,2001,0.25,1,2.0
3,2000,-0.5,0,0.25
3,2001,2.0,1,4.25
`), 0644))

	outdir := filepath.Join(t.TempDir(), "outputs")
	err := Run(context.Background(), Options{ConfigPath: configPath, Outdir: outdir, DataPath: dataPath})
	require.NoError(t, err)

	// The processed dataset carries the coerced canonical cells, not
	// the raw input strings.
	table, err := dataset.ReadCSV(report.NewPaths(outdir).ProcessedData())
	require.NoError(t, err)
	require.Equal(t, 6, table.NumRows())
	assert.Equal(t, []string{"1", "2000", "0.5", "0", "1.25"}, table.Records[0])
	assert.Equal(t, "-1", table.Records[1][2])

	data, err := os.ReadFile(report.NewPaths(outdir).RunMetadata())
	require.NoError(t, err)
	var meta report.RunMetadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, 6, meta.NObs)
}

func TestRunFailureCategories(t *testing.T) {
	tests := []struct {
		name     string
		opts     func(t *testing.T) Options
		category apperrors.Category
	}{
		{
			name: "missing config file",
			opts: func(t *testing.T) Options {
				return Options{
					ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
					Outdir:     filepath.Join(t.TempDir(), "outputs"),
				}
			},
			category: apperrors.CategoryConfig,
		},
		{
			name: "invalid cov_type",
			opts: func(t *testing.T) Options {
				params := writeParams(t, `seed: 7
n_rows: 400
model:
  formula: "y ~ treat + x"
  cov_type: "bogus"
`)
				return Options{ConfigPath: params, Outdir: filepath.Join(t.TempDir(), "outputs")}
			},
			category: apperrors.CategoryConfig,
		},
		{
			name: "missing data file",
			opts: func(t *testing.T) Options {
				return Options{
					ConfigPath: writeParams(t, testParams),
					Outdir:     filepath.Join(t.TempDir(), "outputs"),
					DataPath:   filepath.Join(t.TempDir(), "absent.csv"),
				}
			},
			category: apperrors.CategorySchema,
		},
		{
			name: "duplicate panel cell",
			opts: func(t *testing.T) Options {
				dataPath := filepath.Join(t.TempDir(), "panel.csv")
				require.NoError(t, os.WriteFile(dataPath, []byte(`firm_id,year,x,treat,y
1,2000,0.5,0,1.25
1,2000,1.5,1,3.5
`), 0644))
				return Options{
					ConfigPath: writeParams(t, testParams),
					Outdir:     filepath.Join(t.TempDir(), "outputs"),
					DataPath:   dataPath,
				}
			},
			category: apperrors.CategorySchema,
		},
		{
			name: "formula names unknown column",
			opts: func(t *testing.T) Options {
				params := writeParams(t, `seed: 7
n_rows: 400
model:
  formula: "y ~ treat + z"
  cov_type: "HC1"
`)
				return Options{ConfigPath: params, Outdir: filepath.Join(t.TempDir(), "outputs")}
			},
			category: apperrors.CategoryEstimation,
		},
		{
			name: "blocked output directory",
			opts: func(t *testing.T) Options {
				blocker := filepath.Join(t.TempDir(), "blocker")
				require.NoError(t, os.WriteFile(blocker, []byte("file"), 0644))
				return Options{
					ConfigPath: writeParams(t, testParams),
					Outdir:     filepath.Join(blocker, "outputs"),
				}
			},
			category: apperrors.CategoryOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetLogger(t)

			err := Run(context.Background(), tt.opts(t))
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.category),
				"expected category %s, got %s: %v", tt.category, apperrors.CategoryOf(err), err)
		})
	}
}

func TestRunClusterNeedsTwoFirms(t *testing.T) {
	resetLogger(t)

	dataPath := filepath.Join(t.TempDir(), "panel.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(`firm_id,year,x,treat,y
1,2000,0.5,0,1.25
1,2001,1.5,1,3.5
1,2002,-0.5,0,0.25
1,2003,2.0,1,4.25
`), 0644))

	err := Run(context.Background(), Options{
		ConfigPath: writeParams(t, testParams),
		Outdir:     filepath.Join(t.TempDir(), "outputs"),
		DataPath:   dataPath,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CategoryEstimation))
	assert.Contains(t, err.Error(), "at least 2 clusters")
}
