package generate

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panelfit/internal/dataset"
)

func TestSyntheticPanelDeterministic(t *testing.T) {
	first, err := SyntheticPanel(2000, 42)
	require.NoError(t, err)

	second, err := SyntheticPanel(2000, 42)
	require.NoError(t, err)

	assert.Equal(t, first.Columns, second.Columns)
	assert.Equal(t, first.Records, second.Records)
}

func TestSyntheticPanelSeedChangesData(t *testing.T) {
	first, err := SyntheticPanel(500, 1)
	require.NoError(t, err)

	second, err := SyntheticPanel(500, 2)
	require.NoError(t, err)

	assert.NotEqual(t, first.Records, second.Records)
}

func TestSyntheticPanelShape(t *testing.T) {
	table, err := SyntheticPanel(5000, 42)
	require.NoError(t, err)

	assert.Equal(t, dataset.Columns(), table.Columns)

	// Collapsing to one row per (firm_id, year) shrinks the table: at
	// most n_firms * 11 distinct cells exist.
	assert.Less(t, table.NumRows(), 5000)
	assert.Greater(t, table.NumRows(), 0)
}

func TestSyntheticPanelCellValues(t *testing.T) {
	table, err := SyntheticPanel(3000, 7)
	require.NoError(t, err)

	// sqrt(3000) ~ 54 firms
	nFirms := int64(54)

	seen := make(map[[2]int64]bool)
	treated, untreated := 0, 0
	for _, rec := range table.Records {
		require.Len(t, rec, 5)

		firm, err := strconv.ParseInt(rec[0], 10, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, firm, int64(0))
		assert.Less(t, firm, nFirms)

		year, err := strconv.ParseInt(rec[1], 10, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, year, int64(2010))
		assert.LessOrEqual(t, year, int64(2020))

		_, err = strconv.ParseFloat(rec[2], 64)
		require.NoError(t, err)
		_, err = strconv.ParseFloat(rec[4], 64)
		require.NoError(t, err)

		switch rec[3] {
		case "0":
			untreated++
		case "1":
			treated++
		default:
			t.Fatalf("treat cell %q is not 0 or 1", rec[3])
		}

		key := [2]int64{firm, year}
		assert.False(t, seen[key], "duplicate cell firm=%d year=%d", firm, year)
		seen[key] = true
	}

	// Both arms must be populated or the regression is degenerate
	assert.Greater(t, treated, 0)
	assert.Greater(t, untreated, 0)
}

func TestSyntheticPanelFirmFloor(t *testing.T) {
	// sqrt(100) = 10, well under the floor of 50 firms
	table, err := SyntheticPanel(100, 3)
	require.NoError(t, err)

	for _, rec := range table.Records {
		firm, err := strconv.ParseInt(rec[0], 10, 64)
		require.NoError(t, err)
		assert.Less(t, firm, int64(50))
	}
}

func TestSyntheticPanelRejectsNonPositiveRows(t *testing.T) {
	_, err := SyntheticPanel(0, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n_rows must be at least 1")

	_, err = SyntheticPanel(-10, 42)
	require.Error(t, err)
}

func TestAggregate(t *testing.T) {
	firmID := []int64{5, 1, 5, 1}
	year := []int64{2012, 2010, 2012, 2011}
	x := []float64{1.0, 4.0, 3.0, -2.0}
	treat := []int64{0, 1, 1, 0}
	y := []float64{10.0, 8.0, 20.0, -4.0}

	panel := aggregate(firmID, year, x, treat, y)

	require.Equal(t, 3, panel.NumRows())

	// Sorted by firm then year; duplicates averaged, treat is the max
	assert.Equal(t, dataset.Row{FirmID: 1, Year: 2010, X: 4.0, Treat: 1, Y: 8.0}, panel.Rows[0])
	assert.Equal(t, dataset.Row{FirmID: 1, Year: 2011, X: -2.0, Treat: 0, Y: -4.0}, panel.Rows[1])
	assert.Equal(t, dataset.Row{FirmID: 5, Year: 2012, X: 2.0, Treat: 1, Y: 15.0}, panel.Rows[2])
}
