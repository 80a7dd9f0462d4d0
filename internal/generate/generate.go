// Package generate produces the synthetic firm-year panel the pipeline
// runs on when no external dataset is supplied. The data-generating
// process embeds a known treatment effect so the downstream regression
// has a ground truth to recover.
package generate

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"panelfit/internal/dataset"
)

// Data-generating process constants. trueTreatmentEffect is the
// quantity the regression should recover.
const (
	trueTreatmentEffect = 0.5
	xEffect             = 0.8
	firmEffectScale     = 0.05
	yearEffectScale     = 0.02
	treatXWeight        = 0.3
	treatFirmWeight     = 0.2

	firstYear = 2010
	lastYear  = 2020
	minFirms  = 50
)

// SyntheticPanel draws nRows firm-year observations under seed and
// collapses them to one row per (firm_id, year), so the returned table
// usually has fewer records than nRows. Draws are column-wise in a
// fixed order; a given seed always yields the same table.
func SyntheticPanel(nRows int, seed int64) (*dataset.Table, error) {
	if nRows < 1 {
		return nil, fmt.Errorf("n_rows must be at least 1, got %d", nRows)
	}

	src := rand.NewSource(uint64(seed))
	rng := rand.New(src)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: src}

	nFirms := int(math.Sqrt(float64(nRows)))
	if nFirms < minFirms {
		nFirms = minFirms
	}
	nYears := lastYear - firstYear + 1

	firmID := make([]int64, nRows)
	for i := range firmID {
		firmID[i] = int64(rng.Intn(nFirms))
	}

	year := make([]int64, nRows)
	for i := range year {
		year[i] = int64(firstYear + rng.Intn(nYears))
	}

	x := make([]float64, nRows)
	for i := range x {
		x[i] = normal.Rand()
	}

	// Treatment probability rises with x and a firm-level offset, so
	// assignment is confounded rather than purely random.
	treat := make([]int64, nRows)
	for i := range treat {
		p := 1 / (1 + math.Exp(-(treatXWeight*x[i] + float64(firmID[i]%7-3)*treatFirmWeight)))
		if uniform.Rand() < p {
			treat[i] = 1
		}
	}

	eps := make([]float64, nRows)
	for i := range eps {
		eps[i] = normal.Rand()
	}

	// Year effects center on the mean of the drawn years, not the
	// midpoint of the year range.
	var yearMean float64
	for _, yr := range year {
		yearMean += float64(yr)
	}
	yearMean /= float64(nRows)

	y := make([]float64, nRows)
	for i := range y {
		firmFE := float64(firmID[i]%10-5) * firmEffectScale
		yearFE := (float64(year[i]) - yearMean) * yearEffectScale
		y[i] = trueTreatmentEffect*float64(treat[i]) + xEffect*x[i] + firmFE + yearFE + eps[i]
	}

	panel := aggregate(firmID, year, x, treat, y)

	slog.Debug("generated synthetic panel",
		slog.Int("n_rows", nRows),
		slog.Int("n_firms", nFirms),
		slog.Int("panel_rows", panel.NumRows()))

	return panel.Table(), nil
}

type cellKey struct {
	firm int64
	year int64
}

type cellAgg struct {
	sumX  float64
	sumY  float64
	treat int64
	n     int
}

// aggregate collapses duplicate (firm_id, year) draws: x and y average,
// treat takes the maximum. Rows come back sorted by firm then year.
func aggregate(firmID, year []int64, x []float64, treat []int64, y []float64) *dataset.Panel {
	cells := make(map[cellKey]*cellAgg, len(firmID))
	for i := range firmID {
		key := cellKey{firm: firmID[i], year: year[i]}
		agg := cells[key]
		if agg == nil {
			agg = &cellAgg{}
			cells[key] = agg
		}
		agg.sumX += x[i]
		agg.sumY += y[i]
		if treat[i] > agg.treat {
			agg.treat = treat[i]
		}
		agg.n++
	}

	keys := make([]cellKey, 0, len(cells))
	for key := range cells {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].firm != keys[j].firm {
			return keys[i].firm < keys[j].firm
		}
		return keys[i].year < keys[j].year
	})

	rows := make([]dataset.Row, len(keys))
	for i, key := range keys {
		agg := cells[key]
		rows[i] = dataset.Row{
			FirmID: key.firm,
			Year:   key.year,
			X:      agg.sumX / float64(agg.n),
			Treat:  agg.treat,
			Y:      agg.sumY / float64(agg.n),
		}
	}
	return &dataset.Panel{Rows: rows}
}
