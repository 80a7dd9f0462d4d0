package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"panelfit/internal/dataset"
	"panelfit/internal/estimate"
)

const (
	figureWidth  = 6 * vg.Inch
	figureHeight = 3 * vg.Inch
	figureDPI    = 200

	// ciZ is the normal critical value used for the figure's error
	// bars. The tables use the exact t quantile instead.
	ciZ = 1.96
)

// treatParamIndex locates the treatment coefficient in the fitted
// result. When no parameter is named treat, the second parameter (the
// first regressor after the intercept) is used and a warning is logged,
// because the fallback is only correct for formulas of the form
// "y ~ treat + ...".
func treatParamIndex(ctx context.Context, res *estimate.Result) (int, error) {
	if idx := res.ParamIndex(dataset.ColTreat); idx >= 0 {
		return idx, nil
	}
	if len(res.Names) < 2 {
		return 0, fmt.Errorf("cannot locate treatment coefficient among parameters %v", res.Names)
	}
	slog.WarnContext(ctx, "treat parameter not found, falling back to second parameter",
		slog.Any("params", res.Names),
		slog.String("fallback", res.Names[1]))
	return 1, nil
}

// errorBarPoint pairs a single point with its error bar extents.
type errorBarPoint struct {
	plotter.XYs
	plotter.YErrors
}

// SaveTreatEffectFigure renders the treatment coefficient with its
// 1.96*SE error bars to a PNG at path.
func SaveTreatEffectFigure(ctx context.Context, res *estimate.Result, path string) error {
	idx, err := treatParamIndex(ctx, res)
	if err != nil {
		return err
	}

	coef := res.Coef[idx]
	margin := ciZ * res.StdErr[idx]

	data := errorBarPoint{
		XYs:     plotter.XYs{{X: 0, Y: coef}},
		YErrors: plotter.YErrors{{Low: margin, High: margin}},
	}

	p := plot.New()
	p.Title.Text = "Treatment effect (coef ± 1.96*SE)"

	scatter, err := plotter.NewScatter(data)
	if err != nil {
		return fmt.Errorf("build coefficient point: %w", err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(3)

	bars, err := plotter.NewYErrorBars(data)
	if err != nil {
		return fmt.Errorf("build error bars: %w", err)
	}

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(scatter, bars, zero)
	p.NominalX("treat")
	p.X.Min, p.X.Max = -0.5, 0.5

	canvas := vgimg.NewWith(vgimg.UseWH(figureWidth, figureHeight), vgimg.UseDPI(figureDPI))
	p.Draw(draw.New(canvas))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create figure file: %w", err)
	}
	defer file.Close()

	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(file); err != nil {
		return fmt.Errorf("encode figure PNG: %w", err)
	}
	return nil
}
