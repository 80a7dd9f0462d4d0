package estimate

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"panelfit/internal/dataset"
)

// Result holds the fitted coefficient table and fit statistics. The
// per-parameter slices are aligned by position with Names.
type Result struct {
	Names  []string
	Coef   []float64
	StdErr []float64
	TStat  []float64
	PValue []float64
	CILow  []float64
	CIHigh []float64

	NObs      int
	DF        int // degrees of freedom of the t distribution
	R2        float64
	AdjR2     float64
	Formula   string
	CovType   string
	NClusters int // 0 unless cluster covariance
}

// ParamIndex returns the position of name in Names, or -1 when absent.
func (r *Result) ParamIndex(name string) int {
	for i, n := range r.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Fit estimates formula on frame by ordinary least squares and applies
// the covType covariance estimator to the standard errors. Cluster
// covariance groups by firm_id and fails when that column is absent
// from the frame.
func Fit(frame *dataset.Frame, formula, covType string) (*Result, error) {
	f, err := ParseFormula(formula)
	if err != nil {
		return nil, err
	}

	y, X, err := designMatrix(frame, f)
	if err != nil {
		return nil, err
	}

	n, k := X.Dims()
	if n <= k {
		return nil, fmt.Errorf("model has %d parameters but only %d observations", k, n)
	}

	var xtx mat.Dense
	xtx.Mul(X.T(), X)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("singular design matrix for formula %q: %w", formula, err)
	}

	var xty mat.VecDense
	xty.MulVec(X.T(), y)

	beta := mat.NewVecDense(k, nil)
	beta.MulVec(&xtxInv, &xty)

	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(X, beta)

	resid := mat.NewVecDense(n, nil)
	resid.SubVec(y, fitted)

	rss := mat.Dot(resid, resid)

	ybar := mat.Sum(y) / float64(n)
	tss := 0.0
	for i := 0; i < n; i++ {
		d := y.AtVec(i) - ybar
		tss += d * d
	}

	r2, adjR2 := math.NaN(), math.NaN()
	if tss > 0 {
		r2 = 1 - rss/tss
		adjR2 = 1 - (1-r2)*float64(n-1)/float64(n-k)
	}

	cov, err := computeCovariance(covType, X, &xtxInv, resid, frame)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Names:     f.ParamNames(),
		Coef:      make([]float64, k),
		StdErr:    make([]float64, k),
		TStat:     make([]float64, k),
		PValue:    make([]float64, k),
		CILow:     make([]float64, k),
		CIHigh:    make([]float64, k),
		NObs:      n,
		DF:        cov.df,
		R2:        r2,
		AdjR2:     adjR2,
		Formula:   formula,
		CovType:   covType,
		NClusters: cov.nClusters,
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(cov.df)}
	tCrit := tDist.Quantile(0.975)

	for j := 0; j < k; j++ {
		b := beta.AtVec(j)
		se := math.Sqrt(cov.matrix.At(j, j))

		res.Coef[j] = b
		res.StdErr[j] = se
		res.TStat[j] = b / se
		res.PValue[j] = 2 * tDist.Survival(math.Abs(b/se))
		res.CILow[j] = b - tCrit*se
		res.CIHigh[j] = b + tCrit*se
	}

	slog.Debug("fitted OLS model",
		slog.String("formula", formula),
		slog.String("cov_type", covType),
		slog.Int("n_obs", n),
		slog.Int("n_params", k),
		slog.Float64("r_squared", r2))

	return res, nil
}

// designMatrix assembles the response vector and the n by k design with
// a leading column of ones. Every formula term must name a frame column.
func designMatrix(frame *dataset.Frame, f *Formula) (*mat.VecDense, *mat.Dense, error) {
	n := frame.Len()
	if n == 0 {
		return nil, nil, fmt.Errorf("cannot fit a model on an empty frame")
	}

	yCol, ok := frame.Column(f.Response)
	if !ok {
		return nil, nil, fmt.Errorf("formula response %q is not a column in the data", f.Response)
	}

	k := len(f.Terms) + 1
	X := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
	}
	for j, term := range f.Terms {
		col, ok := frame.Column(term)
		if !ok {
			return nil, nil, fmt.Errorf("formula term %q is not a column in the data", term)
		}
		X.SetCol(j+1, col)
	}

	y := mat.NewVecDense(n, append([]float64(nil), yCol...))
	return y, X, nil
}
