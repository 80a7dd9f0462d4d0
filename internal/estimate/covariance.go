package estimate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"panelfit/internal/dataset"
)

// covariance is an estimated parameter covariance along with the
// degrees of freedom its t statistics use.
type covariance struct {
	matrix    *mat.Dense
	df        int
	nClusters int
}

// computeCovariance dispatches on the covariance keyword. X is the
// design matrix, xtxInv its Gram inverse, resid the OLS residuals. The
// frame is consulted only for cluster groups.
func computeCovariance(covType string, X, xtxInv *mat.Dense, resid *mat.VecDense, frame *dataset.Frame) (*covariance, error) {
	switch covType {
	case "nonrobust", "ordinary":
		return classicalCovariance(X, xtxInv, resid), nil
	case "HC0", "HC1", "HC2", "HC3":
		return hcCovariance(covType, X, xtxInv, resid), nil
	case "cluster":
		groups, ok := frame.Column(dataset.ColFirmID)
		if !ok {
			return nil, fmt.Errorf("cluster covariance requires the %s column", dataset.ColFirmID)
		}
		return clusterCovariance(X, xtxInv, resid, groups)
	default:
		return nil, fmt.Errorf("unknown cov_type %q", covType)
	}
}

// classicalCovariance is the homoskedastic sigma^2 (X'X)^-1 estimator.
func classicalCovariance(X, xtxInv *mat.Dense, resid *mat.VecDense) *covariance {
	n, k := X.Dims()
	sigma2 := mat.Dot(resid, resid) / float64(n-k)

	var cov mat.Dense
	cov.Scale(sigma2, xtxInv)

	return &covariance{matrix: &cov, df: n - k}
}

// hcCovariance builds the White sandwich (X'X)^-1 X'WX (X'X)^-1 with W
// a diagonal of reweighted squared residuals. HC0 uses e^2 as is, HC1
// scales the whole matrix by n/(n-k), HC2 and HC3 divide e^2 by (1-h)
// and (1-h)^2 with h the hat-matrix diagonal.
func hcCovariance(variant string, X, xtxInv *mat.Dense, resid *mat.VecDense) *covariance {
	n, k := X.Dims()

	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		e2 := resid.AtVec(i) * resid.AtVec(i)
		switch variant {
		case "HC2":
			weights[i] = e2 / (1 - leverage(X, xtxInv, i))
		case "HC3":
			h := leverage(X, xtxInv, i)
			weights[i] = e2 / ((1 - h) * (1 - h))
		default:
			weights[i] = e2
		}
	}

	wx := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			wx.Set(i, j, weights[i]*X.At(i, j))
		}
	}

	var meat mat.Dense
	meat.Mul(X.T(), wx)

	var half mat.Dense
	half.Mul(xtxInv, &meat)
	var cov mat.Dense
	cov.Mul(&half, xtxInv)

	if variant == "HC1" {
		cov.Scale(float64(n)/float64(n-k), &cov)
	}

	return &covariance{matrix: &cov, df: n - k}
}

// leverage returns h_i = x_i' (X'X)^-1 x_i for design row i.
func leverage(X, xtxInv *mat.Dense, i int) float64 {
	_, k := X.Dims()

	xi := mat.NewVecDense(k, nil)
	for j := 0; j < k; j++ {
		xi.SetVec(j, X.At(i, j))
	}

	tmp := mat.NewVecDense(k, nil)
	tmp.MulVec(xtxInv, xi)
	return mat.Dot(xi, tmp)
}

// clusterCovariance is the CR1 cluster-robust estimator. Each group
// contributes the outer product of its score sum X_g'e_g; the total is
// scaled by G/(G-1) * (n-1)/(n-k) and t statistics use G-1 degrees of
// freedom. Groups are keyed by value, so row order does not matter.
func clusterCovariance(X, xtxInv *mat.Dense, resid *mat.VecDense, groups []float64) (*covariance, error) {
	n, k := X.Dims()
	if len(groups) != n {
		return nil, fmt.Errorf("cluster groups length %d does not match %d observations", len(groups), n)
	}

	// Accumulate per-cluster score sums in first-seen order so the
	// floating-point summation below is deterministic.
	idx := make(map[float64]int, 64)
	var scores [][]float64
	for i := 0; i < n; i++ {
		pos, ok := idx[groups[i]]
		if !ok {
			pos = len(scores)
			idx[groups[i]] = pos
			scores = append(scores, make([]float64, k))
		}
		e := resid.AtVec(i)
		for j := 0; j < k; j++ {
			scores[pos][j] += e * X.At(i, j)
		}
	}

	nClusters := len(scores)
	if nClusters < 2 {
		return nil, fmt.Errorf("cluster covariance needs at least 2 clusters, got %d", nClusters)
	}

	meat := mat.NewDense(k, k, nil)
	for _, s := range scores {
		for r := 0; r < k; r++ {
			for c := 0; c < k; c++ {
				meat.Set(r, c, meat.At(r, c)+s[r]*s[c])
			}
		}
	}

	var half mat.Dense
	half.Mul(xtxInv, meat)
	var cov mat.Dense
	cov.Mul(&half, xtxInv)

	factor := float64(nClusters) / float64(nClusters-1) * float64(n-1) / float64(n-k)
	cov.Scale(factor, &cov)

	return &covariance{matrix: &cov, df: nClusters - 1, nClusters: nClusters}, nil
}
