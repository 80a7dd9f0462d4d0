// Package estimate fits ordinary least squares regressions on panel
// data frames and reports coefficient tables with configurable
// covariance estimators.
//
// # Model
//
// Models are specified with a formula string of the form
//
//	y ~ treat + x
//
// with one response on the left of ~ and plus-separated regressor
// terms on the right. An intercept (parameter name "Intercept") is
// always included. Terms must name columns of the input frame;
// transformations and interactions are not supported.
//
// # Estimation
//
// Coefficients come from the normal equations,
//
//	beta = (X'X)^-1 X'y
//
// with the Gram inverse computed explicitly so a singular (collinear)
// design surfaces as an error rather than a silently dropped term.
//
// # Covariance Estimators
//
// The covariance of beta is selected by keyword:
//
//   - nonrobust, ordinary: classical sigma^2 (X'X)^-1
//   - HC0..HC3: White sandwich estimators; HC1 applies the n/(n-k)
//     small-sample scale, HC2 and HC3 reweight squared residuals by
//     1/(1-h) and 1/(1-h)^2 with h the diagonal of the hat matrix
//   - cluster: cluster-robust (CR1) grouped by firm_id with the
//     G/(G-1) * (n-1)/(n-k) small-sample factor
//
// t statistics, two-sided p-values and 95% confidence intervals use a
// Student's t distribution with n-k degrees of freedom, or G-1 under
// clustering.
//
// # Usage
//
//	res, err := estimate.Fit(panel.Frame(), "y ~ treat + x", "cluster")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	idx := res.ParamIndex("treat")
//	fmt.Printf("treat = %.4f (SE %.4f)\n", res.Coef[idx], res.StdErr[idx])
package estimate
