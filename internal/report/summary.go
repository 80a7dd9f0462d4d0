package report

import (
	"fmt"
	"os"
	"time"

	"panelfit/internal/estimate"
)

// WriteSummary writes a human-readable fit summary to path.
func WriteSummary(res *estimate.Result, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "panelfit OLS Estimation - Summary Report\n")
	fmt.Fprintf(file, "========================================\n\n")
	fmt.Fprintf(file, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(file, "MODEL\n")
	fmt.Fprintf(file, "-----\n")
	fmt.Fprintf(file, "Formula: %s\n", res.Formula)
	fmt.Fprintf(file, "Covariance: %s\n", res.CovType)
	if res.NClusters > 0 {
		fmt.Fprintf(file, "Clusters (firm_id): %d\n", res.NClusters)
	}
	fmt.Fprintf(file, "Observations: %d\n", res.NObs)
	fmt.Fprintf(file, "Degrees of freedom: %d\n", res.DF)
	fmt.Fprintf(file, "R-squared: %.4f\n", res.R2)
	fmt.Fprintf(file, "Adj. R-squared: %.4f\n\n", res.AdjR2)

	fmt.Fprintf(file, "COEFFICIENTS\n")
	fmt.Fprintf(file, "------------\n")
	fmt.Fprintf(file, "%-12s %10s %10s %10s %10s %10s %10s\n",
		"", "coef", "std err", "t", "P>|t|", "[0.025", "0.975]")
	for _, row := range coefficientRows(res) {
		fmt.Fprintf(file, "%-12s %10.4f %10.4f %10.4f %10.4f %10.4f %10.4f\n",
			row.Name, row.Coef, row.StdErr, row.TStat, row.PValue, row.CILow, row.CIHigh)
	}

	return nil
}
