// Package report writes the run artifacts to the output directory.
//
// A single estimation run produces a fixed artifact layout:
//
//	outputs/
//	  data_processed.csv       validated panel, exact cell strings
//	  tables/
//	    regression.csv         coefficient table
//	    regression.tex         LaTeX tabular for papers
//	    regression.xlsx        coefficient table as a workbook
//	    summary.txt            human-readable fit summary
//	  figures/
//	    treat_effect.png       treatment coefficient with error bars
//	  logs/
//	    run_metadata.json      provenance record for the run
//
// # Artifact Order
//
// Writer.WriteAll writes the dataset first, then the coefficient
// tables, the figure, the summary and last the metadata, stopping at
// the first failure. Files are overwritten in place; nothing is cleaned
// up on error.
//
// # Coefficient Tables
//
// The CSV, LaTeX and workbook tables share the same columns: parameter
// name, Coef., Std.Err., t, P>|t| and the bounds of the 95% confidence
// interval. The CSV keeps full float precision; the LaTeX table rounds
// to four decimals for publication.
//
// # Provenance
//
// run_metadata.json records when the run happened, the Go version and
// platform, the enclosing git commit (or "unknown" outside a
// repository), the observation count, the run ID and the model
// settings. It is written last so its presence marks a complete run.
package report
