package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"text/template"

	"github.com/xuri/excelize/v2"

	"panelfit/internal/dataset"
	"panelfit/internal/estimate"
)

// coefficientHeader labels the shared table layout. The first cell is
// empty because the parameter name acts as the row index.
var coefficientHeader = []string{"", "Coef.", "Std.Err.", "t", "P>|t|", "[0.025", "0.975]"}

// coefficientRow is one parameter's line in the coefficient table.
type coefficientRow struct {
	Name   string
	Coef   float64
	StdErr float64
	TStat  float64
	PValue float64
	CILow  float64
	CIHigh float64
}

// coefficientRows flattens a fitted result into one row per parameter,
// in estimation order (intercept first).
func coefficientRows(res *estimate.Result) []coefficientRow {
	rows := make([]coefficientRow, len(res.Names))
	for i, name := range res.Names {
		rows[i] = coefficientRow{
			Name:   name,
			Coef:   res.Coef[i],
			StdErr: res.StdErr[i],
			TStat:  res.TStat[i],
			PValue: res.PValue[i],
			CILow:  res.CILow[i],
			CIHigh: res.CIHigh[i],
		}
	}
	return rows
}

// WriteCoefficientCSV writes the coefficient table to path at full
// float precision.
func WriteCoefficientCSV(res *estimate.Result, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create regression CSV: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(coefficientHeader); err != nil {
		return fmt.Errorf("write regression CSV header: %w", err)
	}

	for _, row := range coefficientRows(res) {
		record := []string{
			row.Name,
			dataset.FormatFloat(row.Coef),
			dataset.FormatFloat(row.StdErr),
			dataset.FormatFloat(row.TStat),
			dataset.FormatFloat(row.PValue),
			dataset.FormatFloat(row.CILow),
			dataset.FormatFloat(row.CIHigh),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write regression CSV row %s: %w", row.Name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// texTemplate renders the coefficient table as a booktabs tabular.
// Floats are rounded to four decimals for publication.
const texTemplate = `\begin{tabular}{lrrrrrr}
\toprule
 & Coef. & Std.Err. & t & P>|t| & [0.025 & 0.975] \\
\midrule
{{range .}}{{.Name}} & {{f .Coef}} & {{f .StdErr}} & {{f .TStat}} & {{f .PValue}} & {{f .CILow}} & {{f .CIHigh}} \\
{{end}}\bottomrule
\end{tabular}
`

// WriteCoefficientTex writes the coefficient table to path as a LaTeX
// tabular suitable for \input in a paper.
func WriteCoefficientTex(res *estimate.Result, path string) error {
	funcMap := template.FuncMap{
		"f": func(v float64) string { return fmt.Sprintf("%.4f", v) },
	}

	tmpl, err := template.New("regression").Funcs(funcMap).Parse(texTemplate)
	if err != nil {
		return fmt.Errorf("parse LaTeX template: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create regression LaTeX file: %w", err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, coefficientRows(res)); err != nil {
		return fmt.Errorf("render regression LaTeX table: %w", err)
	}
	return nil
}

// WriteCoefficientXLSX writes the coefficient table to path as a
// single-sheet workbook with native numeric cells.
func WriteCoefficientXLSX(res *estimate.Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "regression"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, label := range coefficientHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("resolve workbook header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return fmt.Errorf("write workbook header cell %s: %w", cell, err)
		}
	}

	for i, row := range coefficientRows(res) {
		values := []interface{}{row.Name, row.Coef, row.StdErr, row.TStat, row.PValue, row.CILow, row.CIHigh}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("resolve workbook cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write workbook cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save regression workbook: %w", err)
	}
	return nil
}
