// Package schema validates raw tables against the firm-year panel
// schema and coerces them into typed panels. All checks are collected
// lazily so one pass reports every violation.
package schema

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"panelfit/internal/dataset"
)

// Violation describes a single failed check, addressed by table
// coordinates. Row is the 1-based data row (the header does not
// count); zero marks a table-level violation.
type Violation struct {
	Row    int
	Column string
	Check  string
	Detail string
}

func (v Violation) String() string {
	switch {
	case v.Row == 0 && v.Column == "":
		return v.Detail
	case v.Row == 0:
		return fmt.Sprintf("column %q: %s", v.Column, v.Detail)
	case v.Column == "":
		return fmt.Sprintf("row %d: %s", v.Row, v.Detail)
	default:
		return fmt.Sprintf("row %d, column %q: %s", v.Row, v.Column, v.Detail)
	}
}

// ValidationError aggregates every violation found in one pass over
// the table.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema validation failed with %d violation(s):", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n  - ")
		b.WriteString(v.String())
	}
	return b.String()
}

var rowValidator = newRowValidator()

func newRowValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("finite", isFinite)

	// Use JSON tag names in violation coordinates
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate checks table against the firm-year panel schema and coerces
// it into a typed panel. Validation is lazy: the whole table is
// examined and every violation comes back in one ValidationError.
//
// The schema is strict. The header must contain exactly the five panel
// columns, in any order; integer cells accept integral floats ("1.0");
// firm_id must be non-negative, year within [2000, 2035], treat 0 or 1,
// x and y finite; (firm_id, year) pairs must be unique and the table
// non-empty.
func Validate(table *dataset.Table) (*dataset.Panel, error) {
	var violations []Violation

	colIdx := make(map[string]int, len(table.Columns))
	for i, col := range table.Columns {
		colIdx[col] = i
	}

	known := make(map[string]bool, 5)
	for _, col := range dataset.Columns() {
		known[col] = true
		if _, ok := colIdx[col]; !ok {
			violations = append(violations, Violation{
				Column: col,
				Check:  "column_missing",
				Detail: "required column is missing",
			})
		}
	}
	for _, col := range table.Columns {
		if !known[col] {
			violations = append(violations, Violation{
				Column: col,
				Check:  "column_unknown",
				Detail: "column is not part of the schema",
			})
		}
	}

	if len(table.Records) == 0 {
		violations = append(violations, Violation{
			Check:  "not_empty",
			Detail: "table has no data rows",
		})
	}

	rows := make([]dataset.Row, 0, len(table.Records))
	seen := make(map[[2]int64]int, len(table.Records))

	for i, rec := range table.Records {
		rowNum := i + 1
		cellOK := make(map[string]bool, 5)

		cell := func(col string) (string, bool) {
			idx, present := colIdx[col]
			if !present || idx >= len(rec) {
				return "", false
			}
			return rec[idx], true
		}

		var row dataset.Row

		if raw, present := cell(dataset.ColFirmID); present {
			if v, detail := coerceInt(raw); detail == "" {
				row.FirmID = v
				cellOK[dataset.ColFirmID] = true
			} else {
				violations = append(violations, Violation{Row: rowNum, Column: dataset.ColFirmID, Check: "coerce", Detail: detail})
			}
		}
		if raw, present := cell(dataset.ColYear); present {
			if v, detail := coerceInt(raw); detail == "" {
				row.Year = v
				cellOK[dataset.ColYear] = true
			} else {
				violations = append(violations, Violation{Row: rowNum, Column: dataset.ColYear, Check: "coerce", Detail: detail})
			}
		}
		if raw, present := cell(dataset.ColX); present {
			if v, detail := coerceFloat(raw); detail == "" {
				row.X = v
				cellOK[dataset.ColX] = true
			} else {
				violations = append(violations, Violation{Row: rowNum, Column: dataset.ColX, Check: "coerce", Detail: detail})
			}
		}
		if raw, present := cell(dataset.ColTreat); present {
			if v, detail := coerceInt(raw); detail == "" {
				row.Treat = v
				cellOK[dataset.ColTreat] = true
			} else {
				violations = append(violations, Violation{Row: rowNum, Column: dataset.ColTreat, Check: "coerce", Detail: detail})
			}
		}
		if raw, present := cell(dataset.ColY); present {
			if v, detail := coerceFloat(raw); detail == "" {
				row.Y = v
				cellOK[dataset.ColY] = true
			} else {
				violations = append(violations, Violation{Row: rowNum, Column: dataset.ColY, Check: "coerce", Detail: detail})
			}
		}

		// Bound checks run on every coerced cell, even when a sibling
		// cell failed to coerce. Field errors for uncoerced cells are
		// dropped so a zero placeholder cannot fake a violation.
		if err := rowValidator.Struct(row); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return nil, fmt.Errorf("validate row %d: %w", rowNum, err)
			}
			for _, fe := range verrs {
				if !cellOK[fe.Field()] {
					continue
				}
				violations = append(violations, Violation{
					Row:    rowNum,
					Column: fe.Field(),
					Check:  fe.Tag(),
					Detail: formatFieldDetail(fe),
				})
			}
		}

		if cellOK[dataset.ColFirmID] && cellOK[dataset.ColYear] {
			key := [2]int64{row.FirmID, row.Year}
			if first, dup := seen[key]; dup {
				violations = append(violations, Violation{
					Row:    rowNum,
					Column: "firm_id,year",
					Check:  "unique",
					Detail: fmt.Sprintf("duplicate (firm_id, year) = (%d, %d), first seen at row %d", row.FirmID, row.Year, first),
				})
			} else {
				seen[key] = rowNum
			}
		}

		if len(cellOK) == 5 {
			rows = append(rows, row)
		}
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	slog.Debug("table passed schema validation", slog.Int("rows", len(rows)))

	return &dataset.Panel{Rows: rows}, nil
}

// coerceInt parses an integer cell. Integral floats ("1.0", "2e3")
// coerce losslessly; anything else is a violation.
func coerceInt(s string) (int64, string) {
	if s == "" {
		return 0, "empty cell"
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, fmt.Sprintf("cannot coerce %q to int", s)
	}
	return int64(f), ""
}

// coerceFloat parses a float cell. NaN and Inf parse here and are
// caught by the finite check with row coordinates.
func coerceFloat(s string) (float64, string) {
	if s == "" {
		return 0, "empty cell"
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("cannot coerce %q to float", s)
	}
	return v, ""
}

func formatFieldDetail(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be at least %s (got %v)", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be at most %s (got %v)", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s] (got %v)", fe.Param(), fe.Value())
	case "finite":
		return fmt.Sprintf("non-finite value %v", fe.Value())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
