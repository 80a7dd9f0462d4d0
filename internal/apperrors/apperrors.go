// Package apperrors classifies pipeline failures into the categories the
// orchestrator and CLI report: configuration, schema validation, estimation,
// and output I/O. Every category is fatal; the category only drives logging.
package apperrors

import (
	"errors"
	"fmt"
)

// Category identifies which pipeline concern produced an error.
type Category string

const (
	// CategoryConfig covers missing or malformed configuration.
	CategoryConfig Category = "config"
	// CategorySchema covers dataset loading and schema validation failures.
	CategorySchema Category = "schema"
	// CategoryEstimation covers model fitting failures (singular design,
	// missing cluster column, unknown formula terms).
	CategoryEstimation Category = "estimation"
	// CategoryOutput covers artifact writing failures.
	CategoryOutput Category = "output"
	// CategoryUnknown is reported for errors that carry no category.
	CategoryUnknown Category = "unknown"
)

// Error wraps an underlying error with a failure category and the operation
// that produced it.
type Error struct {
	Category Category
	Op       string
	Err      error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Category, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Category, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a category and operation name. A nil err returns nil so
// call sites can wrap unconditionally.
func New(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Category: category, Op: op, Err: err}
}

// Config wraps err as a configuration failure.
func Config(op string, err error) error {
	return New(CategoryConfig, op, err)
}

// Schema wraps err as a schema validation failure.
func Schema(op string, err error) error {
	return New(CategorySchema, op, err)
}

// Estimation wraps err as an estimation failure.
func Estimation(op string, err error) error {
	return New(CategoryEstimation, op, err)
}

// Output wraps err as an output-writing failure.
func Output(op string, err error) error {
	return New(CategoryOutput, op, err)
}

// CategoryOf returns the category of the first *Error in err's chain, or
// CategoryUnknown when none is present.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryUnknown
}

// Is reports whether err carries the given category.
func Is(err error, category Category) bool {
	return CategoryOf(err) == category
}
