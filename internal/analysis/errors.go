package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput marks a sheet that parsed into zero data rows.
var ErrEmptyInput = errors.New("empty input")

// ErrNoColumns marks input with no header row at all.
var ErrNoColumns = errors.New("No columns to parse from file")

// LoadError reports malformed or empty input.
type LoadError struct {
	Format Format
	Cause  error
}

func (e *LoadError) Error() string {
	if errors.Is(e.Cause, ErrEmptyInput) {
		return fmt.Sprintf("Arquivo %s está vazio", e.Format.Label())
	}
	if e.Format == FormatXLSX {
		return "Erro na conversão XLSX: " + e.Cause.Error()
	}
	return "Erro ao carregar CSV: " + e.Cause.Error()
}

func (e *LoadError) Unwrap() error { return e.Cause }

// ValidationError aggregates every violation found in a table.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, " | ")
}

// NonNumericColumnError names a grade column holding non-numeric values.
type NonNumericColumnError struct {
	Column string
}

func (e *NonNumericColumnError) Error() string {
	return fmt.Sprintf("Coluna '%s' não é numérica", e.Column)
}

// UnexpectedError wraps any failure outside the load/validate/score taxonomy.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return "Erro inesperado: " + e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// classify keeps the known error kinds and wraps everything else.
func classify(err error) error {
	var (
		loadErr       *LoadError
		validationErr *ValidationError
		nonNumeric    *NonNumericColumnError
		unexpected    *UnexpectedError
	)
	switch {
	case errors.As(err, &loadErr):
		return loadErr
	case errors.As(err, &validationErr):
		return validationErr
	case errors.As(err, &nonNumeric):
		return nonNumeric
	case errors.As(err, &unexpected):
		return unexpected
	default:
		return &UnexpectedError{Err: err}
	}
}
