package analysis

import (
	"math"

	"github.com/stemsi/boletim/internal/model"
)

// PassingAverage is the minimum average for StatusApproved.
const PassingAverage = 6.0

// Score computes every row's average and status, preserving row order. A
// grade column holding any non-numeric value fails the whole table with a
// *NonNumericColumnError and no rows.
func Score(t *model.StudentTable) ([]model.ScoredRow, error) {
	for _, col := range model.GradeColumns {
		for _, c := range t.Column(col) {
			if !c.IsNull() && !c.IsNumber() {
				return nil, &NonNumericColumnError{Column: col}
			}
		}
	}

	rows := make([]model.ScoredRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		avg := RoundAverage(mean(row))
		rows = append(rows, model.ScoredRow{
			Name:    row[model.ColumnName].String(),
			Cells:   row.Clone(),
			Average: avg,
			Status:  Classify(avg),
		})
	}
	return rows, nil
}

// Classify maps a rounded average to its status.
func Classify(avg float64) model.Status {
	if avg >= PassingAverage {
		return model.StatusApproved
	}
	return model.StatusFailed
}

// RoundAverage rounds to two decimals, halves away from zero.
func RoundAverage(v float64) float64 {
	return math.Round(v*100) / 100
}

// mean skips null grades; a row without any grade averages 0.
func mean(row model.Row) float64 {
	var (
		sum float64
		n   int
	)
	for _, col := range model.GradeColumns {
		if c := row[col]; c.IsNumber() {
			sum += c.Number
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
