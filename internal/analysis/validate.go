package analysis

import (
	"fmt"

	"github.com/stemsi/boletim/internal/model"
)

// Violation messages reported by Validate.
const (
	msgMissingNames   = "Existem alunos sem nome"
	msgDuplicateNames = "Existem nomes duplicados"
	msgNegativeGrades = "Existem notas negativas"
)

// Validate runs every structural and semantic check and returns a
// *ValidationError listing all violations, in check order. The table is not
// modified.
func Validate(t *model.StudentTable) error {
	var violations []string

	hasName := t.HasColumn(model.ColumnName)
	if !hasName {
		violations = append(violations, missingColumn(model.ColumnName))
	}

	hasGrades := true
	for _, col := range model.GradeColumns {
		if !t.HasColumn(col) {
			hasGrades = false
			violations = append(violations, missingColumn(col))
		}
	}

	if hasName {
		names := t.Column(model.ColumnName)
		if anyNull(names) {
			violations = append(violations, msgMissingNames)
		}
		if hasDuplicates(names) {
			violations = append(violations, msgDuplicateNames)
		}
	}

	// A missing grade column was already reported above.
	if hasGrades && hasNegativeGrade(t) {
		violations = append(violations, msgNegativeGrades)
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func missingColumn(name string) string {
	return fmt.Sprintf("Coluna '%s' ausente", name)
}

func anyNull(cells []model.Cell) bool {
	for _, c := range cells {
		if c.IsNull() {
			return true
		}
	}
	return false
}

// hasDuplicates compares non-null names by their text.
func hasDuplicates(cells []model.Cell) bool {
	seen := make(map[string]struct{}, len(cells))
	for _, c := range cells {
		if c.IsNull() {
			continue
		}
		if _, ok := seen[c.Raw]; ok {
			return true
		}
		seen[c.Raw] = struct{}{}
	}
	return false
}

// hasNegativeGrade only looks at numeric cells; text cells are the scorer's concern.
func hasNegativeGrade(t *model.StudentTable) bool {
	for _, row := range t.Rows {
		for _, col := range model.GradeColumns {
			if c := row[col]; c.IsNumber() && c.Number < 0 {
				return true
			}
		}
	}
	return false
}
