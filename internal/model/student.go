package model

import "mime/multipart"

// Column names of the grade sheet. Headers are matched exactly.
const (
	ColumnName    = "Nome"
	ColumnAverage = "Média"
	ColumnStatus  = "Situação"
)

// GradeColumns lists the scored subjects in the order they are validated and averaged.
var GradeColumns = []string{"Matematica", "Portugues", "Historia", "Geografia"}

// Status is the pass/fail classification derived from a student's average.
type Status string

const (
	StatusApproved Status = "Aprovado"
	StatusFailed   Status = "Reprovado"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusApproved, StatusFailed}

// ScoredRow is a student row augmented with its derived average and status.
// Cells keeps every original column, including passthrough ones.
type ScoredRow struct {
	Name    string  `json:"nome"`
	Cells   Row     `json:"-"`
	Average float64 `json:"media"`
	Status  Status  `json:"situacao"`
}

// Approved reports whether the student passed.
func (r ScoredRow) Approved() bool {
	return r.Status == StatusApproved
}

// Summary aggregates the scored rows of one run.
type Summary struct {
	Total        int     `json:"total"`
	Approved     int     `json:"aprovados"`
	Failed       int     `json:"reprovados"`
	ClassAverage float64 `json:"media_turma"`
}

// Summarize counts students per status. ClassAverage is the plain mean of the
// already rounded row averages.
func Summarize(rows []ScoredRow) Summary {
	s := Summary{Total: len(rows)}
	if len(rows) == 0 {
		return s
	}

	var sum float64
	for _, r := range rows {
		switch r.Status {
		case StatusApproved:
			s.Approved++
		case StatusFailed:
			s.Failed++
		}
		sum += r.Average
	}
	s.ClassAverage = sum / float64(len(rows))
	return s
}

// UploadForm is the multipart payload of a grade sheet upload.
type UploadForm struct {
	Arquivo *multipart.FileHeader `form:"arquivo" binding:"required"`
}
