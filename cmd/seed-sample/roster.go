package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"

	"github.com/stemsi/boletim/internal/model"
	"github.com/xuri/excelize/v2"
)

var names = []string{
	"Ana Souza", "Bruno Lima", "Carla Mendes", "Daniel Rocha", "Eduarda Alves",
	"Felipe Costa", "Gabriela Nunes", "Henrique Dias", "Isabela Martins", "João Pereira",
	"Karina Ribeiro", "Lucas Ferreira", "Mariana Gomes", "Nicolas Araújo", "Olívia Barros",
	"Pedro Cardoso", "Queila Teixeira", "Rafael Moreira", "Sofia Castro", "Thiago Pinto",
	"Úrsula Freitas", "Vitor Cavalcanti", "Wesley Ramos", "Yasmin Duarte", "Zeca Monteiro",
	"Alice Carvalho", "Bernardo Azevedo", "Cecília Rezende", "Diego Farias", "Elisa Campos",
	"Fábio Moura", "Giovana Lopes", "Hugo Batista", "Íris Correia", "Júlia Vieira",
	"Kauã Fernandes", "Laura Machado", "Miguel Santana", "Natália Brito", "Otávio Cunha",
}

// student is one generated roster line; Grades follows model.GradeColumns.
type student struct {
	Name   string
	Class  string
	Grades []float64
}

func generateRoster(rng *rand.Rand, n int) []student {
	roster := make([]student, 0, n)
	for i := 0; i < n; i++ {
		name := names[i%len(names)]
		if i >= len(names) {
			name = fmt.Sprintf("%s %d", name, i/len(names)+1)
		}

		// Each student gets a base level so grades correlate across subjects.
		base := 3 + rng.Float64()*6
		grades := make([]float64, len(model.GradeColumns))
		for j := range grades {
			g := base + rng.NormFloat64()*1.2
			grades[j] = math.Round(math.Min(10, math.Max(0, g))*10) / 10
		}

		roster = append(roster, student{
			Name:   name,
			Class:  fmt.Sprintf("%dº ano", 6+i%4),
			Grades: grades,
		})
	}
	return roster
}

func header() []string {
	return append([]string{model.ColumnName, "Turma"}, model.GradeColumns...)
}

func writeCSV(w io.Writer, roster []student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header()); err != nil {
		return err
	}
	for _, s := range roster {
		rec := []string{s.Name, s.Class}
		for _, g := range s.Grades {
			rec = append(rec, strconv.FormatFloat(g, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(path string, roster []student) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", toAny(header())); err != nil {
		return err
	}
	for i, s := range roster {
		row := []interface{}{s.Name, s.Class}
		for _, g := range s.Grades {
			row = append(row, g)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func toAny(values []string) *[]interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return &out
}
