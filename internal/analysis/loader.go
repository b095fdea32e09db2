package analysis

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/stemsi/boletim/internal/model"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// record is one raw input line with its 1-based position for error messages.
type record struct {
	line   int
	fields []string
}

// Load parses an uploaded sheet into a table. The first non-blank record is
// the header. Any failure is returned as a *LoadError.
func Load(data []byte, format Format) (*model.StudentTable, error) {
	var (
		records []record
		err     error
	)

	switch format {
	case FormatCSV:
		records, err = readCSV(data)
	case FormatXLSX:
		records, err = readXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, &LoadError{Format: format, Cause: err}
	}

	table, err := buildTable(records, format == FormatCSV)
	if err != nil {
		return nil, &LoadError{Format: format, Cause: err}
	}
	if table.Len() == 0 {
		return nil, &LoadError{Format: format, Cause: ErrEmptyInput}
	}
	return table, nil
}

func readCSV(data []byte) ([]record, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("'utf-8' codec can't decode the file contents")
	}

	// BOMOverride drops the byte order mark spreadsheet exports put in front of the header.
	src := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	var records []record
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		records = append(records, record{line: line, fields: fields})
	}
	return records, nil
}

func readXLSX(data []byte) ([]record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}

	records := make([]record, 0, len(rows))
	for i, row := range rows {
		records = append(records, record{line: i + 1, fields: row})
	}
	return records, nil
}

// buildTable maps records onto the header. With strictWidth a record longer
// than the header is an error; otherwise the header grows unnamed columns.
func buildTable(records []record, strictWidth bool) (*model.StudentTable, error) {
	records = dropBlank(records)
	if len(records) == 0 {
		return nil, ErrNoColumns
	}

	header := normalizeHeader(records[0].fields)
	table := &model.StudentTable{Rows: make([]model.Row, 0, len(records)-1)}

	for _, rec := range records[1:] {
		if len(rec.fields) > len(header) {
			if strictWidth {
				return nil, fmt.Errorf("expected %d fields in line %d, saw %d",
					len(header), rec.line, len(rec.fields))
			}
			header = extendHeader(header, len(rec.fields))
		}

		row := make(model.Row, len(header))
		for i, name := range header {
			if i < len(rec.fields) {
				row[name] = model.NewCell(rec.fields[i])
			} else {
				row[name] = model.Cell{}
			}
		}
		table.Rows = append(table.Rows, row)
	}

	// Rows built before the header grew lack the late columns; fill them as null.
	for _, row := range table.Rows {
		for _, name := range header {
			if _, ok := row[name]; !ok {
				row[name] = model.Cell{}
			}
		}
	}

	table.Columns = header
	return table, nil
}

func dropBlank(records []record) []record {
	out := records[:0:0]
	for _, rec := range records {
		for _, f := range rec.fields {
			if strings.TrimSpace(f) != "" {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// normalizeHeader names empty headers "Unnamed: <index>" and suffixes repeated
// ones with ".N", the way spreadsheet tooling usually does.
func normalizeHeader(fields []string) []string {
	seen := make(map[string]int, len(fields))
	header := make([]string, len(fields))

	for i, h := range fields {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		header[i] = uniqueName(h, seen)
	}
	return header
}

func extendHeader(header []string, width int) []string {
	seen := make(map[string]int, width)
	for _, h := range header {
		seen[h] = 0
	}
	for i := len(header); i < width; i++ {
		header = append(header, uniqueName(fmt.Sprintf("Unnamed: %d", i), seen))
	}
	return header
}

func uniqueName(name string, seen map[string]int) string {
	count, dup := seen[name]
	if !dup {
		seen[name] = 0
		return name
	}

	candidate := name
	for {
		count++
		candidate = fmt.Sprintf("%s.%d", name, count)
		if _, taken := seen[candidate]; !taken {
			break
		}
	}
	seen[name] = count
	seen[candidate] = 0
	return candidate
}
