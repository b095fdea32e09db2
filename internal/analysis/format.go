package analysis

import (
	"errors"
	"path/filepath"
	"strings"
)

// Format selects the parser for an upload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// UnsupportedFormatMessage is shown for uploads that are neither CSV nor XLSX.
const UnsupportedFormatMessage = "Formato não suportado. Use CSV ou XLSX."

// ErrUnsupportedFormat is returned for any extension other than .csv or .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// FormatFromFilename picks the format from the file extension, case-insensitively.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Label is the upper-case name used in user-facing messages.
func (f Format) Label() string {
	return strings.ToUpper(string(f))
}
