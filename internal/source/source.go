package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Table is a raw tabular resource: a header row plus untyped string cells.
// Every row is normalized to the header width.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	// SerialDates is set by spreadsheet readers: date cells arrive as raw
	// Excel serial numbers rather than formatted text.
	SerialDates bool
	// Date1904 selects the 1904 epoch for serial dates.
	Date1904 bool
}

// Options controls how a source is decoded.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension (',' or '\t').
	Delimiter rune
	// Sheet selects an XLSX sheet by name; SheetIndex (1-based) is used otherwise.
	Sheet      string
	SheetIndex int
}

// Reader decodes one family of file formats into a Table.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) (*Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ErrUnsupported indicates no registered reader handles the file.
var ErrUnsupported = errors.New("unsupported source format")

// Read selects a reader based on the file name and decodes the table.
func Read(path string, opt Options) (*Table, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}

// normalizeRow pads or truncates a row to width and trims cell whitespace.
func normalizeRow(rec []string, width int) []string {
	row := make([]string, width)
	for i := 0; i < width && i < len(rec); i++ {
		row[i] = strings.TrimSpace(rec[i])
	}
	return row
}

func normalizeHeader(h []string) []string {
	out := make([]string, len(h))
	for i, name := range h {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		out[i] = strings.TrimSpace(name)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
