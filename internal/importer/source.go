package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nuvie/records/internal/normalize"
)

// Source yields every data row of a tabular file. ReadAll is called once,
// before any batch starts; an error from it aborts the import.
type Source interface {
	Name() string
	ReadAll() ([]normalize.RawRow, error)
}

// OpenSource picks a reader from the file extension. sheet only applies to
// workbooks; empty means the first sheet.
func OpenSource(path, sheet string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVSource(path), nil
	case ".xlsx", ".xlsm":
		return NewXLSXSource(path, sheet), nil
	default:
		return nil, fmt.Errorf("unsupported source format %q", filepath.Ext(path))
	}
}

// buildRow pairs header names with cells. Cells past the end of a short
// record are left out so they read as missing.
func buildRow(line int, header, record []string) normalize.RawRow {
	cells := make(map[string]string, len(header))
	for i, col := range header {
		if col == "" || i >= len(record) {
			continue
		}
		if _, dup := cells[col]; dup {
			continue
		}
		cells[col] = record[i]
	}
	return normalize.RawRow{Line: line, Cells: cells}
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
