package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nuvie/records/internal/normalize"
)

// CSVSource reads a comma-separated file whose first record is the header.
type CSVSource struct {
	path string
}

// NewCSVSource returns a source for the file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Name() string { return s.path }

func (s *CSVSource) ReadAll() ([]normalize.RawRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) ([]normalize.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header = cleanHeader(header)

	var rows []normalize.RawRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		line, _ := cr.FieldPos(0)
		if len(record) > len(header) {
			return nil, fmt.Errorf("csv line %d: %d fields, header has %d", line, len(record), len(header))
		}
		rows = append(rows, buildRow(line, header, record))
	}
	return rows, nil
}
