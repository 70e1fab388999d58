package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nuvie/records/internal/normalize"
)

// XLSXSource reads one worksheet of an Excel workbook. Cells formatted as
// dates are handed on as ISO dates instead of their display text.
type XLSXSource struct {
	path  string
	sheet string
}

// NewXLSXSource reads sheet, or the first sheet when sheet is empty.
func NewXLSXSource(path, sheet string) *XLSXSource {
	return &XLSXSource{path: path, sheet: sheet}
}

func (s *XLSXSource) Name() string {
	if s.sheet == "" {
		return s.path
	}
	return s.path + "#" + s.sheet
}

func (s *XLSXSource) ReadAll() ([]normalize.RawRow, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	dates, err := newDateCells(f, sheet)
	if err != nil {
		return nil, err
	}

	header := cleanHeader(records[0])
	var rows []normalize.RawRow
	for i, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		// Sheet rows are 1-based and the header occupies row 1.
		line := i + 2
		if line-1 < len(raw) {
			if err := dates.rewrite(line, record, raw[line-1]); err != nil {
				return nil, err
			}
		}
		rows = append(rows, buildRow(line, header, record))
	}
	return rows, nil
}

// dateCells replaces the display text of date-formatted numeric cells
// ("03-14-80" for Excel's short date) with the date itself.
type dateCells struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	byStyle  map[int]bool
}

func newDateCells(f *excelize.File, sheet string) (*dateCells, error) {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("read workbook properties: %w", err)
	}
	d := &dateCells{f: f, sheet: sheet, byStyle: make(map[int]bool)}
	if props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d, nil
}

func (d *dateCells) rewrite(line int, record, raw []string) error {
	for col := range record {
		if col >= len(raw) {
			break
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(raw[col]), 64)
		if err != nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, line)
		if err != nil {
			return err
		}
		isDate, err := d.isDateCell(cell)
		if err != nil {
			return err
		}
		if !isDate {
			continue
		}
		t, err := excelize.ExcelDateToTime(serial, d.date1904)
		if err != nil {
			continue
		}
		record[col] = formatCellDate(t)
	}
	return nil
}

func (d *dateCells) isDateCell(cell string) (bool, error) {
	id, err := d.f.GetCellStyle(d.sheet, cell)
	if err != nil {
		return false, fmt.Errorf("read style of %s: %w", cell, err)
	}
	if v, ok := d.byStyle[id]; ok {
		return v, nil
	}
	style, err := d.f.GetStyle(id)
	if err != nil {
		return false, fmt.Errorf("read style %d: %w", id, err)
	}
	v := isDateStyle(style)
	d.byStyle[id] = v
	return v, nil
}

func isDateStyle(s *excelize.Style) bool {
	if s.CustomNumFmt != nil {
		return isDateFormatCode(*s.CustomNumFmt)
	}
	switch n := s.NumFmt; {
	case n >= 14 && n <= 17, n == 22, n >= 27 && n <= 36, n >= 50 && n <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format renders a day or
// a year. Quoted literals and bracketed sections are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	quoted, bracket := false, false
	for _, r := range code {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		default:
			b.WriteRune(r)
		}
	}
	plain := strings.ToLower(b.String())
	return strings.ContainsAny(plain, "dy")
}

func formatCellDate(t time.Time) string {
	t = t.Round(time.Second)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
