package importer

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// xlsxSource reads the first sheet of a workbook; the first row is the
// header.
type xlsxSource struct {
	columns []string
	rows    []*xlsx.Row
	pos     int
}

func openXLSX(path string) (rowSource, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("importer: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("importer: %s first sheet is empty", path)
	}

	return &xlsxSource{
		columns: rowToStrings(sheet.Rows[0]),
		rows:    sheet.Rows[1:],
	}, nil
}

func (s *xlsxSource) Columns() []string {
	return s.columns
}

func (s *xlsxSource) Next() ([]string, bool) {
	if s.pos >= len(s.rows) {
		return nil, false
	}
	row := rowToStrings(s.rows[s.pos])
	s.pos++
	return row, true
}

func (s *xlsxSource) Err() error { return nil }

func (s *xlsxSource) Close() error { return nil }

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}
