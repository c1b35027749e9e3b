package importer

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// csvSource streams a CSV file; the first record is the header.
type csvSource struct {
	file    *os.File
	reader  *csv.Reader
	columns []string
	err     error
}

func openCSV(path string) (rowSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: open %s", path)
	}

	r := csv.NewReader(f)
	// Exports frequently have ragged rows; width is fixed downstream.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		_ = f.Close()
		return nil, eris.Wrapf(err, "importer: read header of %s", path)
	}
	return &csvSource{file: f, reader: r, columns: header}, nil
}

func (s *csvSource) Columns() []string {
	return s.columns
}

func (s *csvSource) Next() ([]string, bool) {
	row, err := s.reader.Read()
	if err == io.EOF {
		return nil, false
	}
	if err != nil {
		s.err = err
		return nil, false
	}
	return row, true
}

func (s *csvSource) Err() error {
	if s.err != nil {
		return eris.Wrap(s.err, "importer: read csv")
	}
	return nil
}

func (s *csvSource) Close() error {
	return s.file.Close()
}
