package model

import "time"

// DatasetStatus represents the import state of a dataset.
type DatasetStatus string

const (
	DatasetStatusNotImported DatasetStatus = "not_imported"
	DatasetStatusReady       DatasetStatus = "ready"
	DatasetStatusError       DatasetStatus = "error"
)

// Dataset is one imported tabular source, queryable as a single named
// table with a fixed column list. Column order is preserved as imported;
// the fallback fuzzy search depends on it.
type Dataset struct {
	Name       string        `json:"name"`
	SourcePath string        `json:"source,omitempty"`
	DBPath     string        `json:"-"`
	Columns    []string      `json:"columns"`
	RowCount   int64         `json:"row_count"`
	Status     DatasetStatus `json:"status"`
	ImportedAt time.Time     `json:"imported_at,omitempty"`
}

// Ready reports whether the dataset can be queried.
func (d Dataset) Ready() bool {
	return d.Status == DatasetStatusReady
}

// ScanEntry describes an importable file found in the source directory.
type ScanEntry struct {
	Name     string        `json:"name"`
	Filename string        `json:"filename"`
	Path     string        `json:"path"`
	SizeMB   float64       `json:"size_mb"`
	Type     string        `json:"type"`
	Imported bool          `json:"imported"`
	Status   DatasetStatus `json:"status"`
}
