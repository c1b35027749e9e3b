// Package importer converts tabular source files (CSV, JSON, XLSX) into
// per-dataset SQLite files and registers them in the index store. All
// columns are stored as TEXT; the query layer treats every value as a
// string anyway.
package importer

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/store"
)

// defaultChunkSize is the number of rows per insert transaction.
const defaultChunkSize = 100000

// rowSource streams rows from one source file. Next returns false at
// end of input; Err reports any read failure afterwards.
type rowSource interface {
	Columns() []string
	Next() ([]string, bool)
	Err() error
	Close() error
}

// Importer loads source files into per-dataset databases.
type Importer struct {
	store     store.Store
	outputDir string
	chunkSize int
}

// New creates an importer writing dataset files into outputDir.
func New(st store.Store, outputDir string, chunkSize int) *Importer {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Importer{store: st, outputDir: outputDir, chunkSize: chunkSize}
}

// Import loads one source file as the named dataset, replacing any
// previous import under the same name, and registers it as ready. On
// failure the registration is marked error so listings show it.
func (im *Importer) Import(ctx context.Context, sourcePath, name string) (*model.Dataset, error) {
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	}

	src, err := openSource(sourcePath)
	if err != nil {
		return nil, err
	}
	defer src.Close() //nolint:errcheck

	start := time.Now()
	dbPath := filepath.Join(im.outputDir, name+".db")
	rowCount, err := writeDataset(ctx, dbPath, name, src, im.chunkSize)
	if err != nil {
		im.markError(ctx, sourcePath, dbPath, name)
		return nil, eris.Wrapf(err, "importer: import %s", name)
	}
	if err := src.Err(); err != nil {
		im.markError(ctx, sourcePath, dbPath, name)
		return nil, eris.Wrapf(err, "importer: read %s", sourcePath)
	}

	ds := model.Dataset{
		Name:       name,
		SourcePath: sourcePath,
		DBPath:     dbPath,
		Columns:    src.Columns(),
		RowCount:   rowCount,
		Status:     model.DatasetStatusReady,
		ImportedAt: time.Now().UTC(),
	}
	if err := im.store.UpsertDataset(ctx, ds); err != nil {
		return nil, eris.Wrapf(err, "importer: register %s", name)
	}

	zap.L().Info("importer: dataset imported",
		zap.String("dataset", name),
		zap.Int64("rows", rowCount),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &ds, nil
}

// markError records a failed import so the dataset shows up as broken
// instead of silently missing. Best effort.
func (im *Importer) markError(ctx context.Context, sourcePath, dbPath, name string) {
	ds := model.Dataset{
		Name:       name,
		SourcePath: sourcePath,
		DBPath:     dbPath,
		Status:     model.DatasetStatusError,
		ImportedAt: time.Now().UTC(),
	}
	if err := im.store.UpsertDataset(ctx, ds); err != nil {
		zap.L().Warn("importer: could not record failed import",
			zap.String("dataset", name),
			zap.Error(err),
		)
	}
}

// openSource picks the reader for a file by extension.
func openSource(path string) (rowSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return openCSV(path)
	case ".json":
		return openJSON(path)
	case ".xlsx":
		return openXLSX(path)
	default:
		return nil, eris.Errorf("importer: unsupported file type %q", filepath.Ext(path))
	}
}
