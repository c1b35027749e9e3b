package importer

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/registry"
)

// scanExtensions are the file types listed by a source-directory scan.
// Archive formats show up so users see what still needs extracting.
var scanExtensions = map[string]struct{}{
	".json": {}, ".csv": {}, ".db": {}, ".sqlite": {}, ".sqlite3": {},
	".txt": {}, ".xlsx": {}, ".rar": {}, ".7z": {},
}

// ScanDir lists importable files in dir and marks which are already
// registered. A missing directory yields an empty list, not an error.
func ScanDir(dir string, snap *registry.Snapshot) ([]model.ScanEntry, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []model.ScanEntry{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "importer: scan %s", dir)
	}

	found := []model.ScanEntry{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := scanExtensions[ext]; !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		status := model.DatasetStatusNotImported
		imported := false
		if ds, ok := snap.Get(stem); ok {
			status = ds.Status
			imported = true
		}

		found = append(found, model.ScanEntry{
			Name:     stem,
			Filename: entry.Name(),
			Path:     filepath.Join(dir, entry.Name()),
			SizeMB:   math.Round(float64(info.Size())/(1024*1024)*10) / 10,
			Type:     ext,
			Imported: imported,
			Status:   status,
		})
	}
	return found, nil
}
