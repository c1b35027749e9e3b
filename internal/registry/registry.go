// Package registry holds the snapshot of imported datasets and the
// heuristics that map free text onto one of them.
package registry

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/store"
)

// Snapshot is a read-only view of the registered datasets, loaded
// explicitly from the index store. Requests operate on one snapshot for
// their whole lifetime; reloads produce a new value.
type Snapshot struct {
	datasets []model.Dataset
	byName   map[string]int
}

// Load reads the registry from the store. Datasets whose backing file no
// longer exists on disk are skipped, matching what listing shows users.
// Store row order is preserved; resolution tie-breaks depend on it.
func Load(ctx context.Context, st store.Store) (*Snapshot, error) {
	rows, err := st.ListDatasets(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "registry: load")
	}

	snap := &Snapshot{byName: make(map[string]int)}
	for _, ds := range rows {
		if ds.DBPath != "" {
			if _, statErr := os.Stat(ds.DBPath); statErr != nil {
				zap.L().Warn("registry: dataset file missing, skipping",
					zap.String("dataset", ds.Name),
					zap.String("path", ds.DBPath),
				)
				continue
			}
		}
		snap.byName[ds.Name] = len(snap.datasets)
		snap.datasets = append(snap.datasets, ds)
	}
	return snap, nil
}

// NewSnapshot builds a snapshot from in-memory datasets (used by tests
// and by the importer right after registering).
func NewSnapshot(datasets []model.Dataset) *Snapshot {
	snap := &Snapshot{byName: make(map[string]int, len(datasets))}
	for _, ds := range datasets {
		snap.byName[ds.Name] = len(snap.datasets)
		snap.datasets = append(snap.datasets, ds)
	}
	return snap
}

// Datasets returns all datasets in registry order.
func (s *Snapshot) Datasets() []model.Dataset {
	return s.datasets
}

// Get returns a dataset by exact name.
func (s *Snapshot) Get(name string) (model.Dataset, bool) {
	i, ok := s.byName[name]
	if !ok {
		return model.Dataset{}, false
	}
	return s.datasets[i], true
}

// Len returns the number of registered datasets.
func (s *Snapshot) Len() int {
	return len(s.datasets)
}

// TotalRows sums row counts across all datasets.
func (s *Snapshot) TotalRows() int64 {
	var total int64
	for _, ds := range s.datasets {
		total += ds.RowCount
	}
	return total
}
