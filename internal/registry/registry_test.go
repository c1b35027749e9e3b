package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datachat-io/datachat/internal/model"
)

func testSnapshot() *Snapshot {
	return NewSnapshot([]model.Dataset{
		{Name: "annuaire", Columns: []string{"nom", "tel"}, Status: model.DatasetStatusError},
		{Name: "clients", Columns: []string{"nom", "email", "ville"}, Status: model.DatasetStatusReady, RowCount: 100},
		{Name: "caf_export", Columns: []string{"matricule", "allocataire_courriel"}, Status: model.DatasetStatusReady, RowCount: 50},
	})
}

func TestResolve_ExactNameWins(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain mention", "cherche dans clients Jean Dupont", "clients"},
		{"case insensitive", "Cherche dans CLIENTS", "clients"},
		{"name mention beats family trigger", "annuaire de la caf", "annuaire"},
		{"embedded anywhere", "combien dans caf_export ?", "caf_export"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := snap.Resolve(tc.text)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolve_FamilyTrigger(t *testing.T) {
	snap := testSnapshot()

	// No dataset name in the text, but a benefits-agency keyword points
	// at the dataset with the matricule signature column.
	got, ok := snap.Resolve("infos sur cet allocataire")
	require.True(t, ok)
	assert.Equal(t, "caf_export", got)
}

func TestResolve_FirstReadyFallback(t *testing.T) {
	snap := testSnapshot()

	got, ok := snap.Resolve("trouve moi Jean Dupont")
	require.True(t, ok)
	assert.Equal(t, "clients", got) // annuaire is registered first but not ready
}

func TestResolve_NothingAvailable(t *testing.T) {
	snap := NewSnapshot([]model.Dataset{
		{Name: "broken", Status: model.DatasetStatusError},
	})

	_, ok := snap.Resolve("trouve moi Jean Dupont")
	assert.False(t, ok)
}

func TestSnapshot_GetAndTotals(t *testing.T) {
	snap := testSnapshot()

	ds, ok := snap.Get("clients")
	require.True(t, ok)
	assert.Equal(t, int64(100), ds.RowCount)

	_, ok = snap.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 3, snap.Len())
	assert.Equal(t, int64(150), snap.TotalRows())
}
