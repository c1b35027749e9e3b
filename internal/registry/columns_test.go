package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnClasses_Defaults(t *testing.T) {
	cc := DefaultColumnClasses()

	tests := []struct {
		class  ColumnClass
		column string
		want   bool
	}{
		{ClassPostal, "code_postal", true},
		{ClassPostal, "adresse_code_postal", true},
		{ClassPostal, "cp", true},
		{ClassCity, "adresse_commune", true},
		{ClassCity, "ville", true},
		{ClassName, "nom_complet", true},
		{ClassName, "prenom", true},
		{ClassEmail, "allocataire_courriel", true},
		{ClassPhone, "allocataire_telephone", true},
		{ClassPhone, "nom", false},
		{ClassEmail, "ville", false},
	}

	for _, tc := range tests {
		t.Run(string(tc.class)+"/"+tc.column, func(t *testing.T) {
			assert.Equal(t, tc.want, cc.Matches(tc.class, tc.column))
		})
	}
}

func TestColumnClasses_MatchingIsCaseSensitive(t *testing.T) {
	cc := DefaultColumnClasses()

	// Column names are matched as imported.
	assert.False(t, cc.Matches(ClassName, "NOM"))
	assert.True(t, cc.Matches(ClassName, "nom"))
}

func TestColumnClasses_FirstAndAll(t *testing.T) {
	cc := DefaultColumnClasses()
	columns := []string{"id", "prenom", "nom", "email", "ville"}

	first, ok := cc.First(ClassName, columns)
	require.True(t, ok)
	assert.Equal(t, "prenom", first)

	assert.Equal(t, []string{"prenom", "nom"}, cc.All(ClassName, columns))

	_, ok = cc.First(ClassPostal, columns)
	assert.False(t, ok)
}

func TestLoadColumnClasses_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("postal:\n  - zip\ncity:\n  - town\n"), 0o644))

	cc, err := LoadColumnClasses(path)
	require.NoError(t, err)

	assert.True(t, cc.Matches(ClassPostal, "zip_code"))
	assert.False(t, cc.Matches(ClassPostal, "code_postal"))
	assert.True(t, cc.Matches(ClassCity, "hometown"))
	// Untouched classes keep defaults.
	assert.True(t, cc.Matches(ClassName, "nom"))
}

func TestLoadColumnClasses_EmptyPathUsesDefaults(t *testing.T) {
	cc, err := LoadColumnClasses("")
	require.NoError(t, err)
	assert.True(t, cc.Matches(ClassPostal, "code_postal"))
}

func TestLoadColumnClasses_BadFile(t *testing.T) {
	_, err := LoadColumnClasses(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
