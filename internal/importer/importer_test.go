package importer

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/registry"
	"github.com/datachat-io/datachat/internal/store"
)

func newTestImporter(t *testing.T) (*Importer, store.Store, string) {
	t.Helper()
	dir := t.TempDir()

	st, err := store.NewSQLite(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	return New(st, dir, 2), st, dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func queryAll(t *testing.T, dbPath, table string) []map[string]string {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	rows, err := db.Query(`SELECT * FROM "` + table + `"`)
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)

	var out []map[string]string
	for rows.Next() {
		values := make([]string, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		require.NoError(t, rows.Scan(ptrs...))

		m := map[string]string{}
		for i, c := range cols {
			m[c] = values[i]
		}
		out = append(out, m)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestImport_CSV(t *testing.T) {
	im, st, dir := newTestImporter(t)

	src := writeFile(t, dir, "clients.csv",
		"nom,email,ville\n"+
			"DUPONT,jean@x.fr,LYON\n"+
			"MARTIN,marie@x.fr,PARIS\n"+
			"DURAND,paul@x.fr,NICE\n")

	ds, err := im.Import(context.Background(), src, "")
	require.NoError(t, err)

	assert.Equal(t, "clients", ds.Name)
	assert.Equal(t, []string{"nom", "email", "ville"}, ds.Columns)
	assert.EqualValues(t, 3, ds.RowCount)
	assert.Equal(t, model.DatasetStatusReady, ds.Status)

	rows := queryAll(t, ds.DBPath, "clients")
	require.Len(t, rows, 3)
	assert.Equal(t, "DUPONT", rows[0]["nom"])

	// Registered in the index store.
	listed, err := st.ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "clients", listed[0].Name)
}

func TestImport_CSVRaggedRows(t *testing.T) {
	im, _, dir := newTestImporter(t)

	src := writeFile(t, dir, "ragged.csv",
		"nom,email,ville\n"+
			"DUPONT\n"+
			"MARTIN,marie@x.fr,PARIS,extra,fields\n")

	ds, err := im.Import(context.Background(), src, "ragged")
	require.NoError(t, err)
	assert.EqualValues(t, 2, ds.RowCount)

	rows := queryAll(t, ds.DBPath, "ragged")
	assert.Equal(t, "", rows[0]["email"])
	assert.Equal(t, "PARIS", rows[1]["ville"])
}

func TestImport_CSVChunkedBatches(t *testing.T) {
	// Chunk size is 2; five rows exercise the batch boundary.
	im, _, dir := newTestImporter(t)

	src := writeFile(t, dir, "big.csv",
		"nom\nA\nB\nC\nD\nE\n")

	ds, err := im.Import(context.Background(), src, "big")
	require.NoError(t, err)
	assert.EqualValues(t, 5, ds.RowCount)
	assert.Len(t, queryAll(t, ds.DBPath, "big"), 5)
}

func TestImport_JSON(t *testing.T) {
	im, _, dir := newTestImporter(t)

	src := writeFile(t, dir, "people.json",
		`[{"nom":"DUPONT","age":42,"actif":true,"note":null},
		  {"nom":"MARTIN","age":35,"actif":false,"note":"x"}]`)

	ds, err := im.Import(context.Background(), src, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"nom", "age", "actif", "note"}, ds.Columns)
	rows := queryAll(t, ds.DBPath, "people")
	require.Len(t, rows, 2)
	assert.Equal(t, "42", rows[0]["age"])
	assert.Equal(t, "true", rows[0]["actif"])
	assert.Equal(t, "", rows[0]["note"])
}

func TestImport_IndexesOnIdentityColumns(t *testing.T) {
	im, _, dir := newTestImporter(t)

	src := writeFile(t, dir, "idx.csv",
		"nom,email,commentaire\nDUPONT,j@x.fr,rien\n")

	ds, err := im.Import(context.Background(), src, "idx")
	require.NoError(t, err)

	db, err := sql.Open("sqlite", ds.DBPath)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	var names []string
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'idx'`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())

	assert.Contains(t, names, "idx_idx_nom")
	assert.Contains(t, names, "idx_idx_email")
	assert.NotContains(t, names, "idx_idx_commentaire")
}

func TestImport_ReplacesPreviousImport(t *testing.T) {
	im, st, dir := newTestImporter(t)

	first := writeFile(t, dir, "v1.csv", "nom\nA\nB\n")
	_, err := im.Import(context.Background(), first, "clients")
	require.NoError(t, err)

	second := writeFile(t, dir, "v2.csv", "nom\nC\n")
	ds, err := im.Import(context.Background(), second, "clients")
	require.NoError(t, err)
	assert.EqualValues(t, 1, ds.RowCount)

	listed, err := st.ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.EqualValues(t, 1, listed[0].RowCount)
}

func TestImport_UnsupportedExtension(t *testing.T) {
	im, _, dir := newTestImporter(t)
	src := writeFile(t, dir, "data.rar", "not importable")

	_, err := im.Import(context.Background(), src, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clients.csv", "nom\nA\n")
	writeFile(t, dir, "dump.rar", "x")
	writeFile(t, dir, "notes.md", "ignored")

	snap := registry.NewSnapshot([]model.Dataset{
		{Name: "clients", Status: model.DatasetStatusReady},
	})

	entries, err := ScanDir(dir, snap)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byName := map[string]model.ScanEntry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.True(t, byName["clients"].Imported)
	assert.Equal(t, model.DatasetStatusReady, byName["clients"].Status)
	assert.False(t, byName["dump"].Imported)
	assert.Equal(t, model.DatasetStatusNotImported, byName["dump"].Status)
	assert.Equal(t, ".rar", byName["dump"].Type)
}

func TestScanDir_MissingDirectory(t *testing.T) {
	entries, err := ScanDir(filepath.Join(t.TempDir(), "nope"), registry.NewSnapshot(nil))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
