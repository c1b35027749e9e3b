package importer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// indexKeywords marks columns worth indexing after a bulk load.
var indexKeywords = []string{"nom", "email", "telephone", "code_postal", "ville"}

// writeDataset streams rows into a freshly created single-table SQLite
// file. Rows shorter than the column list are padded, longer ones
// truncated; source files are messy.
func writeDataset(ctx context.Context, dbPath, name string, src rowSource, chunkSize int) (int64, error) {
	columns := src.Columns()
	if len(columns) == 0 {
		return 0, eris.New("importer: source has no columns")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, eris.Wrapf(err, "importer: open %s", dbPath)
	}
	defer db.Close() //nolint:errcheck

	// Bulk-load pragmas. Durability does not matter here; a failed
	// import is simply rerun.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=OFF",
		"PRAGMA cache_size=-200000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return 0, eris.Wrapf(err, "importer: %s", pragma)
		}
	}

	colDefs := make([]string, len(columns))
	for i, c := range columns {
		colDefs[i] = fmt.Sprintf(`"%s" TEXT`, c)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, name)); err != nil {
		return 0, eris.Wrap(err, "importer: drop previous table")
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE "%s" (%s)`, name, strings.Join(colDefs, ", "))); err != nil {
		return 0, eris.Wrap(err, "importer: create table")
	}

	insertSQL := fmt.Sprintf(`INSERT INTO "%s" VALUES (%s)`,
		name, strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))

	var (
		total int64
		tx    *sql.Tx
		stmt  *sql.Stmt
		batch int
	)
	begin := func() error {
		tx, err = db.BeginTx(ctx, nil)
		if err != nil {
			return eris.Wrap(err, "importer: begin batch")
		}
		stmt, err = tx.PrepareContext(ctx, insertSQL)
		if err != nil {
			return eris.Wrap(err, "importer: prepare insert")
		}
		return nil
	}
	commit := func() error {
		if err := stmt.Close(); err != nil {
			return eris.Wrap(err, "importer: close statement")
		}
		if err := tx.Commit(); err != nil {
			return eris.Wrap(err, "importer: commit batch")
		}
		return nil
	}

	if err := begin(); err != nil {
		return 0, err
	}
	for {
		row, ok := src.Next()
		if !ok {
			break
		}
		if _, err := stmt.ExecContext(ctx, fitRow(row, len(columns))...); err != nil {
			_ = tx.Rollback()
			return 0, eris.Wrap(err, "importer: insert row")
		}
		total++
		batch++
		if batch >= chunkSize {
			if err := commit(); err != nil {
				return 0, err
			}
			if err := begin(); err != nil {
				return 0, err
			}
			batch = 0
		}
	}
	if err := commit(); err != nil {
		return 0, err
	}

	if err := createIndexes(ctx, db, name, columns); err != nil {
		return 0, err
	}
	return total, nil
}

// fitRow pads or truncates a row to the column count and converts it to
// statement arguments.
func fitRow(row []string, width int) []any {
	args := make([]any, width)
	for i := range args {
		if i < len(row) {
			args[i] = row[i]
		} else {
			args[i] = ""
		}
	}
	return args
}

// createIndexes adds indexes on identity-bearing columns. Lookup and
// count queries filter on exactly these.
func createIndexes(ctx context.Context, db *sql.DB, name string, columns []string) error {
	for _, col := range columns {
		if !containsAnyKeyword(col) {
			continue
		}
		ddl := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "idx_%s_%s" ON "%s" ("%s")`, name, col, name, col)
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return eris.Wrapf(err, "importer: index %s", col)
		}
	}
	return nil
}

func containsAnyKeyword(col string) bool {
	for _, kw := range indexKeywords {
		if strings.Contains(col, kw) {
			return true
		}
	}
	return false
}
