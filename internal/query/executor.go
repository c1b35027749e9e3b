package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/registry"
)

// Sentinel errors surfaced by Execute.
var (
	ErrDatasetNotFound = eris.New("dataset not found")
	ErrNotReadOnly     = eris.New("only SELECT statements are allowed")
)

// Executor runs compiled queries against per-dataset SQLite files. Each
// call opens its own short-lived connection and always releases it.
type Executor struct {
	defaultLimit int
}

// NewExecutor creates an executor that appends defaultLimit to queries
// carrying no LIMIT clause.
func NewExecutor(defaultLimit int) *Executor {
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	return &Executor{defaultLimit: defaultLimit}
}

// Execute runs one read-only statement against the named dataset.
// The SELECT-prefix check is defense in depth; the compiler only ever
// emits selections, but raw API queries pass through here too.
func (e *Executor) Execute(ctx context.Context, snap *registry.Snapshot, datasetName, sqlText string) (*model.ResultSet, error) {
	ds, ok := snap.Get(datasetName)
	if !ok {
		return nil, eris.Wrapf(ErrDatasetNotFound, "query: %s", datasetName)
	}

	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sqlText)), "SELECT") {
		return nil, eris.Wrap(ErrNotReadOnly, "query: rejected statement")
	}
	if !strings.Contains(strings.ToUpper(sqlText), "LIMIT") {
		sqlText = fmt.Sprintf("%s LIMIT %d", sqlText, e.defaultLimit)
	}

	db, err := sql.Open("sqlite", ds.DBPath)
	if err != nil {
		return nil, eris.Wrapf(err, "query: open %s", ds.DBPath)
	}
	defer db.Close() //nolint:errcheck

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, eris.Wrapf(err, "query: execute against %s", datasetName)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "query: columns")
	}

	result := &model.ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "query: scan row")
		}

		row := make(model.Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "query: iterate rows")
	}

	result.Count = len(result.Rows)
	zap.L().Debug("query: executed",
		zap.String("dataset", datasetName),
		zap.Int("rows", result.Count),
	)
	return result, nil
}

// normalizeValue converts driver byte slices to strings so rows render
// and serialize as text.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
