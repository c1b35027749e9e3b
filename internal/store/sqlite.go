package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/datachat-io/datachat/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS databases (
	name        TEXT PRIMARY KEY,
	source_path TEXT,
	db_path     TEXT,
	columns     TEXT,
	row_count   INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'not_imported',
	imported_at DATETIME
);

CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS messages (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	sql_query       TEXT,
	results_count   INTEGER,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages(conversation_id);
CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListDatasets(ctx context.Context) ([]model.Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, source_path, db_path, columns, row_count, status, imported_at FROM databases`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list datasets")
	}
	defer rows.Close()

	var datasets []model.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, *ds)
	}
	return datasets, eris.Wrap(rows.Err(), "sqlite: list datasets iterate")
}

func (s *SQLiteStore) UpsertDataset(ctx context.Context, ds model.Dataset) error {
	columnsJSON, err := json.Marshal(ds.Columns)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal columns")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO databases (name, source_path, db_path, columns, row_count, status, imported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			source_path = excluded.source_path,
			db_path     = excluded.db_path,
			columns     = excluded.columns,
			row_count   = excluded.row_count,
			status      = excluded.status,
			imported_at = excluded.imported_at`,
		ds.Name, ds.SourcePath, ds.DBPath, string(columnsJSON), ds.RowCount, string(ds.Status), ds.ImportedAt,
	)
	return eris.Wrapf(err, "sqlite: upsert dataset %s", ds.Name)
}

func (s *SQLiteStore) SetDatasetStatus(ctx context.Context, name string, status model.DatasetStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE databases SET status = ? WHERE name = ?`,
		string(status), name,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set dataset status %s", name)
	}
	return checkRowsAffected(res, "dataset", name)
}

func (s *SQLiteStore) CreateConversation(ctx context.Context, conv model.Conversation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		conv.ID, conv.Title, conv.CreatedAt, conv.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert conversation %s", conv.ID)
}

func (s *SQLiteStore) TouchConversation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: touch conversation %s", id)
	}
	return checkRowsAffected(res, "conversation", id)
}

func (s *SQLiteStore) ListConversations(ctx context.Context, limit int) ([]model.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list conversations")
	}
	defer rows.Close()

	var convs []model.Conversation
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan conversation")
		}
		convs = append(convs, c)
	}
	return convs, eris.Wrap(rows.Err(), "sqlite: list conversations iterate")
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, msg model.Message) error {
	var resultsCount sql.NullInt64
	if msg.ResultsCount != nil {
		resultsCount = sql.NullInt64{Int64: int64(*msg.ResultsCount), Valid: true}
	}
	var sqlQuery sql.NullString
	if msg.SQL != "" {
		sqlQuery = sql.NullString{String: msg.SQL, Valid: true}
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, role, content, sql_query, results_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ConversationID, msg.Role, msg.Content, sqlQuery, resultsCount, createdAt,
	)
	return eris.Wrapf(err, "sqlite: append message for %s", msg.ConversationID)
}

func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, sql_query, results_count, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list messages")
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, eris.Wrap(rows.Err(), "sqlite: list messages iterate")
}

func (s *SQLiteStore) CountUserMessages(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE role = 'user'`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count user messages")
}

func (s *SQLiteStore) CountConversations(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count conversations")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDataset(row scannable) (*model.Dataset, error) {
	var ds model.Dataset
	var sourcePath, dbPath, columnsJSON sql.NullString
	var importedAt sql.NullTime
	var status string

	err := row.Scan(&ds.Name, &sourcePath, &dbPath, &columnsJSON, &ds.RowCount, &status, &importedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan dataset")
	}

	ds.SourcePath = sourcePath.String
	ds.DBPath = dbPath.String
	ds.Status = model.DatasetStatus(status)
	if importedAt.Valid {
		ds.ImportedAt = importedAt.Time
	}
	if columnsJSON.Valid && columnsJSON.String != "" {
		if err := json.Unmarshal([]byte(columnsJSON.String), &ds.Columns); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal columns")
		}
	}
	return &ds, nil
}

func scanMessage(row scannable) (*model.Message, error) {
	var m model.Message
	var sqlQuery sql.NullString
	var resultsCount sql.NullInt64

	err := row.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &sqlQuery, &resultsCount, &m.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan message")
	}

	m.SQL = sqlQuery.String
	if resultsCount.Valid {
		n := int(resultsCount.Int64)
		m.ResultsCount = &n
	}
	return &m, nil
}
