package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/datachat-io/datachat/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store. Narrowed so the
// Postgres store can be exercised against pgxmock in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (used by tests).
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS databases (
	name        TEXT PRIMARY KEY,
	source_path TEXT,
	db_path     TEXT,
	columns     JSONB,
	row_count   BIGINT NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'not_imported',
	imported_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS messages (
	id              BIGSERIAL PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	sql_query       TEXT,
	results_count   INTEGER,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages(conversation_id);
CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListDatasets(ctx context.Context) ([]model.Dataset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, source_path, db_path, columns, row_count, status, imported_at FROM databases`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list datasets")
	}
	defer rows.Close()

	var datasets []model.Dataset
	for rows.Next() {
		var ds model.Dataset
		var sourcePath, dbPath *string
		var columnsJSON []byte
		var importedAt *time.Time
		var status string

		if err := rows.Scan(&ds.Name, &sourcePath, &dbPath, &columnsJSON, &ds.RowCount, &status, &importedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan dataset")
		}
		if sourcePath != nil {
			ds.SourcePath = *sourcePath
		}
		if dbPath != nil {
			ds.DBPath = *dbPath
		}
		ds.Status = model.DatasetStatus(status)
		if importedAt != nil {
			ds.ImportedAt = *importedAt
		}
		if len(columnsJSON) > 0 {
			if err := json.Unmarshal(columnsJSON, &ds.Columns); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal columns")
			}
		}
		datasets = append(datasets, ds)
	}
	return datasets, eris.Wrap(rows.Err(), "postgres: list datasets iterate")
}

func (s *PostgresStore) UpsertDataset(ctx context.Context, ds model.Dataset) error {
	columnsJSON, err := json.Marshal(ds.Columns)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal columns")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO databases (name, source_path, db_path, columns, row_count, status, imported_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (name) DO UPDATE SET
			source_path = EXCLUDED.source_path,
			db_path     = EXCLUDED.db_path,
			columns     = EXCLUDED.columns,
			row_count   = EXCLUDED.row_count,
			status      = EXCLUDED.status,
			imported_at = EXCLUDED.imported_at`,
		ds.Name, ds.SourcePath, ds.DBPath, columnsJSON, ds.RowCount, string(ds.Status), ds.ImportedAt,
	)
	return eris.Wrapf(err, "postgres: upsert dataset %s", ds.Name)
}

func (s *PostgresStore) SetDatasetStatus(ctx context.Context, name string, status model.DatasetStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE databases SET status = $1 WHERE name = $2`,
		string(status), name,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set dataset status %s", name)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("dataset not found: %s", name)
	}
	return nil
}

func (s *PostgresStore) CreateConversation(ctx context.Context, conv model.Conversation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		conv.ID, conv.Title, conv.CreatedAt, conv.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert conversation %s", conv.ID)
}

func (s *PostgresStore) TouchConversation(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE conversations SET updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: touch conversation %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("conversation not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) ListConversations(ctx context.Context, limit int) ([]model.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list conversations")
	}
	defer rows.Close()

	var convs []model.Conversation
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan conversation")
		}
		convs = append(convs, c)
	}
	return convs, eris.Wrap(rows.Err(), "postgres: list conversations iterate")
}

func (s *PostgresStore) AppendMessage(ctx context.Context, msg model.Message) error {
	var resultsCount *int
	if msg.ResultsCount != nil {
		resultsCount = msg.ResultsCount
	}
	var sqlQuery *string
	if msg.SQL != "" {
		sqlQuery = &msg.SQL
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (conversation_id, role, content, sql_query, results_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ConversationID, msg.Role, msg.Content, sqlQuery, resultsCount, createdAt,
	)
	return eris.Wrapf(err, "postgres: append message for %s", msg.ConversationID)
}

func (s *PostgresStore) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, sql_query, results_count, created_at
		 FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list messages")
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		var sqlQuery sql.NullString
		var resultsCount sql.NullInt64
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &sqlQuery, &resultsCount, &m.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan message")
		}
		m.SQL = sqlQuery.String
		if resultsCount.Valid {
			n := int(resultsCount.Int64)
			m.ResultsCount = &n
		}
		msgs = append(msgs, m)
	}
	return msgs, eris.Wrap(rows.Err(), "postgres: list messages iterate")
}

func (s *PostgresStore) CountUserMessages(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE role = 'user'`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count user messages")
}

func (s *PostgresStore) CountConversations(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count conversations")
}
