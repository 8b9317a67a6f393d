package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

const (
	defaultTableName = "reader_status_history"
	dialectPostgres  = "postgres"

	colID         = "id"
	colReaderID   = "reader_id"
	colReaderName = "reader_name"
	colKind       = "kind"
	colStatus     = "status"
	colEvent      = "event"
	colAt         = "at"
)

// PostgresStore writes entries to a Postgres table.
type PostgresStore struct {
	db     dbAdapter
	table  string
	logger *slog.Logger
}

var _ Store = (*PostgresStore)(nil)

// Option configures a PostgresStore.
type Option func(*PostgresStore) error

// WithTableName overrides the default reader_status_history table.
func WithTableName(name string) Option {
	return func(s *PostgresStore) error {
		if name == "" {
			return ErrEmptyTableName
		}
		s.table = name
		return nil
	}
}

// WithLogger logs executed SQL at debug level and failures at error level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *PostgresStore) error {
		s.logger = logger
		return nil
	}
}

// NewPostgresStoreFromPGXPool creates a store on a pgx pool.
func NewPostgresStoreFromPGXPool(pool *pgxpool.Pool, options ...Option) (*PostgresStore, error) {
	if pool == nil {
		return nil, ErrNilDatabase
	}
	return newPostgresStore(pgxAdapter{pool: pool}, options)
}

// NewPostgresStoreFromSQLDB creates a store on a database/sql handle,
// typically opened with the lib/pq "postgres" driver.
func NewPostgresStoreFromSQLDB(db *sql.DB, options ...Option) (*PostgresStore, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}
	return newPostgresStore(sqlAdapter{db: db}, options)
}

// NewPostgresStoreFromSQLX creates a store on a sqlx handle.
func NewPostgresStoreFromSQLX(db *sqlx.DB, options ...Option) (*PostgresStore, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}
	return newPostgresStore(sqlAdapter{db: db}, options)
}

func newPostgresStore(db dbAdapter, options []Option) (*PostgresStore, error) {
	s := &PostgresStore{db: db, table: defaultTableName}
	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Table returns the table name entries are written to.
func (s *PostgresStore) Table() string {
	return s.table
}

// EnsureSchema creates the table and its index when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	table := pgx.Identifier{s.table}.Sanitize()
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s uuid PRIMARY KEY,
	%s text NOT NULL,
	%s text NOT NULL DEFAULT '',
	%s text NOT NULL,
	%s text NOT NULL DEFAULT '',
	%s text NOT NULL DEFAULT '',
	%s timestamptz NOT NULL
)`, table, colID, colReaderID, colReaderName, colKind, colStatus, colEvent, colAt),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s DESC)`,
			pgx.Identifier{s.table + "_reader_at_idx"}.Sanitize(), table, colReaderID, colAt),
	}

	for _, stmt := range stmts {
		if _, err := s.exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Append inserts one entry. A zero ID is replaced with a new UUID and a
// zero timestamp with the current time.
func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	if !entry.Kind.Valid() {
		return ErrInvalidKind
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}

	query, err := s.buildInsert(entry)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, query)
	return err
}

// List returns matching entries, newest first.
func (s *PostgresStore) List(ctx context.Context, query Query) ([]Entry, error) {
	sqlQuery, err := s.buildSelect(query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := s.db.Query(ctx, sqlQuery)
	s.debugLog("executed sql", "action", "list", "query", sqlQuery, "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		s.errorLog("history query failed", "error", err, "query", sqlQuery)
		return nil, errors.Join(ErrQueryFailed, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.warnLog("failed to close rows", "error", closeErr)
		}
	}()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var kind string
		if err := rows.Scan(&e.ID, &e.ReaderID, &e.ReaderName, &kind, &e.Status, &e.Event, &e.At); err != nil {
			s.errorLog("history scan failed", "error", err)
			return nil, errors.Join(ErrScanFailed, err)
		}
		e.Kind = Kind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return entries, nil
}

func (s *PostgresStore) buildInsert(e Entry) (string, error) {
	stmt := goqu.Dialect(dialectPostgres).
		Insert(s.table).
		Cols(colID, colReaderID, colReaderName, colKind, colStatus, colEvent, colAt).
		Vals(goqu.Vals{e.ID.String(), e.ReaderID, e.ReaderName, string(e.Kind), e.Status, e.Event, e.At.UTC()})

	query, _, err := stmt.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildQuery, err)
	}
	return query, nil
}

func (s *PostgresStore) buildSelect(q Query) (string, error) {
	stmt := goqu.Dialect(dialectPostgres).
		From(s.table).
		Select(colID, colReaderID, colReaderName, colKind, colStatus, colEvent, colAt).
		Order(goqu.I(colAt).Desc()).
		Limit(uint(q.limit()))

	if q.ReaderID != "" {
		stmt = stmt.Where(goqu.C(colReaderID).Eq(q.ReaderID))
	}
	if q.Kind != "" {
		stmt = stmt.Where(goqu.C(colKind).Eq(string(q.Kind)))
	}
	if !q.Since.IsZero() {
		stmt = stmt.Where(goqu.C(colAt).Gte(q.Since.UTC()))
	}

	query, _, err := stmt.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildQuery, err)
	}
	return query, nil
}

func (s *PostgresStore) exec(ctx context.Context, query string) (int64, error) {
	start := time.Now()
	n, err := s.db.Exec(ctx, query)
	s.debugLog("executed sql", "action", "exec", "query", query, "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		s.errorLog("history exec failed", "error", err, "query", query)
		return 0, errors.Join(ErrAppendFailed, err)
	}
	return n, nil
}

func (s *PostgresStore) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *PostgresStore) warnLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *PostgresStore) errorLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
