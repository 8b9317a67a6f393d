package history

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbAdapter hides the differences between pgx and database/sql handles.
type dbAdapter interface {
	Query(ctx context.Context, query string) (dbRows, error)
	Exec(ctx context.Context, query string) (int64, error)
}

type dbRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type pgxAdapter struct {
	pool *pgxpool.Pool
}

func (p pgxAdapter) Query(ctx context.Context, query string) (dbRows, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows: rows}, nil
}

func (p pgxAdapter) Exec(ctx context.Context, query string) (int64, error) {
	tag, err := p.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type pgxRows struct {
	rows pgx.Rows
}

func (r pgxRows) Next() bool             { return r.rows.Next() }
func (r pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r pgxRows) Err() error             { return r.rows.Err() }

func (r pgxRows) Close() error {
	r.rows.Close()
	return nil
}

// sqlAdapter serves both *sql.DB and *sqlx.DB.
type sqlAdapter struct {
	db interface {
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	}
}

func (s sqlAdapter) Query(ctx context.Context, query string) (dbRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s sqlAdapter) Exec(ctx context.Context, query string) (int64, error) {
	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
