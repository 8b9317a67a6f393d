package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// Driver names accepted by OpenPostgres.
const (
	DriverPGX  = "pgx"
	DriverPQ   = "pq"
	DriverSQLX = "sqlx"
)

const (
	defaultMaxOpenConns    = 4
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = time.Hour
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultConnectTimeout  = 5 * time.Second
)

// OpenPostgres connects to dsn with the named driver, pings it, creates the
// schema and returns the store with a function that releases the handle.
func OpenPostgres(ctx context.Context, dsn, driver string, options ...Option) (*PostgresStore, func(), error) {
	var (
		store   *PostgresStore
		release func()
		err     error
	)

	switch driver {
	case DriverPGX, "":
		store, release, err = openPGX(ctx, dsn, options)
	case DriverPQ:
		store, release, err = openSQL(ctx, dsn, options)
	case DriverSQLX:
		store, release, err = openSQLX(ctx, dsn, options)
	default:
		return nil, nil, fmt.Errorf("unknown history driver %q", driver)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := store.EnsureSchema(ctx); err != nil {
		release()
		return nil, nil, err
	}
	return store, release, nil
}

func openPGX(ctx context.Context, dsn string, options []Option) (*PostgresStore, func(), error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = defaultMaxOpenConns
	cfg.MaxConnLifetime = defaultConnMaxLifetime
	cfg.MaxConnIdleTime = defaultConnMaxIdleTime
	cfg.ConnConfig.ConnectTimeout = defaultConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	store, err := NewPostgresStoreFromPGXPool(pool, options...)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

func openSQL(ctx context.Context, dsn string, options []Option) (*PostgresStore, func(), error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	configurePool(db)
	release := func() { _ = db.Close() }

	if err := db.PingContext(ctx); err != nil {
		release()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	store, err := NewPostgresStoreFromSQLDB(db, options...)
	if err != nil {
		release()
		return nil, nil, err
	}
	return store, release, nil
}

func openSQLX(ctx context.Context, dsn string, options []Option) (*PostgresStore, func(), error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	configurePool(db.DB)
	release := func() { _ = db.Close() }

	if err := db.PingContext(ctx); err != nil {
		release()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	store, err := NewPostgresStoreFromSQLX(db, options...)
	if err != nil {
		release()
		return nil, nil, err
	}
	return store, release, nil
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)
}
