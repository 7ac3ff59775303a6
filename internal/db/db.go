// Package db wraps a database/sql handle to the oracle reference engine.
package db

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
)

// DB wraps *sql.DB with optional pre-flight validation and observation hooks.
// Both hooks are nil unless the caller sets them; the oracle adaptor does its
// own validation and leaves them unset.
type DB struct {
	*sql.DB

	// Validate, if set, is called with every statement before it is sent to
	// the server. A non-nil error is returned to the caller without a round
	// trip to the database.
	Validate func(sql string) error

	// Observe, if set, is called after every statement with the error (if
	// any) the driver returned.
	Observe func(sql string, err error)
}

// Open opens a MySQL-protocol connection pool for the given DSN.
func Open(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{DB: sqlDB}, nil
}

// ExecContext validates then executes a statement, observing the outcome.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if d.Validate != nil {
		if err := d.Validate(query); err != nil {
			d.observe(query, err)
			return nil, err
		}
	}
	res, err := d.DB.ExecContext(ctx, query, args...)
	d.observe(query, err)
	return res, err
}

// QueryContext validates then runs a query, observing the outcome.
func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if d.Validate != nil {
		if err := d.Validate(query); err != nil {
			d.observe(query, err)
			return nil, err
		}
	}
	rows, err := d.DB.QueryContext(ctx, query, args...)
	d.observe(query, err)
	return rows, err
}

// QueryRowContext runs a single-row query. Validation/observe hooks are
// skipped here since *sql.Row defers error reporting to Scan.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.DB.QueryRowContext(ctx, query, args...)
}

func (d *DB) observe(query string, err error) {
	if d.Observe != nil {
		d.Observe(query, err)
	}
}
