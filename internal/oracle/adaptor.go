// Package oracle drives a MySQL-wire-protocol reference engine and shapes
// its results into the SUT's textual on-the-wire form, so a RuntimeSql
// instruction's expected response can be derived dynamically instead of
// hand-written.
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"miniobench/internal/db"
)

// Config describes how to reach the reference engine.
type Config struct {
	DSN      string
	Database string
}

// Adaptor keeps one reference connection per named Wire Client connection,
// mirroring the SUT's connection map one-to-one.
type Adaptor struct {
	cfg     Config
	clients map[string]*db.DB
	current string

	// Validate, when set, is called on every statement before it reaches
	// the reference connection; a non-nil error short-circuits Execute
	// without ever touching the driver.
	Validate func(sql string) error
}

// New builds an Adaptor for the given configuration.
func New(cfg Config) *Adaptor {
	return &Adaptor{cfg: cfg, clients: make(map[string]*db.DB)}
}

// Init connects using the configured DSN, drops and recreates the
// per-player database, USEs it, and registers the connection under
// defaultClient.
func (a *Adaptor) Init(ctx context.Context, defaultClient string) error {
	conn, err := db.Open(a.cfg.DSN)
	if err != nil {
		return errors.Wrap(err, "open oracle connection")
	}
	quoted := quoteIdent(a.cfg.Database)
	if _, err := conn.ExecContext(ctx, "DROP DATABASE IF EXISTS "+quoted); err != nil {
		return errors.Wrap(err, "drop oracle database")
	}
	if _, err := conn.ExecContext(ctx, "CREATE DATABASE "+quoted); err != nil {
		return errors.Wrap(err, "create oracle database")
	}
	if _, err := conn.ExecContext(ctx, "USE "+quoted); err != nil {
		return errors.Wrap(err, "use oracle database")
	}
	a.clients[defaultClient] = conn
	a.current = defaultClient
	return nil
}

// NewConnect opens an additional reference session under clientName and
// USEs the same database already established by Init.
func (a *Adaptor) NewConnect(ctx context.Context, clientName string) error {
	if _, exists := a.clients[clientName]; exists {
		return errors.Errorf("oracle: client %q already exists", clientName)
	}
	conn, err := db.Open(a.cfg.DSN)
	if err != nil {
		return errors.Wrap(err, "open oracle connection")
	}
	if _, err := conn.ExecContext(ctx, "USE "+quoteIdent(a.cfg.Database)); err != nil {
		return errors.Wrap(err, "use oracle database")
	}
	a.clients[clientName] = conn
	return nil
}

// SetCurrent switches the client used by subsequent Execute calls.
func (a *Adaptor) SetCurrent(clientName string) error {
	if _, exists := a.clients[clientName]; !exists {
		return errors.Errorf("oracle: no such client %q", clientName)
	}
	a.current = clientName
	return nil
}

// Close closes every reference connection.
func (a *Adaptor) Close() error {
	var firstErr error
	for _, c := range a.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Result is the shaped outcome of running a statement against the current
// reference connection: column header, rendered rows, and any driver error.
type Result struct {
	Header []string
	Rows   [][]string
	Err    error
}

// Execute runs sql against the current reference connection and renders the
// result per the cell rendering rules in rows.go.
func (a *Adaptor) Execute(ctx context.Context, statement string) Result {
	conn, ok := a.clients[a.current]
	if !ok {
		return Result{Err: errors.Errorf("oracle: no current client (did you call Init?)")}
	}
	if a.Validate != nil {
		if err := a.Validate(statement); err != nil {
			return Result{Err: errors.Wrap(err, "oracle: statement failed validation")}
		}
	}

	trimmed := strings.TrimSpace(statement)
	if !looksLikeQuery(trimmed) {
		if _, err := conn.ExecContext(ctx, statement); err != nil {
			return Result{Err: err}
		}
		return Result{}
	}

	rows, err := conn.QueryContext(ctx, statement)
	if err != nil {
		return Result{Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Result{Err: err}
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return Result{Err: err}
	}

	var rendered [][]string
	for rows.Next() {
		raw := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return Result{Err: err}
		}
		row := make([]string, len(cols))
		for i, v := range raw {
			row[i] = renderCell(v, types[i].DatabaseTypeName())
		}
		rendered = append(rendered, row)
	}
	if err := rows.Err(); err != nil {
		return Result{Err: err}
	}

	return Result{Header: cols, Rows: rendered}
}

// FormatLines joins header and rows using the SUT's " | " field separator.
// Header is omitted when removeHeader is set.
func (r Result) FormatLines(removeHeader bool) []string {
	const sep = " | "
	lines := make([]string, 0, len(r.Rows)+1)
	if !removeHeader && len(r.Header) > 0 {
		lines = append(lines, strings.Join(r.Header, sep))
	}
	for _, row := range r.Rows {
		lines = append(lines, strings.Join(row, sep))
	}
	return lines
}

func looksLikeQuery(statement string) bool {
	upper := strings.ToUpper(statement)
	return strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "SHOW") || strings.HasPrefix(upper, "EXPLAIN")
}

func quoteIdent(name string) string {
	if strings.HasPrefix(name, "`") {
		return name
	}
	return fmt.Sprintf("`%s`", name)
}
