// Package sqlstore is the relational storage layer. Repositories are written
// once against Engine; each engine binds parameters natively and reports new
// row ids through a typed Result.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"bragawork/internal/config"
	"bragawork/internal/util"
)

var ErrNotFound = errors.New("record not found")

// Result is the outcome of a write. LastInsertID is zero on engines that do
// not report it from Exec (postgres); use InsertAndGetID there.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Engine is the single query contract every repository is written against.
type Engine interface {
	Dialect() string
	// Placeholder returns the native bind marker for the n-th (1-based) argument.
	Placeholder(n int) string

	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	Exec(ctx context.Context, query string, args ...any) (Result, error)

	// InsertAndGetID runs an INSERT written without a RETURNING clause and
	// returns the generated id.
	InsertAndGetID(ctx context.Context, query string, args ...any) (int64, error)

	HasColumn(ctx context.Context, table, column string) (bool, error)
	SchemaStatements() []string
	AddProjectStatusStatements() []string

	Ping(ctx context.Context) error
	Close() error
}

// Open builds the engine selected by cfg.Type. Only configuration errors are
// returned; a failed first ping is logged.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Engine, error) {
	var (
		engine Engine
		err    error
	)

	switch cfg.Type {
	case config.DBTypePostgres:
		engine, err = openPostgres(cfg)
	case config.DBTypeMySQL:
		engine, err = openMySQL(cfg)
	case config.DBTypeSQLite:
		engine, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	// the pool connects lazily; an unreachable server is reported through
	// health checks instead of stopping the process
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := engine.Ping(pingCtx); err != nil {
		util.Error("Database unreachable, continuing degraded",
			util.String("dialect", engine.Dialect()),
			util.ErrorField(err))
		return engine, nil
	}

	util.Info("Database connected",
		util.String("dialect", engine.Dialect()),
		util.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return engine, nil
}

func configurePool(db *sql.DB, cfg config.DatabaseConfig) {
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

// baseEngine carries the parts every database/sql backed engine shares.
type baseEngine struct {
	db *sql.DB
}

func (e *baseEngine) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return e.db.QueryContext(ctx, query, args...)
}

func (e *baseEngine) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return e.db.QueryRowContext(ctx, query, args...)
}

func (e *baseEngine) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, err
	}
	var out Result
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	return out, nil
}

// insertByLastInsertID serves engines whose driver reports the generated key.
func (e *baseEngine) insertByLastInsertID(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := e.db.ExecContext(ctx, StripReturning(query), args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

func (e *baseEngine) countColumn(ctx context.Context, query string, args ...any) (bool, error) {
	var n int
	if err := e.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (e *baseEngine) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

func (e *baseEngine) Close() error {
	return e.db.Close()
}

var returningClause = regexp.MustCompile(`(?i)\s+RETURNING\s+\w+\s*;?\s*$`)

// StripReturning drops a trailing "RETURNING <column>" clause.
func StripReturning(query string) string {
	return strings.TrimSpace(returningClause.ReplaceAllString(query, ""))
}

// placeholders renders n markers starting at from, joined by ", ".
func placeholders(e Engine, from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = e.Placeholder(from + i)
	}
	return strings.Join(parts, ", ")
}
