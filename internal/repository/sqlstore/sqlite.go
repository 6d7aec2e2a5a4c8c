package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bragawork/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteEngine backs local development and the test suite.
type sqliteEngine struct {
	baseEngine
}

func openSQLite(cfg config.DatabaseConfig) (Engine, error) {
	dsn := cfg.Path
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// one writer; an in-memory database also only exists per connection
	db.SetMaxOpenConns(1)
	return NewSQLite(db), nil
}

// NewSQLite wraps an already opened sqlite3 handle.
func NewSQLite(db *sql.DB) Engine {
	return &sqliteEngine{baseEngine{db: db}}
}

func (e *sqliteEngine) Dialect() string { return config.DBTypeSQLite }

func (e *sqliteEngine) Placeholder(int) string { return "?" }

func (e *sqliteEngine) InsertAndGetID(ctx context.Context, query string, args ...any) (int64, error) {
	return e.insertByLastInsertID(ctx, query, args...)
}

func (e *sqliteEngine) HasColumn(ctx context.Context, table, column string) (bool, error) {
	return e.countColumn(ctx, `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column)
}

func (e *sqliteEngine) SchemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS admin_users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username VARCHAR(50) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			full_name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			is_active BOOLEAN DEFAULT 1,
			last_login TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS quote_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name VARCHAR(50) NOT NULL,
			last_name VARCHAR(50) NOT NULL,
			email VARCHAR(255) NOT NULL,
			country_code VARCHAR(10) NOT NULL,
			phone VARCHAR(20) NOT NULL,
			project_description TEXT NOT NULL,
			status VARCHAR(20) DEFAULT 'pending',
			admin_notes TEXT NULL,
			assigned_to INTEGER NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT chk_quote_status CHECK (status IN ('pending', 'in_progress', 'completed', 'rejected'))
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title VARCHAR(200) NOT NULL,
			description TEXT NULL,
			media_url VARCHAR(500) NOT NULL,
			media_type VARCHAR(10) DEFAULT 'image',
			project_link VARCHAR(500) NULL,
			status VARCHAR(20) DEFAULT 'pendente',
			is_active BOOLEAN DEFAULT 1,
			display_order INTEGER DEFAULT 0,
			views_count INTEGER DEFAULT 0,
			created_by INTEGER NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT chk_media_type CHECK (media_type IN ('image', 'video')),
			CONSTRAINT chk_project_status CHECK (status IN ('pendente', 'aprovado', 'cancelado'))
		)`,
	}
}

// sqlite cannot add a table constraint after the fact; the column check is
// enforced by the service layer on these legacy databases.
func (e *sqliteEngine) AddProjectStatusStatements() []string {
	return []string{
		`ALTER TABLE projects ADD COLUMN status VARCHAR(20) DEFAULT 'aprovado'`,
	}
}
