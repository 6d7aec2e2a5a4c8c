package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"bragawork/internal/config"

	_ "github.com/lib/pq"
)

type postgresEngine struct {
	baseEngine
}

func openPostgres(cfg config.DatabaseConfig) (Engine, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	configurePool(db, cfg)
	return NewPostgres(db), nil
}

// NewPostgres wraps an already opened postgres handle.
func NewPostgres(db *sql.DB) Engine {
	return &postgresEngine{baseEngine{db: db}}
}

func (e *postgresEngine) Dialect() string { return config.DBTypePostgres }

func (e *postgresEngine) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// InsertAndGetID appends RETURNING id; lib/pq does not implement LastInsertId.
func (e *postgresEngine) InsertAndGetID(ctx context.Context, query string, args ...any) (int64, error) {
	q := StripReturning(query)
	q = strings.TrimSuffix(q, ";") + " RETURNING id"

	var id int64
	if err := e.db.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (e *postgresEngine) HasColumn(ctx context.Context, table, column string) (bool, error) {
	return e.countColumn(ctx,
		`SELECT COUNT(*) FROM information_schema.columns WHERE table_name = $1 AND column_name = $2`,
		table, column)
}

func (e *postgresEngine) SchemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS admin_users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			full_name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			is_active BOOLEAN DEFAULT TRUE,
			last_login TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS quote_requests (
			id SERIAL PRIMARY KEY,
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
			id SERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT NULL,
			media_url VARCHAR(500) NOT NULL,
			media_type VARCHAR(10) DEFAULT 'image',
			project_link VARCHAR(500) NULL,
			status VARCHAR(20) DEFAULT 'pendente',
			is_active BOOLEAN DEFAULT TRUE,
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

func (e *postgresEngine) AddProjectStatusStatements() []string {
	return []string{
		`ALTER TABLE projects ADD COLUMN status VARCHAR(20) DEFAULT 'aprovado'`,
		`ALTER TABLE projects ADD CONSTRAINT chk_project_status CHECK (status IN ('pendente', 'aprovado', 'cancelado'))`,
	}
}
