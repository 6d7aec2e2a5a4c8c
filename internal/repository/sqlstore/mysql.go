package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"bragawork/internal/config"

	"github.com/go-sql-driver/mysql"
)

type mysqlEngine struct {
	baseEngine
}

func openMySQL(cfg config.DatabaseConfig) (Engine, error) {
	db, err := sql.Open("mysql", MySQLDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	configurePool(db, cfg)
	return NewMySQL(db), nil
}

// MySQLDSN builds the driver DSN. ClientFoundRows makes UPDATE report matched
// rows, so an update that changes nothing is not mistaken for a missing row.
func MySQLDSN(cfg config.DatabaseConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}

// NewMySQL wraps an already opened mysql handle.
func NewMySQL(db *sql.DB) Engine {
	return &mysqlEngine{baseEngine{db: db}}
}

func (e *mysqlEngine) Dialect() string { return config.DBTypeMySQL }

func (e *mysqlEngine) Placeholder(int) string { return "?" }

func (e *mysqlEngine) InsertAndGetID(ctx context.Context, query string, args ...any) (int64, error) {
	return e.insertByLastInsertID(ctx, query, args...)
}

func (e *mysqlEngine) HasColumn(ctx context.Context, table, column string) (bool, error) {
	return e.countColumn(ctx,
		`SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?`,
		table, column)
}

func (e *mysqlEngine) SchemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS admin_users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			full_name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			is_active BOOLEAN DEFAULT TRUE,
			last_login TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS quote_requests (
			id INT AUTO_INCREMENT PRIMARY KEY,
			first_name VARCHAR(50) NOT NULL,
			last_name VARCHAR(50) NOT NULL,
			email VARCHAR(255) NOT NULL,
			country_code VARCHAR(10) NOT NULL,
			phone VARCHAR(20) NOT NULL,
			project_description TEXT NOT NULL,
			status VARCHAR(20) DEFAULT 'pending',
			admin_notes TEXT NULL,
			assigned_to INT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT chk_quote_status CHECK (status IN ('pending', 'in_progress', 'completed', 'rejected'))
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id INT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT NULL,
			media_url VARCHAR(500) NOT NULL,
			media_type VARCHAR(10) DEFAULT 'image',
			project_link VARCHAR(500) NULL,
			status VARCHAR(20) DEFAULT 'pendente',
			is_active BOOLEAN DEFAULT TRUE,
			display_order INT DEFAULT 0,
			views_count INT DEFAULT 0,
			created_by INT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT chk_media_type CHECK (media_type IN ('image', 'video')),
			CONSTRAINT chk_project_status CHECK (status IN ('pendente', 'aprovado', 'cancelado'))
		)`,
	}
}

func (e *mysqlEngine) AddProjectStatusStatements() []string {
	return []string{
		`ALTER TABLE projects ADD COLUMN status VARCHAR(20) DEFAULT 'aprovado', ADD CONSTRAINT chk_project_status CHECK (status IN ('pendente', 'aprovado', 'cancelado'))`,
	}
}
