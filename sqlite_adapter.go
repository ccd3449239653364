package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteAdapter implements DatabaseAdapter for SQLite
type SQLiteAdapter struct{}

// Connect opens an existing database file read-only. A missing file is an error
// rather than a new empty database.
func (a *SQLiteAdapter) Connect(connectionString string) (*sql.DB, error) {
	if connectionString == ":memory:" || strings.HasPrefix(connectionString, "file:") {
		return sql.Open("sqlite3", connectionString)
	}
	if connectionString == "" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}
	if _, err := os.Stat(connectionString); err != nil {
		return nil, fmt.Errorf("sqlite database: %w", err)
	}
	return sql.Open("sqlite3", "file:"+connectionString+"?mode=ro")
}

func (a *SQLiteAdapter) GetConnectStringFromURL(url string) string {
	// For SQLite, remove sqlite:// prefix if present
	if strings.HasPrefix(url, "sqlite://") {
		return url[9:]
	}
	return url
}

// BuildConnectString treats Database as the file path.
func (a *SQLiteAdapter) BuildConnectString(src Source) string {
	return src.Database
}

func (a *SQLiteAdapter) DefaultSchema() string {
	return "main"
}

func (a *SQLiteAdapter) GetTableList(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name
		FROM pragma_table_list
		WHERE schema = ? AND type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name
	`, schema)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return scanNames(rows)
}

func (a *SQLiteAdapter) GetColumnList(ctx context.Context, db *sql.DB, schema, tableName string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?, ?) ORDER BY cid`, tableName, schema)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	return scanNames(rows)
}
