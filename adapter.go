package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DatabaseAdapter defines the interface for database-specific operations
type DatabaseAdapter interface {
	Connect(connectionString string) (*sql.DB, error)
	GetConnectStringFromURL(url string) string
	BuildConnectString(src Source) string
	DefaultSchema() string
	GetTableList(ctx context.Context, db *sql.DB, schema string) ([]string, error)
	GetColumnList(ctx context.Context, db *sql.DB, schema, tableName string) ([]string, error)
}

// GetAdapter returns the appropriate adapter for the given database type
func GetAdapter(dbType string) (DatabaseAdapter, error) {
	switch strings.ToLower(dbType) {
	case "mysql", "mariadb":
		return &MySQLAdapter{}, nil
	case "postgres", "postgresql":
		return &PostgreSQLAdapter{}, nil
	case "sqlite", "sqlite3":
		return &SQLiteAdapter{}, nil
	case "mssql", "sqlserver":
		return &MSSQLAdapter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, dbType)
	}
}

// connectString picks the configured URL over the discrete connection fields.
func connectString(adapter DatabaseAdapter, src Source) string {
	if src.URL != "" {
		return adapter.GetConnectStringFromURL(src.URL)
	}
	return adapter.BuildConnectString(src)
}
