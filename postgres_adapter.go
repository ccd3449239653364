package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/lib/pq"
)

// PostgreSQLAdapter implements DatabaseAdapter for PostgreSQL
type PostgreSQLAdapter struct{}

func (a *PostgreSQLAdapter) Connect(connectionString string) (*sql.DB, error) {
	return sql.Open("postgres", connectionString)
}

func (a *PostgreSQLAdapter) GetConnectStringFromURL(url string) string {
	// For Postgres, the URL format should already be compatible
	return url
}

func (a *PostgreSQLAdapter) BuildConnectString(src Source) string {
	port := src.Port
	if port == 0 {
		port = 5432
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(src.Host, strconv.Itoa(port)),
		Path:   "/" + src.Database,
	}
	if src.User != "" {
		u.User = url.UserPassword(src.User, src.Password)
	}
	if src.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {src.SSLMode}}.Encode()
	}
	return u.String()
}

func (a *PostgreSQLAdapter) DefaultSchema() string {
	return "public"
}

func (a *PostgreSQLAdapter) GetTableList(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, schema)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return scanNames(rows)
}

func (a *PostgreSQLAdapter) GetColumnList(ctx context.Context, db *sql.DB, schema, tableName string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	return scanNames(rows)
}
