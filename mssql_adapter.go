package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
)

// MSSQLAdapter implements DatabaseAdapter for SQL Server
type MSSQLAdapter struct{}

func (a *MSSQLAdapter) Connect(connectionString string) (*sql.DB, error) {
	return sql.Open("sqlserver", connectionString)
}

func (a *MSSQLAdapter) GetConnectStringFromURL(url string) string {
	// The driver only understands the sqlserver:// scheme
	if strings.HasPrefix(url, "mssql://") {
		return "sqlserver://" + url[8:]
	}
	return url
}

func (a *MSSQLAdapter) BuildConnectString(src Source) string {
	port := src.Port
	if port == 0 {
		port = 1433
	}

	query := url.Values{}
	if src.Database != "" {
		query.Add("database", src.Database)
	}

	u := url.URL{
		Scheme:   "sqlserver",
		Host:     net.JoinHostPort(src.Host, strconv.Itoa(port)),
		RawQuery: query.Encode(),
	}
	if src.User != "" {
		u.User = url.UserPassword(src.User, src.Password)
	}
	return u.String()
}

func (a *MSSQLAdapter) DefaultSchema() string {
	return "dbo"
}

func (a *MSSQLAdapter) GetTableList(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
	SELECT TABLE_NAME
	FROM INFORMATION_SCHEMA.TABLES
	WHERE TABLE_SCHEMA = @schema AND TABLE_TYPE = 'BASE TABLE'
	ORDER BY TABLE_NAME
	`, sql.Named("schema", schema))
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return scanNames(rows)
}

func (a *MSSQLAdapter) GetColumnList(ctx context.Context, db *sql.DB, schema, tableName string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
	SELECT COLUMN_NAME
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_SCHEMA = @schema AND TABLE_NAME = @table
	ORDER BY ORDINAL_POSITION
	`, sql.Named("schema", schema), sql.Named("table", tableName))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	return scanNames(rows)
}
