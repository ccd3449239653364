package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQLAdapter implements DatabaseAdapter for MySQL and MariaDB
type MySQLAdapter struct{}

func (a *MySQLAdapter) Connect(connectionString string) (*sql.DB, error) {
	if !strings.Contains(connectionString, "tcp(") && strings.Contains(connectionString, "@") {
		parts := strings.SplitN(connectionString, "@", 2)
		if len(parts) == 2 {
			userPass := parts[0]
			hostDBPart := parts[1]

			// Split hostDBPart by first slash to separate host:port from dbname
			hostPortDB := strings.SplitN(hostDBPart, "/", 2)
			if len(hostPortDB) == 2 {
				connectionString = fmt.Sprintf("%s@tcp(%s)/%s", userPass, hostPortDB[0], hostPortDB[1])
			}
		}
	}

	return sql.Open("mysql", connectionString)
}

func (a *MySQLAdapter) GetConnectStringFromURL(url string) string {
	// For MySQL, remove mysql:// prefix if present
	if strings.HasPrefix(url, "mysql://") {
		return url[8:]
	}
	return url
}

func (a *MySQLAdapter) BuildConnectString(src Source) string {
	port := src.Port
	if port == 0 {
		port = 3306
	}

	cfg := mysql.NewConfig()
	cfg.User = src.User
	cfg.Passwd = src.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(src.Host, strconv.Itoa(port))
	cfg.DBName = src.Database
	return cfg.FormatDSN()
}

// DefaultSchema is empty so queries fall back to DATABASE().
func (a *MySQLAdapter) DefaultSchema() string {
	return ""
}

func (a *MySQLAdapter) GetTableList(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	if schema == "" {
		var current sql.NullString
		if err := db.QueryRowContext(ctx, `SELECT DATABASE()`).Scan(&current); err != nil {
			return nil, fmt.Errorf("resolve current database: %w", err)
		}
		if !current.Valid || current.String == "" {
			return nil, ErrNoDatabaseSelected
		}
		schema = current.String
	}

	rows, err := db.QueryContext(ctx, `
		SELECT TABLE_NAME
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`, schema)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return scanNames(rows)
}

func (a *MySQLAdapter) GetColumnList(ctx context.Context, db *sql.DB, schema, tableName string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT COLUMN_NAME
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
		  AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	return scanNames(rows)
}
