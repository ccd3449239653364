package main

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// Define possible column types
type ColumnType int

const (
	TypeInteger ColumnType = iota
	TypeReal
	TypeText
	TypeBlob
	TypeDateTime
)

// Define column structure
type Column struct {
	Name     string
	Type     ColumnType
	TextSize int // For TEXT columns: 0=small, 1=medium, 2=large
}

// Define table structure
type Table struct {
	Name    string
	Columns []Column
}

// Options controls how many databases are generated and how far they drift apart.
type Options struct {
	OutDir string
	Count  int
	Tables int
	Rows   int
	// DriftRate is the probability that a table or column of the base schema is left
	// out of a database, and that a database gets an extra table or column of its own.
	DriftRate float64
	Seed      int64
}

// Database is one generated SQLite file.
type Database struct {
	Key    string
	Path   string
	Tables []Table
}

// Populate writes Count SQLite databases sharing a random base schema with random drift,
// plus a sources.yaml that points the compare command at them.
func Populate(opts Options, logg *zap.Logger) ([]Database, error) {
	if opts.Count < 1 {
		return nil, fmt.Errorf("count must be at least 1")
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	base := make([]Table, opts.Tables)
	for i := range base {
		base[i] = generateRandomTableSchema(rng, i+1)
	}

	dbs := make([]Database, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		key := fmt.Sprintf("db%d", i+1)
		tables := base
		if i > 0 {
			tables = driftSchema(rng, base, key, opts.DriftRate)
		}

		db := Database{
			Key:    key,
			Path:   filepath.Join(opts.OutDir, key+".sqlite"),
			Tables: tables,
		}
		if err := writeDatabase(rng, db, opts.Rows); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		logg.Info("Database generated",
			zap.String("key", key),
			zap.String("path", db.Path),
			zap.Int("tables", len(tables)))
		dbs = append(dbs, db)
	}

	configPath := filepath.Join(opts.OutDir, "sources.yaml")
	if err := writeSourcesConfig(configPath, dbs); err != nil {
		return nil, err
	}
	logg.Info("Sources config written", zap.String("file", configPath))

	return dbs, nil
}

// driftSchema copies base, dropping tables and columns and adding extras at random.
// The id column is always kept.
func driftSchema(rng *rand.Rand, base []Table, key string, rate float64) []Table {
	var tables []Table
	for _, table := range base {
		if rng.Float64() < rate {
			continue
		}
		drifted := Table{Name: table.Name}
		for _, col := range table.Columns {
			if col.Name != "id" && rng.Float64() < rate {
				continue
			}
			drifted.Columns = append(drifted.Columns, col)
		}
		if rng.Float64() < rate {
			drifted.Columns = append(drifted.Columns, Column{Name: "extra_" + key, Type: TypeText})
		}
		tables = append(tables, drifted)
	}

	if rng.Float64() < rate {
		tables = append(tables, Table{
			Name:    "only_in_" + key,
			Columns: []Column{{Name: "id", Type: TypeInteger}, {Name: "note", Type: TypeText}},
		})
	}
	return tables
}

func writeDatabase(rng *rand.Rand, d Database, rows int) error {
	// Remove existing database if it exists
	os.Remove(d.Path)

	db, err := sql.Open("sqlite", d.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, table := range d.Tables {
		if _, err := db.Exec(createTableSQL(table)); err != nil {
			return fmt.Errorf("create table %s: %w", table.Name, err)
		}
		if rows > 0 && len(table.Columns) > 1 {
			if err := insertRows(rng, db, table, rows); err != nil {
				return fmt.Errorf("insert into %s: %w", table.Name, err)
			}
		}
	}
	return nil
}

func insertRows(rng *rand.Rand, db *sql.DB, table Table, rows int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(generateInsertStatement(table))
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := 0; i < rows; i++ {
		// Skip ID which is auto-increment
		values := make([]interface{}, 0, len(table.Columns)-1)
		for _, col := range table.Columns[1:] {
			values = append(values, generateRandomValue(rng, col))
		}
		if _, err := stmt.Exec(values...); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

type sourceEntry struct {
	Key      string `yaml:"key"`
	Name     string `yaml:"name"`
	Driver   string `yaml:"driver"`
	Database string `yaml:"database"`
}

type sourcesFile struct {
	Sources []sourceEntry `yaml:"sources"`
}

func writeSourcesConfig(path string, dbs []Database) error {
	var file sourcesFile
	for _, db := range dbs {
		abs, err := filepath.Abs(db.Path)
		if err != nil {
			return err
		}
		file.Sources = append(file.Sources, sourceEntry{
			Key:      db.Key,
			Name:     strings.ToUpper(db.Key),
			Driver:   "sqlite",
			Database: abs,
		})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("marshal sources config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sources config: %w", err)
	}
	return nil
}

// Generate a random table schema
func generateRandomTableSchema(rng *rand.Rand, tableIndex int) Table {
	columnCount := 5 + rng.Intn(16) // Random number between 5 and 20 columns
	table := Table{
		Name:    fmt.Sprintf("random_table_%d", tableIndex),
		Columns: make([]Column, 0, columnCount),
	}

	// Add primary key column (always INTEGER)
	table.Columns = append(table.Columns, Column{
		Name: "id",
		Type: TypeInteger,
	})

	for i := 0; i < columnCount-1; i++ {
		columnType := ColumnType(rng.Intn(5))
		textSize := 0
		if columnType == TypeText {
			textSize = rng.Intn(3)
		}

		table.Columns = append(table.Columns, Column{
			Name:     fmt.Sprintf("col_%d", i+1),
			Type:     columnType,
			TextSize: textSize,
		})
	}

	return table
}

// Create SQL for table creation
func createTableSQL(table Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %q (\n", table.Name)

	for i, col := range table.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}

		fmt.Fprintf(&b, "    %q ", col.Name)

		switch col.Type {
		case TypeInteger:
			b.WriteString("INTEGER")
			if col.Name == "id" {
				b.WriteString(" PRIMARY KEY")
			}
		case TypeReal:
			b.WriteString("REAL")
		case TypeText:
			b.WriteString("TEXT")
		case TypeBlob:
			b.WriteString("BLOB")
		case TypeDateTime:
			b.WriteString("DATETIME")
		}
	}

	b.WriteString("\n)")
	return b.String()
}

// Generate insert statement for a specific table, skipping the id column
func generateInsertStatement(table Table) string {
	names := make([]string, 0, len(table.Columns)-1)
	placeholders := make([]string, 0, len(table.Columns)-1)
	for _, col := range table.Columns[1:] {
		names = append(names, fmt.Sprintf("%q", col.Name))
		placeholders = append(placeholders, "?")
	}

	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		table.Name, strings.Join(names, ", "), strings.Join(placeholders, ", "))
}

// Generate random value based on column type
func generateRandomValue(rng *rand.Rand, col Column) interface{} {
	switch col.Type {
	case TypeInteger:
		return rng.Int63()
	case TypeReal:
		return rng.Float64()
	case TypeText:
		switch col.TextSize {
		case 0: // Small
			return randomString(rng, 10+rng.Intn(20))
		case 1: // Medium
			return randomString(rng, 100+rng.Intn(200))
		default: // Large
			return randomString(rng, 1000+rng.Intn(4000))
		}
	case TypeBlob:
		return randomBytes(rng, 500+rng.Intn(1500))
	case TypeDateTime:
		return time.Now().Add(-time.Duration(rng.Intn(86400*365)) * time.Second)
	default:
		return nil
	}
}

func randomString(rng *rand.Rand, length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()-_=+[]{}|;:,.<>?/"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rng.Intn(len(charset))]
	}
	return string(b)
}

func randomBytes(rng *rand.Rand, length int) []byte {
	bytes := make([]byte, length)
	rng.Read(bytes)
	return bytes
}
