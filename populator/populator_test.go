package main

import (
	"database/sql"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"
)

func listTables(t *testing.T, path string) []string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestPopulate(t *testing.T) {
	dir := t.TempDir()
	opts := Options{OutDir: dir, Count: 3, Tables: 4, Rows: 3, DriftRate: 0.5, Seed: 42}

	dbs, err := Populate(opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, dbs, 3)

	// the first database carries the full base schema
	assert.Len(t, dbs[0].Tables, 4)
	assert.Equal(t, []string{"random_table_1", "random_table_2", "random_table_3", "random_table_4"}, listTables(t, dbs[0].Path))

	for _, db := range dbs {
		assert.FileExists(t, db.Path)
		for _, table := range db.Tables {
			require.NotEmpty(t, table.Columns)
			assert.Equal(t, "id", table.Columns[0].Name, "table %s in %s", table.Name, db.Key)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "sources.yaml"))
	require.NoError(t, err)
	var cfg sourcesFile
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	require.Len(t, cfg.Sources, 3)
	assert.Equal(t, sourceEntry{Key: "db2", Name: "DB2", Driver: "sqlite", Database: cfg.Sources[1].Database}, cfg.Sources[1])
	assert.True(t, filepath.IsAbs(cfg.Sources[1].Database))
}

func TestPopulate_SameSeedSameSchema(t *testing.T) {
	opts := Options{Count: 2, Tables: 5, Rows: 0, DriftRate: 0.3, Seed: 7}

	opts.OutDir = t.TempDir()
	first, err := Populate(opts, zaptest.NewLogger(t))
	require.NoError(t, err)

	opts.OutDir = t.TempDir()
	second, err := Populate(opts, zaptest.NewLogger(t))
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].Tables, second[i].Tables)
	}
}

func TestPopulate_RequiresOneDatabase(t *testing.T) {
	_, err := Populate(Options{OutDir: t.TempDir(), Count: 0}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestDriftSchema(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base := []Table{generateRandomTableSchema(rng, 1), generateRandomTableSchema(rng, 2)}

	assert.Equal(t, base, driftSchema(rand.New(rand.NewSource(1)), base, "db2", 0))

	// every roll succeeds: all base tables are dropped and one extra table is added
	all := driftSchema(rand.New(rand.NewSource(1)), base, "db2", 1)
	require.Len(t, all, 1)
	assert.Equal(t, "only_in_db2", all[0].Name)
}

func TestCreateTableSQL(t *testing.T) {
	table := Table{Name: "orders", Columns: []Column{
		{Name: "id", Type: TypeInteger},
		{Name: "total", Type: TypeReal},
		{Name: "note", Type: TypeText},
	}}

	assert.Equal(t, "CREATE TABLE \"orders\" (\n    \"id\" INTEGER PRIMARY KEY,\n    \"total\" REAL,\n    \"note\" TEXT\n)", createTableSQL(table))
	assert.Equal(t, `INSERT INTO "orders" ("total", "note") VALUES (?, ?)`, generateInsertStatement(table))
}
