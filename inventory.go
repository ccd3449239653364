package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Catalog lists the tables and columns of one source over an open connection.
type Catalog interface {
	ListTables(ctx context.Context) (NameSet, error)
	ListColumns(ctx context.Context, table string) ColumnResult
	Close() error
}

// CatalogOpener connects to a source. Tests substitute fakes.
type CatalogOpener func(ctx context.Context, src Source) (Catalog, error)

type sqlCatalog struct {
	adapter DatabaseAdapter
	db      *sql.DB
	schema  string
	timeout time.Duration
}

func sqlCatalogOpener(timeout time.Duration) CatalogOpener {
	return func(ctx context.Context, src Source) (Catalog, error) {
		cat, err := openSQLCatalog(ctx, src, timeout)
		if err != nil {
			return nil, err
		}
		return cat, nil
	}
}

func openSQLCatalog(ctx context.Context, src Source, timeout time.Duration) (*sqlCatalog, error) {
	adapter, err := GetAdapter(src.Driver)
	if err != nil {
		return nil, err
	}

	db, err := adapter.Connect(connectString(adapter, src))
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}

	c := newSQLCatalog(adapter, db, src.Schema, timeout)

	pingCtx, cancel := c.queryContext(ctx)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return c, nil
}

func newSQLCatalog(adapter DatabaseAdapter, db *sql.DB, schema string, timeout time.Duration) *sqlCatalog {
	if schema == "" {
		schema = adapter.DefaultSchema()
	}
	return &sqlCatalog{
		adapter: adapter,
		db:      db,
		schema:  schema,
		timeout: timeout,
	}
}

func (c *sqlCatalog) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *sqlCatalog) ListTables(ctx context.Context) (NameSet, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	tables, err := c.adapter.GetTableList(ctx, c.db, c.schema)
	if err != nil {
		return nil, err
	}
	return newNameSet(tables...), nil
}

func (c *sqlCatalog) ListColumns(ctx context.Context, table string) ColumnResult {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	columns, err := c.adapter.GetColumnList(ctx, c.db, c.schema, table)
	if err != nil {
		return ColumnResult{Columns: NameSet{}, Err: err}
	}
	return ColumnResult{Columns: newNameSet(columns...)}
}

func (c *sqlCatalog) Close() error {
	return c.db.Close()
}

// Collector gathers an Inventory from each source.
type Collector struct {
	open   CatalogOpener
	logger *zap.Logger
}

func NewCollector(open CatalogOpener, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{open: open, logger: logger}
}

// Collect lists the tables of src and the columns of each of them. Connection and
// table listing failures are fatal; column failures are recorded on the inventory.
func (c *Collector) Collect(ctx context.Context, src Source) (*Inventory, error) {
	log := c.logger.With(zap.String("source", src.Key))

	cat, err := c.open(ctx, src)
	if err != nil {
		return nil, &SourceError{Source: src, Op: "connect", Err: err}
	}
	defer func() {
		if err := cat.Close(); err != nil {
			log.Warn("Failed to close connection", zap.String("error", sanitizeError(err)))
		}
	}()

	tables, err := cat.ListTables(ctx)
	if err != nil {
		return nil, &SourceError{Source: src, Op: "list tables", Err: err}
	}

	inv := &Inventory{
		Source:  src,
		Tables:  tables,
		Columns: make(map[string]ColumnResult, len(tables)),
	}
	for _, table := range tables.Sorted() {
		if err := ctx.Err(); err != nil {
			return nil, &SourceError{Source: src, Op: "list columns", Err: err}
		}

		res := cat.ListColumns(ctx, table)
		if res.Failed() {
			log.Warn("Failed to fetch columns, treating table as empty",
				zap.String("table", table),
				zap.String("error", sanitizeError(res.Err)))
		}
		inv.Columns[table] = res
	}

	log.Info("Inventory collected",
		zap.Int("tables", len(inv.Tables)),
		zap.Int("column_failures", len(inv.Failures())))

	return inv, nil
}

// CollectAll returns one inventory per source, in source order. With parallel set,
// sources are queried concurrently and the first fatal error cancels the others.
func (c *Collector) CollectAll(ctx context.Context, sources []Source, parallel bool) ([]*Inventory, error) {
	invs := make([]*Inventory, len(sources))

	if !parallel {
		for i, src := range sources {
			inv, err := c.Collect(ctx, src)
			if err != nil {
				return nil, err
			}
			invs[i] = inv
		}
		return invs, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			inv, err := c.Collect(gctx, src)
			if err != nil {
				return err
			}
			invs[i] = inv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return invs, nil
}
