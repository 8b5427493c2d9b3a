// Package postgres applies the TPC-H schema to PostgreSQL and bulk-loads
// validated rows over pgx. It is safe for concurrent use by multiple
// goroutines, though a benchmark load runs it from a single pipeline.
//
// The bulk-load flow mirrors a constraint-deferred load: drop foreign keys
// and secondary indexes, truncate, stream each entity with COPY, then
// recreate indexes and foreign keys and refresh planner statistics.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koustreak/tpchkit/internal/ddl"
	"github.com/koustreak/tpchkit/internal/errs"
	"github.com/koustreak/tpchkit/internal/logger"
	"github.com/koustreak/tpchkit/internal/schema"
)

// Applier owns a pgx connection pool pointed at the target database.
type Applier struct {
	pool    *pgxpool.Pool
	dialect ddl.Postgres
	log     *logger.Logger
}

// New connects to PostgreSQL using the provided Config and returns an
// Applier. It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *ddl.Config) (*Applier, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create connection pool", err)
	}

	a := &Applier{pool: pool, log: logger.FromContext(ctx)}

	if err := a.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

// Ping verifies the database is reachable.
func (a *Applier) Ping(ctx context.Context) error {
	if err := a.pool.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close drains the connection pool. Call when the application shuts down.
func (a *Applier) Close() {
	a.pool.Close()
}

// CreateSchema creates the eight tables in dependency order. Foreign keys
// and indexes are applied separately so loads can run unconstrained.
func (a *Applier) CreateSchema(ctx context.Context) error {
	for _, stmt := range ddl.CreateTables(a.dialect) {
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return mapError(err, "create table failed")
		}
	}
	return nil
}

// DropSchema drops all eight tables in reverse dependency order.
func (a *Applier) DropSchema(ctx context.Context) error {
	for _, stmt := range ddl.DropTables() {
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return mapError(err, "drop table failed")
		}
	}
	return nil
}

// DropConstraints removes every foreign key and secondary index on the
// eight tables, so a bulk load can run unconstrained. Constraint names are
// discovered from the catalog since FKs get auto-generated names.
func (a *Applier) DropConstraints(ctx context.Context) error {
	const fkQuery = `
		SELECT conname, relname
		FROM pg_constraint c JOIN pg_class r ON c.conrelid = r.oid
		WHERE c.contype = 'f'
		  AND relname = ANY($1)`

	rows, err := a.pool.Query(ctx, fkQuery, schema.LoadOrder)
	if err != nil {
		return mapError(err, "failed to list foreign keys")
	}

	type con struct{ name, table string }
	var fks []con
	for rows.Next() {
		var c con
		if err := rows.Scan(&c.name, &c.table); err != nil {
			rows.Close()
			return mapError(err, "failed to scan constraint")
		}
		fks = append(fks, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return mapError(err, "error iterating constraints")
	}

	for _, c := range fks {
		stmt := fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s", c.table, c.name)
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return mapError(err, "drop constraint failed")
		}
	}

	for _, spec := range schema.AllIndexSpecs() {
		if _, err := a.pool.Exec(ctx, a.dialect.DropIndex(spec)); err != nil {
			return mapError(err, "drop index failed")
		}
	}
	return nil
}

// RecreateConstraints rebuilds the secondary indexes and foreign keys after
// a bulk load.
func (a *Applier) RecreateConstraints(ctx context.Context) error {
	for _, stmt := range ddl.CreateIndexes(a.dialect) {
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return mapError(err, "create index failed")
		}
	}
	for _, stmt := range ddl.AddForeignKeys() {
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return mapError(err, "add foreign key failed")
		}
	}
	return nil
}

// Truncate empties all eight tables in reverse dependency order.
func (a *Applier) Truncate(ctx context.Context) error {
	for _, name := range ddl.TruncateOrder() {
		if _, err := a.pool.Exec(ctx, fmt.Sprintf("TRUNCATE %s CASCADE", name)); err != nil {
			return mapError(err, "truncate failed")
		}
	}
	return nil
}

// Load streams one entity's rows into its table with COPY.
func (a *Applier) Load(ctx context.Context, entity string, rows []schema.Row) error {
	table, ok := schema.TableFor(entity)
	if !ok {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown entity %q", entity))
	}

	n, err := a.pool.CopyFrom(
		ctx,
		pgx.Identifier{table.Name},
		table.ColumnNames(),
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return ddl.DriverValues(rows[i]), nil
		}),
	)
	if err != nil {
		return mapError(err, fmt.Sprintf("copy into %s failed", entity))
	}
	if n != int64(len(rows)) {
		return errs.New(errs.ErrKindQueryFailed,
			fmt.Sprintf("copy into %s wrote %d of %d rows", entity, n, len(rows)))
	}
	return nil
}

// Analyze refreshes planner statistics for all eight tables.
func (a *Applier) Analyze(ctx context.Context) error {
	for _, name := range schema.LoadOrder {
		if _, err := a.pool.Exec(ctx, "ANALYZE "+name); err != nil {
			return mapError(err, "analyze failed")
		}
	}
	return nil
}

// BulkLoad runs the full constraint-deferred load: drop constraints,
// truncate, COPY every entity in dependency order, recreate constraints,
// analyze. batches must hold one validated batch per entity.
func (a *Applier) BulkLoad(ctx context.Context, batches map[string][]schema.Row) error {
	t0 := time.Now()

	if err := a.DropConstraints(ctx); err != nil {
		return err
	}
	if err := a.Truncate(ctx); err != nil {
		return err
	}

	for _, entity := range schema.LoadOrder {
		rows, ok := batches[entity]
		if !ok {
			return errs.New(errs.ErrKindInvalidInput,
				fmt.Sprintf("no batch for entity %s", entity))
		}
		t1 := time.Now()
		if err := a.Load(ctx, entity, rows); err != nil {
			return err
		}
		a.log.With().
			Str("entity", entity).
			Int("rows", len(rows)).
			Str("took", time.Since(t1).String()).
			Logger().
			Info("entity loaded")
	}

	if err := a.RecreateConstraints(ctx); err != nil {
		return err
	}
	if err := a.Analyze(ctx); err != nil {
		return err
	}

	a.log.Infof("bulk load finished in %s", time.Since(t0))
	return nil
}
