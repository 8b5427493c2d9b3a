// Package mysql applies the TPC-H schema to MySQL over database/sql and
// loads validated rows with batched multi-row INSERTs. It is safe for
// concurrent use by multiple goroutines.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/koustreak/tpchkit/internal/ddl"
	"github.com/koustreak/tpchkit/internal/errs"
	"github.com/koustreak/tpchkit/internal/schema"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver
)

// insertBatchRows caps the rows per INSERT so the rendered statement stays
// under MySQL's default max_allowed_packet.
const insertBatchRows = 500

// Applier owns a database/sql pool pointed at the target database.
type Applier struct {
	db      *sql.DB
	dialect ddl.MySQL
}

// New opens a MySQL connection pool using the provided Config and returns
// an Applier. It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *ddl.Config) (*Applier, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(30 * time.Minute)

	a := &Applier{db: db}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := a.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// Ping verifies the database is reachable.
func (a *Applier) Ping(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close releases the connection pool.
func (a *Applier) Close() {
	_ = a.db.Close()
}

// CreateSchema creates the eight tables in dependency order.
func (a *Applier) CreateSchema(ctx context.Context) error {
	for _, stmt := range ddl.CreateTables(a.dialect) {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return mapError(err, "create table failed")
		}
	}
	return nil
}

// DropSchema drops all eight tables in reverse dependency order.
func (a *Applier) DropSchema(ctx context.Context) error {
	for _, stmt := range ddl.DropTables() {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return mapError(err, "drop table failed")
		}
	}
	return nil
}

// AddConstraints applies the secondary indexes and foreign keys after a
// load. Duplicate-index errors are surfaced, not swallowed; call on a
// freshly created schema.
func (a *Applier) AddConstraints(ctx context.Context) error {
	for _, stmt := range ddl.CreateIndexes(a.dialect) {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return mapError(err, "create index failed")
		}
	}
	for _, stmt := range ddl.AddForeignKeys() {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return mapError(err, "add foreign key failed")
		}
	}
	return nil
}

// Truncate empties all eight tables in reverse dependency order. Foreign
// key checks are suspended for the session since TRUNCATE cannot run
// against a referenced parent otherwise.
func (a *Applier) Truncate(ctx context.Context) error {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return mapError(err, "failed to acquire connection")
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		return mapError(err, "failed to disable foreign key checks")
	}
	for _, name := range ddl.TruncateOrder() {
		if _, err := conn.ExecContext(ctx, "TRUNCATE TABLE "+name); err != nil {
			return mapError(err, "truncate failed")
		}
	}
	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 1"); err != nil {
		return mapError(err, "failed to re-enable foreign key checks")
	}
	return nil
}

// Load inserts one entity's rows with batched multi-row INSERTs.
func (a *Applier) Load(ctx context.Context, entity string, rows []schema.Row) error {
	table, ok := schema.TableFor(entity)
	if !ok {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown entity %q", entity))
	}

	cols := table.ColumnNames()
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table.Name, strings.Join(cols, ", "))

	for start := 0; start < len(rows); start += insertBatchRows {
		end := start + insertBatchRows
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		placeholders := make([]string, len(batch))
		args := make([]any, 0, len(batch)*len(cols))
		for i, r := range batch {
			placeholders[i] = rowPlaceholder
			args = append(args, ddl.DriverValues(r)...)
		}

		stmt := prefix + strings.Join(placeholders, ", ")
		if _, err := a.db.ExecContext(ctx, stmt, args...); err != nil {
			return mapError(err, fmt.Sprintf("insert into %s failed", entity))
		}
	}
	return nil
}

// BulkLoad creates the schema if needed, truncates, loads every entity in
// dependency order, then applies indexes and foreign keys.
func (a *Applier) BulkLoad(ctx context.Context, batches map[string][]schema.Row) error {
	if err := a.CreateSchema(ctx); err != nil {
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
		if err := a.Load(ctx, entity, rows); err != nil {
			return err
		}
	}
	return a.AddConstraints(ctx)
}
