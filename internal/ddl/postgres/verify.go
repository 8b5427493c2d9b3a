package postgres

import (
	"context"
	"fmt"

	"github.com/koustreak/tpchkit/internal/errs"
	"github.com/koustreak/tpchkit/internal/schema"
)

// Verify introspects the live database and checks that every entity's
// physical shape matches the catalog: table present, column names in
// declared order, nullability, and primary-key columns. External tooling
// depends on these exact names, so drift is an error, not a warning.
func (a *Applier) Verify(ctx context.Context) error {
	for _, table := range schema.Tables() {
		if err := a.verifyTable(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) verifyTable(ctx context.Context, table *schema.Table) error {
	cols, err := a.fetchColumns(ctx, table.Name)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return errs.New(errs.ErrKindNotFound,
			fmt.Sprintf("table %s does not exist", table.Name))
	}
	if len(cols) != len(table.Columns) {
		return errs.New(errs.ErrKindQueryFailed, fmt.Sprintf(
			"table %s has %d columns, catalog declares %d",
			table.Name, len(cols), len(table.Columns)))
	}
	for i, want := range table.Columns {
		got := cols[i]
		if got.name != want.Name {
			return errs.New(errs.ErrKindQueryFailed, fmt.Sprintf(
				"table %s column %d is %s, catalog declares %s",
				table.Name, i, got.name, want.Name))
		}
		if got.nullable != want.Nullable {
			return errs.New(errs.ErrKindQueryFailed, fmt.Sprintf(
				"table %s column %s nullability is %v, catalog declares %v",
				table.Name, want.Name, got.nullable, want.Nullable))
		}
	}

	pks, err := a.fetchPrimaryKeys(ctx, table.Name)
	if err != nil {
		return err
	}
	if len(pks) != len(table.PrimaryKey) {
		return errs.New(errs.ErrKindQueryFailed, fmt.Sprintf(
			"table %s primary key has %d columns, catalog declares %d",
			table.Name, len(pks), len(table.PrimaryKey)))
	}
	for i, want := range table.PrimaryKey {
		if pks[i] != want {
			return errs.New(errs.ErrKindQueryFailed, fmt.Sprintf(
				"table %s primary key column %d is %s, catalog declares %s",
				table.Name, i, pks[i], want))
		}
	}
	return nil
}

type introspectedColumn struct {
	name     string
	nullable bool
}

func (a *Applier) fetchColumns(ctx context.Context, table string) ([]introspectedColumn, error) {
	const q = `
		SELECT column_name,
		       is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		  AND table_name   = $1
		ORDER BY ordinal_position`

	rows, err := a.pool.Query(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	var cols []introspectedColumn
	for rows.Next() {
		var c introspectedColumn
		if err := rows.Scan(&c.name, &c.nullable); err != nil {
			return nil, mapError(err, "failed to scan column info")
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}
	return cols, nil
}

func (a *Applier) fetchPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	const q = `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema    = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema    = current_schema()
		  AND tc.table_name      = $1
		ORDER BY kcu.ordinal_position`

	rows, err := a.pool.Query(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch primary keys")
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, mapError(err, "failed to scan primary key column")
		}
		pks = append(pks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating primary keys")
	}
	return pks, nil
}
