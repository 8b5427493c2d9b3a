package ddl

import (
	"fmt"
	"strings"

	"github.com/koustreak/tpchkit/internal/schema"
)

// Postgres renders PostgreSQL DDL.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) ColumnType(col schema.Column) string {
	switch col.Type {
	case schema.TypeInt:
		return "INTEGER"
	case schema.TypeBigInt:
		return "BIGINT"
	case schema.TypeChar:
		return fmt.Sprintf("CHAR(%d)", col.Width)
	case schema.TypeVarChar:
		return fmt.Sprintf("VARCHAR(%d)", col.Width)
	case schema.TypeDecimal:
		return fmt.Sprintf("NUMERIC(%d,%d)", col.Precision, col.Scale)
	case schema.TypeDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

func (Postgres) CreateIndex(spec schema.IndexSpec) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)",
		spec.Name, spec.Table, strings.Join(spec.Columns, ", "))
}

func (Postgres) DropIndex(spec schema.IndexSpec) string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %s", spec.Name)
}

// MySQL renders MySQL DDL. MySQL has no IF NOT EXISTS form for CREATE
// INDEX, so index statements are bare and callers tolerate duplicates.
type MySQL struct{}

func (MySQL) Name() string { return "mysql" }

func (MySQL) ColumnType(col schema.Column) string {
	switch col.Type {
	case schema.TypeInt:
		return "INT"
	case schema.TypeBigInt:
		return "BIGINT"
	case schema.TypeChar:
		return fmt.Sprintf("CHAR(%d)", col.Width)
	case schema.TypeVarChar:
		return fmt.Sprintf("VARCHAR(%d)", col.Width)
	case schema.TypeDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", col.Precision, col.Scale)
	case schema.TypeDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

func (MySQL) CreateIndex(spec schema.IndexSpec) string {
	return fmt.Sprintf("CREATE INDEX %s ON %s(%s)",
		spec.Name, spec.Table, strings.Join(spec.Columns, ", "))
}

func (MySQL) DropIndex(spec schema.IndexSpec) string {
	return fmt.Sprintf("DROP INDEX %s ON %s", spec.Name, spec.Table)
}
