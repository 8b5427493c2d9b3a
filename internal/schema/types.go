package schema

import (
	"fmt"
	"time"
)

// ColType is the semantic type of a column.
type ColType int

const (
	TypeInt     ColType = iota // 32-bit integer
	TypeBigInt                 // 64-bit integer
	TypeChar                   // fixed-width character string
	TypeVarChar                // variable-width character string, bounded
	TypeDecimal                // exact fixed-point numeric
	TypeDate                   // calendar date, no time-of-day
)

func (t ColType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBigInt:
		return "bigint"
	case TypeChar:
		return "char"
	case TypeVarChar:
		return "varchar"
	case TypeDecimal:
		return "decimal"
	case TypeDate:
		return "date"
	default:
		return "unknown"
	}
}

// Column describes a single column of an entity: its semantic type,
// nullability, and the domain bounds row validation enforces.
type Column struct {
	Name     string
	Type     ColType
	Width    int  // character bound for char/varchar types
	Nullable bool // absent is valid and distinct from empty

	Precision int // total digits, decimal columns only
	Scale     int // fractional digits, decimal columns only

	NonNegative bool     // numeric columns that must not be negative
	Enum        []string // allowed values for small fixed enumerations
}

// ForeignKey describes one directed edge of the referential graph.
// A composite edge lists more than one column and is validated as a single
// atomic tuple lookup against the referenced table's primary key.
type ForeignKey struct {
	Columns    []string
	RefTable   string
	RefColumns []string
}

// IndexSpec declares one secondary index. Indexes are pure performance
// accelerants over immutable data: they are rebuilt after a load and never
// change the logical result of a query.
type IndexSpec struct {
	Name    string
	Table   string
	Columns []string
}

// Table describes one entity: its columns, primary key shape (single or
// composite), and outgoing foreign keys.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey

	colIdx map[string]int
}

func newTable(name string, pk []string, fks []ForeignKey, cols ...Column) *Table {
	t := &Table{
		Name:        name,
		Columns:     cols,
		PrimaryKey:  pk,
		ForeignKeys: fks,
		colIdx:      make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		t.colIdx[c.Name] = i
	}
	return t
}

// ColumnIndex returns the ordinal position of the named column,
// or -1 if the table has no such column.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.colIdx[name]; ok {
		return i
	}
	return -1
}

// Column returns the named column definition.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.colIdx[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Ref is one resolved foreign-key value of a concrete row: the key to look
// up (a scalar or a tuple type such as PartSuppKey) and the table whose
// primary-key set must contain it.
type Ref struct {
	Table   string // referenced table
	Columns string // referenced key columns, for error reporting
	Key     any    // comparable lookup key, scalar or tuple
}

// Row is a typed record of one of the eight entities. Key values and Ref
// keys are comparable so the referential graph can use them directly as
// set-membership lookups.
type Row interface {
	// Entity returns the table name this row belongs to.
	Entity() string

	// Key returns the primary key, a scalar for single-column keys or a
	// tuple value (PartSuppKey, LineItemKey) for composite keys.
	Key() any

	// Refs returns the row's outgoing foreign-key references.
	Refs() []Ref

	// Values returns the column values in declaration order. Absent
	// nullable columns are nil; everything else is int32, int64, string,
	// decimal.Decimal, or Date.
	Values() []any
}

// Date is a calendar date with no time-of-day component. The zero value is
// not a valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a date in ISO "2006-01-02" form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// Time returns the midnight-UTC instant of the date, for interoperating
// with database drivers.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
