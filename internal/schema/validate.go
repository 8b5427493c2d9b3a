package schema

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/koustreak/tpchkit/internal/errs"
)

// ValidateRow checks one candidate row against the table's declared column
// domains: value type, nullability, string width bounds, enumeration
// membership, non-negativity, and decimal scale. It is pure — no side
// effects — and returns an attribute violation naming the offending column
// and rule, or nil. rowIdx is the row's ordinal within its batch, used only
// for error context.
func (t *Table) ValidateRow(rowIdx int, r Row) error {
	if r.Entity() != t.Name {
		return errs.Attribute(t.Name, rowIdx, "",
			fmt.Sprintf("row belongs to entity %s", r.Entity()))
	}

	vals := r.Values()
	if len(vals) != len(t.Columns) {
		return errs.Attribute(t.Name, rowIdx, "",
			fmt.Sprintf("row has %d values, table declares %d columns", len(vals), len(t.Columns)))
	}

	for i, col := range t.Columns {
		if err := t.validateValue(rowIdx, col, vals[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) validateValue(rowIdx int, col Column, v any) error {
	if v == nil {
		if !col.Nullable {
			return errs.Attribute(t.Name, rowIdx, col.Name, "null in non-nullable column")
		}
		return nil
	}

	switch col.Type {
	case TypeInt:
		n, ok := v.(int32)
		if !ok {
			return typeMismatch(t.Name, rowIdx, col, v)
		}
		if col.NonNegative && n < 0 {
			return errs.Attribute(t.Name, rowIdx, col.Name,
				fmt.Sprintf("negative value %d", n))
		}

	case TypeBigInt:
		n, ok := v.(int64)
		if !ok {
			return typeMismatch(t.Name, rowIdx, col, v)
		}
		if col.NonNegative && n < 0 {
			return errs.Attribute(t.Name, rowIdx, col.Name,
				fmt.Sprintf("negative value %d", n))
		}

	case TypeChar, TypeVarChar:
		s, ok := v.(string)
		if !ok {
			return typeMismatch(t.Name, rowIdx, col, v)
		}
		if len(col.Enum) > 0 {
			if !slices.Contains(col.Enum, s) {
				return errs.Attribute(t.Name, rowIdx, col.Name,
					fmt.Sprintf("value %q outside enumeration %v", s, col.Enum))
			}
			return nil
		}
		// Declared widths are character counts, not byte counts.
		if n := utf8.RuneCountInString(s); col.Width > 0 && n > col.Width {
			return errs.Attribute(t.Name, rowIdx, col.Name,
				fmt.Sprintf("length %d exceeds declared width %d", n, col.Width))
		}

	case TypeDecimal:
		d, ok := v.(decimal.Decimal)
		if !ok {
			return typeMismatch(t.Name, rowIdx, col, v)
		}
		if col.NonNegative && d.IsNegative() {
			return errs.Attribute(t.Name, rowIdx, col.Name,
				fmt.Sprintf("negative value %s", d))
		}
		// A value conforms to the scale when truncating to it loses nothing,
		// so trailing zeros ("1234.560") stay valid.
		if !d.Equal(d.Truncate(int32(col.Scale))) {
			return errs.Attribute(t.Name, rowIdx, col.Name,
				fmt.Sprintf("value %s exceeds scale %d", d, col.Scale))
		}
		if col.Precision > 0 {
			// NUMERIC(p,s) admits p-s integer digits, i.e. |v| < 10^(p-s).
			if d.Abs().GreaterThanOrEqual(decimal.New(1, int32(col.Precision-col.Scale))) {
				return errs.Attribute(t.Name, rowIdx, col.Name,
					fmt.Sprintf("value %s exceeds precision %d", d, col.Precision))
			}
		}

	case TypeDate:
		d, ok := v.(Date)
		if !ok {
			return typeMismatch(t.Name, rowIdx, col, v)
		}
		if d.IsZero() {
			return errs.Attribute(t.Name, rowIdx, col.Name, "zero date")
		}

	default:
		return errs.Attribute(t.Name, rowIdx, col.Name,
			fmt.Sprintf("unsupported column type %s", col.Type))
	}
	return nil
}

func typeMismatch(entity string, rowIdx int, col Column, v any) error {
	return errs.Attribute(entity, rowIdx, col.Name,
		fmt.Sprintf("value of type %T, column is %s", v, col.Type))
}
