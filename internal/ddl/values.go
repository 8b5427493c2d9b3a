package ddl

import (
	"github.com/shopspring/decimal"

	"github.com/koustreak/tpchkit/internal/schema"
)

// DriverValues converts a row's typed values into what database drivers
// encode natively: decimals become their exact string form (never a binary
// float), dates become midnight-UTC instants, absent nullable columns stay
// nil.
func DriverValues(r schema.Row) []any {
	vals := r.Values()
	out := make([]any, len(vals))
	for i, v := range vals {
		switch tv := v.(type) {
		case decimal.Decimal:
			out[i] = tv.String()
		case schema.Date:
			out[i] = tv.Time()
		default:
			out[i] = v
		}
	}
	return out
}
