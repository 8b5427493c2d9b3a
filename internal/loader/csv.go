package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/koustreak/tpchkit/internal/errs"
	"github.com/koustreak/tpchkit/internal/schema"
)

// ReadBatch decodes one entity's CSV stream into typed rows. The first
// record must be a header naming the entity's columns; column order may
// differ from the declaration. Empty fields in nullable columns decode as
// absent — CSV cannot distinguish an empty comment from a missing one, so
// the loader treats empty as NULL there.
func ReadBatch(r io.Reader, entity string) ([]schema.Row, error) {
	table, ok := schema.TableFor(entity)
	if !ok {
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown entity %q", entity))
	}

	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("%s: empty CSV stream, header expected", entity))
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput,
			fmt.Sprintf("%s: cannot read CSV header", entity), err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range table.Columns {
		if _, ok := pos[col.Name]; !ok {
			return nil, errs.New(errs.ErrKindInvalidInput,
				fmt.Sprintf("%s: CSV header is missing column %s", entity, col.Name))
		}
	}

	var rows []schema.Row
	for rowIdx := 0; ; rowIdx++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput,
				fmt.Sprintf("%s: malformed CSV record %d", entity, rowIdx), err)
		}

		rec := &record{entity: entity, row: rowIdx, pos: pos, fields: fields}
		row := decodeRow(entity, rec)
		if rec.err != nil {
			return nil, rec.err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// record is a cursor over one CSV record. The typed accessors remember the
// first decode failure so row constructors can stay flat.
type record struct {
	entity string
	row    int
	pos    map[string]int
	fields []string
	err    error
}

func (r *record) raw(col string) string {
	return r.fields[r.pos[col]]
}

func (r *record) fail(col, msg string) {
	if r.err == nil {
		r.err = errs.Attribute(r.entity, r.row, col, msg)
	}
}

func (r *record) str(col string) string {
	return r.raw(col)
}

func (r *record) optStr(col string) *string {
	s := r.raw(col)
	if s == "" {
		return nil
	}
	return &s
}

func (r *record) int32v(col string) int32 {
	n, err := strconv.ParseInt(r.raw(col), 10, 32)
	if err != nil {
		r.fail(col, fmt.Sprintf("invalid integer %q", r.raw(col)))
		return 0
	}
	return int32(n)
}

func (r *record) int64v(col string) int64 {
	n, err := strconv.ParseInt(r.raw(col), 10, 64)
	if err != nil {
		r.fail(col, fmt.Sprintf("invalid integer %q", r.raw(col)))
		return 0
	}
	return n
}

func (r *record) dec(col string) decimal.Decimal {
	d, err := decimal.NewFromString(r.raw(col))
	if err != nil {
		r.fail(col, fmt.Sprintf("invalid decimal %q", r.raw(col)))
		return decimal.Zero
	}
	return d
}

func (r *record) date(col string) schema.Date {
	d, err := schema.ParseDate(r.raw(col))
	if err != nil {
		r.fail(col, fmt.Sprintf("invalid date %q", r.raw(col)))
		return schema.Date{}
	}
	return d
}

func decodeRow(entity string, rec *record) schema.Row {
	switch entity {
	case schema.EntityRegion:
		return schema.Region{
			RegionKey: rec.int32v("r_regionkey"),
			Name:      rec.str("r_name"),
			Comment:   rec.optStr("r_comment"),
		}
	case schema.EntityNation:
		return schema.Nation{
			NationKey: rec.int32v("n_nationkey"),
			Name:      rec.str("n_name"),
			RegionKey: rec.int32v("n_regionkey"),
			Comment:   rec.optStr("n_comment"),
		}
	case schema.EntityPart:
		return schema.Part{
			PartKey:     rec.int64v("p_partkey"),
			Name:        rec.str("p_name"),
			Mfgr:        rec.str("p_mfgr"),
			Brand:       rec.str("p_brand"),
			Type:        rec.str("p_type"),
			Size:        rec.int32v("p_size"),
			Container:   rec.str("p_container"),
			RetailPrice: rec.dec("p_retailprice"),
			Comment:     rec.optStr("p_comment"),
		}
	case schema.EntitySupplier:
		return schema.Supplier{
			SuppKey:   rec.int64v("s_suppkey"),
			Name:      rec.str("s_name"),
			Address:   rec.str("s_address"),
			NationKey: rec.int32v("s_nationkey"),
			Phone:     rec.str("s_phone"),
			AcctBal:   rec.dec("s_acctbal"),
			Comment:   rec.optStr("s_comment"),
		}
	case schema.EntityPartSupp:
		return schema.PartSupp{
			PartKey:    rec.int64v("ps_partkey"),
			SuppKey:    rec.int64v("ps_suppkey"),
			AvailQty:   rec.int64v("ps_availqty"),
			SupplyCost: rec.dec("ps_supplycost"),
			Comment:    rec.optStr("ps_comment"),
		}
	case schema.EntityCustomer:
		return schema.Customer{
			CustKey:    rec.int64v("c_custkey"),
			Name:       rec.str("c_name"),
			Address:    rec.str("c_address"),
			NationKey:  rec.int32v("c_nationkey"),
			Phone:      rec.str("c_phone"),
			AcctBal:    rec.dec("c_acctbal"),
			MktSegment: rec.str("c_mktsegment"),
			Comment:    rec.optStr("c_comment"),
		}
	case schema.EntityOrders:
		return schema.Order{
			OrderKey:      rec.int64v("o_orderkey"),
			CustKey:       rec.int64v("o_custkey"),
			OrderStatus:   rec.str("o_orderstatus"),
			TotalPrice:    rec.dec("o_totalprice"),
			OrderDate:     rec.date("o_orderdate"),
			OrderPriority: rec.str("o_orderpriority"),
			Clerk:         rec.str("o_clerk"),
			ShipPriority:  rec.int32v("o_shippriority"),
			Comment:       rec.optStr("o_comment"),
		}
	case schema.EntityLineItem:
		return schema.LineItem{
			OrderKey:      rec.int64v("l_orderkey"),
			PartKey:       rec.int64v("l_partkey"),
			SuppKey:       rec.int64v("l_suppkey"),
			LineNumber:    rec.int32v("l_linenumber"),
			Quantity:      rec.dec("l_quantity"),
			ExtendedPrice: rec.dec("l_extendedprice"),
			Discount:      rec.dec("l_discount"),
			Tax:           rec.dec("l_tax"),
			ReturnFlag:    rec.str("l_returnflag"),
			LineStatus:    rec.str("l_linestatus"),
			ShipDate:      rec.date("l_shipdate"),
			CommitDate:    rec.date("l_commitdate"),
			ReceiptDate:   rec.date("l_receiptdate"),
			ShipInstruct:  rec.str("l_shipinstruct"),
			ShipMode:      rec.str("l_shipmode"),
			Comment:       rec.optStr("l_comment"),
		}
	default:
		rec.fail("", fmt.Sprintf("unknown entity %q", entity))
		return nil
	}
}
