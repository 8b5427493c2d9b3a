package loader

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tpchkit/internal/config"
	"github.com/koustreak/tpchkit/internal/errs"
	"github.com/koustreak/tpchkit/internal/schema"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// testData is a minimal consistent dataset. The order total matches the
// net line item sum exactly: 2 × 1000.00 × (1−0.10) × (1+0.10) = 1980.00.
func testData() MemorySource {
	li := func(lineNumber int32) schema.LineItem {
		return schema.LineItem{
			OrderKey: 100, PartKey: 10, SuppKey: 20, LineNumber: lineNumber,
			Quantity:      money("5.00"),
			ExtendedPrice: money("1000.00"),
			Discount:      money("0.10"),
			Tax:           money("0.10"),
			ReturnFlag:    "N", LineStatus: "O",
			ShipDate:     schema.NewDate(1996, time.January, 1),
			CommitDate:   schema.NewDate(1996, time.January, 5),
			ReceiptDate:  schema.NewDate(1996, time.January, 10),
			ShipInstruct: "NONE", ShipMode: "AIR",
		}
	}

	return MemorySource{
		schema.EntityRegion: {schema.Region{RegionKey: 1, Name: "ASIA"}},
		schema.EntityNation: {schema.Nation{NationKey: 2, Name: "JAPAN", RegionKey: 1}},
		schema.EntityPart: {schema.Part{PartKey: 10, Name: "ivory khaki", Mfgr: "Manufacturer#1",
			Brand: "Brand#11", Type: "SMALL PLATED TIN", Size: 3,
			Container: "SM BOX", RetailPrice: money("910.01")}},
		schema.EntitySupplier: {schema.Supplier{SuppKey: 20, Name: "Supplier#000000020",
			Address: "x", NationKey: 2, Phone: "22-960-199-3301", AcctBal: money("0.00")}},
		schema.EntityPartSupp: {schema.PartSupp{PartKey: 10, SuppKey: 20,
			AvailQty: 100, SupplyCost: money("10.00")}},
		schema.EntityCustomer: {schema.Customer{CustKey: 40, Name: "Customer#000000040",
			Address: "y", NationKey: 2, Phone: "22-151-690-3663", AcctBal: money("0.00"),
			MktSegment: "MACHINERY"}},
		schema.EntityOrders: {schema.Order{OrderKey: 100, CustKey: 40, OrderStatus: "O",
			TotalPrice: money("1980.00"), OrderDate: schema.NewDate(1995, time.July, 16),
			OrderPriority: "3-MEDIUM", Clerk: "Clerk#000000001"}},
		schema.EntityLineItem: {li(1), li(2)},
	}
}

// wrappedOrder is a caller-defined Row carrying extra state alongside an
// order. It passes catalog and graph validation like the order it wraps.
type wrappedOrder struct {
	schema.Order
}

// recordingTarget captures the order and sizes of delivered batches.
type recordingTarget struct {
	entities []string
	counts   map[string]int
	fail     string // entity whose delivery fails, "" for none
}

func (r *recordingTarget) Load(_ context.Context, entity string, rows []schema.Row) error {
	if entity == r.fail {
		return errs.New(errs.ErrKindQueryFailed, "target unavailable")
	}
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.entities = append(r.entities, entity)
	r.counts[entity] = len(rows)
	return nil
}

func TestRun(t *testing.T) {
	target := &recordingTarget{}
	ld := New(testData(), WithTarget(target), WithWorkers(2))

	report, err := ld.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, schema.LoadOrder, target.entities)
	assert.Equal(t, 2, target.counts[schema.EntityLineItem])
	assert.Equal(t, 2, report.Rows[schema.EntityLineItem])
	assert.Equal(t, 1, report.Rows[schema.EntityRegion])
	assert.Greater(t, report.Elapsed, time.Duration(0))
	assert.True(t, ld.Graph().Complete())

	total := 0
	for _, indexes := range report.Indexes {
		total += len(indexes)
	}
	assert.Equal(t, 10, total)
}

func TestRunWithoutTarget(t *testing.T) {
	ld := New(testData())
	report, err := ld.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Rows, 8)
}

func TestRunMissingBatch(t *testing.T) {
	data := testData()
	delete(data, schema.EntityPart)

	ld := New(data)
	_, err := ld.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestRunStopsAtViolation(t *testing.T) {
	data := testData()
	data[schema.EntityLineItem] = append(data[schema.EntityLineItem],
		schema.LineItem{
			OrderKey: 99999, PartKey: 10, SuppKey: 20, LineNumber: 1,
			Quantity: money("1.00"), ExtendedPrice: money("1.00"),
			Discount: money("0.00"), Tax: money("0.00"),
			ReturnFlag: "N", LineStatus: "O",
			ShipDate:    schema.NewDate(1996, time.January, 1),
			CommitDate:  schema.NewDate(1996, time.January, 5),
			ReceiptDate: schema.NewDate(1996, time.January, 10),
			ShipInstruct: "NONE", ShipMode: "AIR",
		})

	ld := New(data)
	_, err := ld.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsDanglingRef(err))

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, schema.EntityLineItem, e.Entity)
	assert.Equal(t, int64(99999), e.Key)
	assert.Equal(t, schema.EntityOrders, e.TargetEntity)

	// Entities before the failure stay registered; the failed batch does not.
	assert.True(t, ld.Graph().Registered(schema.EntityOrders))
	assert.False(t, ld.Graph().Registered(schema.EntityLineItem))
	assert.Equal(t, 0, ld.Graph().Count(schema.EntityLineItem))
}

func TestRunTargetFailure(t *testing.T) {
	target := &recordingTarget{fail: schema.EntityCustomer}
	ld := New(testData(), WithTarget(target))

	_, err := ld.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
	assert.NotContains(t, target.entities, schema.EntityOrders)
}

func TestStrictDateOrdering(t *testing.T) {
	strict := config.Strict{DateOrdering: true}

	t.Run("ordered dates pass", func(t *testing.T) {
		ld := New(testData(), WithStrict(strict))
		_, err := ld.Run(context.Background())
		assert.NoError(t, err)
	})

	tests := []struct {
		name   string
		mutate func(*schema.LineItem)
		column string
	}{
		{
			"commit before ship",
			func(li *schema.LineItem) { li.CommitDate = schema.NewDate(1995, time.December, 31) },
			"l_commitdate",
		},
		{
			"receipt before commit",
			func(li *schema.LineItem) { li.ReceiptDate = schema.NewDate(1996, time.January, 4) },
			"l_receiptdate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testData()
			li := data[schema.EntityLineItem][0].(schema.LineItem)
			tt.mutate(&li)
			data[schema.EntityLineItem][0] = li

			ld := New(data, WithStrict(strict))
			_, err := ld.Run(context.Background())
			require.Error(t, err)
			assert.True(t, errs.IsAttribute(err))

			var e *errs.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.column, e.Column)
			assert.Equal(t, 0, e.Row)
		})
	}

	t.Run("disabled check accepts unordered dates", func(t *testing.T) {
		data := testData()
		li := data[schema.EntityLineItem][0].(schema.LineItem)
		li.CommitDate = schema.NewDate(1995, time.December, 31)
		data[schema.EntityLineItem][0] = li

		ld := New(data)
		_, err := ld.Run(context.Background())
		assert.NoError(t, err)
	})
}

func TestStrictTotalPrice(t *testing.T) {
	t.Run("matching total passes", func(t *testing.T) {
		ld := New(testData(), WithStrict(config.Strict{TotalPrice: true}))
		_, err := ld.Run(context.Background())
		assert.NoError(t, err)
	})

	t.Run("mismatch rejected", func(t *testing.T) {
		data := testData()
		o := data[schema.EntityOrders][0].(schema.Order)
		o.TotalPrice = money("2000.00")
		data[schema.EntityOrders][0] = o

		ld := New(data, WithStrict(config.Strict{TotalPrice: true}))
		_, err := ld.Run(context.Background())
		require.Error(t, err)
		assert.True(t, errs.IsAttribute(err))

		var e *errs.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, schema.EntityOrders, e.Entity)
		assert.Equal(t, "o_totalprice", e.Column)
	})

	t.Run("mismatch within tolerance passes", func(t *testing.T) {
		data := testData()
		o := data[schema.EntityOrders][0].(schema.Order)
		o.TotalPrice = money("1980.01")
		data[schema.EntityOrders][0] = o

		ld := New(data, WithStrict(config.Strict{
			TotalPrice:          true,
			TotalPriceTolerance: "0.05",
		}))
		_, err := ld.Run(context.Background())
		assert.NoError(t, err)
	})

	t.Run("foreign row types reported, not panicked on", func(t *testing.T) {
		// A caller-defined Row that validates cleanly must surface as an
		// error from Run, never a panic inside the price check.
		data := testData()
		data[schema.EntityOrders] = []schema.Row{
			wrappedOrder{data[schema.EntityOrders][0].(schema.Order)},
		}

		ld := New(data, WithStrict(config.Strict{TotalPrice: true}))
		var err error
		assert.NotPanics(t, func() { _, err = ld.Run(context.Background()) })
		require.Error(t, err)
		assert.True(t, errs.IsAttribute(err))

		var e *errs.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, schema.EntityOrders, e.Entity)
	})

	t.Run("bad tolerance rejected", func(t *testing.T) {
		ld := New(testData(), WithStrict(config.Strict{
			TotalPrice:          true,
			TotalPriceTolerance: "not-a-number",
		}))
		_, err := ld.Run(context.Background())
		require.Error(t, err)
		assert.True(t, errs.IsInvalidInput(err))
	})
}
