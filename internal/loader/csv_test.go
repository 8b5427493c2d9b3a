package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tpchkit/internal/errs"
	"github.com/koustreak/tpchkit/internal/schema"
)

func TestReadBatchRegion(t *testing.T) {
	in := strings.Join([]string{
		"r_regionkey,r_name,r_comment",
		"0,AFRICA,lar deposits. blithely special",
		"1,AMERICA,",
	}, "\n")

	rows, err := ReadBatch(strings.NewReader(in), schema.EntityRegion)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0].(schema.Region)
	assert.Equal(t, int32(0), first.RegionKey)
	assert.Equal(t, "AFRICA", first.Name)
	require.NotNil(t, first.Comment)
	assert.Equal(t, "lar deposits. blithely special", *first.Comment)

	// Empty CSV field in a nullable column decodes as absent.
	second := rows[1].(schema.Region)
	assert.Nil(t, second.Comment)
}

func TestReadBatchHeaderOrder(t *testing.T) {
	// Columns may arrive in any order; the header decides the mapping.
	in := strings.Join([]string{
		"N_COMMENT,n_name,n_regionkey,n_nationkey",
		"quick wake,FRANCE,3,6",
	}, "\n")

	rows, err := ReadBatch(strings.NewReader(in), schema.EntityNation)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	n := rows[0].(schema.Nation)
	assert.Equal(t, int32(6), n.NationKey)
	assert.Equal(t, "FRANCE", n.Name)
	assert.Equal(t, int32(3), n.RegionKey)
	require.NotNil(t, n.Comment)
	assert.Equal(t, "quick wake", *n.Comment)
}

func TestReadBatchLineItem(t *testing.T) {
	in := strings.Join([]string{
		"l_orderkey,l_partkey,l_suppkey,l_linenumber,l_quantity,l_extendedprice,l_discount,l_tax,l_returnflag,l_linestatus,l_shipdate,l_commitdate,l_receiptdate,l_shipinstruct,l_shipmode,l_comment",
		"1,155190,7706,1,17.00,21168.23,0.04,0.02,N,O,1996-03-13,1996-02-12,1996-03-22,DELIVER IN PERSON,TRUCK,egular courts above the",
	}, "\n")

	rows, err := ReadBatch(strings.NewReader(in), schema.EntityLineItem)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	li := rows[0].(schema.LineItem)
	assert.Equal(t, int64(1), li.OrderKey)
	assert.Equal(t, int32(1), li.LineNumber)
	assert.True(t, li.ExtendedPrice.Equal(money("21168.23")))
	assert.Equal(t, schema.NewDate(1996, time.March, 13), li.ShipDate)
	assert.Equal(t, "N", li.ReturnFlag)
}

func TestReadBatchErrors(t *testing.T) {
	tests := []struct {
		name   string
		entity string
		in     string
		check  func(*testing.T, error)
	}{
		{
			"unknown entity",
			"warehouse",
			"a,b\n1,2",
			func(t *testing.T, err error) { assert.True(t, errs.IsInvalidInput(err)) },
		},
		{
			"empty stream",
			schema.EntityRegion,
			"",
			func(t *testing.T, err error) { assert.True(t, errs.IsInvalidInput(err)) },
		},
		{
			"missing column",
			schema.EntityRegion,
			"r_regionkey,r_name\n0,AFRICA",
			func(t *testing.T, err error) { assert.True(t, errs.IsInvalidInput(err)) },
		},
		{
			"short record",
			schema.EntityRegion,
			"r_regionkey,r_name,r_comment\n0,AFRICA",
			func(t *testing.T, err error) { assert.True(t, errs.IsInvalidInput(err)) },
		},
		{
			"bad integer",
			schema.EntityRegion,
			"r_regionkey,r_name,r_comment\nzero,AFRICA,",
			func(t *testing.T, err error) {
				assert.True(t, errs.IsAttribute(err))
				var e *errs.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "r_regionkey", e.Column)
				assert.Equal(t, 0, e.Row)
			},
		},
		{
			"bad decimal",
			schema.EntitySupplier,
			"s_suppkey,s_name,s_address,s_nationkey,s_phone,s_acctbal,s_comment\n1,Supplier#1,addr,2,27-918-335-1736,12.3x,",
			func(t *testing.T, err error) {
				assert.True(t, errs.IsAttribute(err))
				var e *errs.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "s_acctbal", e.Column)
			},
		},
		{
			"bad date",
			schema.EntityOrders,
			"o_orderkey,o_custkey,o_orderstatus,o_totalprice,o_orderdate,o_orderpriority,o_clerk,o_shippriority,o_comment\n" +
				"1,2,O,100.00,1996-14-01,5-LOW,Clerk#000000951,0,",
			func(t *testing.T, err error) {
				assert.True(t, errs.IsAttribute(err))
				var e *errs.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "o_orderdate", e.Column)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBatch(strings.NewReader(tt.in), tt.entity)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	content := "r_regionkey,r_name,r_comment\n0,AFRICA,\n1,AMERICA,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "region.csv"), []byte(content), 0o644))

	src := DirSource{Dir: dir}
	rows, err := src.Batch(context.Background(), schema.EntityRegion)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = src.Batch(context.Background(), schema.EntityNation)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestMemorySourceMissing(t *testing.T) {
	src := MemorySource{}
	_, err := src.Batch(context.Background(), schema.EntityRegion)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}
