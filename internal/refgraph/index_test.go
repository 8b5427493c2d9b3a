package refgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tpchkit/internal/errs"
	"github.com/koustreak/tpchkit/internal/schema"
)

func TestBuildIndexes(t *testing.T) {
	g := New()
	data := fixture()
	registerUpTo(t, g, data, schema.EntityLineItem)

	t.Run("nation by region", func(t *testing.T) {
		indexes, err := g.BuildIndexes(schema.EntityNation)
		require.NoError(t, err)
		require.Len(t, indexes, 1)

		ix := indexes[0]
		assert.Equal(t, "idx_nation_regionkey", ix.Spec.Name)
		assert.Equal(t, 5, ix.Len())

		// 25 nations, 5 per region, in batch order.
		ords := ix.Lookup(int32(2))
		assert.Equal(t, []int{2, 7, 12, 17, 22}, ords)
		assert.Nil(t, ix.Lookup(int32(99)))
	})

	t.Run("lineitem by order", func(t *testing.T) {
		indexes, err := g.BuildIndexes(schema.EntityLineItem)
		require.NoError(t, err)
		require.Len(t, indexes, 4)

		byName := make(map[string]*Index, len(indexes))
		for _, ix := range indexes {
			byName[ix.Spec.Name] = ix
		}
		require.Contains(t, byName, "idx_lineitem_orderkey")
		assert.Equal(t, []int{0, 1}, byName["idx_lineitem_orderkey"].Lookup(int64(100)))
		assert.Equal(t, []int{2}, byName["idx_lineitem_orderkey"].Lookup(int64(101)))

		require.Contains(t, byName, "idx_lineitem_shipdate")
		assert.Equal(t, 1, byName["idx_lineitem_shipdate"].Len())
	})

	t.Run("region has no secondary indexes", func(t *testing.T) {
		indexes, err := g.BuildIndexes(schema.EntityRegion)
		require.NoError(t, err)
		assert.Empty(t, indexes)
	})

	t.Run("unregistered entity", func(t *testing.T) {
		empty := New()
		_, err := empty.BuildIndexes(schema.EntityNation)
		require.Error(t, err)
		assert.True(t, errs.IsInvalidInput(err))
	})
}

func TestBuildAllIndexes(t *testing.T) {
	g := New()
	data := fixture()

	_, err := g.BuildAllIndexes()
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))

	registerUpTo(t, g, data, schema.EntityLineItem)

	all, err := g.BuildAllIndexes()
	require.NoError(t, err)

	total := 0
	for _, indexes := range all {
		total += len(indexes)
	}
	assert.Equal(t, 10, total)
	assert.NotContains(t, all, schema.EntityRegion)
	assert.NotContains(t, all, schema.EntityPart)
}

func TestIndexRebuildMatchesData(t *testing.T) {
	g := New()
	data := fixture()
	registerUpTo(t, g, data, schema.EntityLineItem)

	indexes, err := g.BuildIndexes(schema.EntityOrders)
	require.NoError(t, err)

	// Every indexed ordinal resolves back to a row carrying that value.
	table, _ := schema.TableFor(schema.EntityOrders)
	rows := g.Rows(schema.EntityOrders)
	for _, ix := range indexes {
		pos := table.ColumnIndex(ix.Spec.Columns[0])
		require.GreaterOrEqual(t, pos, 0)
		for _, r := range rows {
			v := r.Values()[pos]
			assert.NotEmpty(t, ix.Lookup(v), "%s missing value %v", ix.Spec.Name, v)
		}
	}
}
