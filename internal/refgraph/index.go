package refgraph

import (
	"fmt"

	"github.com/koustreak/tpchkit/internal/errs"
	"github.com/koustreak/tpchkit/internal/schema"
)

// Index is an in-memory secondary index: column value → accepted-row
// ordinals. Data is immutable after a load, so indexes are rebuilt whole
// rather than maintained incrementally.
type Index struct {
	Spec    schema.IndexSpec
	entries map[any][]int
}

// Lookup returns the ordinals of rows whose indexed column(s) equal the
// given values, in batch order. Missing values return nil.
func (ix *Index) Lookup(values ...any) []int {
	return ix.entries[indexKey(values)]
}

// Len returns the number of distinct keys in the index.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// indexKey folds one or more column values into a single comparable map
// key. Every declared index is single-column today; the multi-column form
// keeps the shape general.
func indexKey(values []any) any {
	if len(values) == 1 {
		return values[0]
	}
	key := ""
	for i, v := range values {
		if i > 0 {
			key += "|"
		}
		key += fmt.Sprintf("%v", v)
	}
	return key
}

// BuildIndexes builds the declared secondary indexes for one registered
// entity. The entity must be registered first.
func (g *Graph) BuildIndexes(entity string) ([]*Index, error) {
	table, ok := schema.TableFor(entity)
	if !ok {
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown entity %q", entity))
	}
	rows, done := g.rows[entity]
	if !done {
		return nil, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("entity %s is not registered", entity))
	}

	var out []*Index
	for _, spec := range schema.IndexSpecs(entity) {
		ix := &Index{Spec: spec, entries: make(map[any][]int)}

		cols := make([]int, len(spec.Columns))
		for i, name := range spec.Columns {
			pos := table.ColumnIndex(name)
			if pos < 0 {
				return nil, errs.New(errs.ErrKindInvalidInput,
					fmt.Sprintf("index %s names unknown column %s", spec.Name, name))
			}
			cols[i] = pos
		}

		for ord, r := range rows {
			vals := r.Values()
			keyVals := make([]any, len(cols))
			for i, pos := range cols {
				keyVals[i] = vals[pos]
			}
			k := indexKey(keyVals)
			ix.entries[k] = append(ix.entries[k], ord)
		}
		out = append(out, ix)
	}
	return out, nil
}

// BuildAllIndexes builds every declared secondary index. All eight entities
// must be registered.
func (g *Graph) BuildAllIndexes() (map[string][]*Index, error) {
	if !g.Complete() {
		return nil, errs.New(errs.ErrKindInvalidInput, "load is not complete")
	}
	out := make(map[string][]*Index)
	for _, entity := range schema.LoadOrder {
		specs := schema.IndexSpecs(entity)
		if len(specs) == 0 {
			continue
		}
		indexes, err := g.BuildIndexes(entity)
		if err != nil {
			return nil, err
		}
		out[entity] = indexes
	}
	return out, nil
}
