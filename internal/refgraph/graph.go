// Package refgraph enforces the referential-integrity graph over the eight
// TPC-H entities: leaf-first registration order, primary-key uniqueness, and
// dangling-reference rejection, including the composite lineitem→partsupp
// edge validated as a single tuple lookup.
//
// A Graph accepts one batch per entity, all-or-nothing: if any row in a
// batch violates an invariant the entire batch is rejected and nothing is
// retained, so dependents can never validate against an incomplete target
// set. Registration is the completion barrier between pipeline stages — a
// dependency's key set is fully populated and read-only before any
// dependent's validation begins.
package refgraph

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/koustreak/tpchkit/internal/errs"
	"github.com/koustreak/tpchkit/internal/schema"
)

// Graph holds the per-entity primary-key sets and retained rows of one
// benchmark load. It assumes at most one in-flight registration at a time
// (a batch-load pipeline, not an online workload); within a registration,
// row validation is parallelized because target key sets are read-only for
// the duration of the pass.
type Graph struct {
	workers int

	keys map[string]map[any]struct{} // entity → primary-key set
	rows map[string][]schema.Row     // entity → accepted rows, in batch order
}

// Option configures a Graph.
type Option func(*Graph)

// WithWorkers sets the number of goroutines used to validate rows within a
// batch. Values below 1 fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(g *Graph) {
		if n >= 1 {
			g.workers = n
		}
	}
}

// New returns an empty Graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		workers: runtime.GOMAXPROCS(0),
		keys:    make(map[string]map[any]struct{}, len(schema.LoadOrder)),
		rows:    make(map[string][]schema.Row, len(schema.LoadOrder)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register ingests the full batch for one entity. Every entity the batch
// references must already be registered, or the call fails with an
// out-of-order error naming the missing dependency. Each row is validated
// against its attribute domains, the entity's primary-key set, and the
// already-registered target key sets. On the first violation the batch is
// rejected whole.
func (g *Graph) Register(ctx context.Context, entity string, rows []schema.Row) error {
	table, ok := schema.TableFor(entity)
	if !ok {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown entity %q", entity))
	}
	if _, done := g.keys[entity]; done {
		return errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("entity %s is already registered", entity))
	}
	for _, dep := range schema.Dependencies(entity) {
		if _, done := g.keys[dep]; !done {
			return errs.OutOfOrder(entity, dep)
		}
	}

	// Uniqueness is checked sequentially while staging the key set; the
	// set must be complete before it can serve dependents anyway.
	staged := make(map[any]struct{}, len(rows))
	for i, r := range rows {
		k := r.Key()
		if _, dup := staged[k]; dup {
			return errs.Uniqueness(entity, i, k)
		}
		staged[k] = struct{}{}
	}

	// Rows are independent, so attribute and reference checks fan out
	// across workers. Target key sets are read-only during the pass.
	if err := g.validateRows(ctx, table, rows); err != nil {
		return err
	}

	accepted := make([]schema.Row, len(rows))
	copy(accepted, rows)
	g.keys[entity] = staged
	g.rows[entity] = accepted
	return nil
}

func (g *Graph) validateRows(ctx context.Context, table *schema.Table, rows []schema.Row) error {
	workers := g.workers
	if workers > len(rows) {
		workers = len(rows)
	}
	if workers <= 1 {
		for i, r := range rows {
			if err := table.ValidateRow(i, r); err != nil {
				return err
			}
			if err := g.ValidateReferences(table.Name, i, r); err != nil {
				return err
			}
		}
		return nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	chunk := (len(rows) + workers - 1) / workers
	for start := 0; start < len(rows); start += chunk {
		start, end := start, start+chunk
		if end > len(rows) {
			end = len(rows)
		}
		eg.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return errs.Wrap(errs.ErrKindTimeout, "validation cancelled", err)
				}
				if err := table.ValidateRow(i, rows[i]); err != nil {
					return err
				}
				if err := g.ValidateReferences(table.Name, i, rows[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

// ValidateReferences checks every foreign key of one row — single-column or
// composite — against the registered target key sets. A composite reference
// is one atomic tuple lookup: a row whose part and supplier each exist but
// were never jointly stocked still fails.
func (g *Graph) ValidateReferences(entity string, rowIdx int, r schema.Row) error {
	for _, ref := range r.Refs() {
		target, done := g.keys[ref.Table]
		if !done {
			return errs.OutOfOrder(entity, ref.Table)
		}
		if _, ok := target[ref.Key]; !ok {
			return errs.Dangling(entity, rowIdx, ref.Key, ref.Table, ref.Columns)
		}
	}
	return nil
}

// Registered reports whether the entity's batch has been accepted.
func (g *Graph) Registered(entity string) bool {
	_, done := g.keys[entity]
	return done
}

// Count returns the number of accepted rows for the entity, 0 when the
// entity is not registered.
func (g *Graph) Count(entity string) int {
	return len(g.rows[entity])
}

// Rows returns the accepted rows for the entity in batch order. The slice
// must be treated as read-only.
func (g *Graph) Rows(entity string) []schema.Row {
	return g.rows[entity]
}

// HasKey reports whether the entity is registered and its primary-key set
// contains key.
func (g *Graph) HasKey(entity string, key any) bool {
	set, done := g.keys[entity]
	if !done {
		return false
	}
	_, ok := set[key]
	return ok
}

// Complete reports whether every entity in the load order is registered.
func (g *Graph) Complete() bool {
	for _, entity := range schema.LoadOrder {
		if !g.Registered(entity) {
			return false
		}
	}
	return true
}
