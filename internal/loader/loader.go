// Package loader runs the ordered benchmark load pipeline: fetch each
// entity's batch from a source, validate it through the entity catalog and
// the referential graph, and optionally ship it to a database target.
//
// Stages follow the leaf-first dependency order and each registration is
// the completion barrier for the next stage, so a dependency's key set is
// fully populated before any dependent row is validated. A load is
// all-or-nothing per entity; every detected violation is a deterministic
// data-quality failure requiring corrected input, never a retry.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koustreak/tpchkit/internal/config"
	"github.com/koustreak/tpchkit/internal/errs"
	"github.com/koustreak/tpchkit/internal/logger"
	"github.com/koustreak/tpchkit/internal/refgraph"
	"github.com/koustreak/tpchkit/internal/schema"
)

// Target receives validated batches, e.g. a DDL applier. Batches arrive in
// dependency order, one call per entity.
type Target interface {
	Load(ctx context.Context, entity string, rows []schema.Row) error
}

// Loader wires a Source, the referential graph, and an optional Target into
// one pipeline.
type Loader struct {
	src     Source
	graph   *refgraph.Graph
	target  Target
	strict  config.Strict
	workers int
	log     *logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithTarget ships every validated batch to t after registration.
func WithTarget(t Target) Option {
	return func(l *Loader) { l.target = t }
}

// WithStrict enables the optional business-invariant checks.
func WithStrict(s config.Strict) Option {
	return func(l *Loader) { l.strict = s }
}

// WithWorkers sets the row-validation goroutine count. Values below 1 mean
// one worker per CPU.
func WithWorkers(n int) Option {
	return func(l *Loader) { l.workers = n }
}

// WithLogger overrides the logger.
func WithLogger(log *logger.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// New builds a Loader reading from src. The graph is constructed after all
// options apply, so option order never matters.
func New(src Source, opts ...Option) *Loader {
	l := &Loader{
		src: src,
		log: logger.FromContext(context.Background()),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.graph = refgraph.New(refgraph.WithWorkers(l.workers))
	return l
}

// Report summarises a completed load.
type Report struct {
	// Rows is the accepted row count per entity.
	Rows map[string]int

	// Indexes holds the rebuilt secondary indexes per entity.
	Indexes map[string][]*refgraph.Index

	// Elapsed is the wall-clock duration of the whole load.
	Elapsed time.Duration
}

// Graph exposes the populated referential graph after a successful Run.
func (l *Loader) Graph() *refgraph.Graph {
	return l.graph
}

// Run executes the full pipeline over all eight entities. On any violation
// it stops at the offending entity; batches already registered stay
// registered, the failed batch is not retained.
func (l *Loader) Run(ctx context.Context) (*Report, error) {
	t0 := time.Now()
	report := &Report{Rows: make(map[string]int, len(schema.LoadOrder))}

	for _, entity := range schema.LoadOrder {
		t1 := time.Now()

		rows, err := l.src.Batch(ctx, entity)
		if err != nil {
			return nil, err
		}
		if l.strict.DateOrdering && entity == schema.EntityLineItem {
			if err := checkDateOrdering(rows); err != nil {
				return nil, err
			}
		}
		if err := l.graph.Register(ctx, entity, rows); err != nil {
			return nil, err
		}
		if l.target != nil {
			if err := l.target.Load(ctx, entity, rows); err != nil {
				return nil, err
			}
		}

		report.Rows[entity] = len(rows)
		l.log.With().
			Str("entity", entity).
			Int("rows", len(rows)).
			Str("took", time.Since(t1).String()).
			Logger().
			Info("entity validated")
	}

	if l.strict.TotalPrice {
		if err := l.checkTotalPrices(); err != nil {
			return nil, err
		}
	}

	indexes, err := l.graph.BuildAllIndexes()
	if err != nil {
		return nil, err
	}
	report.Indexes = indexes
	report.Elapsed = time.Since(t0)

	l.log.Infof("load complete in %s", report.Elapsed)
	return report, nil
}

// checkDateOrdering enforces l_shipdate ≤ l_commitdate ≤ l_receiptdate for
// every line item.
func checkDateOrdering(rows []schema.Row) error {
	for i, r := range rows {
		li, ok := r.(schema.LineItem)
		if !ok {
			return errs.Attribute(schema.EntityLineItem, i, "",
				fmt.Sprintf("row is %T, expected a line item", r))
		}
		if li.CommitDate.Before(li.ShipDate) {
			return errs.Attribute(schema.EntityLineItem, i, "l_commitdate",
				fmt.Sprintf("commit date %s precedes ship date %s", li.CommitDate, li.ShipDate))
		}
		if li.ReceiptDate.Before(li.CommitDate) {
			return errs.Attribute(schema.EntityLineItem, i, "l_receiptdate",
				fmt.Sprintf("receipt date %s precedes commit date %s", li.ReceiptDate, li.CommitDate))
		}
	}
	return nil
}

// checkTotalPrices verifies o_totalprice against the sum of the order's
// line items' extended prices net of discount and tax, within the
// configured tolerance. Runs after both entities are registered.
func (l *Loader) checkTotalPrices() error {
	tolerance := decimal.Zero
	if l.strict.TotalPriceTolerance != "" {
		var err error
		tolerance, err = decimal.NewFromString(l.strict.TotalPriceTolerance)
		if err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, "invalid total price tolerance", err)
		}
	}

	one := decimal.NewFromInt(1)
	sums := make(map[int64]decimal.Decimal)
	for i, r := range l.graph.Rows(schema.EntityLineItem) {
		li, ok := r.(schema.LineItem)
		if !ok {
			return errs.Attribute(schema.EntityLineItem, i, "",
				fmt.Sprintf("row is %T, expected a line item", r))
		}
		// extendedprice * (1 - discount) * (1 + tax)
		net := li.ExtendedPrice.Mul(one.Sub(li.Discount)).Mul(one.Add(li.Tax))
		sums[li.OrderKey] = sums[li.OrderKey].Add(net)
	}

	for i, r := range l.graph.Rows(schema.EntityOrders) {
		o, ok := r.(schema.Order)
		if !ok {
			return errs.Attribute(schema.EntityOrders, i, "",
				fmt.Sprintf("row is %T, expected an order", r))
		}
		sum, ok := sums[o.OrderKey]
		if !ok {
			continue // orders without line items are legal
		}
		if o.TotalPrice.Sub(sum).Abs().GreaterThan(tolerance) {
			return errs.Attribute(schema.EntityOrders, i, "o_totalprice",
				fmt.Sprintf("total %s differs from line item sum %s by more than %s",
					o.TotalPrice, sum, tolerance))
		}
	}
	return nil
}
