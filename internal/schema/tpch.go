// Package schema defines the TPC-H entity catalog: the eight typed record
// shapes, their primary keys and foreign-key edges, the dependency order a
// conforming load must follow, and the secondary index specs that support
// the benchmark's query access patterns.
//
// The catalog is static reference data. Row-level attribute validation lives
// here too (see validate.go); cross-entity referential validation belongs to
// the refgraph package.
package schema

// Enumeration domains for the 1-char status columns.
var (
	orderStatusValues = []string{"F", "O", "P"}
	returnFlagValues  = []string{"A", "N", "R"}
	lineStatusValues  = []string{"F", "O"}
)

// LoadOrder is the leaf-first dependency order: every entity appears after
// all entities it references. Loads and validation must follow it.
var LoadOrder = []string{
	EntityRegion,
	EntityNation,
	EntityPart,
	EntitySupplier,
	EntityPartSupp,
	EntityCustomer,
	EntityOrders,
	EntityLineItem,
}

// Entity names, matching the physical table names external tooling depends on.
const (
	EntityRegion   = "region"
	EntityNation   = "nation"
	EntityPart     = "part"
	EntitySupplier = "supplier"
	EntityPartSupp = "partsupp"
	EntityCustomer = "customer"
	EntityOrders   = "orders"
	EntityLineItem = "lineitem"
)

var regionTable = newTable(EntityRegion,
	[]string{"r_regionkey"},
	nil,
	Column{Name: "r_regionkey", Type: TypeInt},
	Column{Name: "r_name", Type: TypeChar, Width: 25},
	Column{Name: "r_comment", Type: TypeVarChar, Width: 152, Nullable: true},
)

var nationTable = newTable(EntityNation,
	[]string{"n_nationkey"},
	[]ForeignKey{
		{Columns: []string{"n_regionkey"}, RefTable: EntityRegion, RefColumns: []string{"r_regionkey"}},
	},
	Column{Name: "n_nationkey", Type: TypeInt},
	Column{Name: "n_name", Type: TypeChar, Width: 25},
	Column{Name: "n_regionkey", Type: TypeInt},
	Column{Name: "n_comment", Type: TypeVarChar, Width: 152, Nullable: true},
)

var partTable = newTable(EntityPart,
	[]string{"p_partkey"},
	nil,
	Column{Name: "p_partkey", Type: TypeBigInt},
	Column{Name: "p_name", Type: TypeVarChar, Width: 55},
	Column{Name: "p_mfgr", Type: TypeChar, Width: 25},
	Column{Name: "p_brand", Type: TypeChar, Width: 10},
	Column{Name: "p_type", Type: TypeVarChar, Width: 25},
	Column{Name: "p_size", Type: TypeInt, NonNegative: true},
	Column{Name: "p_container", Type: TypeChar, Width: 10},
	Column{Name: "p_retailprice", Type: TypeDecimal, Precision: 15, Scale: 2, NonNegative: true},
	Column{Name: "p_comment", Type: TypeVarChar, Width: 23, Nullable: true},
)

var supplierTable = newTable(EntitySupplier,
	[]string{"s_suppkey"},
	[]ForeignKey{
		{Columns: []string{"s_nationkey"}, RefTable: EntityNation, RefColumns: []string{"n_nationkey"}},
	},
	Column{Name: "s_suppkey", Type: TypeBigInt},
	Column{Name: "s_name", Type: TypeChar, Width: 25},
	Column{Name: "s_address", Type: TypeVarChar, Width: 40},
	Column{Name: "s_nationkey", Type: TypeInt},
	Column{Name: "s_phone", Type: TypeChar, Width: 15},
	Column{Name: "s_acctbal", Type: TypeDecimal, Precision: 15, Scale: 2},
	Column{Name: "s_comment", Type: TypeVarChar, Width: 101, Nullable: true},
)

var partSuppTable = newTable(EntityPartSupp,
	[]string{"ps_partkey", "ps_suppkey"},
	[]ForeignKey{
		{Columns: []string{"ps_partkey"}, RefTable: EntityPart, RefColumns: []string{"p_partkey"}},
		{Columns: []string{"ps_suppkey"}, RefTable: EntitySupplier, RefColumns: []string{"s_suppkey"}},
	},
	Column{Name: "ps_partkey", Type: TypeBigInt},
	Column{Name: "ps_suppkey", Type: TypeBigInt},
	Column{Name: "ps_availqty", Type: TypeBigInt, NonNegative: true},
	Column{Name: "ps_supplycost", Type: TypeDecimal, Precision: 15, Scale: 2, NonNegative: true},
	Column{Name: "ps_comment", Type: TypeVarChar, Width: 199, Nullable: true},
)

var customerTable = newTable(EntityCustomer,
	[]string{"c_custkey"},
	[]ForeignKey{
		{Columns: []string{"c_nationkey"}, RefTable: EntityNation, RefColumns: []string{"n_nationkey"}},
	},
	Column{Name: "c_custkey", Type: TypeBigInt},
	Column{Name: "c_name", Type: TypeVarChar, Width: 25},
	Column{Name: "c_address", Type: TypeVarChar, Width: 40},
	Column{Name: "c_nationkey", Type: TypeInt},
	Column{Name: "c_phone", Type: TypeChar, Width: 15},
	Column{Name: "c_acctbal", Type: TypeDecimal, Precision: 15, Scale: 2},
	Column{Name: "c_mktsegment", Type: TypeChar, Width: 10},
	Column{Name: "c_comment", Type: TypeVarChar, Width: 117, Nullable: true},
)

var ordersTable = newTable(EntityOrders,
	[]string{"o_orderkey"},
	[]ForeignKey{
		{Columns: []string{"o_custkey"}, RefTable: EntityCustomer, RefColumns: []string{"c_custkey"}},
	},
	Column{Name: "o_orderkey", Type: TypeBigInt},
	Column{Name: "o_custkey", Type: TypeBigInt},
	Column{Name: "o_orderstatus", Type: TypeChar, Width: 1, Enum: orderStatusValues},
	Column{Name: "o_totalprice", Type: TypeDecimal, Precision: 15, Scale: 2, NonNegative: true},
	Column{Name: "o_orderdate", Type: TypeDate},
	Column{Name: "o_orderpriority", Type: TypeChar, Width: 15},
	Column{Name: "o_clerk", Type: TypeChar, Width: 15},
	Column{Name: "o_shippriority", Type: TypeInt},
	Column{Name: "o_comment", Type: TypeVarChar, Width: 79, Nullable: true},
)

var lineItemTable = newTable(EntityLineItem,
	[]string{"l_orderkey", "l_linenumber"},
	[]ForeignKey{
		{Columns: []string{"l_orderkey"}, RefTable: EntityOrders, RefColumns: []string{"o_orderkey"}},
		// Composite edge: a line item's part and supplier must jointly
		// exist as a stocking relationship, never two separate checks.
		{
			Columns:    []string{"l_partkey", "l_suppkey"},
			RefTable:   EntityPartSupp,
			RefColumns: []string{"ps_partkey", "ps_suppkey"},
		},
	},
	Column{Name: "l_orderkey", Type: TypeBigInt},
	Column{Name: "l_partkey", Type: TypeBigInt},
	Column{Name: "l_suppkey", Type: TypeBigInt},
	Column{Name: "l_linenumber", Type: TypeInt, NonNegative: true},
	Column{Name: "l_quantity", Type: TypeDecimal, Precision: 15, Scale: 2, NonNegative: true},
	Column{Name: "l_extendedprice", Type: TypeDecimal, Precision: 15, Scale: 2, NonNegative: true},
	Column{Name: "l_discount", Type: TypeDecimal, Precision: 15, Scale: 2, NonNegative: true},
	Column{Name: "l_tax", Type: TypeDecimal, Precision: 15, Scale: 2, NonNegative: true},
	Column{Name: "l_returnflag", Type: TypeChar, Width: 1, Enum: returnFlagValues},
	Column{Name: "l_linestatus", Type: TypeChar, Width: 1, Enum: lineStatusValues},
	Column{Name: "l_shipdate", Type: TypeDate},
	Column{Name: "l_commitdate", Type: TypeDate},
	Column{Name: "l_receiptdate", Type: TypeDate},
	Column{Name: "l_shipinstruct", Type: TypeChar, Width: 25},
	Column{Name: "l_shipmode", Type: TypeChar, Width: 10},
	Column{Name: "l_comment", Type: TypeVarChar, Width: 44, Nullable: true},
)

var tablesByName = map[string]*Table{
	EntityRegion:   regionTable,
	EntityNation:   nationTable,
	EntityPart:     partTable,
	EntitySupplier: supplierTable,
	EntityPartSupp: partSuppTable,
	EntityCustomer: customerTable,
	EntityOrders:   ordersTable,
	EntityLineItem: lineItemTable,
}

// Tables returns the eight entity definitions in dependency order.
func Tables() []*Table {
	out := make([]*Table, len(LoadOrder))
	for i, name := range LoadOrder {
		out[i] = tablesByName[name]
	}
	return out
}

// TableFor returns the definition of the named entity.
func TableFor(name string) (*Table, bool) {
	t, ok := tablesByName[name]
	return t, ok
}

// Dependencies returns the entities the named entity references, leaf-most
// first. Unknown names return nil.
func Dependencies(name string) []string {
	t, ok := tablesByName[name]
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(t.ForeignKeys))
	var deps []string
	for _, fk := range t.ForeignKeys {
		if !seen[fk.RefTable] {
			seen[fk.RefTable] = true
			deps = append(deps, fk.RefTable)
		}
	}
	return deps
}

// allIndexes is the secondary index set supporting the standard TPC-H query
// workload: FK-side lookups plus the two date range scans. Removing any one
// changes cost, never results.
var allIndexes = []IndexSpec{
	{Name: "idx_nation_regionkey", Table: EntityNation, Columns: []string{"n_regionkey"}},
	{Name: "idx_supplier_nationkey", Table: EntitySupplier, Columns: []string{"s_nationkey"}},
	{Name: "idx_partsupp_suppkey", Table: EntityPartSupp, Columns: []string{"ps_suppkey"}},
	{Name: "idx_customer_nationkey", Table: EntityCustomer, Columns: []string{"c_nationkey"}},
	{Name: "idx_orders_custkey", Table: EntityOrders, Columns: []string{"o_custkey"}},
	{Name: "idx_orders_orderdate", Table: EntityOrders, Columns: []string{"o_orderdate"}},
	{Name: "idx_lineitem_orderkey", Table: EntityLineItem, Columns: []string{"l_orderkey"}},
	{Name: "idx_lineitem_partkey", Table: EntityLineItem, Columns: []string{"l_partkey"}},
	{Name: "idx_lineitem_suppkey", Table: EntityLineItem, Columns: []string{"l_suppkey"}},
	{Name: "idx_lineitem_shipdate", Table: EntityLineItem, Columns: []string{"l_shipdate"}},
}

// IndexSpecs returns the ordered secondary index definitions for the named
// entity. Entities with no secondary indexes return nil.
func IndexSpecs(entity string) []IndexSpec {
	var out []IndexSpec
	for _, spec := range allIndexes {
		if spec.Table == entity {
			out = append(out, spec)
		}
	}
	return out
}

// AllIndexSpecs returns every secondary index definition in creation order.
func AllIndexSpecs() []IndexSpec {
	out := make([]IndexSpec, len(allIndexes))
	copy(out, allIndexes)
	return out
}
