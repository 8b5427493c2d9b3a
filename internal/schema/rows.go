package schema

import "github.com/shopspring/decimal"

// PartSuppKey is the composite primary key of partsupp and the tuple a
// lineitem row must jointly resolve. It is a single comparable value so a
// lookup is one atomic set-membership check.
type PartSuppKey struct {
	PartKey int64
	SuppKey int64
}

// LineItemKey is the composite primary key of lineitem.
type LineItemKey struct {
	OrderKey   int64
	LineNumber int32
}

// Region is one row of the region entity.
type Region struct {
	RegionKey int32
	Name      string
	Comment   *string
}

func (r Region) Entity() string { return EntityRegion }
func (r Region) Key() any       { return r.RegionKey }
func (r Region) Refs() []Ref    { return nil }
func (r Region) Values() []any {
	return []any{r.RegionKey, r.Name, optStr(r.Comment)}
}

// Nation is one row of the nation entity.
type Nation struct {
	NationKey int32
	Name      string
	RegionKey int32
	Comment   *string
}

func (n Nation) Entity() string { return EntityNation }
func (n Nation) Key() any       { return n.NationKey }
func (n Nation) Refs() []Ref {
	return []Ref{{Table: EntityRegion, Columns: "r_regionkey", Key: n.RegionKey}}
}
func (n Nation) Values() []any {
	return []any{n.NationKey, n.Name, n.RegionKey, optStr(n.Comment)}
}

// Part is one row of the part entity.
type Part struct {
	PartKey     int64
	Name        string
	Mfgr        string
	Brand       string
	Type        string
	Size        int32
	Container   string
	RetailPrice decimal.Decimal
	Comment     *string
}

func (p Part) Entity() string { return EntityPart }
func (p Part) Key() any       { return p.PartKey }
func (p Part) Refs() []Ref    { return nil }
func (p Part) Values() []any {
	return []any{
		p.PartKey, p.Name, p.Mfgr, p.Brand, p.Type,
		p.Size, p.Container, p.RetailPrice, optStr(p.Comment),
	}
}

// Supplier is one row of the supplier entity.
type Supplier struct {
	SuppKey   int64
	Name      string
	Address   string
	NationKey int32
	Phone     string
	AcctBal   decimal.Decimal
	Comment   *string
}

func (s Supplier) Entity() string { return EntitySupplier }
func (s Supplier) Key() any       { return s.SuppKey }
func (s Supplier) Refs() []Ref {
	return []Ref{{Table: EntityNation, Columns: "n_nationkey", Key: s.NationKey}}
}
func (s Supplier) Values() []any {
	return []any{
		s.SuppKey, s.Name, s.Address, s.NationKey,
		s.Phone, s.AcctBal, optStr(s.Comment),
	}
}

// PartSupp is one row of the partsupp entity: a part/supplier stocking
// relationship.
type PartSupp struct {
	PartKey    int64
	SuppKey    int64
	AvailQty   int64
	SupplyCost decimal.Decimal
	Comment    *string
}

func (ps PartSupp) Entity() string { return EntityPartSupp }
func (ps PartSupp) Key() any {
	return PartSuppKey{PartKey: ps.PartKey, SuppKey: ps.SuppKey}
}
func (ps PartSupp) Refs() []Ref {
	return []Ref{
		{Table: EntityPart, Columns: "p_partkey", Key: ps.PartKey},
		{Table: EntitySupplier, Columns: "s_suppkey", Key: ps.SuppKey},
	}
}
func (ps PartSupp) Values() []any {
	return []any{
		ps.PartKey, ps.SuppKey, ps.AvailQty,
		ps.SupplyCost, optStr(ps.Comment),
	}
}

// Customer is one row of the customer entity.
type Customer struct {
	CustKey    int64
	Name       string
	Address    string
	NationKey  int32
	Phone      string
	AcctBal    decimal.Decimal
	MktSegment string
	Comment    *string
}

func (c Customer) Entity() string { return EntityCustomer }
func (c Customer) Key() any       { return c.CustKey }
func (c Customer) Refs() []Ref {
	return []Ref{{Table: EntityNation, Columns: "n_nationkey", Key: c.NationKey}}
}
func (c Customer) Values() []any {
	return []any{
		c.CustKey, c.Name, c.Address, c.NationKey,
		c.Phone, c.AcctBal, c.MktSegment, optStr(c.Comment),
	}
}

// Order is one row of the orders entity.
type Order struct {
	OrderKey      int64
	CustKey       int64
	OrderStatus   string
	TotalPrice    decimal.Decimal
	OrderDate     Date
	OrderPriority string
	Clerk         string
	ShipPriority  int32
	Comment       *string
}

func (o Order) Entity() string { return EntityOrders }
func (o Order) Key() any       { return o.OrderKey }
func (o Order) Refs() []Ref {
	return []Ref{{Table: EntityCustomer, Columns: "c_custkey", Key: o.CustKey}}
}
func (o Order) Values() []any {
	return []any{
		o.OrderKey, o.CustKey, o.OrderStatus, o.TotalPrice, o.OrderDate,
		o.OrderPriority, o.Clerk, o.ShipPriority, optStr(o.Comment),
	}
}

// LineItem is one row of the lineitem entity.
type LineItem struct {
	OrderKey      int64
	PartKey       int64
	SuppKey       int64
	LineNumber    int32
	Quantity      decimal.Decimal
	ExtendedPrice decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	ReturnFlag    string
	LineStatus    string
	ShipDate      Date
	CommitDate    Date
	ReceiptDate   Date
	ShipInstruct  string
	ShipMode      string
	Comment       *string
}

func (l LineItem) Entity() string { return EntityLineItem }
func (l LineItem) Key() any {
	return LineItemKey{OrderKey: l.OrderKey, LineNumber: l.LineNumber}
}
func (l LineItem) Refs() []Ref {
	return []Ref{
		{Table: EntityOrders, Columns: "o_orderkey", Key: l.OrderKey},
		{
			Table:   EntityPartSupp,
			Columns: "ps_partkey, ps_suppkey",
			Key:     PartSuppKey{PartKey: l.PartKey, SuppKey: l.SuppKey},
		},
	}
}
func (l LineItem) Values() []any {
	return []any{
		l.OrderKey, l.PartKey, l.SuppKey, l.LineNumber,
		l.Quantity, l.ExtendedPrice, l.Discount, l.Tax,
		l.ReturnFlag, l.LineStatus,
		l.ShipDate, l.CommitDate, l.ReceiptDate,
		l.ShipInstruct, l.ShipMode, optStr(l.Comment),
	}
}

// optStr maps an optional string to its column value: nil stays nil,
// present stays a string. Absence is distinct from the empty string.
func optStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// StrPtr is a convenience for building rows with present comments.
func StrPtr(s string) *string { return &s }
