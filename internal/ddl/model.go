package ddl

import "strings"

// Database is a complete schema: every entity kind in declaration order.
type Database struct {
	Dialect        Dialect
	Tables         []Table
	Views          []View
	Udfs           []Udf
	Sequences      []Sequence
	ChangeStreams  []ChangeStream
	Placements     []Placement
	PropertyGraphs []PropertyGraph
	Models         []Model
}

// IsEmpty reports whether the database declares no entities at all.
func (db *Database) IsEmpty() bool {
	return len(db.Tables) == 0 && len(db.Views) == 0 && len(db.Udfs) == 0 &&
		len(db.Sequences) == 0 && len(db.ChangeStreams) == 0 &&
		len(db.Placements) == 0 && len(db.PropertyGraphs) == 0 && len(db.Models) == 0
}

// Table returns the table with the given name, compared case-insensitively.
func (db *Database) Table(name string) (Table, bool) {
	for _, t := range db.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Table{}, false
}

// AllTables returns the tables ordered parent before child. Root tables keep
// declaration order and each is followed, depth first, by the tables
// interleaved in it. A table whose parent is not declared is a root.
func (db *Database) AllTables() []Table {
	declared := make(map[string]bool, len(db.Tables))
	for _, t := range db.Tables {
		declared[strings.ToLower(t.Name)] = true
	}

	children := make(map[string][]Table)
	var roots []Table
	for _, t := range db.Tables {
		parent := strings.ToLower(t.InterleavingParent)
		if parent == "" || !declared[parent] {
			roots = append(roots, t)
			continue
		}
		children[parent] = append(children[parent], t)
	}

	ordered := make([]Table, 0, len(db.Tables))
	visited := make(map[string]bool, len(db.Tables))
	var visit func(t Table)
	visit = func(t Table) {
		key := strings.ToLower(t.Name)
		if visited[key] {
			return
		}
		visited[key] = true
		ordered = append(ordered, t)
		for _, child := range children[key] {
			visit(child)
		}
	}
	for _, t := range roots {
		visit(t)
	}
	return ordered
}

// Order is the sort direction of a key column.
type Order string

const (
	Ascending  Order = "ASC"
	Descending Order = "DESC"
)

// IndexColumn is a primary key column with its direction.
type IndexColumn struct {
	Name  string `yaml:"name"`
	Order Order  `yaml:"order"`
}

// Asc and Desc build primary key columns.
func Asc(name string) IndexColumn  { return IndexColumn{Name: name, Order: Ascending} }
func Desc(name string) IndexColumn { return IndexColumn{Name: name, Order: Descending} }

// PrettyPrint renders the key column as `name` ASC.
func (ic IndexColumn) PrettyPrint(d Dialect) string {
	order := ic.Order
	if order == "" {
		order = Ascending
	}
	return d.QuoteIdentifier(ic.Name) + " " + string(order)
}

// InterleaveType is the kind of interleaving between a child and its parent.
type InterleaveType string

const (
	InterleaveInParent InterleaveType = "IN PARENT"
	InterleaveIn       InterleaveType = "IN"
)

// Table is a Spanner table.
type Table struct {
	Name               string
	Dialect            Dialect
	InterleavingParent string
	InterleaveType     InterleaveType
	OnDeleteCascade    bool
	PrimaryKeys        []IndexColumn
	Columns            []Column
	Indexes            []string
	ForeignKeys        []ForeignKey
	CheckConstraints   []string
}

// Interleaving returns the interleave type, IN PARENT unless set otherwise.
func (t Table) Interleaving() InterleaveType {
	if t.InterleaveType == "" {
		return InterleaveInParent
	}
	return t.InterleaveType
}

// Column returns the column with the given name, compared case-insensitively.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// Column is a table column.
type Column struct {
	Name                 string
	Type                 *Type
	NotNull              bool
	Size                 int
	DefaultExpression    string
	GenerationExpression string
	IsStored             bool
	IsHidden             bool
	IsIdentityColumn     bool
	SequenceKind         string
	CounterStartValue    *int64
	SkipRangeMin         *int64
	SkipRangeMax         *int64
	IsPlacementKey       bool
	ArrayLength          *int
	Options              []string
}

// IsGenerated reports whether the column has a generation expression.
func (c Column) IsGenerated() bool {
	return c.GenerationExpression != ""
}

// TypeString renders the column type including size and vector length.
func (c Column) TypeString() string {
	return c.Type.Signature(c.Size, c.ArrayLength)
}

// ForeignKey is a foreign key constraint declared on a table.
type ForeignKey struct {
	Name              string   `yaml:"name"`
	Table             string   `yaml:"table"`
	Columns           []string `yaml:"columns"`
	ReferencedTable   string   `yaml:"referenced_table"`
	ReferencedColumns []string `yaml:"referenced_columns"`
	// ReferentialAction is the ON DELETE action, CASCADE or NO ACTION.
	ReferentialAction string `yaml:"referential_action"`
	// Enforced is nil when the enforcement clause is omitted.
	Enforced *bool `yaml:"enforced"`
}

// SQLSecurity is the security mode of a view or function.
type SQLSecurity string

const (
	SecurityInvoker SQLSecurity = "INVOKER"
	SecurityDefiner SQLSecurity = "DEFINER"
)

type View struct {
	Name     string      `yaml:"name"`
	Query    string      `yaml:"query"`
	Security SQLSecurity `yaml:"security"`
}

// Udf is a user-defined function. SpecificName is the qualified name, such as
// spanner.Foo, and Name its display name.
type Udf struct {
	SpecificName string         `yaml:"specific_name"`
	Name         string         `yaml:"name"`
	Definition   string         `yaml:"definition"`
	Type         string         `yaml:"type"`
	Security     SQLSecurity    `yaml:"security"`
	Parameters   []UdfParameter `yaml:"parameters"`
}

// QualifiedName returns SpecificName, falling back to Name.
func (u Udf) QualifiedName() string {
	if u.SpecificName != "" {
		return u.SpecificName
	}
	return u.Name
}

type UdfParameter struct {
	Name              string `yaml:"name"`
	Type              string `yaml:"type"`
	DefaultExpression string `yaml:"default"`
}

// Sequence carries either raw GoogleSQL options or the structured PostgreSQL
// parameters.
type Sequence struct {
	Name              string   `yaml:"name"`
	Options           []string `yaml:"options"`
	SequenceKind      string   `yaml:"sequence_kind"`
	CounterStartValue *int64   `yaml:"counter_start_value"`
	SkipRangeMin      *int64   `yaml:"skip_range_min"`
	SkipRangeMax      *int64   `yaml:"skip_range_max"`
}

type ChangeStream struct {
	Name      string   `yaml:"name"`
	ForClause string   `yaml:"for_clause"`
	Options   []string `yaml:"options"`
}

type Placement struct {
	Name    string   `yaml:"name"`
	Options []string `yaml:"options"`
}

// PropertyGraph is a graph overlay on existing tables.
type PropertyGraph struct {
	Name                 string                `yaml:"name"`
	NodeTables           []GraphElementTable   `yaml:"node_tables"`
	EdgeTables           []GraphElementTable   `yaml:"edge_tables"`
	Labels               []GraphElementLabel   `yaml:"labels"`
	PropertyDeclarations []PropertyDeclaration `yaml:"property_declarations"`
}

type GraphElementLabel struct {
	Name       string   `yaml:"name"`
	Properties []string `yaml:"properties"`
}

type PropertyDeclaration struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// GraphElementKind tells node tables from edge tables.
type GraphElementKind string

const (
	KindNode GraphElementKind = "NODE"
	KindEdge GraphElementKind = "EDGE"
)

// GraphElementTable is a node or edge table of a property graph. Name is the
// alias the graph exposes, BaseTableName the underlying table.
type GraphElementTable struct {
	Name                       string                       `yaml:"name"`
	BaseTableName              string                       `yaml:"base_table_name"`
	Kind                       GraphElementKind             `yaml:"kind"`
	KeyColumns                 []string                     `yaml:"key_columns"`
	SourceNodeTable            GraphNodeTableReference      `yaml:"source"`
	TargetNodeTable            GraphNodeTableReference      `yaml:"target"`
	LabelToPropertyDefinitions []LabelToPropertyDefinitions `yaml:"labels"`
}

// GraphNodeTableReference links an edge table to one of its endpoint nodes.
type GraphNodeTableReference struct {
	NodeTableName  string   `yaml:"node_table_name"`
	NodeKeyColumns []string `yaml:"node_key_columns"`
	EdgeKeyColumns []string `yaml:"edge_key_columns"`
}

type LabelToPropertyDefinitions struct {
	LabelName           string               `yaml:"label"`
	PropertyDefinitions []PropertyDefinition `yaml:"properties"`
}

// PropertyDefinition exposes ValueExpression under Name.
type PropertyDefinition struct {
	Name            string `yaml:"name"`
	ValueExpression string `yaml:"value"`
}

// Model is an ML model registered in the database.
type Model struct {
	Name          string
	InputColumns  []ModelColumn
	OutputColumns []ModelColumn
	Remote        bool
	Options       []string
}

// ModelColumn is one input or output column of a model.
type ModelColumn struct {
	Name    string
	Type    *Type
	Size    int
	Options []string
}

// TypeString renders the column type including size.
func (c ModelColumn) TypeString() string {
	return c.Type.Signature(c.Size, nil)
}
