package ddl

import (
	"fmt"
	"io"
	"strings"
)

// PrettyPrint writes the whole database as DDL statements separated by blank
// lines. Sequences come first, then tables in AllTables order with their
// indexes, then foreign keys, functions, views and the remaining entities.
func (db *Database) PrettyPrint(w io.Writer) error {
	if err := db.Dialect.Validate(); err != nil {
		return fmt.Errorf("print database: %w", err)
	}
	d := db.Dialect

	var statements []string
	for _, s := range db.Sequences {
		statements = append(statements, s.PrettyPrint(d))
	}
	tables := db.AllTables()
	for _, t := range tables {
		var b strings.Builder
		t.prettyPrint(&b, d, true, false)
		statements = append(statements, b.String())
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			statements = append(statements, fk.PrettyPrint(d))
		}
	}
	for _, u := range db.Udfs {
		statements = append(statements, u.PrettyPrint(d))
	}
	for _, v := range db.Views {
		statements = append(statements, v.PrettyPrint(d))
	}
	for _, cs := range db.ChangeStreams {
		statements = append(statements, cs.PrettyPrint(d))
	}
	for _, p := range db.Placements {
		statements = append(statements, p.PrettyPrint(d))
	}
	for _, g := range db.PropertyGraphs {
		statements = append(statements, g.PrettyPrint(d))
	}
	for _, m := range db.Models {
		statements = append(statements, m.PrettyPrint(d))
	}

	for i, s := range statements {
		sep := "\n\n"
		if i == len(statements)-1 {
			sep = "\n"
		}
		if _, err := io.WriteString(w, s+sep); err != nil {
			return err
		}
	}
	return nil
}

func (v View) PrettyPrint(d Dialect) string {
	s := "CREATE VIEW " + d.QuoteIdentifier(v.Name)
	if v.Security != "" {
		s += " SQL SECURITY " + string(v.Security)
	}
	return s + " AS " + v.Query
}

func (u Udf) PrettyPrint(d Dialect) string {
	params := make([]string, len(u.Parameters))
	for i, p := range u.Parameters {
		params[i] = p.PrettyPrint(d)
	}
	var b strings.Builder
	b.WriteString("CREATE FUNCTION ")
	b.WriteString(d.QuoteIdentifier(u.QualifiedName()))
	b.WriteString("(")
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(")")
	if u.Type != "" {
		b.WriteString(" RETURNS ")
		b.WriteString(u.Type)
	}
	if u.Security != "" {
		b.WriteString(" SQL SECURITY ")
		b.WriteString(string(u.Security))
	}
	if u.Definition != "" {
		b.WriteString(" AS (")
		b.WriteString(u.Definition)
		b.WriteString(")")
	}
	return b.String()
}

func (s Sequence) PrettyPrint(d Dialect) string {
	stmt := "CREATE SEQUENCE " + d.QuoteIdentifier(s.Name)
	if len(s.Options) > 0 {
		return stmt + " OPTIONS (" + strings.Join(s.Options, ", ") + ")"
	}
	if params := identityParams(d, s.SequenceKind, s.CounterStartValue, s.SkipRangeMin, s.SkipRangeMax); params != "" {
		stmt += " " + params
	}
	return stmt
}

func (cs ChangeStream) PrettyPrint(d Dialect) string {
	stmt := "CREATE CHANGE STREAM " + d.QuoteIdentifier(cs.Name)
	if cs.ForClause != "" {
		stmt += " " + cs.ForClause
	}
	if len(cs.Options) > 0 {
		keyword := " OPTIONS ("
		if d == PostgreSQL {
			keyword = " WITH ("
		}
		stmt += keyword + strings.Join(cs.Options, ", ") + ")"
	}
	return stmt
}

func (p Placement) PrettyPrint(d Dialect) string {
	stmt := "CREATE PLACEMENT " + d.QuoteIdentifier(p.Name)
	if len(p.Options) > 0 {
		stmt += " OPTIONS (" + strings.Join(p.Options, ", ") + ")"
	}
	return stmt
}

func (g PropertyGraph) PrettyPrint(d Dialect) string {
	var b strings.Builder
	b.WriteString("CREATE PROPERTY GRAPH ")
	b.WriteString(d.QuoteIdentifier(g.Name))
	if len(g.NodeTables) > 0 {
		b.WriteString("\nNODE TABLES(\n")
		writeElementTables(&b, d, g.NodeTables)
		b.WriteString(")")
	}
	if len(g.EdgeTables) > 0 {
		b.WriteString("\nEDGE TABLES(\n")
		writeElementTables(&b, d, g.EdgeTables)
		b.WriteString(")")
	}
	return b.String()
}

func writeElementTables(b *strings.Builder, d Dialect, tables []GraphElementTable) {
	for i, et := range tables {
		b.WriteString("  ")
		b.WriteString(d.QuoteIdentifier(et.BaseTableName))
		if et.Name != "" && et.Name != et.BaseTableName {
			b.WriteString(" AS ")
			b.WriteString(d.QuoteIdentifier(et.Name))
		}
		if len(et.KeyColumns) > 0 {
			b.WriteString("\n    KEY (")
			b.WriteString(quoteAll(d, et.KeyColumns))
			b.WriteString(")")
		}
		if et.Kind == KindEdge {
			writeNodeReference(b, d, "SOURCE", et.SourceNodeTable)
			writeNodeReference(b, d, "DESTINATION", et.TargetNodeTable)
		}
		for _, l := range et.LabelToPropertyDefinitions {
			b.WriteString("\n    LABEL ")
			b.WriteString(d.QuoteIdentifier(l.LabelName))
			if len(l.PropertyDefinitions) == 0 {
				b.WriteString(" NO PROPERTIES")
				continue
			}
			props := make([]string, len(l.PropertyDefinitions))
			for j, p := range l.PropertyDefinitions {
				props[j] = p.ValueExpression
				if p.ValueExpression != p.Name {
					props[j] += " AS " + d.QuoteIdentifier(p.Name)
				}
			}
			b.WriteString(" PROPERTIES(")
			b.WriteString(strings.Join(props, ", "))
			b.WriteString(")")
		}
		if i < len(tables)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
}

func writeNodeReference(b *strings.Builder, d Dialect, keyword string, ref GraphNodeTableReference) {
	if ref.NodeTableName == "" {
		return
	}
	b.WriteString("\n    ")
	b.WriteString(keyword)
	b.WriteString(" KEY(")
	b.WriteString(quoteAll(d, ref.EdgeKeyColumns))
	b.WriteString(") REFERENCES ")
	b.WriteString(d.QuoteIdentifier(ref.NodeTableName))
	b.WriteString("(")
	b.WriteString(quoteAll(d, ref.NodeKeyColumns))
	b.WriteString(")")
}

func (m Model) PrettyPrint(d Dialect) string {
	var b strings.Builder
	b.WriteString("CREATE MODEL ")
	b.WriteString(d.QuoteIdentifier(m.Name))
	writeModelColumns(&b, d, "INPUT", m.InputColumns)
	writeModelColumns(&b, d, "OUTPUT", m.OutputColumns)
	if m.Remote {
		b.WriteString("\nREMOTE")
	}
	if len(m.Options) > 0 {
		b.WriteString("\nOPTIONS (")
		b.WriteString(strings.Join(m.Options, ", "))
		b.WriteString(")")
	}
	return b.String()
}

func writeModelColumns(b *strings.Builder, d Dialect, keyword string, columns []ModelColumn) {
	if len(columns) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(keyword)
	b.WriteString(" (")
	for _, c := range columns {
		b.WriteString("\n\t")
		b.WriteString(d.QuoteIdentifier(c.Name))
		b.WriteString(" ")
		b.WriteString(c.TypeString())
		if len(c.Options) > 0 {
			b.WriteString(" OPTIONS (")
			b.WriteString(strings.Join(c.Options, ", "))
			b.WriteString(")")
		}
		b.WriteString(",")
	}
	b.WriteString("\n)")
}
