package db

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tordrt/spanneravro/internal/ddl"
)

// Rows read from the Spanner information_schema. Fields are matched to the
// selected columns by position.
type (
	tableRow struct {
		Name           string
		ParentName     *string
		OnDeleteAction *string
		InterleaveType *string
	}

	columnRow struct {
		Table                string
		Name                 string
		SpannerType          string
		IsNullable           string
		Default              *string
		GenerationExpression *string
		IsStored             *string
	}

	keyColumnRow struct {
		Table    string
		Column   string
		Ordering *string
	}

	indexColumnRow struct {
		Table    string
		Index    string
		IsUnique string
		Column   string
		Position *int64
		Ordering *string
	}

	foreignKeyRow struct {
		Constraint       string
		Table            string
		Column           string
		ReferencedTable  string
		ReferencedColumn string
		DeleteRule       *string
	}

	checkRow struct {
		Table      string
		Constraint string
		Clause     string
	}

	viewRow struct {
		Name       string
		Definition string
		Security   *string
	}

	sequenceRow struct {
		Name              string
		Kind              *string
		CounterStartValue *int64
		SkipRangeMin      *int64
		SkipRangeMax      *int64
	}
)

// catalogRows is everything one extraction reads.
type catalogRows struct {
	tables      []tableRow
	columns     []columnRow
	keys        []keyColumnRow
	indexes     []indexColumnRow
	foreignKeys []foreignKeyRow
	checks      []checkRow
	views       []viewRow
	sequences   []sequenceRow
}

// buildDatabase assembles a PostgreSQL-dialect model from catalog rows.
// A non-empty only limits tables, and what hangs off them, to those names.
func buildDatabase(r catalogRows, only []string) (*ddl.Database, error) {
	const d = ddl.PostgreSQL
	db := &ddl.Database{Dialect: d}

	keep := func(string) bool { return true }
	if len(only) > 0 {
		wanted := make(map[string]bool, len(only))
		for _, name := range only {
			wanted[strings.ToLower(name)] = true
		}
		keep = func(name string) bool { return wanted[strings.ToLower(name)] }
	}

	byName := make(map[string]*ddl.Table)
	var order []string
	for _, row := range r.tables {
		if !keep(row.Name) {
			continue
		}
		t := &ddl.Table{Name: row.Name, Dialect: d}
		if row.ParentName != nil && *row.ParentName != "" {
			t.InterleavingParent = *row.ParentName
			t.OnDeleteCascade = row.OnDeleteAction != nil && strings.EqualFold(*row.OnDeleteAction, "CASCADE")
			if row.InterleaveType != nil && strings.EqualFold(*row.InterleaveType, string(ddl.InterleaveIn)) {
				t.InterleaveType = ddl.InterleaveIn
			}
		}
		byName[row.Name] = t
		order = append(order, row.Name)
	}

	for _, row := range r.columns {
		t, ok := byName[row.Table]
		if !ok {
			continue
		}
		col, err := buildColumn(row)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", row.Table, err)
		}
		t.Columns = append(t.Columns, col)
	}

	for _, row := range r.keys {
		if t, ok := byName[row.Table]; ok {
			t.PrimaryKeys = append(t.PrimaryKeys, ddl.IndexColumn{Name: row.Column, Order: ordering(row.Ordering)})
		}
	}

	for _, stmt := range buildIndexes(r.indexes) {
		if t, ok := byName[stmt.table]; ok {
			t.Indexes = append(t.Indexes, stmt.sql)
		}
	}

	for _, fk := range buildForeignKeys(r.foreignKeys) {
		if t, ok := byName[fk.Table]; ok {
			t.ForeignKeys = append(t.ForeignKeys, fk)
		}
	}

	for _, row := range r.checks {
		if t, ok := byName[row.Table]; ok {
			t.CheckConstraints = append(t.CheckConstraints,
				fmt.Sprintf("CONSTRAINT %s CHECK (%s)", d.QuoteIdentifier(row.Constraint), row.Clause))
		}
	}

	for _, name := range order {
		db.Tables = append(db.Tables, *byName[name])
	}

	for _, row := range r.views {
		v := ddl.View{Name: row.Name, Query: row.Definition}
		if row.Security != nil {
			v.Security = ddl.SQLSecurity(strings.ToUpper(*row.Security))
		}
		db.Views = append(db.Views, v)
	}

	for _, row := range r.sequences {
		s := ddl.Sequence{
			Name:              row.Name,
			CounterStartValue: row.CounterStartValue,
			SkipRangeMin:      row.SkipRangeMin,
			SkipRangeMax:      row.SkipRangeMax,
		}
		if row.Kind != nil {
			s.SequenceKind = *row.Kind
		}
		db.Sequences = append(db.Sequences, s)
	}

	return db, nil
}

func buildColumn(row columnRow) (ddl.Column, error) {
	parsed, err := ddl.ParseType(row.SpannerType, ddl.PostgreSQL)
	if err != nil {
		return ddl.Column{}, fmt.Errorf("column %s: %w", row.Name, err)
	}

	col := ddl.Column{
		Name:        row.Name,
		Type:        parsed.Type,
		Size:        parsed.Size,
		ArrayLength: parsed.ArrayLength,
		NotNull:     strings.EqualFold(row.IsNullable, "NO"),
	}
	if row.GenerationExpression != nil && *row.GenerationExpression != "" {
		col.GenerationExpression = *row.GenerationExpression
		col.IsStored = row.IsStored != nil && strings.EqualFold(*row.IsStored, "YES")
	} else if row.Default != nil {
		col.DefaultExpression = *row.Default
	}
	return col, nil
}

type indexStatement struct {
	table string
	sql   string
}

// buildIndexes renders one CREATE INDEX statement per index. Columns without
// a key position are stored columns and go into the INCLUDE list.
func buildIndexes(rows []indexColumnRow) []indexStatement {
	type index struct {
		table, name string
		unique      bool
		keys        []string
		stored      []string
	}

	const d = ddl.PostgreSQL
	var indexes []*index
	seen := make(map[string]*index)
	for _, row := range rows {
		key := row.Table + "\x00" + row.Index
		idx, ok := seen[key]
		if !ok {
			idx = &index{table: row.Table, name: row.Index, unique: strings.EqualFold(row.IsUnique, "YES")}
			seen[key] = idx
			indexes = append(indexes, idx)
		}
		if row.Position == nil {
			idx.stored = append(idx.stored, d.QuoteIdentifier(row.Column))
			continue
		}
		col := d.QuoteIdentifier(row.Column)
		if ordering(row.Ordering) == ddl.Descending {
			col += " DESC"
		}
		idx.keys = append(idx.keys, col)
	}

	out := make([]indexStatement, 0, len(indexes))
	for _, idx := range indexes {
		var b strings.Builder
		b.WriteString("CREATE ")
		if idx.unique {
			b.WriteString("UNIQUE ")
		}
		b.WriteString("INDEX ")
		b.WriteString(d.QuoteIdentifier(idx.name))
		b.WriteString(" ON ")
		b.WriteString(d.QuoteIdentifier(idx.table))
		b.WriteString(" (")
		b.WriteString(strings.Join(idx.keys, ", "))
		b.WriteString(")")
		if len(idx.stored) > 0 {
			b.WriteString(" INCLUDE (")
			b.WriteString(strings.Join(idx.stored, ", "))
			b.WriteString(")")
		}
		out = append(out, indexStatement{table: idx.table, sql: b.String()})
	}
	return out
}

// buildForeignKeys groups the per-column rows of each constraint, keeping
// the first-seen constraint order.
func buildForeignKeys(rows []foreignKeyRow) []ddl.ForeignKey {
	var names []string
	byName := make(map[string]*ddl.ForeignKey)
	for _, row := range rows {
		fk, ok := byName[row.Constraint]
		if !ok {
			fk = &ddl.ForeignKey{
				Name:            row.Constraint,
				Table:           row.Table,
				ReferencedTable: row.ReferencedTable,
			}
			if row.DeleteRule != nil && !strings.EqualFold(*row.DeleteRule, "NO ACTION") {
				fk.ReferentialAction = strings.ToUpper(*row.DeleteRule)
			}
			byName[row.Constraint] = fk
			names = append(names, row.Constraint)
		}
		fk.Columns = append(fk.Columns, row.Column)
		fk.ReferencedColumns = append(fk.ReferencedColumns, row.ReferencedColumn)
	}

	out := make([]ddl.ForeignKey, 0, len(names))
	for _, name := range names {
		out = append(out, *byName[name])
	}
	return out
}

func ordering(o *string) ddl.Order {
	if o != nil && strings.EqualFold(*o, string(ddl.Descending)) {
		return ddl.Descending
	}
	return ddl.Ascending
}

// tableNames lists the names in rows, sorted, for logging.
func tableNames(rows []tableRow) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	sort.Strings(names)
	return names
}
