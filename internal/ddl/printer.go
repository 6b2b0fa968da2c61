package ddl

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PrettyPrint writes the CREATE TABLE statement for t, followed by its
// indexes and foreign keys when requested.
func (t Table) PrettyPrint(w io.Writer, includeIndexes, includeForeignKeys bool) error {
	if err := t.Dialect.Validate(); err != nil {
		return fmt.Errorf("print table %s: %w", t.Name, err)
	}
	var b strings.Builder
	t.prettyPrint(&b, t.Dialect, includeIndexes, includeForeignKeys)
	_, err := io.WriteString(w, b.String())
	return err
}

// String renders the table with indexes and foreign keys. Unknown dialects
// render in GoogleSQL.
func (t Table) String() string {
	var b strings.Builder
	t.prettyPrint(&b, t.Dialect, true, true)
	return b.String()
}

// prettyPrint renders t in dialect d, which overrides t.Dialect.
func (t Table) prettyPrint(b *strings.Builder, d Dialect, includeIndexes, includeForeignKeys bool) {
	b.WriteString("CREATE TABLE ")
	b.WriteString(d.QuoteIdentifier(t.Name))
	b.WriteString(" (")
	for _, c := range t.Columns {
		b.WriteString("\n\t")
		b.WriteString(c.PrettyPrint(d))
		b.WriteString(",")
	}
	for _, check := range t.CheckConstraints {
		b.WriteString("\n\t")
		b.WriteString(check)
		b.WriteString(",")
	}

	if d == PostgreSQL {
		names := make([]string, 0, len(t.PrimaryKeys))
		for _, pk := range t.PrimaryKeys {
			names = append(names, d.QuoteIdentifier(pk.Name))
		}
		b.WriteString("\n\tPRIMARY KEY (")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(")\n)")
		if t.InterleavingParent != "" {
			b.WriteString(" \nINTERLEAVE IN ")
			if t.Interleaving() == InterleaveInParent {
				b.WriteString("PARENT ")
			}
			b.WriteString(d.QuoteIdentifier(t.InterleavingParent))
			if t.Interleaving() == InterleaveInParent && t.OnDeleteCascade {
				b.WriteString(" ON DELETE CASCADE")
			}
		}
	} else {
		keys := make([]string, 0, len(t.PrimaryKeys))
		for _, pk := range t.PrimaryKeys {
			keys = append(keys, pk.PrettyPrint(d))
		}
		b.WriteString("\n) PRIMARY KEY (")
		b.WriteString(strings.Join(keys, ", "))
		b.WriteString(")")
		if t.InterleavingParent != "" {
			b.WriteString(",\nINTERLEAVE IN ")
			if t.Interleaving() == InterleaveInParent {
				b.WriteString("PARENT ")
			}
			b.WriteString(d.QuoteIdentifier(t.InterleavingParent))
			if t.Interleaving() == InterleaveInParent && t.OnDeleteCascade {
				b.WriteString(" ON DELETE CASCADE")
			}
		}
	}

	if includeIndexes && len(t.Indexes) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(t.Indexes, "\n"))
	}
	if includeForeignKeys {
		for _, fk := range t.ForeignKeys {
			b.WriteString("\n")
			b.WriteString(fk.PrettyPrint(d))
		}
	}
}

// PrettyPrint renders the column definition as it appears inside CREATE TABLE.
func (c Column) PrettyPrint(d Dialect) string {
	var b strings.Builder
	b.WriteString(d.QuoteIdentifier(c.Name))
	b.WriteString(" ")
	b.WriteString(c.TypeString())
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}

	if d == PostgreSQL {
		if c.IsGenerated() {
			b.WriteString(" GENERATED ALWAYS AS (")
			b.WriteString(c.GenerationExpression)
			b.WriteString(")")
			if c.IsStored {
				b.WriteString(" STORED")
			}
		}
		if c.DefaultExpression != "" {
			b.WriteString(" DEFAULT ")
			b.WriteString(c.DefaultExpression)
		}
	} else {
		if c.IsGenerated() {
			b.WriteString(" AS (")
			b.WriteString(c.GenerationExpression)
			b.WriteString(")")
			if c.IsStored {
				b.WriteString(" STORED")
			}
		}
		if c.DefaultExpression != "" {
			b.WriteString(" DEFAULT (")
			b.WriteString(c.DefaultExpression)
			b.WriteString(")")
		}
	}

	if c.IsIdentityColumn {
		b.WriteString(" GENERATED BY DEFAULT AS IDENTITY")
		if params := identityParams(d, c.SequenceKind, c.CounterStartValue, c.SkipRangeMin, c.SkipRangeMax); params != "" {
			b.WriteString(" (")
			b.WriteString(params)
			b.WriteString(")")
		}
	}
	if c.IsHidden {
		b.WriteString(" HIDDEN")
	}
	if c.IsPlacementKey {
		b.WriteString(" PLACEMENT KEY")
	}
	if len(c.Options) > 0 && d == GoogleStandardSQL {
		b.WriteString(" OPTIONS (")
		b.WriteString(strings.Join(c.Options, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// identityParams renders the sequence clause shared by identity columns and
// PostgreSQL sequences.
func identityParams(d Dialect, kind string, counterStart, skipMin, skipMax *int64) string {
	var parts []string
	if kind != "" {
		parts = append(parts, strings.ToUpper(kind))
	}
	if skipMin != nil && skipMax != nil {
		sep := ", "
		if d == PostgreSQL {
			sep = " "
		}
		parts = append(parts, "SKIP RANGE "+strconv.FormatInt(*skipMin, 10)+sep+strconv.FormatInt(*skipMax, 10))
	}
	if counterStart != nil {
		parts = append(parts, "START COUNTER WITH "+strconv.FormatInt(*counterStart, 10))
	}
	return strings.Join(parts, " ")
}

// PrettyPrint renders the foreign key as a single ALTER TABLE statement.
func (fk ForeignKey) PrettyPrint(d Dialect) string {
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(d.QuoteIdentifier(fk.Table))
	b.WriteString(" ADD CONSTRAINT ")
	b.WriteString(d.QuoteIdentifier(fk.Name))
	b.WriteString(" FOREIGN KEY (")
	b.WriteString(quoteAll(d, fk.Columns))
	b.WriteString(") REFERENCES ")
	b.WriteString(d.QuoteIdentifier(fk.ReferencedTable))
	b.WriteString(" (")
	b.WriteString(quoteAll(d, fk.ReferencedColumns))
	b.WriteString(")")
	if fk.ReferentialAction != "" {
		b.WriteString(" ON DELETE ")
		b.WriteString(strings.ToUpper(fk.ReferentialAction))
	}
	if fk.Enforced != nil {
		if *fk.Enforced {
			b.WriteString(" ENFORCED")
		} else {
			b.WriteString(" NOT ENFORCED")
		}
	}
	return b.String()
}

// PrettyPrint renders the parameter as name TYPE [DEFAULT expr].
func (p UdfParameter) PrettyPrint(d Dialect) string {
	s := d.QuoteIdentifier(p.Name) + " " + p.Type
	if p.DefaultExpression != "" {
		s += " DEFAULT " + p.DefaultExpression
	}
	return s
}

func quoteAll(d Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}
