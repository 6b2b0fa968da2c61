package converter

import (
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/tordrt/spanneravro/internal/ddl"
)

func (c *Converter) convertTable(t ddl.Table, d ddl.Dialect) (*avro.RecordSchema, error) {
	p := c.schemaProps(t.Name)

	keys := make([]string, len(t.PrimaryKeys))
	for i, pk := range t.PrimaryKeys {
		keys[i] = pk.PrettyPrint(d)
	}
	p.setFamily(PrimaryKey, keys)

	if t.InterleavingParent != "" {
		p.set(Parent, t.InterleavingParent)
		if t.OnDeleteCascade {
			p.set(OnDeleteAction, OnDeleteCascade)
		} else {
			p.set(OnDeleteAction, OnDeleteNoAction)
		}
		p.set(InterleaveType, string(t.Interleaving()))
	}

	p.setFamily(Index, t.Indexes)
	foreignKeys := make([]string, len(t.ForeignKeys))
	for i, fk := range t.ForeignKeys {
		foreignKeys[i] = fk.PrettyPrint(d)
	}
	p.setFamily(ForeignKey, foreignKeys)
	p.setFamily(CheckConstraint, t.CheckConstraints)

	name := avroName(t.Name)
	fields := make([]*avro.Field, 0, len(t.Columns))
	for i, col := range t.Columns {
		f, err := c.convertColumn(col, nestedName("struct_"+name, i))
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return c.record(t.Name, fields, p)
}

func (c *Converter) convertView(v ddl.View) (*avro.RecordSchema, error) {
	p := c.schemaProps(v.Name)
	p.set(ViewQuery, v.Query)
	p.setIfPresent(ViewSecurity, string(v.Security))
	return c.record(v.Name, nil, p)
}

func (c *Converter) convertUdf(u ddl.Udf, d ddl.Dialect) (*avro.RecordSchema, error) {
	p := c.schemaProps(u.QualifiedName())
	p.setIfPresent(UdfName, u.Name)
	p.setIfPresent(UdfDefinition, u.Definition)
	p.setIfPresent(UdfType, u.Type)
	p.setIfPresent(UdfSecurity, string(u.Security))
	params := make([]string, len(u.Parameters))
	for i, param := range u.Parameters {
		params[i] = param.PrettyPrint(d)
	}
	p.setFamily(UdfParameter, params)
	return c.record(u.QualifiedName(), nil, p)
}

// convertSequence prefers the raw option strings when a sequence carries
// both representations.
func (c *Converter) convertSequence(s ddl.Sequence) (*avro.RecordSchema, error) {
	p := c.schemaProps(s.Name)
	if len(s.Options) > 0 {
		p.setFamily(SequenceOption, s.Options)
	} else {
		p.setIfPresent(SequenceKind, s.SequenceKind)
		p.setInt(CounterStartValue, s.CounterStartValue)
		p.setInt(SkipRangeMin, s.SkipRangeMin)
		p.setInt(SkipRangeMax, s.SkipRangeMax)
	}
	return c.record(s.Name, nil, p)
}

func (c *Converter) convertChangeStream(cs ddl.ChangeStream) (*avro.RecordSchema, error) {
	p := c.schemaProps(cs.Name)
	p.set(ChangeStreamFor, cs.ForClause)
	p.setFamily(Option, cs.Options)
	return c.record(cs.Name, nil, p)
}

func (c *Converter) convertPlacement(pl ddl.Placement) (*avro.RecordSchema, error) {
	p := c.schemaProps(pl.Name)
	p.set(SpannerEntity, EntityPlacement)
	p.setFamily(Option, pl.Options)
	return c.record(pl.Name, nil, p)
}

// schemaProps returns the annotations every generated schema carries.
func (c *Converter) schemaProps(name string) props {
	return props{
		GoogleFormatVersion: c.cfg.FormatVersion,
		GoogleStorage:       StorageCloudSpanner,
		SpannerName:         name,
	}
}

func (c *Converter) record(name string, fields []*avro.Field, p props) (*avro.RecordSchema, error) {
	if fields == nil {
		fields = []*avro.Field{}
	}
	rs, err := avro.NewRecordSchema(avroName(name), c.cfg.Namespace, fields, avro.WithProps(p))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", name, err)
	}
	return rs, nil
}
