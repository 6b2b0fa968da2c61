package converter

import (
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/tordrt/spanneravro/internal/ddl"
)

// convertColumn builds the field for one table column. Generated columns are
// never materialized in exported data, so their field type is null and the
// real type survives only in the sqlType annotation.
func (c *Converter) convertColumn(col ddl.Column, structName string) (*avro.Field, error) {
	if err := col.Type.Validate(); err != nil {
		return nil, fmt.Errorf("column %s: %w", col.Name, err)
	}

	p := props{}
	p.set(SQLType, col.TypeString())

	var schema avro.Schema
	if col.IsGenerated() {
		schema = avro.NewNullSchema()
		p.setBool(NotNull, col.NotNull)
		p.set(GenerationExpression, col.GenerationExpression)
		p.setBool(Stored, col.IsStored)
	} else {
		t, err := c.avroType(col.Type, structName)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		schema = t
		if !col.NotNull {
			if schema, err = nullable(t); err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
		}
		p.setIfPresent(DefaultExpression, col.DefaultExpression)
	}

	if col.IsHidden {
		p.setBool(Hidden, true)
	}
	if col.IsIdentityColumn {
		p.setBool(IdentityColumn, true)
		p.setIfPresent(SequenceKind, col.SequenceKind)
		p.setInt(CounterStartValue, col.CounterStartValue)
		p.setInt(SkipRangeMin, col.SkipRangeMin)
		p.setInt(SkipRangeMax, col.SkipRangeMax)
	}
	if col.IsPlacementKey {
		p.setBool(PlacementKey, true)
	}
	p.setFamily(Option, col.Options)

	return avro.NewField(col.Name, schema, avro.WithProps(p))
}
