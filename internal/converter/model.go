package converter

import (
	"fmt"
	"strings"

	"github.com/hamba/avro/v2"

	"github.com/tordrt/spanneravro/internal/ddl"
)

// convertModel produces a schema with two record fields, Input and Output.
// The column lists act as implicit top-level structs: each column is a bare
// field annotated with its sqlType and options, and struct columns nest
// records named struct_<model>_input_<index> and so on.
func (c *Converter) convertModel(m ddl.Model) (*avro.RecordSchema, error) {
	p := c.schemaProps(m.Name)
	p.set(SpannerEntity, EntityModel)
	p.setBool(Remote, m.Remote)
	p.setFamily(Option, m.Options)

	input, err := c.modelColumns(m.Name, ModelInput, m.InputColumns)
	if err != nil {
		return nil, err
	}
	output, err := c.modelColumns(m.Name, ModelOutput, m.OutputColumns)
	if err != nil {
		return nil, err
	}
	return c.record(m.Name, []*avro.Field{input, output}, p)
}

func (c *Converter) modelColumns(model, side string, columns []ddl.ModelColumn) (*avro.Field, error) {
	name := avroName(model)
	structPrefix := "struct_" + name + "_" + strings.ToLower(side)

	fields := make([]*avro.Field, 0, len(columns))
	for i, col := range columns {
		if err := col.Type.Validate(); err != nil {
			return nil, fmt.Errorf("model %s %s column %s: %w", model, side, col.Name, err)
		}
		t, err := c.avroType(col.Type, nestedName(structPrefix, i))
		if err != nil {
			return nil, fmt.Errorf("model %s %s column %s: %w", model, side, col.Name, err)
		}
		p := props{}
		p.set(SQLType, col.TypeString())
		p.setFamily(Option, col.Options)
		f, err := avro.NewField(col.Name, t, avro.WithProps(p))
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	record, err := avro.NewRecordSchema(name+"_"+side, c.cfg.Namespace, fields)
	if err != nil {
		return nil, err
	}
	return avro.NewField(side, record)
}
