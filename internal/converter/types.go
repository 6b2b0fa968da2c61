package converter

import (
	"fmt"
	"strconv"

	"github.com/hamba/avro/v2"

	"github.com/tordrt/spanneravro/internal/ddl"
)

// Decimal precision and scale of NUMERIC per dialect.
const (
	numericPrecision   = 38
	numericScale       = 9
	pgNumericPrecision = 147455
	pgNumericScale     = 16383
)

// avroType maps a column type to its Avro schema. Structs become records named
// name; their fields are named name_<index> when they are structs themselves.
// Array elements inherit name since an array holds a single element type.
func (c *Converter) avroType(t *ddl.Type, name string) (avro.Schema, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: missing type", ddl.ErrUnknownType)
	}
	switch t.Code {
	case ddl.CodeBool, ddl.CodePgBool:
		return avro.NewPrimitiveSchema(avro.Boolean, nil), nil
	case ddl.CodeInt64, ddl.CodePgInt8, ddl.CodeEnum:
		return avro.NewPrimitiveSchema(avro.Long, nil), nil
	case ddl.CodeFloat32, ddl.CodePgFloat4:
		return avro.NewPrimitiveSchema(avro.Float, nil), nil
	case ddl.CodeFloat64, ddl.CodePgFloat8:
		return avro.NewPrimitiveSchema(avro.Double, nil), nil
	case ddl.CodeString, ddl.CodePgVarchar, ddl.CodePgText,
		ddl.CodeDate, ddl.CodePgDate, ddl.CodeJSON, ddl.CodePgJSONB:
		return avro.NewPrimitiveSchema(avro.String, nil), nil
	case ddl.CodeBytes, ddl.CodePgBytea, ddl.CodeProto:
		return avro.NewPrimitiveSchema(avro.Bytes, nil), nil
	case ddl.CodeTimestamp, ddl.CodePgTimestamptz, ddl.CodePgCommitTimestamp:
		if c.cfg.LogicalTimestamps {
			return avro.NewPrimitiveSchema(avro.Long, avro.NewPrimitiveLogicalSchema(avro.TimestampMicros)), nil
		}
		return avro.NewPrimitiveSchema(avro.String, nil), nil
	case ddl.CodeNumeric:
		return avro.NewPrimitiveSchema(avro.Bytes, avro.NewDecimalLogicalSchema(numericPrecision, numericScale)), nil
	case ddl.CodePgNumeric:
		return avro.NewPrimitiveSchema(avro.Bytes, avro.NewDecimalLogicalSchema(pgNumericPrecision, pgNumericScale)), nil
	case ddl.CodeUUID, ddl.CodePgUUID:
		return avro.NewPrimitiveSchema(avro.String, avro.NewPrimitiveLogicalSchema(avro.UUID)), nil
	case ddl.CodeTokenlist, ddl.CodePgTokenlist:
		return avro.NewNullSchema(), nil
	case ddl.CodeArray, ddl.CodePgArray:
		if t.Elem == nil {
			return nil, fmt.Errorf("%w: array without element type", ddl.ErrUnknownType)
		}
		items, err := c.avroType(t.Elem, name)
		if err != nil {
			return nil, err
		}
		nullableItems, err := nullable(items)
		if err != nil {
			return nil, err
		}
		return avro.NewArraySchema(nullableItems), nil
	case ddl.CodeStruct:
		return c.structRecord(t, name)
	default:
		return nil, fmt.Errorf("%w: %s", ddl.ErrUnknownType, t.Code)
	}
}

// structRecord builds the nested record for a STRUCT in the converter's
// namespace. Its fields keep their bare types.
func (c *Converter) structRecord(t *ddl.Type, name string) (avro.Schema, error) {
	fields := make([]*avro.Field, 0, len(t.Fields))
	for i, f := range t.Fields {
		ft, err := c.avroType(f.Type, nestedName(name, i))
		if err != nil {
			return nil, fmt.Errorf("struct field %s: %w", f.Name, err)
		}
		field, err := avro.NewField(f.Name, ft)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return avro.NewRecordSchema(name, c.cfg.Namespace, fields)
}

// nullable wraps s in a union with null. Null itself is returned unchanged.
func nullable(s avro.Schema) (avro.Schema, error) {
	if s.Type() == avro.Null {
		return s, nil
	}
	return avro.NewUnionSchema([]avro.Schema{avro.NewNullSchema(), s})
}

func nestedName(prefix string, index int) string {
	return prefix + "_" + strconv.Itoa(index)
}
