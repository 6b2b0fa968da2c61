package converter

import (
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tordrt/spanneravro/internal/ddl"
)

const testNamespace = "spannertest"

func newTestConverter(t *testing.T, logicalTimestamps bool) *Converter {
	t.Helper()
	return New(Config{
		Namespace:         testNamespace,
		FormatVersion:     "booleans",
		LogicalTimestamps: logicalTimestamps,
	}, zaptest.NewLogger(t))
}

func convert(t *testing.T, c *Converter, db *ddl.Database) []*avro.RecordSchema {
	t.Helper()
	schemas, err := c.Convert(db)
	require.NoError(t, err)
	return schemas
}

func prim(typ avro.Type) avro.Schema {
	return avro.NewPrimitiveSchema(typ, nil)
}

func nullableOf(t *testing.T, s avro.Schema) avro.Schema {
	t.Helper()
	u, err := avro.NewUnionSchema([]avro.Schema{avro.NewNullSchema(), s})
	require.NoError(t, err)
	return u
}

func arrayOf(t *testing.T, s avro.Schema) avro.Schema {
	t.Helper()
	return avro.NewArraySchema(nullableOf(t, s))
}

func nullableArrayOf(t *testing.T, s avro.Schema) avro.Schema {
	t.Helper()
	return nullableOf(t, arrayOf(t, s))
}

func field(t *testing.T, name string, s avro.Schema) *avro.Field {
	t.Helper()
	f, err := avro.NewField(name, s)
	require.NoError(t, err)
	return f
}

// recordOf builds a nested record in the test converter's namespace.
func recordOf(t *testing.T, name string, fields ...*avro.Field) avro.Schema {
	t.Helper()
	r, err := avro.NewRecordSchema(name, testNamespace, fields)
	require.NoError(t, err)
	return r
}

func uuidSchema() avro.Schema {
	return avro.NewPrimitiveSchema(avro.String, avro.NewPrimitiveLogicalSchema(avro.UUID))
}

func timestampMicros() avro.Schema {
	return avro.NewPrimitiveSchema(avro.Long, avro.NewPrimitiveLogicalSchema(avro.TimestampMicros))
}

func decimal(precision, scale int) avro.Schema {
	return avro.NewPrimitiveSchema(avro.Bytes, avro.NewDecimalLogicalSchema(precision, scale))
}

// sameSchema compares canonical forms, which ignore props.
func sameSchema(t *testing.T, want, got avro.Schema) {
	t.Helper()
	require.Equal(t, want.String(), got.String())
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
