package ddl

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		sig     string
		dialect Dialect
		want    ParsedType
	}{
		{"INT64", GoogleStandardSQL, ParsedType{Type: Int64()}},
		{"bool", GoogleStandardSQL, ParsedType{Type: Bool()}},
		{"STRING(10)", GoogleStandardSQL, ParsedType{Type: String(), Size: 10}},
		{"STRING(MAX)", GoogleStandardSQL, ParsedType{Type: String(), Size: MaxLength}},
		{"BYTES(MAX)", GoogleStandardSQL, ParsedType{Type: Bytes(), Size: MaxLength}},
		{"ARRAY<STRING(MAX)>", GoogleStandardSQL, ParsedType{Type: Array(String()), Size: MaxLength}},
		{"ARRAY<FLOAT32>(vector_length=>128)", GoogleStandardSQL, ParsedType{Type: Array(Float32()), ArrayLength: intPtr(128)}},
		{"PROTO<a.b.Msg>", GoogleStandardSQL, ParsedType{Type: Proto("a.b.Msg")}},
		{"ENUM<a.b.Kind>", GoogleStandardSQL, ParsedType{Type: Enum("a.b.Kind")}},
		{
			"STRUCT<a INT64, b ARRAY<STRUCT<c STRING(MAX), d BYTES(10)>>>",
			GoogleStandardSQL,
			ParsedType{Type: Struct(
				Field("a", Int64()),
				Field("b", Array(Struct(SizedField("c", String(), MaxLength), SizedField("d", Bytes(), 10)))),
			)},
		},
		{"struct<name string(20)>", GoogleStandardSQL, ParsedType{Type: Struct(SizedField("name", String(), 20))}},
		{"STRUCT<>", GoogleStandardSQL, ParsedType{Type: Struct()}},
		{" ARRAY < INT64 > ", GoogleStandardSQL, ParsedType{Type: Array(Int64())}},
		{"bigint", PostgreSQL, ParsedType{Type: PgInt8()}},
		{"character varying(10)", PostgreSQL, ParsedType{Type: PgVarchar(), Size: 10}},
		{"varchar", PostgreSQL, ParsedType{Type: PgVarchar()}},
		{"double precision[]", PostgreSQL, ParsedType{Type: PgArray(PgFloat8())}},
		{"real[] vector length 64", PostgreSQL, ParsedType{Type: PgArray(PgFloat4()), ArrayLength: intPtr(64)}},
		{"timestamptz", PostgreSQL, ParsedType{Type: PgTimestamptz()}},
		{"spanner.commit_timestamp", PostgreSQL, ParsedType{Type: PgCommitTimestamp()}},
		{"timestamp with time zone", PostgreSQL, ParsedType{Type: PgTimestamptz()}},
		{"character varying(255)[]", PostgreSQL, ParsedType{Type: PgArray(PgVarchar()), Size: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			got, err := ParseType(tt.sig, tt.dialect)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseType(%q) mismatch (-want +got):\n%s", tt.sig, diff)
			}
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	tests := []struct {
		sig     string
		dialect Dialect
		wantErr error
	}{
		{"INTEGER", GoogleStandardSQL, ErrUnknownType},
		{"STRING(ten)", GoogleStandardSQL, ErrUnknownType},
		{"ARRAY<INT64", GoogleStandardSQL, ErrUnknownType},
		{"ARRAY<INT64>(length=>3)", GoogleStandardSQL, ErrUnknownType},
		{"bigint vector length 3", PostgreSQL, ErrUnknownType},
		{"text(10)", PostgreSQL, ErrUnknownType},
		{"PROTO<>", GoogleStandardSQL, ErrUnknownType},
		{"ENUM<>", GoogleStandardSQL, ErrUnknownType},
		{"PROTO<a b c>", GoogleStandardSQL, ErrUnknownType},
		{"ENUM<a.>", GoogleStandardSQL, ErrUnknownType},
		{"STRING(-5)", GoogleStandardSQL, ErrUnknownType},
		{"BYTES(0)", GoogleStandardSQL, ErrUnknownType},
		{"INT64(10)", GoogleStandardSQL, ErrUnknownType},
		{"ARRAY<INT64>(vector_length=>-3)", GoogleStandardSQL, ErrUnknownType},
		{"ARRAY<FLOAT32>(vector_length=>0)", GoogleStandardSQL, ErrUnknownType},
		{"STRUCT<a>", GoogleStandardSQL, ErrUnknownType},
		{"STRUCT<a INT64,>", GoogleStandardSQL, ErrUnknownType},
		{"STRUCT<a ARRAY<FLOAT32>(vector_length=>3)>", GoogleStandardSQL, ErrUnknownType},
		{"INT64 INT64", GoogleStandardSQL, ErrUnknownType},
		{"", GoogleStandardSQL, ErrUnknownType},
		{"character varying(-1)", PostgreSQL, ErrUnknownType},
		{"real[] vector length -4", PostgreSQL, ErrUnknownType},
		{"bigint[][]", PostgreSQL, ErrUnknownType},
		{"INT64", Dialect(5), ErrUnrecognizedDialect},
	}

	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			_, err := ParseType(tt.sig, tt.dialect)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	sigs := []struct {
		sig     string
		dialect Dialect
	}{
		{"STRING(10)", GoogleStandardSQL},
		{"ARRAY<BYTES(MAX)>", GoogleStandardSQL},
		{"ARRAY<FLOAT32>(vector_length=>128)", GoogleStandardSQL},
		{"STRUCT<a INT64, b STRING(MAX)>", GoogleStandardSQL},
		{"STRUCT<a STRING(10)>", GoogleStandardSQL},
		{"ARRAY<STRUCT<a BYTES(16), b ARRAY<STRING(8)>>>", GoogleStandardSQL},
		{"ARRAY<PROTO<x.Y>>", GoogleStandardSQL},
		{"character varying(10)", PostgreSQL},
		{"bigint[]", PostgreSQL},
		{"real[] vector length 8", PostgreSQL},
	}
	for _, s := range sigs {
		t.Run(s.sig, func(t *testing.T) {
			pt, err := ParseType(s.sig, s.dialect)
			require.NoError(t, err)
			assert.Equal(t, s.sig, pt.Type.Signature(pt.Size, pt.ArrayLength))
		})
	}
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("postgresql")
	require.NoError(t, err)
	assert.Equal(t, PostgreSQL, d)

	d, err = ParseDialect("")
	require.NoError(t, err)
	assert.Equal(t, GoogleStandardSQL, d)

	_, err = ParseDialect("sqlite")
	assert.True(t, errors.Is(err, ErrUnrecognizedDialect))
}
