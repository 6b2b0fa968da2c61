package ddl

import (
	"fmt"
	"strconv"
	"strings"
)

// Code identifies a column type. GoogleSQL codes are upper case keywords,
// PostgreSQL codes are the lower case names the PostgreSQL interface uses.
type Code string

// GoogleSQL type codes.
const (
	CodeBool      Code = "BOOL"
	CodeInt64     Code = "INT64"
	CodeFloat32   Code = "FLOAT32"
	CodeFloat64   Code = "FLOAT64"
	CodeString    Code = "STRING"
	CodeBytes     Code = "BYTES"
	CodeTimestamp Code = "TIMESTAMP"
	CodeDate      Code = "DATE"
	CodeNumeric   Code = "NUMERIC"
	CodeJSON      Code = "JSON"
	CodeUUID      Code = "UUID"
	CodeTokenlist Code = "TOKENLIST"
	CodeProto     Code = "PROTO"
	CodeEnum      Code = "ENUM"
	CodeStruct    Code = "STRUCT"
	CodeArray     Code = "ARRAY"
)

// PostgreSQL type codes.
const (
	CodePgBool            Code = "boolean"
	CodePgInt8            Code = "bigint"
	CodePgFloat4          Code = "real"
	CodePgFloat8          Code = "double precision"
	CodePgVarchar         Code = "character varying"
	CodePgText            Code = "text"
	CodePgBytea           Code = "bytea"
	CodePgTimestamptz     Code = "timestamp with time zone"
	CodePgDate            Code = "date"
	CodePgNumeric         Code = "numeric"
	CodePgJSONB           Code = "jsonb"
	CodePgCommitTimestamp Code = "spanner.commit_timestamp"
	CodePgTokenlist       Code = "spanner.tokenlist"
	CodePgUUID            Code = "uuid"
	CodePgArray           Code = "array"
)

// MaxLength marks a STRING or BYTES column declared with MAX length.
const MaxLength = -1

// Type is a column type. Elem is set for arrays, Fields for structs and
// ProtoName for PROTO and ENUM.
type Type struct {
	Code      Code
	Elem      *Type
	Fields    []StructField
	ProtoName string
}

// StructField is one named member of a STRUCT type. Size is the declared
// length of a STRING or BYTES field, as on Column.
type StructField struct {
	Name string
	Type *Type
	Size int
}

func scalar(c Code) *Type { return &Type{Code: c} }

func Bool() *Type      { return scalar(CodeBool) }
func Int64() *Type     { return scalar(CodeInt64) }
func Float32() *Type   { return scalar(CodeFloat32) }
func Float64() *Type   { return scalar(CodeFloat64) }
func String() *Type    { return scalar(CodeString) }
func Bytes() *Type     { return scalar(CodeBytes) }
func Timestamp() *Type { return scalar(CodeTimestamp) }
func Date() *Type      { return scalar(CodeDate) }
func Numeric() *Type   { return scalar(CodeNumeric) }
func JSON() *Type      { return scalar(CodeJSON) }
func UUID() *Type      { return scalar(CodeUUID) }
func Tokenlist() *Type { return scalar(CodeTokenlist) }

// Proto returns a PROTO type for the fully qualified message name.
func Proto(name string) *Type { return &Type{Code: CodeProto, ProtoName: name} }

// Enum returns an ENUM type for the fully qualified enum name.
func Enum(name string) *Type { return &Type{Code: CodeEnum, ProtoName: name} }

// Array returns a GoogleSQL ARRAY of elem.
func Array(elem *Type) *Type { return &Type{Code: CodeArray, Elem: elem} }

// Struct returns a STRUCT with the given fields in order.
func Struct(fields ...StructField) *Type { return &Type{Code: CodeStruct, Fields: fields} }

// Field is shorthand for a StructField.
func Field(name string, t *Type) StructField { return StructField{Name: name, Type: t} }

// SizedField is a StructField with a declared length.
func SizedField(name string, t *Type, size int) StructField {
	return StructField{Name: name, Type: t, Size: size}
}

func PgBool() *Type            { return scalar(CodePgBool) }
func PgInt8() *Type            { return scalar(CodePgInt8) }
func PgFloat4() *Type          { return scalar(CodePgFloat4) }
func PgFloat8() *Type          { return scalar(CodePgFloat8) }
func PgVarchar() *Type         { return scalar(CodePgVarchar) }
func PgText() *Type            { return scalar(CodePgText) }
func PgBytea() *Type           { return scalar(CodePgBytea) }
func PgTimestamptz() *Type     { return scalar(CodePgTimestamptz) }
func PgDate() *Type            { return scalar(CodePgDate) }
func PgNumeric() *Type         { return scalar(CodePgNumeric) }
func PgJSONB() *Type           { return scalar(CodePgJSONB) }
func PgCommitTimestamp() *Type { return scalar(CodePgCommitTimestamp) }
func PgTokenlist() *Type       { return scalar(CodePgTokenlist) }
func PgUUID() *Type            { return scalar(CodePgUUID) }

// PgArray returns a PostgreSQL array of elem.
func PgArray(elem *Type) *Type { return &Type{Code: CodePgArray, Elem: elem} }

// Validate returns ErrUnknownType when t, an array element or a struct field
// type is missing.
func (t *Type) Validate() error {
	switch {
	case t == nil:
		return fmt.Errorf("%w: missing type", ErrUnknownType)
	case t.Code == "":
		return fmt.Errorf("%w: missing type code", ErrUnknownType)
	case t.IsArray():
		if t.Elem == nil {
			return fmt.Errorf("%w: %s without element type", ErrUnknownType, t.Code)
		}
		return t.Elem.Validate()
	case t.IsStruct():
		for _, f := range t.Fields {
			if err := f.Type.Validate(); err != nil {
				return fmt.Errorf("struct field %s: %w", f.Name, err)
			}
		}
	}
	return nil
}

// IsArray reports whether t is an array in either dialect.
func (t *Type) IsArray() bool {
	return t != nil && (t.Code == CodeArray || t.Code == CodePgArray)
}

// IsStruct reports whether t is a STRUCT.
func (t *Type) IsStruct() bool {
	return t != nil && t.Code == CodeStruct
}

// Dialect returns the dialect whose spelling the type code uses.
func (t *Type) Dialect() Dialect {
	switch t.Code {
	case CodePgBool, CodePgInt8, CodePgFloat4, CodePgFloat8, CodePgVarchar,
		CodePgText, CodePgBytea, CodePgTimestamptz, CodePgDate, CodePgNumeric,
		CodePgJSONB, CodePgCommitTimestamp, CodePgTokenlist, CodePgUUID, CodePgArray:
		return PostgreSQL
	default:
		return GoogleStandardSQL
	}
}

func (t *Type) String() string {
	return t.Signature(0, nil)
}

// Signature renders the type the way DDL spells it. size applies to STRING,
// BYTES and character varying, including as an array element; arrayLength
// adds the vector length suffix to arrays.
func (t *Type) Signature(size int, arrayLength *int) string {
	if t == nil {
		return ""
	}
	if t.Dialect() == PostgreSQL {
		return t.pgSignature(size, arrayLength)
	}
	return t.gsqlSignature(size, arrayLength)
}

func (t *Type) gsqlSignature(size int, arrayLength *int) string {
	switch t.Code {
	case CodeString, CodeBytes:
		return string(t.Code) + "(" + sizeText(size) + ")"
	case CodeProto, CodeEnum:
		return string(t.Code) + "<" + t.ProtoName + ">"
	case CodeArray:
		s := "ARRAY<" + t.Elem.Signature(size, nil) + ">"
		if arrayLength != nil {
			s += "(vector_length=>" + strconv.Itoa(*arrayLength) + ")"
		}
		return s
	case CodeStruct:
		parts := make([]string, 0, len(t.Fields))
		for _, f := range t.Fields {
			parts = append(parts, f.Name+" "+f.Type.Signature(f.Size, nil))
		}
		return "STRUCT<" + strings.Join(parts, ", ") + ">"
	default:
		return string(t.Code)
	}
}

func (t *Type) pgSignature(size int, arrayLength *int) string {
	switch t.Code {
	case CodePgVarchar:
		if size > 0 {
			return string(t.Code) + "(" + strconv.Itoa(size) + ")"
		}
		return string(t.Code)
	case CodePgArray:
		s := t.Elem.Signature(size, nil) + "[]"
		if arrayLength != nil {
			s += " vector length " + strconv.Itoa(*arrayLength)
		}
		return s
	default:
		return string(t.Code)
	}
}

func sizeText(size int) string {
	if size <= 0 {
		return "MAX"
	}
	return strconv.Itoa(size)
}
