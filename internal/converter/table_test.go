package converter

import (
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/spanneravro/internal/ddl"
)

func usersDatabase() *ddl.Database {
	return &ddl.Database{
		Tables: []ddl.Table{{
			Name: "Users",
			PrimaryKeys: []ddl.IndexColumn{
				ddl.Asc("id"), ddl.Desc("last_name"),
			},
			Columns: []ddl.Column{
				{Name: "id", Type: ddl.Int64(), NotNull: true},
				{Name: "first_name", Type: ddl.String(), Size: 10, DefaultExpression: "'John'"},
				{Name: "last_name", Type: ddl.String(), DefaultExpression: "'Lennon'"},
				{Name: "full_name", Type: ddl.String(), GenerationExpression: "CONCAT(first_name, ' ', last_name)", IsStored: true},
				{Name: "gen_id", Type: ddl.Int64(), NotNull: true, GenerationExpression: "MOD(id+1, 64)", IsStored: true},
				{Name: "gen_id_virt", Type: ddl.Int64(), GenerationExpression: "MOD(id+1, 64)"},
				{Name: "identity_column", Type: ddl.Int64(), IsIdentityColumn: true, SequenceKind: "bit_reversed_positive"},
				{Name: "identity_column_no_kind", Type: ddl.Int64(), IsIdentityColumn: true},
				{Name: "identity_column_range", Type: ddl.Int64(), IsIdentityColumn: true,
					SequenceKind: "bit_reversed_positive", CounterStartValue: int64Ptr(1000),
					SkipRangeMin: int64Ptr(2000), SkipRangeMax: int64Ptr(3000)},
				{Name: "hidden_column", Type: ddl.String(), IsHidden: true},
				{Name: "placement", Type: ddl.String(), IsPlacementKey: true, NotNull: true},
			},
			Indexes: []string{
				"CREATE INDEX `UsersByFirstName` ON `Users` (`first_name`)",
			},
			ForeignKeys: []ddl.ForeignKey{{
				Name: "fk", Table: "Users", Columns: []string{"first_name"},
				ReferencedTable: "AllowedNames", ReferencedColumns: []string{"first_name"},
			}},
			CheckConstraints: []string{"CONSTRAINT `ck` CHECK(`first_name` != `last_name`)"},
		}},
	}
}

func TestConvertTable(t *testing.T) {
	c := newTestConverter(t, false)
	schemas := convert(t, c, usersDatabase())
	require.Len(t, schemas, 1)

	s := schemas[0]
	assert.Equal(t, "spannertest.Users", s.FullName())
	assert.Equal(t, "booleans", s.Prop(GoogleFormatVersion))
	assert.Equal(t, StorageCloudSpanner, s.Prop(GoogleStorage))
	assert.Equal(t, "Users", s.Prop(SpannerName))
	assert.Equal(t, "`id` ASC", s.Prop(PrimaryKey+"0"))
	assert.Equal(t, "`last_name` DESC", s.Prop(PrimaryKey+"1"))
	assert.Nil(t, s.Prop(PrimaryKey+"2"))
	assert.Nil(t, s.Prop(Parent))
	assert.Nil(t, s.Prop(OnDeleteAction))
	assert.Equal(t, "CREATE INDEX `UsersByFirstName` ON `Users` (`first_name`)", s.Prop(Index+"0"))
	assert.Equal(t,
		"ALTER TABLE `Users` ADD CONSTRAINT `fk` FOREIGN KEY (`first_name`) REFERENCES `AllowedNames` (`first_name`)",
		s.Prop(ForeignKey+"0"))
	assert.Equal(t, "CONSTRAINT `ck` CHECK(`first_name` != `last_name`)", s.Prop(CheckConstraint+"0"))

	fields := s.Fields()
	require.Len(t, fields, 11)

	id := fields[0]
	assert.Equal(t, "id", id.Name())
	sameSchema(t, prim(avro.Long), id.Type())
	assert.Equal(t, "INT64", id.Prop(SQLType))
	assert.Nil(t, id.Prop(NotNull))
	assert.Nil(t, id.Prop(DefaultExpression))

	firstName := fields[1]
	sameSchema(t, nullableOf(t, prim(avro.String)), firstName.Type())
	assert.Equal(t, "STRING(10)", firstName.Prop(SQLType))
	assert.Equal(t, "'John'", firstName.Prop(DefaultExpression))

	lastName := fields[2]
	assert.Equal(t, "STRING(MAX)", lastName.Prop(SQLType))
	assert.Equal(t, "'Lennon'", lastName.Prop(DefaultExpression))

	fullName := fields[3]
	sameSchema(t, avro.NewNullSchema(), fullName.Type())
	assert.Equal(t, "STRING(MAX)", fullName.Prop(SQLType))
	assert.Equal(t, "false", fullName.Prop(NotNull))
	assert.Equal(t, "CONCAT(first_name, ' ', last_name)", fullName.Prop(GenerationExpression))
	assert.Equal(t, "true", fullName.Prop(Stored))
	assert.Nil(t, fullName.Prop(DefaultExpression))

	genID := fields[4]
	sameSchema(t, avro.NewNullSchema(), genID.Type())
	assert.Equal(t, "true", genID.Prop(NotNull))
	assert.Equal(t, "MOD(id+1, 64)", genID.Prop(GenerationExpression))
	assert.Equal(t, "true", genID.Prop(Stored))

	genIDVirt := fields[5]
	assert.Equal(t, "false", genIDVirt.Prop(Stored))

	identity := fields[6]
	sameSchema(t, nullableOf(t, prim(avro.Long)), identity.Type())
	assert.Equal(t, "true", identity.Prop(IdentityColumn))
	assert.Equal(t, "bit_reversed_positive", identity.Prop(SequenceKind))
	assert.Nil(t, identity.Prop(CounterStartValue))

	noKind := fields[7]
	assert.Equal(t, "true", noKind.Prop(IdentityColumn))
	assert.Nil(t, noKind.Prop(SequenceKind))

	ranged := fields[8]
	assert.Equal(t, "1000", ranged.Prop(CounterStartValue))
	assert.Equal(t, "2000", ranged.Prop(SkipRangeMin))
	assert.Equal(t, "3000", ranged.Prop(SkipRangeMax))

	hidden := fields[9]
	assert.Equal(t, "true", hidden.Prop(Hidden))
	assert.Nil(t, hidden.Prop(IdentityColumn))

	placement := fields[10]
	sameSchema(t, prim(avro.String), placement.Type())
	assert.Equal(t, "true", placement.Prop(PlacementKey))
	assert.Nil(t, placement.Prop(Hidden))
}

func TestConvertTablePostgreSQL(t *testing.T) {
	db := &ddl.Database{
		Dialect: ddl.PostgreSQL,
		Tables: []ddl.Table{{
			Name:        "Users",
			Dialect:     ddl.PostgreSQL,
			PrimaryKeys: []ddl.IndexColumn{ddl.Asc("id")},
			Columns: []ddl.Column{
				{Name: "id", Type: ddl.PgInt8(), NotNull: true},
				{Name: "first_name", Type: ddl.PgVarchar(), Size: 10, DefaultExpression: "'John'::character varying"},
				{Name: "last_name", Type: ddl.PgVarchar()},
				{Name: "full_name", Type: ddl.PgVarchar(), GenerationExpression: "(first_name || last_name)", IsStored: true},
				{Name: "amount", Type: ddl.PgNumeric()},
				{Name: "ts", Type: ddl.PgCommitTimestamp()},
			},
			ForeignKeys: []ddl.ForeignKey{{
				Name: "fk", Table: "Users", Columns: []string{"id"},
				ReferencedTable: "Accounts", ReferencedColumns: []string{"user_id"},
				ReferentialAction: "cascade", Enforced: boolPtr(false),
			}},
		}},
	}

	schemas := convert(t, newTestConverter(t, false), db)
	require.Len(t, schemas, 1)
	s := schemas[0]
	assert.Equal(t, `"id" ASC`, s.Prop(PrimaryKey+"0"))
	assert.Equal(t,
		`ALTER TABLE "Users" ADD CONSTRAINT "fk" FOREIGN KEY ("id") REFERENCES "Accounts" ("user_id") ON DELETE CASCADE NOT ENFORCED`,
		s.Prop(ForeignKey+"0"))

	fields := s.Fields()
	require.Len(t, fields, 6)
	assert.Equal(t, "bigint", fields[0].Prop(SQLType))
	assert.Equal(t, "character varying(10)", fields[1].Prop(SQLType))
	assert.Equal(t, "'John'::character varying", fields[1].Prop(DefaultExpression))
	assert.Equal(t, "character varying", fields[2].Prop(SQLType))
	assert.Equal(t, "(first_name || last_name)", fields[3].Prop(GenerationExpression))
	sameSchema(t, nullableOf(t, decimal(147455, 16383)), fields[4].Type())
	assert.Equal(t, "numeric", fields[4].Prop(SQLType))
	sameSchema(t, nullableOf(t, prim(avro.String)), fields[5].Type())
	assert.Equal(t, "spanner.commit_timestamp", fields[5].Prop(SQLType))
}

func allTypesTable() ddl.Table {
	return ddl.Table{
		Name:        "AllTypes",
		PrimaryKeys: []ddl.IndexColumn{ddl.Asc("bool_field")},
		Columns: []ddl.Column{
			{Name: "bool_field", Type: ddl.Bool()},
			{Name: "int64_field", Type: ddl.Int64()},
			{Name: "float32_field", Type: ddl.Float32()},
			{Name: "float64_field", Type: ddl.Float64()},
			{Name: "string_field", Type: ddl.String(), Size: 76},
			{Name: "bytes_field", Type: ddl.Bytes(), Size: 13},
			{Name: "timestamp_field", Type: ddl.Timestamp()},
			{Name: "date_field", Type: ddl.Date()},
			{Name: "numeric_field", Type: ddl.Numeric()},
			{Name: "json_field", Type: ddl.JSON()},
			{Name: "uuid_field", Type: ddl.UUID()},
			{Name: "proto_field", Type: ddl.Proto("com.google.Proto")},
			{Name: "enum_field", Type: ddl.Enum("com.google.Enum")},
			{Name: "tokens", Type: ddl.Tokenlist(), GenerationExpression: "TOKENIZE_FULLTEXT(string_field)", IsHidden: true},
			{Name: "arr_bool_field", Type: ddl.Array(ddl.Bool())},
			{Name: "arr_string_field", Type: ddl.Array(ddl.String()), Size: 15},
			{Name: "arr_timestamp_field", Type: ddl.Array(ddl.Timestamp())},
			{Name: "arr_numeric_field", Type: ddl.Array(ddl.Numeric())},
			{Name: "arr_uuid_field", Type: ddl.Array(ddl.UUID())},
			{Name: "embedding", Type: ddl.Array(ddl.Float32()), ArrayLength: intPtr(128)},
		},
	}
}

func TestConvertAllTypes(t *testing.T) {
	tests := []struct {
		name      string
		logical   bool
		timestamp avro.Schema
	}{
		{name: "timestamps as strings", timestamp: prim(avro.String)},
		{name: "logical timestamps", logical: true, timestamp: timestampMicros()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schemas := convert(t, newTestConverter(t, tt.logical), &ddl.Database{
				Tables: []ddl.Table{allTypesTable()},
			})
			require.Len(t, schemas, 1)

			want := []struct {
				sqlType string
				schema  avro.Schema
			}{
				{"BOOL", nullableOf(t, prim(avro.Boolean))},
				{"INT64", nullableOf(t, prim(avro.Long))},
				{"FLOAT32", nullableOf(t, prim(avro.Float))},
				{"FLOAT64", nullableOf(t, prim(avro.Double))},
				{"STRING(76)", nullableOf(t, prim(avro.String))},
				{"BYTES(13)", nullableOf(t, prim(avro.Bytes))},
				{"TIMESTAMP", nullableOf(t, tt.timestamp)},
				{"DATE", nullableOf(t, prim(avro.String))},
				{"NUMERIC", nullableOf(t, decimal(38, 9))},
				{"JSON", nullableOf(t, prim(avro.String))},
				{"UUID", nullableOf(t, uuidSchema())},
				{"PROTO<com.google.Proto>", nullableOf(t, prim(avro.Bytes))},
				{"ENUM<com.google.Enum>", nullableOf(t, prim(avro.Long))},
				{"TOKENLIST", avro.NewNullSchema()},
				{"ARRAY<BOOL>", nullableArrayOf(t, prim(avro.Boolean))},
				{"ARRAY<STRING(15)>", nullableArrayOf(t, prim(avro.String))},
				{"ARRAY<TIMESTAMP>", nullableArrayOf(t, tt.timestamp)},
				{"ARRAY<NUMERIC>", nullableArrayOf(t, decimal(38, 9))},
				{"ARRAY<UUID>", nullableArrayOf(t, uuidSchema())},
				{"ARRAY<FLOAT32>(vector_length=>128)", nullableArrayOf(t, prim(avro.Float))},
			}

			fields := schemas[0].Fields()
			require.Len(t, fields, len(want))
			for i, w := range want {
				assert.Equal(t, w.sqlType, fields[i].Prop(SQLType), fields[i].Name())
				sameSchema(t, w.schema, fields[i].Type())
			}
			assert.Equal(t, "true", fields[13].Prop(Hidden))
		})
	}
}

func TestConvertTokenlistNotNull(t *testing.T) {
	db := &ddl.Database{Tables: []ddl.Table{{
		Name: "Docs",
		Columns: []ddl.Column{
			{Name: "tokens", Type: ddl.Tokenlist(), NotNull: true},
			{Name: "pg_tokens", Type: ddl.PgTokenlist()},
		},
	}}}

	fields := convert(t, newTestConverter(t, false), db)[0].Fields()
	sameSchema(t, avro.NewNullSchema(), fields[0].Type())
	sameSchema(t, avro.NewNullSchema(), fields[1].Type())
}

func TestConvertInterleaving(t *testing.T) {
	db := &ddl.Database{Tables: []ddl.Table{
		{Name: "Users", PrimaryKeys: []ddl.IndexColumn{ddl.Asc("id")},
			Columns: []ddl.Column{{Name: "id", Type: ddl.Int64(), NotNull: true}}},
		{Name: "Albums", InterleavingParent: "Users", OnDeleteCascade: true,
			PrimaryKeys: []ddl.IndexColumn{ddl.Asc("id"), ddl.Asc("album_id")},
			Columns: []ddl.Column{
				{Name: "id", Type: ddl.Int64(), NotNull: true},
				{Name: "album_id", Type: ddl.Int64(), NotNull: true},
			}},
		{Name: "Notes", InterleavingParent: "Users", InterleaveType: ddl.InterleaveIn,
			PrimaryKeys: []ddl.IndexColumn{ddl.Asc("id")},
			Columns:     []ddl.Column{{Name: "id", Type: ddl.Int64(), NotNull: true}}},
	}}

	schemas := convert(t, newTestConverter(t, false), db)
	require.Len(t, schemas, 3)

	users, albums, notes := schemas[0], schemas[1], schemas[2]
	assert.Nil(t, users.Prop(Parent))

	assert.Equal(t, "Users", albums.Prop(Parent))
	assert.Equal(t, OnDeleteCascade, albums.Prop(OnDeleteAction))
	assert.Equal(t, "IN PARENT", albums.Prop(InterleaveType))
	assert.Equal(t, "`album_id` ASC", albums.Prop(PrimaryKey+"1"))

	assert.Equal(t, "Users", notes.Prop(Parent))
	assert.Equal(t, OnDeleteNoAction, notes.Prop(OnDeleteAction))
	assert.Equal(t, "IN", notes.Prop(InterleaveType))
}

func TestConvertStructColumns(t *testing.T) {
	db := &ddl.Database{Tables: []ddl.Table{{
		Name: "Events",
		Columns: []ddl.Column{
			{Name: "id", Type: ddl.Int64(), NotNull: true},
			{Name: "payload", Type: ddl.Struct(
				ddl.Field("a", ddl.Bool()),
				ddl.Field("b", ddl.Struct(ddl.Field("c", ddl.String()))),
			), NotNull: true},
			{Name: "history", Type: ddl.Array(ddl.Struct(ddl.Field("at", ddl.Timestamp())))},
		},
	}}}

	fields := convert(t, newTestConverter(t, false), db)[0].Fields()
	require.Len(t, fields, 3)

	payload := recordOf(t, "struct_Events_1",
		field(t, "a", prim(avro.Boolean)),
		field(t, "b", recordOf(t, "struct_Events_1_1", field(t, "c", prim(avro.String)))),
	)
	sameSchema(t, payload, fields[1].Type())
	assert.Equal(t, "STRUCT<a BOOL, b STRUCT<c STRING(MAX)>>", fields[1].Prop(SQLType))

	history := nullableArrayOf(t, recordOf(t, "struct_Events_2", field(t, "at", prim(avro.String))))
	sameSchema(t, history, fields[2].Type())
	assert.Equal(t, "ARRAY<STRUCT<at TIMESTAMP>>", fields[2].Prop(SQLType))
	assert.Equal(t, "spannertest.struct_Events_1", fields[1].Type().(*avro.RecordSchema).FullName())
}

func TestConvertColumnMissingType(t *testing.T) {
	tests := []struct {
		name string
		col  ddl.Column
	}{
		{name: "nil type", col: ddl.Column{Name: "a"}},
		{name: "array without element", col: ddl.Column{Name: "a", Type: &ddl.Type{Code: ddl.CodeArray}}},
		{name: "pg array without element", col: ddl.Column{Name: "a", Type: &ddl.Type{Code: ddl.CodePgArray}}},
		{name: "struct field without type", col: ddl.Column{Name: "a", Type: ddl.Struct(ddl.Field("b", nil))}},
		{name: "generated array without element", col: ddl.Column{
			Name: "a", Type: &ddl.Type{Code: ddl.CodeArray}, GenerationExpression: "[1]",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &ddl.Database{Tables: []ddl.Table{{Name: "T", Columns: []ddl.Column{tt.col}}}}
			var err error
			require.NotPanics(t, func() {
				_, err = newTestConverter(t, false).Convert(db)
			})
			require.ErrorIs(t, err, ddl.ErrUnknownType)
			assert.Contains(t, err.Error(), "column a")
		})
	}
}

func TestConvertColumnOptions(t *testing.T) {
	db := &ddl.Database{Tables: []ddl.Table{{
		Name: "Events",
		Columns: []ddl.Column{
			{Name: "ts", Type: ddl.Timestamp(), Options: []string{"allow_commit_timestamp=TRUE"}},
		},
	}}}

	f := convert(t, newTestConverter(t, false), db)[0].Fields()[0]
	assert.Equal(t, "allow_commit_timestamp=TRUE", f.Prop(Option+"0"))
	assert.Nil(t, f.Prop(Option+"1"))
}

func TestConvertUnknownType(t *testing.T) {
	db := &ddl.Database{Tables: []ddl.Table{{
		Name:    "Broken",
		Columns: []ddl.Column{{Name: "x", Type: &ddl.Type{Code: "INTERVAL"}}},
	}}}

	_, err := newTestConverter(t, false).Convert(db)
	require.ErrorIs(t, err, ddl.ErrUnknownType)
	assert.Contains(t, err.Error(), "table Broken")
	assert.Contains(t, err.Error(), "column x")
}
