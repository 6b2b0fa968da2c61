package spanneravro

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tordrt/spanneravro/internal/ddl"
)

const testModel = "testdata/singers.yaml"

func schemaNames(schemas []*avro.RecordSchema) []string {
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name()
	}
	return names
}

func TestLoadDatabase(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		opts       *Options
		wantTables []string
	}{
		{
			name:       "all tables",
			opts:       nil,
			wantTables: []string{"Singers", "Albums", "AuditLog"},
		},
		{
			name:       "specific tables",
			opts:       &Options{Tables: []string{"singers", "ALBUMS"}},
			wantTables: []string{"Singers", "Albums"},
		},
		{
			name:       "excluded tables",
			opts:       &Options{ExcludeTables: []string{"auditlog"}},
			wantTables: []string{"Singers", "Albums"},
		},
		{
			name:       "tables then exclusions",
			opts:       &Options{Tables: []string{"Singers", "Albums"}, ExcludeTables: []string{"Albums"}},
			wantTables: []string{"Singers"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database, err := LoadDatabase(ctx, testModel, tt.opts)
			require.NoError(t, err)

			var got []string
			for _, table := range database.Tables {
				got = append(got, table.Name)
			}
			assert.Equal(t, tt.wantTables, got)
			assert.Len(t, database.Views, 1)
			assert.Len(t, database.Sequences, 1)
			assert.Len(t, database.ChangeStreams, 1)
		})
	}
}

func TestLoadDatabaseErrors(t *testing.T) {
	ctx := context.Background()

	_, err := LoadDatabase(ctx, "", nil)
	require.Error(t, err)

	_, err = LoadDatabase(ctx, filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables:\n  - name: T\n    colums: []\n"), 0o644))
	_, err = LoadDatabase(ctx, path, nil)
	require.ErrorIs(t, err, ddl.ErrInvalidModel)
}

func TestConvertDatabase(t *testing.T) {
	database, err := LoadDatabase(context.Background(), testModel, nil)
	require.NoError(t, err)

	schemas, err := ConvertDatabase(database, &Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"Singers", "Albums", "AuditLog", "SingerNames", "AlbumSeq", "SingerChanges"},
		schemaNames(schemas))
	for _, s := range schemas {
		assert.Equal(t, DefaultNamespace, s.Namespace())
		assert.Equal(t, DefaultFormatVersion, s.Prop("googleFormatVersion"))
	}
}

func TestConvertDatabaseOptions(t *testing.T) {
	database, err := LoadDatabase(context.Background(), testModel, &Options{Tables: []string{"Albums"}})
	require.NoError(t, err)

	schemas, err := ConvertDatabase(database, &Options{
		Namespace:         "music",
		FormatVersion:     "booleans",
		LogicalTimestamps: true,
	})
	require.NoError(t, err)

	albums := schemas[0]
	assert.Equal(t, "music.Albums", albums.FullName())
	assert.Equal(t, "booleans", albums.Prop("googleFormatVersion"))

	var updated *avro.Field
	for _, f := range albums.Fields() {
		if f.Name() == "LastUpdated" {
			updated = f
		}
	}
	require.NotNil(t, updated)
	want, err := avro.NewUnionSchema([]avro.Schema{
		avro.NewNullSchema(),
		avro.NewPrimitiveSchema(avro.Long, avro.NewPrimitiveLogicalSchema(avro.TimestampMicros)),
	})
	require.NoError(t, err)
	assert.Equal(t, want.String(), updated.Type().String())
}

func TestWriteSchemas(t *testing.T) {
	database, err := LoadDatabase(context.Background(), testModel, nil)
	require.NoError(t, err)
	schemas, err := ConvertDatabase(database, nil)
	require.NoError(t, err)

	t.Run("single file", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSchemas(schemas, &OutputOptions{Writer: &buf, Compact: true}))

		var docs []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
		require.Len(t, docs, len(schemas))
		assert.Equal(t, "spannerexport.Singers", docs[0]["name"])
	})

	t.Run("single file markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSchemas(schemas, &OutputOptions{Writer: &buf, Format: "markdown"}))
		assert.Contains(t, buf.String(), "## SingerChanges\n")
	})

	t.Run("multi file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "avro")
		require.NoError(t, WriteSchemas(schemas, &OutputOptions{OutputDir: dir}))

		for _, name := range schemaNames(schemas) {
			data, err := os.ReadFile(filepath.Join(dir, name+".avsc"))
			require.NoError(t, err)
			_, err = avro.Parse(string(data))
			require.NoError(t, err, name)
		}
		assert.FileExists(t, filepath.Join(dir, "_overview.md"))
	})
}

func TestExportAndWrite(t *testing.T) {
	dir := t.TempDir()
	err := ExportAndWrite(context.Background(), testModel,
		&Options{ExcludeTables: []string{"AuditLog"}},
		&OutputOptions{OutputDir: dir, Format: "markdown"},
	)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "Singers.md"))
	assert.NoFileExists(t, filepath.Join(dir, "AuditLog.md"))

	singers, err := os.ReadFile(filepath.Join(dir, "Singers.md"))
	require.NoError(t, err)
	assert.Contains(t, string(singers), "- Albums (on delete: cascade)")
}

func TestWriteDDL(t *testing.T) {
	database, err := LoadDatabase(context.Background(), testModel, &Options{Tables: []string{"Singers"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDDL(database, &buf))
	out := buf.String()
	assert.Contains(t, out, "CREATE TABLE `Singers` (")
	assert.Contains(t, out, "CREATE VIEW `SingerNames`")
	assert.NotContains(t, out, "`Albums`")
}

func TestFilterExcludedTables(t *testing.T) {
	tests := []struct {
		name        string
		database    *ddl.Database
		excludeList []string
		wantTables  []string
	}{
		{
			name:        "exclude single table",
			database:    &ddl.Database{Tables: []ddl.Table{{Name: "Users"}, {Name: "Posts"}, {Name: "Comments"}}},
			excludeList: []string{"Posts"},
			wantTables:  []string{"Users", "Comments"},
		},
		{
			name:        "case-insensitive",
			database:    &ddl.Database{Tables: []ddl.Table{{Name: "Users"}, {Name: "Posts"}}},
			excludeList: []string{"posts"},
			wantTables:  []string{"Users"},
		},
		{
			name:        "exclude no tables",
			database:    &ddl.Database{Tables: []ddl.Table{{Name: "Users"}, {Name: "Posts"}}},
			excludeList: []string{},
			wantTables:  []string{"Users", "Posts"},
		},
		{
			name:        "exclude non-existent table",
			database:    &ddl.Database{Tables: []ddl.Table{{Name: "Users"}}},
			excludeList: []string{"Products"},
			wantTables:  []string{"Users"},
		},
		{
			name:        "exclude all tables",
			database:    &ddl.Database{Tables: []ddl.Table{{Name: "Users"}, {Name: "Posts"}}},
			excludeList: []string{"Users", "Posts"},
			wantTables:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filterExcludedTables(tt.database, tt.excludeList)

			got := make([]string, 0, len(tt.database.Tables))
			for _, table := range tt.database.Tables {
				got = append(got, table.Name)
			}
			assert.Equal(t, tt.wantTables, got)
		})
	}
}
