package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SPANNERAVRO_NAMESPACE",
		"SPANNERAVRO_FORMAT_VERSION",
		"SPANNERAVRO_LOGICAL_TIMESTAMPS",
		"SPANNERAVRO_OUTPUT_DIR",
		"SPANNERAVRO_CATALOG_DRIVER",
		"SPANNERAVRO_CATALOG_DSN",
	} {
		// Setenv registers the restore; Unsetenv then clears it for this test.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "spannerexport", cfg.Namespace)
	assert.Equal(t, "1.0.0", cfg.FormatVersion)
	assert.False(t, cfg.LogicalTimestamps)
	assert.Empty(t, cfg.OutputDir)
	assert.Equal(t, "sqlite3", cfg.Catalog.Driver)
	assert.False(t, cfg.Catalog.Enabled())
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
namespace: exports
format_version: "2.0.0"
logical_timestamps: true
output_dir: out
catalog:
  driver: mysql
  dsn: "user:pass@tcp(localhost:3306)/exports"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "exports", cfg.Namespace)
	assert.Equal(t, "2.0.0", cfg.FormatVersion)
	assert.True(t, cfg.LogicalTimestamps)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "mysql", cfg.Catalog.Driver)
	assert.True(t, cfg.Catalog.Enabled())
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "namespace: exports\noutput_dir: out\n")

	t.Setenv("SPANNERAVRO_NAMESPACE", "fromenv")
	t.Setenv("SPANNERAVRO_LOGICAL_TIMESTAMPS", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fromenv", cfg.Namespace)
	assert.True(t, cfg.LogicalTimestamps)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "malformed yaml", content: "namespace: [\n", wantErr: "failed to read"},
		{name: "unknown driver", content: "catalog:\n  driver: postgres\n", wantErr: "unsupported catalog driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Namespace: "ns", Catalog: CatalogConfig{Driver: "mysql"}}
	require.NoError(t, cfg.Validate())

	cfg.Catalog.Driver = "oracle"
	require.Error(t, cfg.Validate())

	cfg = &Config{Catalog: CatalogConfig{Driver: "sqlite3"}}
	assert.EqualError(t, cfg.Validate(), "namespace must not be empty")
}
