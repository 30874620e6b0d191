package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/matcore/pkg/csvio"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Equal(t, csvio.DefaultProperties(), cfg.CSVProperties())
	assert.Equal(t, 1000, cfg.Exec.BlockRows)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Empty(t, cfg.File)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
csv:
  header: true
  delimiter: ";"
  fill: true
  fill_value: -1
exec:
  block_rows: 2
server:
  read_timeout: 5s
`)
	cfg, err := load(path, "MATCORE_TEST_UNUSED_")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, csvio.Properties{HasHeader: true, Delimiter: ";", Fill: true, FillValue: -1}, cfg.CSVProperties())
	assert.Equal(t, 2, cfg.Exec.BlockRows)
	assert.Equal(t, 1000, cfg.Exec.BlockCols)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := load(filepath.Join(t.TempDir(), "absent.yaml"), "MATCORE_TEST_UNUSED_")
	require.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "csv:\n  delimiter: \";\"\nlog:\n  level: warn\n")
	t.Setenv("MTEST_CSV__DELIMITER", "|")
	t.Setenv("MTEST_CSV__FILL_VALUE", "2.5")
	t.Setenv("MTEST_SERVER__ADDRESS", ":9000")

	cfg, err := load(path, "MTEST_")
	require.NoError(t, err)
	assert.Equal(t, "|", cfg.CSV.Delimiter)
	assert.Equal(t, 2.5, cfg.CSV.FillValue)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.CSV.Delimiter = ""
	cfg.Exec.BlockRows = -1
	cfg.Log.Format = "xml"
	cfg.Server.Address = ""

	err := cfg.Validate()
	require.ErrorIs(t, err, csvio.ErrInvalidProperties)
	assert.Contains(t, err.Error(), "block size")
	assert.Contains(t, err.Error(), "log format")
	assert.Contains(t, err.Error(), "server address")

	whole := Default()
	whole.Exec.BlockRows, whole.Exec.BlockCols = 0, 0
	assert.NoError(t, whole.Validate())
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.CSV.Header = true
	out, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(out), "read_timeout: 30s")
	assert.NotContains(t, string(out), "file:")

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.True(t, back.CSV.Header)
	assert.Equal(t, cfg.Server, back.Server)
}
