package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	DataDir string `json:"data_dir"`
	Port    int    `json:"port"`
}

func TestReadConfigMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json5"),
		[]byte(`{data_dir: "data", port: 8080}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.json5"),
		[]byte(`{port: 9090}`), 0644))

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "data", cfg.DataDir)
	require.Equal(t, 9090, cfg.Port, "the local file wins field by field")
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.json5"),
		[]byte(`{data_dir: "elsewhere"}`), 0644))

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "elsewhere", cfg.DataDir)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
