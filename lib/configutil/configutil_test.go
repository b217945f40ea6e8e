package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Endpoint string `json:"endpoint"`
	Timeout  int    `json:"timeout"`
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "service.json5")
	write(t, base, `{
		// comments are allowed
		endpoint: "https://example.com",
		timeout: 30,
	}`)

	config, err := ReadConfig[testConfig](base)
	require.NoError(t, err)
	require.Equal(t, "https://example.com", config.Endpoint)
	require.Equal(t, 30, config.Timeout)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "service.json5"), `{endpoint: "https://example.com", timeout: 30}`)
	write(t, filepath.Join(dir, "service.local.json5"), `{endpoint: "http://localhost:8080"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "service.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", config.Endpoint)
	require.Equal(t, 30, config.Timeout, "fields absent from the override keep the base value")
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "service.local.json5"), `{endpoint: "http://localhost:8080"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "service.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", config.Endpoint)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "service.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	write(t, filepath.Join(dir, "service.json5"), `{endpoint: "https://example.com"}`)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(cwd) })
	require.NoError(t, os.Chdir(nested))

	config, err := ReadRecursively[testConfig]("service.json5")
	require.NoError(t, err)
	require.Equal(t, "https://example.com", config.Endpoint)
}
