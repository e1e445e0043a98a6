package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"dataset": { "path": "/data/markers.json", "crs": "3857" },
		"storage": { "postgres": { "host": "10.0.0.1", "port": "5433" } }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "markers.cfg.json"), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "/data/markers.json", viper.GetString("dataset.path"))
	assert.Equal(t, "3857", viper.GetString("dataset.crs"))
	assert.Equal(t, "10.0.0.1", viper.GetString("storage.postgres.host"))
	assert.Equal(t, "5433", viper.GetString("storage.postgres.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "markers.cfg.json"), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "./markers.json", viper.GetString("dataset.path"))
	assert.Equal(t, "4326", viper.GetString("dataset.crs"))
	assert.Equal(t, "sqlite", viper.GetString("storage.type"))
	assert.Equal(t, "./markers-status.db", viper.GetString("storage.sqlite.path"))
	assert.Equal(t, "localhost", viper.GetString("storage.postgres.host"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetExploreConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "markers.cfg.json"), []byte(`{}`), 0644))
	require.NoError(t, Load(dir))

	ec := GetExploreConfig()
	assert.Equal(t, 50, ec.BatchSize)
	assert.Equal(t, 17*time.Millisecond, ec.BatchDelay)
	assert.Equal(t, 500*time.Millisecond, ec.SearchDelay)
}

func TestGetGeolocationConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "markers.cfg.json"), []byte(`{}`), 0644))
	require.NoError(t, Load(dir))

	gc := GetGeolocationConfig()
	assert.Equal(t, 60*time.Second, gc.Timeout)
	assert.Equal(t, 60*time.Second, gc.MaxFixAge)
	assert.Equal(t, 200*time.Millisecond, gc.RequestDelay)
	assert.Equal(t, 2*time.Second, gc.NoticeCooldown)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"storage": {
			"type": "memory",
			"sqlite": { "path": "/tmp/status.db" }
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "markers.cfg.json"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	sc := GetStorageConfig()
	assert.Equal(t, "memory", sc.Type)
	assert.Equal(t, "/tmp/status.db", sc.SQLite.Path)
}

func TestGetInfluxConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"influx": {
			"enabled": true,
			"host": "metrics.local",
			"token": "secret",
			"bucket": "explorer"
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "markers.cfg.json"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	ic := GetInfluxConfig()
	assert.Equal(t, true, ic.Enabled)
	assert.Equal(t, "metrics.local", ic.Host)
	assert.Equal(t, "secret", ic.Token)
	assert.Equal(t, "explorer", ic.Bucket)
}
