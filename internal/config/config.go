package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// StorageConfig selects and parameterizes the status store backend.
type StorageConfig struct {
	Type     string         `json:"type" mapstructure:"type"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"postgres" mapstructure:"postgres"`
}

// SQLiteConfig holds the SQLite backend settings.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PostgresConfig holds the Postgres backend connection settings.
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// ExploreConfig holds the catalog initialization and search tunables.
type ExploreConfig struct {
	BatchSize   int
	BatchDelay  time.Duration
	SearchDelay time.Duration
}

// GeolocationConfig holds the one-shot position acquisition tunables.
type GeolocationConfig struct {
	Timeout        time.Duration
	MaxFixAge      time.Duration
	RequestDelay   time.Duration
	NoticeCooldown time.Duration
}

// DatasetConfig locates the immutable marker dataset.
type DatasetConfig struct {
	Path string
	// CRS is the coordinate reference system of the dataset positions,
	// either "4326" (WGS84 degrees) or "3857" (web mercator meters).
	CRS string
}

// InfluxConfig holds the optional InfluxDB metrics sink settings.
type InfluxConfig struct {
	Enabled  bool
	Protocol string
	Host     string
	Port     string
	Token    string
	Org      string
	Bucket   string
}

// GraylogConfig holds the optional GELF log output settings.
type GraylogConfig struct {
	Enabled bool
	Address string
}

// Load reads configuration from a JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("dataset.path", "./markers.json")
	viper.SetDefault("dataset.crs", "4326")

	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.sqlite.path", "./markers-status.db")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "markers")

	viper.SetDefault("explore.batchSize", 50)
	viper.SetDefault("explore.batchDelay", "17ms")
	viper.SetDefault("explore.searchDelay", "500ms")

	viper.SetDefault("geolocation.timeout", "60s")
	viper.SetDefault("geolocation.maxFixAge", "60s")
	viper.SetDefault("geolocation.requestDelay", "200ms")
	viper.SetDefault("geolocation.noticeCooldown", "2s")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "pamana")
	viper.SetDefault("influx.bucket", "explorer_performance")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetConfigName("markers.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the status store configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("storage.postgres.host"),
			Port:     viper.GetString("storage.postgres.port"),
			Username: viper.GetString("storage.postgres.username"),
			Password: viper.GetString("storage.postgres.password"),
			Database: viper.GetString("storage.postgres.database"),
		},
	}
}

// GetExploreConfig returns the initialization and search tunables.
func GetExploreConfig() ExploreConfig {
	return ExploreConfig{
		BatchSize:   viper.GetInt("explore.batchSize"),
		BatchDelay:  viper.GetDuration("explore.batchDelay"),
		SearchDelay: viper.GetDuration("explore.searchDelay"),
	}
}

// GetGeolocationConfig returns the geolocation tunables.
func GetGeolocationConfig() GeolocationConfig {
	return GeolocationConfig{
		Timeout:        viper.GetDuration("geolocation.timeout"),
		MaxFixAge:      viper.GetDuration("geolocation.maxFixAge"),
		RequestDelay:   viper.GetDuration("geolocation.requestDelay"),
		NoticeCooldown: viper.GetDuration("geolocation.noticeCooldown"),
	}
}

// GetDatasetConfig returns the dataset location settings.
func GetDatasetConfig() DatasetConfig {
	return DatasetConfig{
		Path: viper.GetString("dataset.path"),
		CRS:  viper.GetString("dataset.crs"),
	}
}

// GetInfluxConfig returns the metrics sink settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetGraylogConfig returns the GELF output settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}
