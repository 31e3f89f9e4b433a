package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the full application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig configures the inbound HTTP surface
type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
}

// APIConfig configures the outbound MQTT task API connection
type APIConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	AuthEnabled    bool   `mapstructure:"auth_enabled"`
	AuthToken      string `mapstructure:"auth_token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DatabaseConfig configures the order store connection
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// SeedConfig points at the optional YAML fixture loaded on first start
type SeedConfig struct {
	File string `mapstructure:"file"`
}

// Load reads the configuration file and applies defaults. The file is
// optional; a missing file leaves everything at its default.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("api.host", "localhost")
	v.SetDefault("api.port", 3000)
	v.SetDefault("api.auth_enabled", false)
	v.SetDefault("api.timeout_seconds", 10)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "mqtt_integration.db")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
