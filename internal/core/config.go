// Package core provides configuration management for the anomaly hub.
package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pulseai-labs/anomaly-hub/internal/engine"
)

// Config holds all hub configuration, validated on load.
type Config struct {
	App struct {
		Name     string `yaml:"name"`
		Version  string `yaml:"version"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	// Database is optional: when Host is empty the audit sink is disabled
	// and detections are served without persistence.
	Database struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		User           string `yaml:"user"`
		Password       string `yaml:"password"`
		DBName         string `yaml:"dbname"`
		MaxConnections int    `yaml:"max_connections"`
	} `yaml:"database"`

	Engine struct {
		WindowSize                 int     `yaml:"window_size"`
		DDBaseContamination        float64 `yaml:"dd_base_contamination"`
		ARIMASeasonLength          int     `yaml:"arima_season_length"`
		EnsembleDDWeight           float64 `yaml:"ensemble_dd_weight"`
		EnsembleFDWeight           float64 `yaml:"ensemble_fd_weight"`
		PeripheralFailureThreshold int     `yaml:"peripheral_failure_threshold"`
	} `yaml:"engine"`
}

// Default returns the configuration that matches the engine package's own
// built-in constants, used when no file overrides them.
func Default() *Config {
	var c Config
	c.App.Name = "anomaly-hub"
	c.App.Version = "0.1.0"
	c.App.LogLevel = "info"
	c.Server.Addr = ":8080"
	c.Engine.WindowSize = 60
	c.Engine.DDBaseContamination = 0.05
	c.Engine.ARIMASeasonLength = 12
	c.Engine.EnsembleDDWeight = 0.6
	c.Engine.EnsembleFDWeight = 0.4
	c.Engine.PeripheralFailureThreshold = 3
	return &c
}

// LoadConfig reads and validates configuration from a YAML file, falling
// back to Default() for any zero-valued section.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.ApplyEnvOverrides()
	return config, nil
}

// Validate checks if configuration values are valid. Database fields are
// only validated when a host is configured — an empty host means the
// audit sink runs disabled.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name cannot be empty")
	}
	if c.App.Version == "" {
		return fmt.Errorf("app.version cannot be empty")
	}
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		return fmt.Errorf("app.log_level must be one of: debug, info, warn, error")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	if c.Database.Host != "" {
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("database.port must be between 1 and 65535")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user cannot be empty")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database.dbname cannot be empty")
		}
		if c.Database.MaxConnections <= 0 {
			return fmt.Errorf("database.max_connections must be positive")
		}
	}

	if c.Engine.WindowSize <= 0 {
		return fmt.Errorf("engine.window_size must be positive")
	}
	if c.Engine.DDBaseContamination <= 0 || c.Engine.DDBaseContamination >= 1 {
		return fmt.Errorf("engine.dd_base_contamination must be between 0 and 1")
	}
	if c.Engine.ARIMASeasonLength <= 0 {
		return fmt.Errorf("engine.arima_season_length must be positive")
	}
	if c.Engine.EnsembleDDWeight <= 0 || c.Engine.EnsembleFDWeight <= 0 {
		return fmt.Errorf("engine.ensemble_dd_weight and engine.ensemble_fd_weight must be positive")
	}
	if c.Engine.PeripheralFailureThreshold <= 0 {
		return fmt.Errorf("engine.peripheral_failure_threshold must be positive")
	}

	return nil
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if host := os.Getenv("HUB_DB_HOST"); host != "" {
		c.Database.Host = host
	}
	if user := os.Getenv("HUB_DB_USER"); user != "" {
		c.Database.User = user
	}
	if password := os.Getenv("HUB_DB_PASSWORD"); password != "" {
		c.Database.Password = password
	}
	if dbname := os.Getenv("HUB_DB_NAME"); dbname != "" {
		c.Database.DBName = dbname
	}
	if addr := os.Getenv("HUB_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if logLevel := os.Getenv("HUB_LOG_LEVEL"); logLevel != "" {
		c.App.LogLevel = logLevel
	}
}

// DatabaseEnabled reports whether the audit sink should be wired.
func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != ""
}

// EngineTunables projects the engine section of Config onto the
// engine.Tunables value a Registry is constructed with, so a YAML edit
// actually reaches the detectors instead of only updating defaulted,
// validated, but otherwise unread fields.
func (c *Config) EngineTunables() engine.Tunables {
	return engine.Tunables{
		WindowSize:                 c.Engine.WindowSize,
		DDBaseContamination:        c.Engine.DDBaseContamination,
		ARIMASeasonLength:          c.Engine.ARIMASeasonLength,
		EnsembleDDWeight:           c.Engine.EnsembleDDWeight,
		EnsembleFDWeight:           c.Engine.EnsembleFDWeight,
		PeripheralFailureThreshold: c.Engine.PeripheralFailureThreshold,
	}
}

// GetDatabaseURL returns the PostgreSQL connection string for the
// configured database section.
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&pool_max_conns=%d",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		c.Database.MaxConnections,
	)
}
