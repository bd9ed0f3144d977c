package config

import (
	"fmt"
	"os"

	"trade-brain/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills unset options with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "trade-brain"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8888
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "data/market_memory.db"
	}
	if c.Model.InputWindow == 0 {
		c.Model.InputWindow = 2000
	}
	if c.Model.PredictHorizon == 0 {
		c.Model.PredictHorizon = 2000
	}
	if c.Model.PredictStride == 0 {
		c.Model.PredictStride = 100
	}
	if c.Model.ArtifactPath == "" {
		c.Model.ArtifactPath = "data/linear_v1.json"
	}
	if c.Model.LearningRate == 0 {
		c.Model.LearningRate = 0.01
	}
	if c.Training.TrainLimit == 0 {
		c.Training.TrainLimit = 500000
	}
	if c.Training.BatchSize == 0 {
		c.Training.BatchSize = 128
	}
	if c.Training.Epochs == 0 {
		c.Training.Epochs = 5
	}
	if c.Training.SampleStride == 0 {
		c.Training.SampleStride = 20
	}
	if c.Training.Margin == 0 {
		c.Training.Margin = 100
	}
	if c.Protocol.MaxLineBytes == 0 {
		c.Protocol.MaxLineBytes = 1024 * 1024
	}
	if c.Monitor.Host == "" {
		c.Monitor.Host = c.Host
	}
	if c.Monitor.Port == 0 {
		c.Monitor.Port = 8889
	}
	if c.Monitor.MarketMIC == "" {
		c.Monitor.MarketMIC = "xnys"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.Monitor.Enabled {
		if c.Monitor.Port <= 1024 || c.Monitor.Port > 65535 {
			return fmt.Errorf("invalid monitor port number: %d (must be between 1025 and 65535)", c.Monitor.Port)
		}
		if c.Monitor.Port == c.Port && c.Monitor.Host == c.Host {
			return fmt.Errorf("monitor cannot share the protocol listen address %s:%d", c.Host, c.Port)
		}
	}

	// Validate Storage configuration
	if c.Storage.DBType != "sqlite" && c.Storage.DBType != "postgres" {
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	// Validate Model configuration
	if c.Model.InputWindow <= 0 {
		return fmt.Errorf("input window must be greater than 0")
	}
	if c.Model.PredictHorizon <= 0 {
		return fmt.Errorf("predict horizon must be greater than 0")
	}
	if c.Model.PredictStride <= 0 || c.Model.PredictStride > c.Model.PredictHorizon {
		return fmt.Errorf("predict stride must be in 1..%d", c.Model.PredictHorizon)
	}
	if c.Model.PredictHorizon%c.Model.PredictStride != 0 {
		return fmt.Errorf("predict horizon %d must be a multiple of predict stride %d",
			c.Model.PredictHorizon, c.Model.PredictStride)
	}
	if c.Model.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be greater than 0")
	}

	// Validate Training configuration
	if c.Training.TrainLimit < c.Model.InputWindow+c.Model.PredictHorizon {
		return fmt.Errorf("train limit %d is below one window plus horizon (%d)",
			c.Training.TrainLimit, c.Model.InputWindow+c.Model.PredictHorizon)
	}
	if c.Training.BatchSize <= 0 {
		return fmt.Errorf("batch size must be greater than 0")
	}
	if c.Training.Epochs <= 0 {
		return fmt.Errorf("epochs must be greater than 0")
	}
	if c.Training.SampleStride <= 0 {
		return fmt.Errorf("sample stride must be greater than 0")
	}
	if c.Training.Margin < 0 {
		return fmt.Errorf("margin cannot be negative")
	}

	// Validate Protocol configuration
	if c.Protocol.MaxLineBytes <= 0 {
		return fmt.Errorf("max line bytes must be greater than 0")
	}
	if c.Protocol.ReadTimeoutSeconds < 0 {
		return fmt.Errorf("read timeout cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
