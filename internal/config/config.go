package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	App struct {
		Env string `yaml:"env"` // "development" or "production"
	} `yaml:"app"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	MLService struct {
		URL            string `yaml:"url"`
		RiskPath       string `yaml:"risk_path"`
		ComplaintPath  string `yaml:"complaint_path"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"ml_service"`

	Database struct {
		Type string `yaml:"type"` // "sqlite", "postgres" or "redis"
		Path string `yaml:"path"` // SQLite path or PostgreSQL URL
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Auth struct {
		JWTSecret            string `yaml:"jwt_secret"` // Empty disables auth on history routes
		OperatorUser         string `yaml:"operator_user"`
		OperatorPasswordHash string `yaml:"operator_password_hash"` // argon2id, not env-expanded
		TokenTTLHours        int    `yaml:"token_ttl_hours"`
	} `yaml:"auth"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()
	return config, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	// Expand environment variables first so unset ones fall back to defaults
	c.MLService.URL = os.ExpandEnv(c.MLService.URL)
	c.Database.Path = os.ExpandEnv(c.Database.Path)
	c.Redis.Password = os.ExpandEnv(c.Redis.Password)
	c.Auth.JWTSecret = os.ExpandEnv(c.Auth.JWTSecret)

	if c.App.Env == "" {
		c.App.Env = "development"
	}

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	if c.MLService.URL == "" {
		c.MLService.URL = "http://localhost:8000"
	}

	if c.MLService.TimeoutSeconds == 0 {
		c.MLService.TimeoutSeconds = 30
	}

	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}

	if c.Database.Path == "" && c.Database.Type == "sqlite" {
		c.Database.Path = "./data/history.db"
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if c.Auth.OperatorUser == "" {
		c.Auth.OperatorUser = "operator"
	}

	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// MLTimeout returns the inference request timeout
func (c *Config) MLTimeout() time.Duration {
	return time.Duration(c.MLService.TimeoutSeconds) * time.Second
}

// TokenTTL returns the lifetime of operator tokens
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}
