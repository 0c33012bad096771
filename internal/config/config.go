package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Configuration validation constants
const (
	MinPort       = 1     // Minimum valid port number
	MaxPort       = 65535 // Maximum valid port number
	MaxAPITimeout = 300   // Upper bound for api_timeout in seconds

	// Default values
	DefaultRegion     = "us-east-1"
	DefaultNodeName   = "AWS Cost Explorer"
	DefaultHTTPPort   = 8080
	DefaultLogLevel   = "info"
	DefaultAPITimeout = 30 // API timeout in seconds
)

// Credentials holds the AWS access key pair and region used to build the Cost Explorer client.
// An empty key pair means the default AWS credential chain is used instead.
type Credentials struct {
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Region          string `yaml:"region"`
}

// HasStaticKeys reports whether an explicit access key pair is configured
func (c Credentials) HasStaticKeys() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Node holds the operator-chosen node settings applied to every batch
type Node struct {
	Name           string         `yaml:"name"`
	ContinueOnFail bool           `yaml:"continue_on_fail"`
	Parameters     map[string]any `yaml:"parameters"`
}

// Config represents the application configuration
type Config struct {
	Credentials Credentials `yaml:"credentials"`
	Endpoint    string      `yaml:"endpoint"` // Optional Cost Explorer endpoint override
	Node        Node        `yaml:"node"`
	HTTPPort    int         `yaml:"http_port"`
	LogLevel    string      `yaml:"log_level"`
	APITimeout  int         `yaml:"api_timeout"` // Cost Explorer HTTP timeout in seconds
}

// Load loads configuration from a YAML file and applies environment variable overrides.
// An empty path skips the file and builds the configuration from defaults and environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		// #nosec G304 -- Config file path is provided by the operator via CLI flag, not user input
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment variable error: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for configuration
func applyDefaults(cfg *Config) {
	if cfg.Credentials.Region == "" {
		cfg.Credentials.Region = DefaultRegion
	}
	if cfg.Node.Name == "" {
		cfg.Node.Name = DefaultNodeName
	}
	if cfg.Node.Parameters == nil {
		cfg.Node.Parameters = map[string]any{}
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = DefaultHTTPPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.APITimeout == 0 {
		cfg.APITimeout = DefaultAPITimeout
	}
}

// applyEnvOverrides applies environment variable overrides to configuration
func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("AWS_COST_ACCESS_KEY_ID"); val != "" {
		cfg.Credentials.AccessKeyID = val
	}
	if val := os.Getenv("AWS_COST_SECRET_ACCESS_KEY"); val != "" {
		cfg.Credentials.SecretAccessKey = val
	}
	if val := os.Getenv("AWS_COST_REGION"); val != "" {
		cfg.Credentials.Region = val
	}
	if val := os.Getenv("AWS_COST_ENDPOINT"); val != "" {
		cfg.Endpoint = val
	}

	if val := os.Getenv("AWS_COST_CONTINUE_ON_FAIL"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid AWS_COST_CONTINUE_ON_FAIL: must be a boolean, got %q", val)
		}
		cfg.Node.ContinueOnFail = b
	}

	if val := os.Getenv("AWS_COST_HTTP_PORT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid AWS_COST_HTTP_PORT: must be an integer, got %q", val)
		}
		cfg.HTTPPort = i
	}

	if val := os.Getenv("AWS_COST_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}

	if val := os.Getenv("AWS_COST_API_TIMEOUT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid AWS_COST_API_TIMEOUT: must be an integer, got %q", val)
		}
		cfg.APITimeout = i
	}

	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	creds := cfg.Credentials
	if (creds.AccessKeyID == "") != (creds.SecretAccessKey == "") {
		return fmt.Errorf("credentials: access_key_id and secret_access_key must be set together")
	}

	if creds.Region == "" {
		return fmt.Errorf("credentials: region must not be empty")
	}

	if cfg.HTTPPort < MinPort || cfg.HTTPPort > MaxPort {
		return fmt.Errorf("http_port must be between %d and %d", MinPort, MaxPort)
	}

	if cfg.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive, got %d", cfg.APITimeout)
	}

	if cfg.APITimeout > MaxAPITimeout {
		return fmt.Errorf("api_timeout should not exceed %d seconds, got %d", MaxAPITimeout, cfg.APITimeout)
	}

	return nil
}
