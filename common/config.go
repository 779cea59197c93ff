package common

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration file for relayd. Command-line
// flags take precedence over file values.
type Config struct {
	Provider struct {
		// BaseURL is the custody provider API root, no trailing slash.
		BaseURL string `yaml:"base_url"`

		// TimeoutSeconds bounds one upstream call.
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"provider"`

	Stamper struct {
		// APIPrivateKey is the hex-encoded P-256 scalar of the relay's
		// provider-issued API key, used to stamp session activities.
		APIPrivateKey string `yaml:"api_private_key"`

		// APIPrivateKeyFile reads the key from a file instead, preferred
		// so the key stays out of the config proper.
		APIPrivateKeyFile string `yaml:"api_private_key_file"`
	} `yaml:"stamper"`
}

// LoadConfig parses the YAML config at path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}
	return &cfg, nil
}

// StamperKey resolves the stamping key, reading the key file when set.
func (c *Config) StamperKey() (string, error) {
	if c.Stamper.APIPrivateKeyFile != "" {
		raw, err := os.ReadFile(c.Stamper.APIPrivateKeyFile)
		if err != nil {
			return "", fmt.Errorf("could not read api key file: %w", err)
		}
		return string(bytes.TrimSpace(raw)), nil
	}
	return c.Stamper.APIPrivateKey, nil
}
