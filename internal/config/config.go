package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// OAuthClientConfig holds the Google OAuth client credentials used by the
// gmail digest sender. TokenFile points at a cached oauth2 token JSON.
type OAuthClientConfig struct {
	ClientID     string `yaml:"clientID" validate:"required"`
	ClientSecret string `yaml:"clientSecret" validate:"required"`
	TokenFile    string `yaml:"tokenFile" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	CentreName       string             `yaml:"centreName" validate:"required"`
	DefaultShiftSize int                `yaml:"defaultShiftSize" validate:"required,min=1"`
	ClosureRules     []string           `yaml:"closureRules,omitempty"`
	GmailSender      string             `yaml:"gmailSender,omitempty"`
	OAuthClient      *OAuthClientConfig `yaml:"oauthClient,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from shiftcover_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks closure rrule syntax
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Validate rrule syntax for each closure rule
	for i, rule := range cfg.ClosureRules {
		if _, err := rrule.StrToRRule(rule); err != nil {
			return fmt.Errorf("invalid rrule in closureRules[%d]: %w", i, err)
		}
	}

	if cfg.OAuthClient != nil {
		if err := validate.Struct(cfg.OAuthClient); err != nil {
			return fmt.Errorf("oauth client config validation failed: %w", err)
		}
	}

	return nil
}

// ClosureRRules parses the configured closure rules. Validate must have
// passed first, so parse errors are unexpected here.
func (c *Config) ClosureRRules() ([]*rrule.RRule, error) {
	rules := make([]*rrule.RRule, 0, len(c.ClosureRules))
	for i, raw := range c.ClosureRules {
		rule, err := rrule.StrToRRule(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid rrule in closureRules[%d]: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// findConfigFile searches for shiftcover_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "shiftcover_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
