package config

import (
	"fmt"
	"os"

	"github.com/aensidhe/telegram-muter/internal/schedule"
	"github.com/spf13/viper"
)

// DefaultSessionFile is used when auth.session_file is not configured
const DefaultSessionFile = "telegram-muter.session.json"

// Config represents application configuration
type Config struct {
	Auth          AuthConfig           `mapstructure:"auth"`
	Log           LogConfig            `mapstructure:"log"`
	TimeSettings  *schedule.Spec       `mapstructure:"time_settings"`
	Schedules     []schedule.Spec      `mapstructure:"schedules"`
	GroupSettings []schedule.GroupSpec `mapstructure:"group_settings"`
}

// AuthConfig represents Telegram API credentials
type AuthConfig struct {
	APIID       int    `mapstructure:"api_id"`
	APIHash     string `mapstructure:"api_hash"`
	PhoneNumber string `mapstructure:"phone_number"`
	SessionFile string `mapstructure:"session_file"`
}

// LogConfig represents structured log output configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.telegram-muter")
		v.AddConfigPath("/etc/telegram-muter")
	}

	// Read environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.APIID <= 0 {
		return fmt.Errorf("auth.api_id is required")
	}
	if c.Auth.APIHash == "" {
		return fmt.Errorf("auth.api_hash is required")
	}
	if c.Auth.PhoneNumber == "" {
		return fmt.Errorf("auth.phone_number is required")
	}

	if c.TimeSettings != nil && len(c.Schedules) > 0 {
		return fmt.Errorf("time_settings and schedules are mutually exclusive")
	}
	if c.TimeSettings == nil && len(c.Schedules) == 0 {
		return fmt.Errorf("either time_settings or schedules must be defined")
	}
	if c.TimeSettings != nil && (c.TimeSettings.Name != "" || c.TimeSettings.Parent != "") {
		return fmt.Errorf("time_settings must not set name or parent")
	}

	return nil
}

// ScheduleSpecs returns the schedule definitions, promoting a bare
// time_settings table to the default schedule
func (c *Config) ScheduleSpecs() []schedule.Spec {
	if c.TimeSettings != nil {
		spec := *c.TimeSettings
		spec.Name = schedule.DefaultName
		return []schedule.Spec{spec}
	}
	return c.Schedules
}

// GetSessionFile returns the session file path
func (c *AuthConfig) GetSessionFile() string {
	if c.SessionFile == "" {
		return DefaultSessionFile
	}
	return c.SessionFile
}

// ExpandEnvVars expands environment variables in credential strings
func (c *Config) ExpandEnvVars() {
	c.Auth.APIHash = os.ExpandEnv(c.Auth.APIHash)
	c.Auth.PhoneNumber = os.ExpandEnv(c.Auth.PhoneNumber)
}
