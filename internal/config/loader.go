// Package config provides configuration management for the value-bet engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("BETS_API")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// The config file may be absent entirely; defaults and environment variables
// then supply the full configuration.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("BETS_API")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults registers the default value for every engine tunable
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "bets-api-ev-calc")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("estimator.decay_factor", 0.9)
	v.SetDefault("estimator.probability_band_min", 0.58)
	v.SetDefault("estimator.probability_band_max", 0.62)
	v.SetDefault("estimator.line_step", 0.5)
	v.SetDefault("estimator.blend_weight", 0.6)

	v.SetDefault("matcher.min_similarity", 0.7)
	v.SetDefault("matcher.date_window_hours", 24)
	v.SetDefault("matcher.min_confidence", 0.8)

	v.SetDefault("evaluator.min_ev", 5.0)
	v.SetDefault("evaluator.unit_value", 100.0)

	v.SetDefault("rate_limit.max_calls_per_day", 100)
	v.SetDefault("rate_limit.max_calls_per_hour", 10)
	v.SetDefault("rate_limit.min_delay_between_calls_ms", 6000)
	v.SetDefault("rate_limit.cache_expiry_hours", 24)

	v.SetDefault("verification.bulk_delay_ms", 500)
	v.SetDefault("verification.cron_schedule", "0 */2 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
